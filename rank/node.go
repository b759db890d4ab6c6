package rank

import (
	"context"
	"sort"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/pipeline"
	"github.com/rushteam/searchkit/recall"
)

// FeatureNode 是 Feature Node：为每个候选补齐完整排序特征。
// 候选需携带检索阶段写入的 lexical_score / semantic_score 原始分。
type FeatureNode struct {
	Builder *Builder
}

func (n *FeatureNode) Name() string        { return "rank.feature" }
func (n *FeatureNode) Kind() pipeline.Kind { return pipeline.KindFeature }

func (n *FeatureNode) Process(
	ctx context.Context,
	qctx *core.QueryContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Builder == nil {
		return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput,
			"feature node: builder not configured")
	}
	uq := qctx.Understood
	if uq == nil {
		uq = n.Builder.understand(qctx.Raw)
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		pair := recall.PairScore{
			Lexical:  it.Features["lexical_score"],
			Semantic: it.Features["semantic_score"],
		}
		features, err := n.Builder.Row(ctx, uq, qctx.UserID, it.ID, pair)
		if core.IsNotFound(err) {
			// 目录外的候选直接丢弃
			continue
		}
		if err != nil {
			return nil, err
		}
		for k, v := range features {
			it.Features[k] = v
		}
		// 透传菜系元信息，供下游多样性重排使用
		if item, ok := n.Builder.Catalog.ByID(it.ID); ok {
			if it.Meta == nil {
				it.Meta = make(map[string]any)
			}
			it.Meta["cuisine"] = item.Cuisine
		}
		out = append(out, it)
	}
	return out, nil
}

// RankNode 是 Rank Node：特征向量化后交给排序模型打分。
// 输出按分数降序，同分按 ItemID 升序，保证结果可复现。
type RankNode struct {
	Ranker *Ranker
}

func (n *RankNode) Name() string        { return "rank.predict" }
func (n *RankNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *RankNode) Process(
	_ context.Context,
	_ *core.QueryContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Ranker == nil {
		return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput,
			"rank node: ranker not configured")
	}
	if len(items) == 0 {
		return items, nil
	}

	X := make([][]float64, len(items))
	for i, it := range items {
		X[i] = Vectorize(it.Features)
	}
	scores, err := n.Ranker.Predict(X)
	if err != nil {
		return nil, err
	}
	for i, it := range items {
		it.Score = scores[i]
	}

	sort.Slice(items, func(a, b int) bool {
		if items[a].Score != items[b].Score {
			return items[a].Score > items[b].Score
		}
		return items[a].ID < items[b].ID
	})
	return items, nil
}

var (
	_ pipeline.Node = (*FeatureNode)(nil)
	_ pipeline.Node = (*RankNode)(nil)
)
