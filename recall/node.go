package recall

import (
	"context"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/pipeline"
)

// RetrieveNode 是 Recall Node：执行混合检索并把候选送入后续链路。
// 每个候选带上融合分与双通道原始分，供特征构建使用。
type RetrieveNode struct {
	Retriever *HybridRetriever
	TopK      int // 默认 10
}

func (n *RetrieveNode) Name() string        { return "recall.retrieve" }
func (n *RetrieveNode) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *RetrieveNode) Process(
	ctx context.Context,
	qctx *core.QueryContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if n.Retriever == nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput,
			"retrieve node: retriever not configured")
	}
	topK := n.TopK
	if topK <= 0 {
		topK = 10
	}

	text := qctx.QueryText()

	// 1. 混合检索
	hits, err := n.Retriever.Retrieve(ctx, text, topK)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	// 2. 补齐双通道原始分
	ids := make([]int64, len(hits))
	for i, h := range hits {
		ids[i] = h.ItemID
	}
	pairs, err := n.Retriever.PairScores(ctx, text, ids)
	if err != nil {
		return nil, err
	}

	items := make([]*core.Item, 0, len(hits))
	for _, h := range hits {
		it := core.FromScored(h)
		ps := pairs[h.ItemID]
		it.Features["lexical_score"] = ps.Lexical
		it.Features["semantic_score"] = ps.Semantic
		items = append(items, it)
	}
	return items, nil
}

var _ pipeline.Node = (*RetrieveNode)(nil)
