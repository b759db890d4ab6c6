package recall

import (
	"context"
	"sort"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/pkg/tfidf"
)

// LexicalRetriever 基于 TF-IDF 的词法检索。
// 构建时对全量物品文本拟合向量器，查询时按余弦相似度排序。
type LexicalRetriever struct {
	vectorizer *tfidf.Vectorizer
	docs       []tfidf.Vector
	ids        []int64
	byID       map[int64]tfidf.Vector
}

// NewLexicalRetriever 在物品目录上拟合 TF-IDF。
// 目录为空返回 INVALID_INPUT。
func NewLexicalRetriever(catalog *core.Catalog) (*LexicalRetriever, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput,
			"lexical retriever: empty catalog")
	}

	v := &tfidf.Vectorizer{NgramMax: 2}
	docs := v.FitTransform(catalog.Texts())

	r := &LexicalRetriever{
		vectorizer: v,
		docs:       docs,
		ids:        make([]int64, catalog.Len()),
		byID:       make(map[int64]tfidf.Vector, catalog.Len()),
	}
	for i, it := range catalog.Items() {
		r.ids[i] = it.ItemID
		r.byID[it.ItemID] = docs[i]
	}
	return r, nil
}

func (r *LexicalRetriever) Name() string { return core.SourceLexical }

func (r *LexicalRetriever) Query(_ context.Context, text string, topK int) ([]core.ScoredItem, error) {
	if topK <= 0 {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput,
			"lexical retriever: topK must be positive")
	}

	qv := r.vectorizer.Transform(text)

	// 1. 对全量文档打分
	scored := make([]core.ScoredItem, len(r.docs))
	for i, dv := range r.docs {
		scored[i] = core.ScoredItem{
			ItemID: r.ids[i],
			Score:  tfidf.Dot(qv, dv),
			Source: core.SourceLexical,
		}
	}

	// 2. 分数降序，同分按目录顺序（此处即 ItemID 出现顺序，下标更小者在前）
	order := make([]int, len(scored))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scored[order[a]].Score > scored[order[b]].Score
	})

	if topK > len(order) {
		topK = len(order)
	}
	out := make([]core.ScoredItem, topK)
	for i := 0; i < topK; i++ {
		out[i] = scored[order[i]]
	}
	return out, nil
}

func (r *LexicalRetriever) ScorePair(_ context.Context, text string, itemID int64) (float64, error) {
	dv, ok := r.byID[itemID]
	if !ok {
		return 0, nil
	}
	return tfidf.Dot(r.vectorizer.Transform(text), dv), nil
}

var _ Retriever = (*LexicalRetriever)(nil)
