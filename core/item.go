package core

import "github.com/rushteam/searchkit/pkg/utils"

// 召回来源标识，写入 ScoredItem.Source 与候选的 recall_source Label。
const (
	SourceLexical     = "lexical"
	SourceSemantic    = "semantic"
	SourceDualEncoder = "dual_encoder"
	SourceHybrid      = "hybrid"
)

// ScoredItem 是单次检索调用的瞬态输出：物品 ID、相似度分数、来源。
type ScoredItem struct {
	ItemID int64
	Score  float64
	Source string
}

// Item 是检索/排序链路中的统一候选承载结构：特征、分数、元信息、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Item struct {
	ID       int64
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]utils.Label
}

func NewItem(id int64) *Item {
	return &Item{
		ID:       id,
		Score:    0,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// FromScored 将检索结果封装为候选 Item，并记录召回来源 Label。
func FromScored(s ScoredItem) *Item {
	it := NewItem(s.ItemID)
	it.Score = s.Score
	it.PutLabel("recall_source", utils.Label{Value: s.Source, Source: "recall"})
	return it
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
