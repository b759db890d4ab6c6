package rerank

import (
	"context"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/pipeline"
)

// Diversity 是菜系多样性重排：按菜系轮转打散，避免头部结果被单一菜系占满。
// 每轮从每个菜系各取一个（菜系按首次出现顺序，组内保持原有排序），
// 保序性：同菜系内部的相对顺序不变。
//
// 菜系来源优先级：
//   - meta["cuisine"] (string)
//   - label["cuisine"].Value
type Diversity struct {
	MetaKey string // 默认 "cuisine"
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.QueryContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) <= 1 {
		return items, nil
	}

	key := n.MetaKey
	if key == "" {
		key = "cuisine"
	}

	// 1. 按菜系分桶，保留首次出现顺序；nil 候选直接丢弃
	var order []string
	total := 0
	buckets := make(map[string][]*core.Item)
	for _, it := range items {
		if it == nil {
			continue
		}
		cuisine := n.cuisineOf(it, key)
		if _, ok := buckets[cuisine]; !ok {
			order = append(order, cuisine)
		}
		buckets[cuisine] = append(buckets[cuisine], it)
		total++
	}

	// 2. 轮转取数
	out := make([]*core.Item, 0, total)
	for round := 0; len(out) < total; round++ {
		for _, cuisine := range order {
			bucket := buckets[cuisine]
			if round < len(bucket) {
				out = append(out, bucket[round])
			}
		}
	}
	return out, nil
}

func (n *Diversity) cuisineOf(it *core.Item, key string) string {
	if it.Meta != nil {
		if v, ok := it.Meta[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	if it.Labels != nil {
		if lbl, ok := it.Labels[key]; ok {
			return lbl.Value
		}
	}
	return ""
}

var _ pipeline.Node = (*Diversity)(nil)
