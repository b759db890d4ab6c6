// Package rerank 提供排序后的重排节点：Top-N 截断与菜系多样性打散。
package rerank

import (
	"context"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/pipeline"
)

// TopNNode 是 Top-N 截断节点，在排序后截取前 N 个候选。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &rank.RankNode{...},       // 排序
//	        &rerank.TopNNode{N: 10},   // 截取 Top 10
//	        &rerank.Diversity{},       // 菜系打散
//	    },
//	}
type TopNNode struct {
	// N 要保留的候选数量。N <= 0 或候选不足 N 时不截断。
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.QueryContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}

var _ pipeline.Node = (*TopNNode)(nil)
