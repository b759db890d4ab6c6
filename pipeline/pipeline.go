package pipeline

import (
	"context"

	"github.com/rushteam/searchkit/core"
)

// Pipeline 是 searchkit 的核心抽象：把查询到结果的链路拆成可组合的 Node 链。
// 典型编排：Understand → Recall → Feature → Rank → Filter → ReRank。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	qctx *core.QueryContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, qctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
