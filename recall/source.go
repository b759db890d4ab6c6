// Package recall 提供候选检索：词法（TF-IDF）、语义（embedding）、
// 双塔 ANN，以及把多路结果融合为单一候选列表的混合检索器。
package recall

import (
	"context"

	"github.com/rushteam/searchkit/core"
)

// Retriever 表示一个可复用的检索源（词法/语义/双塔/...）。
// 你可以把它理解为"可并发 fan-out 的策略单元"。
type Retriever interface {
	Name() string
	// Query 返回与查询文本最相关的 topK 个候选，按分数降序。
	Query(ctx context.Context, text string, topK int) ([]core.ScoredItem, error)
	// ScorePair 返回查询与单个物品的相关性分数。
	// 未知物品返回中性的 0.0，不报错。
	ScorePair(ctx context.Context, text string, itemID int64) (float64, error)
}
