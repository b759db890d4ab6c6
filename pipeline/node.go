package pipeline

import (
	"context"

	"github.com/rushteam/searchkit/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindUnderstand  Kind = "understand"  // 查询理解阶段：归一化/纠错/意图/实体
	KindRecall      Kind = "recall"      // 召回阶段：生成候选集
	KindFeature     Kind = "feature"     // 特征阶段：为候选构建特征向量
	KindRank        Kind = "rank"        // 排序阶段：对候选打分并排序
	KindFilter      Kind = "filter"      // 过滤阶段：剔除不符合业务规则的候选
	KindReRank      Kind = "rerank"      // 重排阶段：截断/多样性调优
	KindPostProcess Kind = "postprocess" // 后处理阶段：最终结果修饰
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态，方便召回生成、过滤截断、重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		qctx *core.QueryContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
