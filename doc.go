// Package searchkit 是一个搜索排序工具包（Search Ranking Kit）。
//
// 设计要点：
// - Pipeline-first: 查询到结果的链路通过 Node 串联（Understand → Recall → Feature → Rank → Filter → ReRank）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 能力降级: embedding 服务、远程排序服务、特征库缺席时自动退化到本地实现，链路不中断
// - Node 可扩展: 自定义 Node 即可插拔扩展（本地或 RPC 模型均可）
package searchkit

import "github.com/rushteam/searchkit/pipeline"

// 轻量 facade：便于用户直接 import "searchkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindUnderstand  = pipeline.KindUnderstand
	KindRecall      = pipeline.KindRecall
	KindFeature     = pipeline.KindFeature
	KindRank        = pipeline.KindRank
	KindFilter      = pipeline.KindFilter
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
