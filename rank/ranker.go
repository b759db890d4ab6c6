package rank

import (
	"context"
	"log/slog"

	"github.com/rushteam/searchkit/model"
)

// Ranker 是排序阶段的对外入口：优先使用远程排序服务，
// 探测失败时降级到本地随机森林，对调用方透明。
type Ranker struct {
	backend model.TrainableRanker
}

// NewRanker 选择排序后端。remote 为 nil 或探测失败时使用本地森林。
// 变体选择只发生在构造期，之后的 Fit/Predict 不再切换。
func NewRanker(ctx context.Context, remote *model.RemoteRanker) *Ranker {
	if remote != nil {
		if err := remote.Probe(ctx); err == nil {
			return &Ranker{backend: remote}
		}
		slog.Warn("remote ranker unavailable, falling back to local forest",
			"endpoint", remote.Endpoint)
	}
	return &Ranker{backend: model.NewForestRanker()}
}

// NewRankerWith 直接注入排序后端，测试与离线场景使用。
func NewRankerWith(backend model.TrainableRanker) *Ranker {
	return &Ranker{backend: backend}
}

func (r *Ranker) Name() string { return "rank." + r.backend.Name() }

// Fit 训练排序模型。X 必须按 FeatureColumns 列序构建。
func (r *Ranker) Fit(X [][]float64, y []float64, group []int) error {
	return r.backend.Fit(X, y, group)
}

// Predict 批量打分，输出顺序与输入一致。
func (r *Ranker) Predict(X [][]float64) ([]float64, error) {
	return r.backend.Predict(X)
}

// FitRows 是训练入口的便捷封装：样本直接进，矩阵转换在内部完成。
func (r *Ranker) FitRows(rows []FeatureRow) error {
	X, y, group := BuildMatrices(rows)
	return r.Fit(X, y, group)
}
