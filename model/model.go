// Package model 提供排序模型：本地随机森林回归器与远程排序服务客户端。
package model

// TrainableRanker 是排序模型的最小抽象：特征矩阵进，分数出。
// 具体实现可以是本地模型（随机森林）或远程服务（GBDT/XGBoost）。
//
// group 是 learning-to-rank 的分组信息：每个元素是一个 query 的样本数，
// 其总和必须等于样本数。pointwise 模型可以忽略它。
type TrainableRanker interface {
	Name() string
	Fit(X [][]float64, y []float64, group []int) error
	Predict(X [][]float64) ([]float64, error)
}
