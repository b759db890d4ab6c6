package core

import "context"

// VectorService 是向量检索服务的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（vector）实现
//   - 只包含 Search，专注召回场景
//
// 实现：
//   - vector.AnnService 基于进程内 ANN 索引实现此接口
//   - 外部向量数据库也可以实现此接口
type VectorService interface {
	// Search 向量搜索
	Search(ctx context.Context, req *VectorSearchRequest) (*VectorSearchResult, error)

	// Close 关闭连接
	Close() error
}

// VectorSearchRequest 向量搜索请求
type VectorSearchRequest struct {
	// Vector 查询向量
	Vector []float64

	// TopK 返回 TopK 个最相似的结果
	TopK int

	// Metric 距离度量方式：cosine / inner_product
	Metric string
}

// VectorSearchItem 单个向量搜索结果项
type VectorSearchItem struct {
	// ID 物品 ID
	ID int64

	// Score 相似度分数
	Score float64
}

// VectorSearchResult 向量搜索结果（按相似度降序）
type VectorSearchResult struct {
	Items []VectorSearchItem
}

// ValidateVectorMetric 验证距离度量类型
func ValidateVectorMetric(metric string) bool {
	switch metric {
	case "cosine", "inner_product":
		return true
	default:
		return false
	}
}
