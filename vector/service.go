package vector

import (
	"context"

	"github.com/rushteam/searchkit/core"
)

// AnnService 把 AnnIndex 适配为 core.VectorService，
// 负责把索引下标翻译为物品 ID。ids 与索引构建时的向量行一一对应。
type AnnService struct {
	index *AnnIndex
	ids   []int64
}

// NewAnnService 构建向量服务。ids 长度必须与索引向量数一致。
func NewAnnService(index *AnnIndex, ids []int64) (*AnnService, error) {
	if index == nil || len(ids) != index.Len() {
		return nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput,
			"ann service: ids must match index rows")
	}
	return &AnnService{index: index, ids: ids}, nil
}

func (s *AnnService) Search(_ context.Context, req *core.VectorSearchRequest) (*core.VectorSearchResult, error) {
	if req == nil || len(req.Vector) == 0 {
		return nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput,
			"ann service: empty query vector")
	}
	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}
	scores, indices, err := s.index.Search([][]float64{req.Vector}, topK)
	if err != nil {
		return nil, err
	}
	res := &core.VectorSearchResult{Items: make([]core.VectorSearchItem, 0, len(indices[0]))}
	for i, idx := range indices[0] {
		res.Items = append(res.Items, core.VectorSearchItem{ID: s.ids[idx], Score: scores[0][i]})
	}
	return res, nil
}

func (s *AnnService) Close() error { return nil }
