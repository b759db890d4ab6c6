package recall

import (
	"context"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/vector"
)

// DualEncoderRetriever 是双塔式语义检索：
// 物品塔离线编码进 IVF ANN 索引，查询塔在线编码后走近邻检索。
// 与 SemanticRetriever 的区别在于近邻计算始终由 ANN 索引承担。
type DualEncoderRetriever struct {
	*SemanticRetriever
}

// NewDualEncoderRetriever 编码全量物品并构建 ANN 索引。
// annOpts 透传给索引（度量、nlist、nprobe）。
func NewDualEncoderRetriever(ctx context.Context, encoder core.Encoder, catalog *core.Catalog, annOpts ...vector.Option) (*DualEncoderRetriever, error) {
	base, err := NewSemanticRetriever(ctx, encoder, catalog)
	if err != nil {
		return nil, err
	}

	idx, err := vector.NewAnnIndex(base.embs, annOpts...)
	if err != nil {
		return nil, err
	}
	svc, err := vector.NewAnnService(idx, base.ids)
	if err != nil {
		return nil, err
	}

	base.vectorSvc = svc
	base.source = core.SourceDualEncoder
	return &DualEncoderRetriever{SemanticRetriever: base}, nil
}

var _ Retriever = (*DualEncoderRetriever)(nil)
