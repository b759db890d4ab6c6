package recall

import (
	"context"
	"encoding/json"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/searchkit/core"
)

// encodeBatchSize 控制建库时单次 embedding 请求的文本数。
const encodeBatchSize = 32

// SemanticRetriever 基于 embedding 的语义检索。
// 构建时对全量物品文本编码，查询时按余弦相似度排序；
// 可选地把查询向量缓存到 core.Store，把近邻计算交给 core.VectorService。
type SemanticRetriever struct {
	encoder   core.Encoder
	cache     core.Store
	cacheTTL  int
	vectorSvc core.VectorService
	source    string

	ids  []int64
	embs [][]float64
	byID map[int64][]float64
}

// SemanticOption 配置语义检索器的可选依赖。
type SemanticOption func(*SemanticRetriever)

// WithEmbeddingCache 启用查询向量缓存，ttlSeconds <= 0 表示不过期。
func WithEmbeddingCache(s core.Store, ttlSeconds int) SemanticOption {
	return func(r *SemanticRetriever) {
		r.cache = s
		r.cacheTTL = ttlSeconds
	}
}

// WithVectorService 把近邻检索交给外部向量服务（如 IVF ANN 索引）。
func WithVectorService(svc core.VectorService) SemanticOption {
	return func(r *SemanticRetriever) { r.vectorSvc = svc }
}

// NewSemanticRetriever 构建语义检索器。
// 先对编码器做一次能力探测：探测失败返回 CAPABILITY_UNAVAILABLE，
// 调用方应降级到纯词法检索。
func NewSemanticRetriever(ctx context.Context, encoder core.Encoder, catalog *core.Catalog, opts ...SemanticOption) (*SemanticRetriever, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput,
			"semantic retriever: empty catalog")
	}
	if err := core.ProbeEncoder(ctx, encoder); err != nil {
		return nil, err
	}

	r := &SemanticRetriever{
		encoder: encoder,
		source:  core.SourceSemantic,
		ids:     make([]int64, catalog.Len()),
		embs:    make([][]float64, catalog.Len()),
		byID:    make(map[int64][]float64, catalog.Len()),
	}
	for _, opt := range opts {
		opt(r)
	}

	// 分批并发编码，写入预分配切片保证顺序稳定
	texts := catalog.Texts()
	eg, ectx := errgroup.WithContext(ctx)
	for start := 0; start < len(texts); start += encodeBatchSize {
		start := start
		end := start + encodeBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		eg.Go(func() error {
			vecs, err := r.encoder.Encode(ectx, texts[start:end])
			if err != nil {
				return err
			}
			for i, v := range vecs {
				r.embs[start+i] = normalize(v)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, core.ErrEncoderUnavailable
	}

	for i, it := range catalog.Items() {
		r.ids[i] = it.ItemID
		r.byID[it.ItemID] = r.embs[i]
	}
	return r, nil
}

func (r *SemanticRetriever) Name() string { return r.source }

func (r *SemanticRetriever) Query(ctx context.Context, text string, topK int) ([]core.ScoredItem, error) {
	if topK <= 0 {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput,
			"semantic retriever: topK must be positive")
	}

	qv, err := r.queryVector(ctx, text)
	if err != nil {
		return nil, err
	}

	if r.vectorSvc != nil {
		res, err := r.vectorSvc.Search(ctx, &core.VectorSearchRequest{
			Vector: qv,
			TopK:   topK,
			Metric: "cosine",
		})
		if err != nil {
			return nil, err
		}
		out := make([]core.ScoredItem, 0, len(res.Items))
		for _, hit := range res.Items {
			out = append(out, core.ScoredItem{ItemID: hit.ID, Score: hit.Score, Source: r.source})
		}
		return out, nil
	}

	// 暴力余弦检索
	scored := make([]core.ScoredItem, len(r.embs))
	for i, dv := range r.embs {
		scored[i] = core.ScoredItem{ItemID: r.ids[i], Score: dot(qv, dv), Source: r.source}
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})
	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

func (r *SemanticRetriever) ScorePair(ctx context.Context, text string, itemID int64) (float64, error) {
	dv, ok := r.byID[itemID]
	if !ok {
		return 0, nil
	}
	qv, err := r.queryVector(ctx, text)
	if err != nil {
		return 0, err
	}
	return dot(qv, dv), nil
}

// queryVector 编码查询文本，命中缓存时跳过远程调用。
func (r *SemanticRetriever) queryVector(ctx context.Context, text string) ([]float64, error) {
	key := "emb:" + r.encoder.Name() + ":" + text
	if r.cache != nil {
		if raw, err := r.cache.Get(ctx, key); err == nil {
			var v []float64
			if json.Unmarshal(raw, &v) == nil && len(v) > 0 {
				return v, nil
			}
		}
	}

	vecs, err := r.encoder.Encode(ctx, []string{text})
	if err != nil || len(vecs) != 1 {
		return nil, core.ErrEncoderUnavailable
	}
	qv := normalize(vecs[0])

	if r.cache != nil {
		if raw, err := json.Marshal(qv); err == nil {
			_ = r.cache.Set(ctx, key, raw, r.cacheTTL)
		}
	}
	return qv, nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(v []float64) []float64 {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

var _ Retriever = (*SemanticRetriever)(nil)
