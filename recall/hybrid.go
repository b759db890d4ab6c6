package recall

import (
	"context"
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/searchkit/core"
)

// DefaultSemanticWeight 是语义分在融合总分中的默认权重。
const DefaultSemanticWeight = 0.5

// PairScore 是单个 query-item 对的双通道原始分。
type PairScore struct {
	Lexical  float64
	Semantic float64
}

// HybridRetriever 融合词法与语义两路检索：
// 各取 2*topK 候选，按通道做 min-max 归一化后加权求和。
// 语义通道缺席时（编码器不可用）自动退化为纯词法检索。
type HybridRetriever struct {
	lexical        Retriever
	semantic       Retriever // 可为 nil（降级模式）
	semanticWeight float64
	cache          *lru.Cache[string, []core.ScoredItem]
}

// HybridOption 配置混合检索器。
type HybridOption func(*HybridRetriever)

// WithSemanticWeight 覆盖语义分权重。
func WithSemanticWeight(w float64) HybridOption {
	return func(r *HybridRetriever) { r.semanticWeight = w }
}

// WithResultCache 启用检索结果 LRU 缓存。
func WithResultCache(size int) HybridOption {
	return func(r *HybridRetriever) {
		if c, err := lru.New[string, []core.ScoredItem](size); err == nil {
			r.cache = c
		}
	}
}

// NewHybridRetriever 构建混合检索器。lexical 必传，semantic 可为 nil。
func NewHybridRetriever(lexical, semantic Retriever, opts ...HybridOption) (*HybridRetriever, error) {
	if lexical == nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput,
			"hybrid retriever: lexical retriever is required")
	}
	r := &HybridRetriever{
		lexical:        lexical,
		semantic:       semantic,
		semanticWeight: DefaultSemanticWeight,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *HybridRetriever) Name() string { return core.SourceHybrid }

// SemanticEnabled 报告语义通道是否可用。
// 特征构建方据此决定 semantic_score 的取值来源。
func (r *HybridRetriever) SemanticEnabled() bool { return r.semantic != nil }

// Retrieve 返回融合后的 topK 候选，分数降序、同分按 ItemID 升序。
func (r *HybridRetriever) Retrieve(ctx context.Context, text string, topK int) ([]core.ScoredItem, error) {
	if topK <= 0 {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput,
			"hybrid retriever: topK must be positive")
	}

	cacheKey := fmt.Sprintf("%d:%s", topK, text)
	if r.cache != nil {
		if hit, ok := r.cache.Get(cacheKey); ok {
			return hit, nil
		}
	}

	// 1. 双通道并发取 2*topK，给融合留出余量
	fetchK := topK * 2
	var lexHits, semHits []core.ScoredItem
	eg, ectx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		lexHits, err = r.lexical.Query(ectx, text, fetchK)
		return err
	})
	if r.semantic != nil {
		eg.Go(func() error {
			var err error
			semHits, err = r.semantic.Query(ectx, text, fetchK)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// 2. 按 ItemID 合并，未命中的通道计 0 分
	lexRaw := make(map[int64]float64, len(lexHits))
	semRaw := make(map[int64]float64, len(semHits))
	var order []int64
	seen := make(map[int64]bool)
	for _, h := range lexHits {
		lexRaw[h.ItemID] = h.Score
		if !seen[h.ItemID] {
			seen[h.ItemID] = true
			order = append(order, h.ItemID)
		}
	}
	for _, h := range semHits {
		semRaw[h.ItemID] = h.Score
		if !seen[h.ItemID] {
			seen[h.ItemID] = true
			order = append(order, h.ItemID)
		}
	}
	if len(order) == 0 {
		return nil, nil
	}

	// 3. 各通道 min-max 归一化后加权求和
	lexNorm := minMaxNormalize(order, lexRaw)
	semNorm := minMaxNormalize(order, semRaw)
	fused := make([]core.ScoredItem, 0, len(order))
	for _, id := range order {
		fused = append(fused, core.ScoredItem{
			ItemID: id,
			Score:  lexNorm[id] + r.semanticWeight*semNorm[id],
			Source: core.SourceHybrid,
		})
	}
	sort.Slice(fused, func(a, b int) bool {
		if fused[a].Score != fused[b].Score {
			return fused[a].Score > fused[b].Score
		}
		return fused[a].ItemID < fused[b].ItemID
	})
	if topK > len(fused) {
		topK = len(fused)
	}
	fused = fused[:topK]

	if r.cache != nil {
		r.cache.Add(cacheKey, fused)
	}
	return fused, nil
}

// PairScores 返回每个候选的双通道原始分。
// 语义通道不可用时 Semantic 恒为 0.0。
func (r *HybridRetriever) PairScores(ctx context.Context, text string, itemIDs []int64) (map[int64]PairScore, error) {
	out := make(map[int64]PairScore, len(itemIDs))
	for _, id := range itemIDs {
		lex, err := r.lexical.ScorePair(ctx, text, id)
		if err != nil {
			return nil, err
		}
		var sem float64
		if r.semantic != nil {
			sem, err = r.semantic.ScorePair(ctx, text, id)
			if err != nil {
				return nil, err
			}
		}
		out[id] = PairScore{Lexical: lex, Semantic: sem}
	}
	return out, nil
}

// minMaxNormalize 把 ids 上的原始分归一化到 [0,1]。
// 分母带 1e-6 防止全同分时除零。
func minMaxNormalize(ids []int64, raw map[int64]float64) map[int64]float64 {
	lo, hi := raw[ids[0]], raw[ids[0]]
	for _, id := range ids {
		s := raw[id]
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	denom := hi - lo + 1e-6
	out := make(map[int64]float64, len(ids))
	for _, id := range ids {
		out[id] = (raw[id] - lo) / denom
	}
	return out
}
