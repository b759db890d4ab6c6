// Package vector 提供进程内的近似最近邻索引（IVF-Flat）与向量服务适配。
package vector

import (
	"fmt"
	"math"
	"sort"

	"github.com/rushteam/searchkit/core"
)

// 距离度量方式。
const (
	MetricCosine       = "cosine"
	MetricInnerProduct = "inner_product"
)

// AnnIndex 是 IVF-Flat 近似最近邻索引：
// 构建期用 k-means 把向量分到 NList 个倒排桶，检索时只扫描最近的 NProbe 个桶。
//
// 索引是构建期的不可变快照，不支持增量插入/删除；
// 召回是近似的（可能漏掉桶外的近邻），但对固定的索引与查询结果确定。
type AnnIndex struct {
	dim    int
	metric string
	nlist  int
	nprobe int

	vectors   [][]float64 // cosine 度量下存归一化副本
	centroids [][]float64
	lists     [][]int // 桶 -> 向量下标（升序）
}

// Option 配置 AnnIndex。
type Option func(*AnnIndex)

// WithMetric 设置度量方式：cosine（默认）或 inner_product。
func WithMetric(metric string) Option {
	return func(idx *AnnIndex) { idx.metric = metric }
}

// WithNList 设置倒排桶数（默认 sqrt(n)）。
func WithNList(nlist int) Option {
	return func(idx *AnnIndex) { idx.nlist = nlist }
}

// WithNProbe 设置检索时探测的桶数（默认 nlist/4，至少 1）。
func WithNProbe(nprobe int) Option {
	return func(idx *AnnIndex) { idx.nprobe = nprobe }
}

// NewAnnIndex 从 物品数×维度 矩阵构建索引。
func NewAnnIndex(vectors [][]float64, opts ...Option) (*AnnIndex, error) {
	if len(vectors) == 0 {
		return nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput,
			"ann: empty vector matrix")
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput,
			"ann: zero-dimension vectors")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput,
				fmt.Sprintf("ann: vector %d has dim %d, expected %d", i, len(v), dim))
		}
	}

	idx := &AnnIndex{dim: dim, metric: MetricCosine}
	for _, opt := range opts {
		opt(idx)
	}
	if !core.ValidateVectorMetric(idx.metric) {
		return nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput,
			fmt.Sprintf("ann: unsupported metric %q", idx.metric))
	}

	n := len(vectors)
	if idx.nlist <= 0 {
		idx.nlist = int(math.Sqrt(float64(n)))
	}
	if idx.nlist < 1 {
		idx.nlist = 1
	}
	if idx.nlist > n {
		idx.nlist = n
	}
	if idx.nprobe <= 0 {
		idx.nprobe = (idx.nlist + 3) / 4
	}
	if idx.nprobe > idx.nlist {
		idx.nprobe = idx.nlist
	}

	// 存储向量（cosine 度量下归一化，之后点积即余弦相似度）
	idx.vectors = make([][]float64, n)
	for i, v := range vectors {
		cp := make([]float64, dim)
		copy(cp, v)
		if idx.metric == MetricCosine {
			normalize(cp)
		}
		idx.vectors[i] = cp
	}

	idx.train()
	return idx, nil
}

// Dim 返回索引的向量维度。
func (idx *AnnIndex) Dim() int { return idx.dim }

// Metric 返回索引的度量方式。
func (idx *AnnIndex) Metric() string { return idx.metric }

// Len 返回索引内的向量数。
func (idx *AnnIndex) Len() int { return len(idx.vectors) }

// train 执行确定性 k-means：均匀抽样初始化，固定迭代轮数。
func (idx *AnnIndex) train() {
	n := len(idx.vectors)

	idx.centroids = make([][]float64, idx.nlist)
	for k := 0; k < idx.nlist; k++ {
		src := idx.vectors[k*n/idx.nlist]
		c := make([]float64, idx.dim)
		copy(c, src)
		idx.centroids[k] = c
	}

	assign := make([]int, n)
	const iterations = 10
	for iter := 0; iter < iterations; iter++ {
		// 1. 分配：每个向量归入欧氏距离最近的质心
		for i, v := range idx.vectors {
			best, bestDist := 0, math.Inf(1)
			for k, c := range idx.centroids {
				if d := sqDist(v, c); d < bestDist {
					best, bestDist = k, d
				}
			}
			assign[i] = best
		}
		// 2. 更新：质心移动到簇均值（空簇保持原位）
		counts := make([]int, idx.nlist)
		sums := make([][]float64, idx.nlist)
		for k := range sums {
			sums[k] = make([]float64, idx.dim)
		}
		for i, v := range idx.vectors {
			k := assign[i]
			counts[k]++
			for j, x := range v {
				sums[k][j] += x
			}
		}
		for k := range idx.centroids {
			if counts[k] == 0 {
				continue
			}
			for j := range idx.centroids[k] {
				idx.centroids[k][j] = sums[k][j] / float64(counts[k])
			}
		}
	}

	idx.lists = make([][]int, idx.nlist)
	for i := range idx.vectors {
		k := assign[i]
		idx.lists[k] = append(idx.lists[k], i)
	}
}

// Search 为每个查询向量返回 TopK 近邻的 (分数, 下标)。
// 分数按度量相似度降序；并列时下标小者在前，保证确定性。
// 候选不足 TopK 时返回实际数量。
func (idx *AnnIndex) Search(queries [][]float64, topK int) ([][]float64, [][]int, error) {
	if topK <= 0 {
		return nil, nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput,
			"ann: topK must be positive")
	}
	scores := make([][]float64, len(queries))
	indices := make([][]int, len(queries))
	for qi, q := range queries {
		if len(q) != idx.dim {
			return nil, nil, core.NewDomainError(core.ModuleVector, core.ErrorCodeInvalidInput,
				fmt.Sprintf("ann: query %d has dim %d, expected %d", qi, len(q), idx.dim))
		}
		scores[qi], indices[qi] = idx.searchOne(q, topK)
	}
	return scores, indices, nil
}

func (idx *AnnIndex) searchOne(q []float64, topK int) ([]float64, []int) {
	qv := q
	if idx.metric == MetricCosine {
		qv = make([]float64, len(q))
		copy(qv, q)
		normalize(qv)
	}

	// 1. 按与质心的相似度选出 NProbe 个桶
	type ranked struct {
		k   int
		sim float64
	}
	order := make([]ranked, idx.nlist)
	for k, c := range idx.centroids {
		order[k] = ranked{k: k, sim: dot(qv, c)}
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].sim != order[j].sim {
			return order[i].sim > order[j].sim
		}
		return order[i].k < order[j].k
	})

	// 2. 精确扫描候选桶
	type hit struct {
		idx int
		sim float64
	}
	var hits []hit
	for p := 0; p < idx.nprobe; p++ {
		for _, i := range idx.lists[order[p].k] {
			hits = append(hits, hit{idx: i, sim: dot(qv, idx.vectors[i])})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].sim != hits[j].sim {
			return hits[i].sim > hits[j].sim
		}
		return hits[i].idx < hits[j].idx
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}

	outScores := make([]float64, len(hits))
	outIdx := make([]int, len(hits))
	for i, h := range hits {
		outScores[i] = h.sim
		outIdx[i] = h.idx
	}
	return outScores, outIdx
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func normalize(v []float64) {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] /= norm
	}
}
