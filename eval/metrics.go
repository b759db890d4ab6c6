// Package eval 提供排序质量评估：NDCG、MRR 及批量评估入口。
package eval

import (
	"math"
	"sort"

	"github.com/rushteam/searchkit/core"
)

// DCGAtK 计算前 k 位的折损累计增益：sum((2^rel - 1) / log2(i + 2))。
// rels 是按排序位次排列的相关性。
func DCGAtK(rels []float64, k int) float64 {
	if k > len(rels) {
		k = len(rels)
	}
	var dcg float64
	for i := 0; i < k; i++ {
		dcg += (math.Pow(2, rels[i]) - 1) / math.Log2(float64(i)+2)
	}
	return dcg
}

// NDCGAtK 计算归一化 DCG。理想 DCG 为 0 时返回 0（全不相关的查询不计分）。
func NDCGAtK(rels []float64, k int) float64 {
	ideal := make([]float64, len(rels))
	copy(ideal, rels)
	sort.Sort(sort.Reverse(sort.Float64Slice(ideal)))

	idcg := DCGAtK(ideal, k)
	if idcg == 0 {
		return 0
	}
	return DCGAtK(rels, k) / idcg
}

// MRRAtK 返回前 k 位中第一个相关结果（rel > 0）的倒数排名，没有则为 0。
func MRRAtK(rels []float64, k int) float64 {
	if k > len(rels) {
		k = len(rels)
	}
	for i := 0; i < k; i++ {
		if rels[i] > 0 {
			return 1 / float64(i+1)
		}
	}
	return 0
}

// Metrics 是一次评估的聚合结果（按 query 求平均）。
type Metrics struct {
	NDCG float64
	MRR  float64
}

// EvaluatePredictions 按模型预测分对每个 query 的候选重排，
// 计算平均 NDCG@k 与 MRR@k。
// group 是每个 query 的样本数，总和必须等于样本数。
func EvaluatePredictions(yTrue, yPred []float64, group []int, k int) (Metrics, error) {
	if len(yTrue) != len(yPred) {
		return Metrics{}, core.NewDomainError(core.ModuleEval, core.ErrorCodeInvalidInput,
			"evaluate: yTrue and yPred must be equal length")
	}
	if k <= 0 {
		return Metrics{}, core.NewDomainError(core.ModuleEval, core.ErrorCodeInvalidInput,
			"evaluate: k must be positive")
	}
	sum := 0
	for _, g := range group {
		if g <= 0 {
			return Metrics{}, core.NewDomainError(core.ModuleEval, core.ErrorCodeInvalidInput,
				"evaluate: group sizes must be positive")
		}
		sum += g
	}
	if sum != len(yTrue) || len(group) == 0 {
		return Metrics{}, core.NewDomainError(core.ModuleEval, core.ErrorCodeInvalidInput,
			"evaluate: group sizes must sum to sample count")
	}

	var totalNDCG, totalMRR float64
	offset := 0
	for _, g := range group {
		trueRels := yTrue[offset : offset+g]
		preds := yPred[offset : offset+g]
		offset += g

		// 按预测分降序重排相关性，同分按原始顺序
		order := make([]int, g)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return preds[order[a]] > preds[order[b]]
		})
		ranked := make([]float64, g)
		for i, idx := range order {
			ranked[i] = trueRels[idx]
		}

		totalNDCG += NDCGAtK(ranked, k)
		totalMRR += MRRAtK(ranked, k)
	}

	n := float64(len(group))
	return Metrics{NDCG: totalNDCG / n, MRR: totalMRR / n}, nil
}
