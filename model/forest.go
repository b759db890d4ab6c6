package model

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/rushteam/searchkit/core"
)

// ForestRanker 是随机森林回归器，作为远程排序服务缺席时的本地兜底。
// 固定种子 + 确定性分裂选择，同一份数据训练出的模型预测完全一致。
type ForestRanker struct {
	NumTrees        int // 默认 120
	MaxDepth        int // 0 表示不限
	MinSamplesSplit int // 默认 2
	Seed            int64

	trees  []*treeNode
	width  int
	fitted bool
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

// NewForestRanker 使用默认超参构建森林：120 棵树，种子 42。
func NewForestRanker() *ForestRanker {
	return &ForestRanker{
		NumTrees:        120,
		MinSamplesSplit: 2,
		Seed:            42,
	}
}

func (f *ForestRanker) Name() string { return "forest" }

// Fit 训练森林。group 对 pointwise 回归无意义，仅做一致性校验。
func (f *ForestRanker) Fit(X [][]float64, y []float64, group []int) error {
	if err := validateTrainingSet(X, y, group); err != nil {
		return err
	}
	if f.NumTrees <= 0 {
		f.NumTrees = 120
	}
	if f.MinSamplesSplit < 2 {
		f.MinSamplesSplit = 2
	}

	n := len(X)
	f.trees = make([]*treeNode, f.NumTrees)
	for t := 0; t < f.NumTrees; t++ {
		// 每棵树独立的确定性 bootstrap 采样
		rng := rand.New(rand.NewSource(f.Seed + int64(t)))
		indices := make([]int, n)
		for i := range indices {
			indices[i] = rng.Intn(n)
		}
		f.trees[t] = f.buildTree(X, y, indices, 0)
	}
	f.width = len(X[0])
	f.fitted = true
	return nil
}

func (f *ForestRanker) Predict(X [][]float64) ([]float64, error) {
	if !f.fitted {
		return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeCapabilityUnavailable,
			"forest: model not fitted")
	}
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != f.width {
			return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput,
				fmt.Sprintf("forest: feature width %d does not match fitted width %d", len(row), f.width))
		}
		var sum float64
		for _, tree := range f.trees {
			sum += predictTree(tree, row)
		}
		out[i] = sum / float64(len(f.trees))
	}
	return out, nil
}

func (f *ForestRanker) buildTree(X [][]float64, y []float64, indices []int, depth int) *treeNode {
	mean, variance := meanVariance(y, indices)
	if len(indices) < f.MinSamplesSplit || variance == 0 ||
		(f.MaxDepth > 0 && depth >= f.MaxDepth) {
		return &treeNode{leaf: true, value: mean}
	}

	feature, threshold, ok := bestSplit(X, y, indices)
	if !ok {
		return &treeNode{leaf: true, value: mean}
	}

	var left, right []int
	for _, i := range indices {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &treeNode{leaf: true, value: mean}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      f.buildTree(X, y, left, depth+1),
		right:     f.buildTree(X, y, right, depth+1),
	}
}

// bestSplit 在全部特征上寻找方差缩减最大的分裂点。
// 特征序号与阈值都按固定顺序扫描，保证结果确定。
func bestSplit(X [][]float64, y []float64, indices []int) (int, float64, bool) {
	numFeatures := len(X[indices[0]])
	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	_, totalVar := meanVariance(y, indices)
	total := float64(len(indices))

	sorted := make([]int, len(indices))
	for feature := 0; feature < numFeatures; feature++ {
		copy(sorted, indices)
		sort.SliceStable(sorted, func(a, b int) bool {
			return X[sorted[a]][feature] < X[sorted[b]][feature]
		})

		// 前缀和扫描每个相邻分界
		var leftSum, leftSq float64
		var rightSum, rightSq float64
		for _, i := range sorted {
			rightSum += y[i]
			rightSq += y[i] * y[i]
		}
		for k := 0; k < len(sorted)-1; k++ {
			yi := y[sorted[k]]
			leftSum += yi
			leftSq += yi * yi
			rightSum -= yi
			rightSq -= yi * yi

			a, b := X[sorted[k]][feature], X[sorted[k+1]][feature]
			if a == b {
				continue
			}
			nl := float64(k + 1)
			nr := total - nl
			varLeft := leftSq/nl - (leftSum/nl)*(leftSum/nl)
			varRight := rightSq/nr - (rightSum/nr)*(rightSum/nr)
			gain := totalVar - (nl/total)*varLeft - (nr/total)*varRight
			if gain > bestGain+1e-12 {
				bestGain = gain
				bestFeature = feature
				bestThreshold = (a + b) / 2
			}
		}
	}
	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func meanVariance(y []float64, indices []int) (float64, float64) {
	if len(indices) == 0 {
		return 0, 0
	}
	var sum, sq float64
	for _, i := range indices {
		sum += y[i]
		sq += y[i] * y[i]
	}
	n := float64(len(indices))
	mean := sum / n
	variance := sq/n - mean*mean
	if variance < 0 {
		variance = 0 // 浮点误差
	}
	return mean, variance
}

func predictTree(node *treeNode, row []float64) float64 {
	for !node.leaf {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

// validateTrainingSet 校验矩阵形状与分组一致性。
func validateTrainingSet(X [][]float64, y []float64, group []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput,
			"training set: X and y must be non-empty and equal length")
	}
	width := len(X[0])
	for _, row := range X {
		if len(row) != width {
			return core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput,
				"training set: inconsistent feature width")
		}
	}
	if len(group) > 0 {
		sum := 0
		for _, g := range group {
			if g <= 0 {
				return core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput,
					"training set: group sizes must be positive")
			}
			sum += g
		}
		if sum != len(X) {
			return core.NewDomainError(core.ModuleRank, core.ErrorCodeInvalidInput,
				"training set: group sizes must sum to sample count")
		}
	}
	return nil
}

var _ TrainableRanker = (*ForestRanker)(nil)
