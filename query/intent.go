package query

import (
	"math"
	"sort"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/pkg/tfidf"
)

// DefaultIntentLabel 是未训练分类器的兜底意图：宽松放行到商品搜索。
const DefaultIntentLabel = "product_search"

// intentCodes 是意图标签到特征编码的映射，未知标签编码为 0。
var intentCodes = map[string]float64{
	"product_search": 0,
	"faq_search":     1,
	"local_search":   2,
}

// IntentCode 返回意图标签的数值编码，供特征构建使用。
func IntentCode(label string) float64 {
	return intentCodes[label]
}

// IntentClassifier 是 TF-IDF (unigram+bigram) + softmax 线性分类器。
//
// Fit 之前 Predict 对每个输入返回 FallbackLabel（宽松兜底，不是错误）。
// 训练为全量批次梯度下降，固定迭代次数，结果确定。
type IntentClassifier struct {
	// FallbackLabel 是未训练时的默认意图，显式参数而非隐式全局。
	FallbackLabel string

	// MaxFeatures 限制 TF-IDF 词表大小。
	MaxFeatures int

	// Epochs / LearningRate / L2 是训练超参数。
	Epochs       int
	LearningRate float64
	L2           float64

	vectorizer *tfidf.Vectorizer
	classes    []string    // 类别标签（字典序）
	weights    [][]float64 // [类别][特征]
	bias       []float64
	fitted     bool
}

// NewIntentClassifier 创建意图分类器，兜底意图默认 product_search。
func NewIntentClassifier() *IntentClassifier {
	return &IntentClassifier{
		FallbackLabel: DefaultIntentLabel,
		MaxFeatures:   800,
		Epochs:        200,
		LearningRate:  0.5,
		L2:            1e-4,
	}
}

// Fitted 报告分类器是否已训练。
func (c *IntentClassifier) Fitted() bool { return c.fitted }

// Fit 在 (texts, labels) 上训练分类器。
// texts 与 labels 长度不一致或为空时返回 INVALID_INPUT。
func (c *IntentClassifier) Fit(texts []string, labels []string) error {
	if len(texts) == 0 || len(texts) != len(labels) {
		return core.NewDomainError(core.ModuleQuery, core.ErrorCodeInvalidInput,
			"intent: texts and labels must be non-empty and of equal length")
	}

	// 1. 类别集合（字典序，保证确定性）
	classSet := make(map[string]int)
	for _, lbl := range labels {
		classSet[lbl] = 0
	}
	c.classes = make([]string, 0, len(classSet))
	for lbl := range classSet {
		c.classes = append(c.classes, lbl)
	}
	sort.Strings(c.classes)
	for i, lbl := range c.classes {
		classSet[lbl] = i
	}

	// 2. 向量化
	c.vectorizer = tfidf.NewVectorizer()
	c.vectorizer.MaxFeatures = c.MaxFeatures
	vecs := c.vectorizer.FitTransform(texts)
	numFeat := c.vectorizer.NumFeatures()
	numClass := len(c.classes)

	c.weights = make([][]float64, numClass)
	for k := range c.weights {
		c.weights[k] = make([]float64, numFeat)
	}
	c.bias = make([]float64, numClass)

	// 3. softmax 回归，全量批次梯度下降
	n := float64(len(texts))
	for epoch := 0; epoch < c.Epochs; epoch++ {
		gradW := make([][]float64, numClass)
		for k := range gradW {
			gradW[k] = make([]float64, numFeat)
		}
		gradB := make([]float64, numClass)

		for i, vec := range vecs {
			probs := c.softmax(vec)
			target := classSet[labels[i]]
			for k := 0; k < numClass; k++ {
				delta := probs[k]
				if k == target {
					delta -= 1
				}
				gradB[k] += delta
				for idx, val := range vec {
					gradW[k][idx] += delta * val
				}
			}
		}

		for k := 0; k < numClass; k++ {
			c.bias[k] -= c.LearningRate * gradB[k] / n
			for j := 0; j < numFeat; j++ {
				c.weights[k][j] -= c.LearningRate * (gradW[k][j]/n + c.L2*c.weights[k][j])
			}
		}
	}

	c.fitted = true
	return nil
}

// Predict 返回每个查询的意图标签。未训练时全部返回 FallbackLabel。
func (c *IntentClassifier) Predict(queries []string) []string {
	out := make([]string, len(queries))
	if !c.fitted {
		fallback := c.FallbackLabel
		if fallback == "" {
			fallback = DefaultIntentLabel
		}
		for i := range out {
			out[i] = fallback
		}
		return out
	}
	for i, q := range queries {
		vec := c.vectorizer.Transform(q)
		probs := c.softmax(vec)
		best := 0
		for k := 1; k < len(probs); k++ {
			if probs[k] > probs[best] {
				best = k
			}
		}
		out[i] = c.classes[best]
	}
	return out
}

// softmax 计算各类别概率（数值稳定版本）。
func (c *IntentClassifier) softmax(vec tfidf.Vector) []float64 {
	logits := make([]float64, len(c.classes))
	for k := range c.classes {
		z := c.bias[k]
		for idx, val := range vec {
			z += c.weights[k][idx] * val
		}
		logits[k] = z
	}
	maxZ := logits[0]
	for _, z := range logits[1:] {
		if z > maxZ {
			maxZ = z
		}
	}
	var sum float64
	for k, z := range logits {
		logits[k] = math.Exp(z - maxZ)
		sum += logits[k]
	}
	for k := range logits {
		logits[k] /= sum
	}
	return logits
}
