// Package tfidf 提供 unigram+bigram 的 TF-IDF 稀疏向量化器，
// 供词法检索与意图分类共用。向量做 L2 归一化，点积即余弦相似度。
package tfidf

import (
	"math"
	"sort"
	"strings"
)

// Vector 是稀疏特征向量：特征下标 -> 权重（已 L2 归一化）。
type Vector map[int]float64

// Dot 计算两个稀疏向量的点积。两者均已归一化时等价于余弦相似度。
func Dot(a, b Vector) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	var sum float64
	for idx, va := range a {
		if vb, ok := b[idx]; ok {
			sum += va * vb
		}
	}
	return sum
}

// Vectorizer 是 TF-IDF 向量化器。
// 在语料上 Fit 一次之后不可变，Transform 可被并发调用。
type Vectorizer struct {
	// NgramMax 为 1 时仅 unigram，为 2 时 unigram+bigram。默认 2。
	NgramMax int

	// MaxFeatures 限制词表大小：按文档频率取 TopN（0 表示不限制）。
	MaxFeatures int

	vocab  map[string]int
	idf    []float64
	fitted bool
}

// NewVectorizer 创建 unigram+bigram 向量化器。
func NewVectorizer() *Vectorizer {
	return &Vectorizer{NgramMax: 2}
}

// Fitted 报告是否已在语料上拟合。
func (v *Vectorizer) Fitted() bool { return v.fitted }

// NumFeatures 返回词表大小。
func (v *Vectorizer) NumFeatures() int { return len(v.vocab) }

// Fit 在语料上构建词表与 IDF。
// IDF 使用平滑公式 ln((1+n)/(1+df)) + 1，与常见实现保持一致。
func (v *Vectorizer) Fit(docs []string) {
	if v.NgramMax <= 0 {
		v.NgramMax = 2
	}

	// 1. 统计文档频率
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range v.terms(doc) {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}

	// 2. 词表截断：按 df 降序、term 字典序升序，保证确定性
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms) // 词表下标按字典序分配，与语料顺序无关

	// 3. 构建词表与 IDF
	n := float64(len(docs))
	v.vocab = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for idx, term := range terms {
		v.vocab[term] = idx
		v.idf[idx] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	v.fitted = true
}

// Transform 将单个文档转为 L2 归一化的 TF-IDF 稀疏向量。
// 词表外的词被忽略；全部词表外时返回空向量。
func (v *Vectorizer) Transform(doc string) Vector {
	vec := make(Vector)
	if !v.fitted {
		return vec
	}
	for _, term := range v.terms(doc) {
		if idx, ok := v.vocab[term]; ok {
			vec[idx] += v.idf[idx]
		}
	}
	var norm float64
	for _, w := range vec {
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

// FitTransform 在语料上拟合并返回每个文档的向量（与输入同序）。
func (v *Vectorizer) FitTransform(docs []string) []Vector {
	v.Fit(docs)
	out := make([]Vector, len(docs))
	for i, doc := range docs {
		out[i] = v.Transform(doc)
	}
	return out
}

// terms 产出文档的 unigram 与（可选）bigram 词项。
func (v *Vectorizer) terms(doc string) []string {
	tokens := strings.Fields(strings.ToLower(doc))
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, len(tokens)*2)
	out = append(out, tokens...)
	if v.NgramMax >= 2 {
		for i := 0; i+1 < len(tokens); i++ {
			out = append(out, tokens[i]+" "+tokens[i+1])
		}
	}
	return out
}
