package tfidf

import (
	"math"
	"testing"
)

func TestVectorizerCosine(t *testing.T) {
	docs := []string{
		"vegan sushi bar",
		"pepperoni pizza",
		"sushi and ramen",
	}
	v := NewVectorizer()
	vecs := v.FitTransform(docs)

	q := v.Transform("vegan sushi")

	// 完全匹配的文档应得到最高分
	s0 := Dot(q, vecs[0])
	s1 := Dot(q, vecs[1])
	s2 := Dot(q, vecs[2])
	if !(s0 > s2 && s2 > s1) {
		t.Fatalf("期望 doc0 > doc2 > doc1，实际 %.4f %.4f %.4f", s0, s2, s1)
	}
	if s1 != 0 {
		t.Errorf("无共同词项的文档分数应为 0，实际 %.4f", s1)
	}
}

func TestVectorizerNormalized(t *testing.T) {
	v := NewVectorizer()
	v.Fit([]string{"a b c", "b c d"})

	vec := v.Transform("a b c")
	var norm float64
	for _, w := range vec {
		norm += w * w
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
		t.Errorf("向量应 L2 归一化，norm=%.6f", math.Sqrt(norm))
	}

	// 自相似度为 1
	if s := Dot(vec, vec); math.Abs(s-1.0) > 1e-9 {
		t.Errorf("自相似度应为 1.0，实际 %.6f", s)
	}
}

func TestVectorizerBigrams(t *testing.T) {
	v := NewVectorizer()
	v.Fit([]string{"new york pizza", "california roll"})

	if _, ok := v.vocab["new york"]; !ok {
		t.Error("词表应包含 bigram \"new york\"")
	}
}

func TestVectorizerMaxFeatures(t *testing.T) {
	v := NewVectorizer()
	v.MaxFeatures = 3
	v.Fit([]string{"a b", "a c", "a d"})

	if v.NumFeatures() != 3 {
		t.Errorf("词表应被截断为 3，实际 %d", v.NumFeatures())
	}
	// "a" 的 df 最高，必然保留
	if _, ok := v.vocab["a"]; !ok {
		t.Error("高频词 a 应被保留")
	}
}

func TestTransformUnknownTerms(t *testing.T) {
	v := NewVectorizer()
	v.Fit([]string{"sushi ramen"})

	vec := v.Transform("pizza pasta")
	if len(vec) != 0 {
		t.Errorf("全词表外文档应得到空向量，实际 %d 项", len(vec))
	}
}
