package eval

import (
	"math"
	"testing"

	"github.com/rushteam/searchkit/core"
)

func TestDCGAtK(t *testing.T) {
	// (2^3-1)/log2(2) + (2^2-1)/log2(3) = 7 + 3/1.585
	got := DCGAtK([]float64{3, 2}, 2)
	want := 7 + 3/math.Log2(3)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("DCG = %.6f, 期望 %.6f", got, want)
	}
}

func TestNDCGPerfectOrdering(t *testing.T) {
	if got := NDCGAtK([]float64{3, 2, 0}, 3); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("完美排序 NDCG 应为 1.0，实际 %.6f", got)
	}
}

func TestNDCGWorseOrdering(t *testing.T) {
	got := NDCGAtK([]float64{0, 2, 3}, 3)
	if got <= 0 || got >= 1 {
		t.Errorf("逆序排列 NDCG 应在 (0,1)，实际 %.6f", got)
	}
}

func TestNDCGAllZeros(t *testing.T) {
	if got := NDCGAtK([]float64{0, 0, 0}, 3); got != 0 {
		t.Errorf("全零相关性 NDCG 应为 0，实际 %.6f", got)
	}
}

func TestMRRAtK(t *testing.T) {
	cases := []struct {
		rels []float64
		k    int
		want float64
	}{
		{[]float64{1, 0, 0}, 3, 1.0},
		{[]float64{0, 0, 1}, 3, 1.0 / 3},
		{[]float64{0, 0, 0}, 3, 0},
		{[]float64{0, 0, 1}, 2, 0}, // 相关结果在 k 之外
	}
	for _, c := range cases {
		if got := MRRAtK(c.rels, c.k); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("MRR@%d(%v) = %.4f, 期望 %.4f", c.k, c.rels, got, c.want)
		}
	}
}

func TestEvaluatePredictions(t *testing.T) {
	// 两个 query：第一个预测完美，第二个把相关结果排到第二位
	yTrue := []float64{3, 0, 2, 0}
	yPred := []float64{0.9, 0.1, 0.2, 0.8}
	group := []int{2, 2}

	m, err := EvaluatePredictions(yTrue, yPred, group, 2)
	if err != nil {
		t.Fatalf("评估失败: %v", err)
	}
	// q1: NDCG=1, MRR=1; q2: 相关结果在第 2 位 → MRR=0.5
	if math.Abs(m.MRR-0.75) > 1e-9 {
		t.Errorf("平均 MRR 应为 0.75，实际 %.4f", m.MRR)
	}
	if m.NDCG <= 0.5 || m.NDCG >= 1 {
		t.Errorf("平均 NDCG 应在 (0.5,1)，实际 %.4f", m.NDCG)
	}
}

func TestEvaluatePredictionsValidation(t *testing.T) {
	if _, err := EvaluatePredictions([]float64{1}, []float64{1, 2}, []int{1}, 3); !core.IsInvalidInput(err) {
		t.Error("长度不一致应返回 INVALID_INPUT")
	}
	if _, err := EvaluatePredictions([]float64{1, 2}, []float64{1, 2}, []int{1}, 3); !core.IsInvalidInput(err) {
		t.Error("group 总和不匹配应返回 INVALID_INPUT")
	}
	if _, err := EvaluatePredictions([]float64{1}, []float64{1}, []int{1}, 0); !core.IsInvalidInput(err) {
		t.Error("k<=0 应返回 INVALID_INPUT")
	}
}
