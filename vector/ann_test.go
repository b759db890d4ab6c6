package vector

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/searchkit/core"
)

func TestAnnIndexExactNeighbor(t *testing.T) {
	vectors := [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{0.9, 0.1, 0},
	}
	idx, err := NewAnnIndex(vectors, WithNList(2), WithNProbe(2))
	if err != nil {
		t.Fatalf("构建索引失败: %v", err)
	}

	scores, indices, err := idx.Search([][]float64{{1, 0, 0}}, 2)
	if err != nil {
		t.Fatalf("检索失败: %v", err)
	}
	if indices[0][0] != 0 {
		t.Errorf("最近邻应为向量 0，实际 %d", indices[0][0])
	}
	if math.Abs(scores[0][0]-1.0) > 1e-9 {
		t.Errorf("与自身的余弦相似度应为 1.0，实际 %.6f", scores[0][0])
	}
	if indices[0][1] != 3 {
		t.Errorf("次近邻应为向量 3，实际 %d", indices[0][1])
	}
}

func TestAnnIndexDeterministic(t *testing.T) {
	vectors := [][]float64{
		{0.2, 0.8}, {0.9, 0.1}, {0.5, 0.5}, {0.1, 0.9}, {0.7, 0.3}, {0.4, 0.6},
	}
	q := [][]float64{{0.6, 0.4}}

	a, _ := NewAnnIndex(vectors)
	b, _ := NewAnnIndex(vectors)

	sa, ia, _ := a.Search(q, 3)
	sb, ib, _ := b.Search(q, 3)
	for i := range ia[0] {
		if ia[0][i] != ib[0][i] || sa[0][i] != sb[0][i] {
			t.Fatalf("相同构建与查询应产出相同结果: %v/%v vs %v/%v", ia[0], sa[0], ib[0], sb[0])
		}
	}
}

func TestAnnIndexScoresDescending(t *testing.T) {
	vectors := [][]float64{
		{1, 0}, {0.8, 0.2}, {0.5, 0.5}, {0, 1},
	}
	idx, _ := NewAnnIndex(vectors, WithNList(1))

	scores, _, _ := idx.Search([][]float64{{1, 0}}, 4)
	for i := 1; i < len(scores[0]); i++ {
		if scores[0][i] > scores[0][i-1] {
			t.Fatalf("分数应非递增: %v", scores[0])
		}
	}
}

func TestAnnIndexValidation(t *testing.T) {
	if _, err := NewAnnIndex(nil); !core.IsInvalidInput(err) {
		t.Error("空矩阵应返回 INVALID_INPUT")
	}
	if _, err := NewAnnIndex([][]float64{{1, 0}, {1}}); !core.IsInvalidInput(err) {
		t.Error("维度不一致应返回 INVALID_INPUT")
	}

	idx, _ := NewAnnIndex([][]float64{{1, 0}})
	if _, _, err := idx.Search([][]float64{{1, 0, 0}}, 1); !core.IsInvalidInput(err) {
		t.Error("查询维度不匹配应返回 INVALID_INPUT")
	}
	if _, _, err := idx.Search([][]float64{{1, 0}}, 0); !core.IsInvalidInput(err) {
		t.Error("topK<=0 应返回 INVALID_INPUT")
	}
}

func TestAnnService(t *testing.T) {
	vectors := [][]float64{{1, 0}, {0, 1}}
	idx, _ := NewAnnIndex(vectors, WithNList(1))
	svc, err := NewAnnService(idx, []int64{101, 202})
	if err != nil {
		t.Fatalf("构建服务失败: %v", err)
	}

	res, err := svc.Search(context.Background(), &core.VectorSearchRequest{
		Vector: []float64{1, 0},
		TopK:   1,
		Metric: MetricCosine,
	})
	if err != nil {
		t.Fatalf("检索失败: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].ID != 101 {
		t.Errorf("应返回物品 101，实际 %+v", res.Items)
	}
}

func TestAnnServiceIDMismatch(t *testing.T) {
	idx, _ := NewAnnIndex([][]float64{{1, 0}})
	if _, err := NewAnnService(idx, []int64{1, 2}); !core.IsInvalidInput(err) {
		t.Error("ids 长度不匹配应返回 INVALID_INPUT")
	}
}
