package rank

import (
	"context"
	"testing"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/profile"
	"github.com/rushteam/searchkit/query"
	"github.com/rushteam/searchkit/recall"
)

func rankCatalog(t *testing.T) *core.Catalog {
	t.Helper()
	c, err := core.NewCatalog([]core.CatalogItem{
		{
			ItemID: 1, Name: "Green Sushi Bar", Description: "vegan sushi rolls",
			Cuisine: "japanese", PriceRange: "medium", Rating: 4.6, Popularity: 0.8,
			DeliveryTimeMinutes: 25, IsVeganFriendly: true,
			Ontology: core.OntologyAttrs{Category: "japanese", IsVeganFriendly: true, PriceLevel: "medium"},
		},
		{
			ItemID: 2, Name: "Pepperoni Palace", Description: "pepperoni pizza",
			Cuisine: "italian", PriceRange: "cheap", Rating: 4.1, Popularity: 0.9,
			DeliveryTimeMinutes: 30,
			Ontology:            core.OntologyAttrs{Category: "italian", PriceLevel: "cheap"},
		},
	})
	if err != nil {
		t.Fatalf("构建目录失败: %v", err)
	}
	return c
}

func rankBuilder(t *testing.T, catalog *core.Catalog) *Builder {
	t.Helper()
	lex, err := recall.NewLexicalRetriever(catalog)
	if err != nil {
		t.Fatalf("构建词法检索失败: %v", err)
	}
	hybrid, err := recall.NewHybridRetriever(lex, nil)
	if err != nil {
		t.Fatalf("构建混合检索失败: %v", err)
	}
	profiles := profile.NewUserProfiles(catalog, []core.LabeledPair{
		{UserID: "u1", ItemID: 1, Relevance: 3},
		{UserID: "u1", ItemID: 2, Relevance: 1},
	})
	cuisines := query.BuildCuisineLexicon(catalog)
	return &Builder{
		Catalog:   catalog,
		Profiles:  profiles,
		Retriever: hybrid,
		Understand: func(raw string) *core.UnderstoodQuery {
			return query.UnderstandQuery(raw, nil, nil, cuisines)
		},
	}
}

func TestBuilderRowColumns(t *testing.T) {
	catalog := rankCatalog(t)
	b := rankBuilder(t, catalog)
	uq := b.understand("cheap vegan japanese sushi")

	features, err := b.Row(context.Background(), uq, "u1", 1, recall.PairScore{Lexical: 0.6})
	if err != nil {
		t.Fatalf("构建特征失败: %v", err)
	}
	for _, col := range FeatureColumns {
		if _, ok := features[col]; !ok {
			t.Errorf("特征表缺少列 %s", col)
		}
	}

	// 语义通道缺席时以词法分代位
	if features["semantic_score"] != features["lexical_score"] {
		t.Errorf("降级模式下 semantic_score 应等于 lexical_score: %.4f vs %.4f",
			features["semantic_score"], features["lexical_score"])
	}
	if features["cuisine_match"] != 1 {
		t.Error("japanese 查询对 japanese 物品 cuisine_match 应为 1")
	}
	if features["ontology_dietary_match"] != 1 {
		t.Error("vegan 查询对 vegan 物品 ontology_dietary_match 应为 1")
	}
	if features["user_pref_score"] != 0.75 {
		t.Errorf("u1 对 japanese 的偏好应为 0.75，实际 %.4f", features["user_pref_score"])
	}
	if features["intent_code"] != 0 {
		t.Errorf("product_search 意图编码应为 0，实际 %.0f", features["intent_code"])
	}
}

func TestBuilderRowPriceHint(t *testing.T) {
	catalog := rankCatalog(t)
	b := rankBuilder(t, catalog)
	uq := b.understand("cheap pizza")

	features, err := b.Row(context.Background(), uq, "u1", 2, recall.PairScore{})
	if err != nil {
		t.Fatalf("构建特征失败: %v", err)
	}
	if features["price_hint_match"] != 1 {
		t.Error("cheap 查询对 cheap 物品 price_hint_match 应为 1")
	}
	if features["price_bucket"] != 0 {
		t.Errorf("cheap 档位应编码为 0，实际 %.0f", features["price_bucket"])
	}
}

func TestBuilderRowUnknownItem(t *testing.T) {
	b := rankBuilder(t, rankCatalog(t))
	uq := b.understand("sushi")

	_, err := b.Row(context.Background(), uq, "u1", 999, recall.PairScore{})
	if !core.IsNotFound(err) {
		t.Errorf("目录外物品应返回 NOT_FOUND，实际 %v", err)
	}
}

func TestBuildDatasetAndMatrices(t *testing.T) {
	catalog := rankCatalog(t)
	b := rankBuilder(t, catalog)
	pairs := []core.LabeledPair{
		{QueryID: "q1", Query: "vegan sushi", UserID: "u1", ItemID: 1, Relevance: 3},
		{QueryID: "q1", Query: "vegan sushi", UserID: "u1", ItemID: 2, Relevance: 0},
		{QueryID: "q2", Query: "pizza", UserID: "u1", ItemID: 2, Relevance: 2},
		{QueryID: "q2", Query: "pizza", UserID: "u1", ItemID: 999, Relevance: 1}, // 目录外，跳过
	}

	rows, err := b.BuildDataset(context.Background(), pairs)
	if err != nil {
		t.Fatalf("构建训练集失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("目录外样本应被跳过，期望 3 行，实际 %d", len(rows))
	}

	X, y, group := BuildMatrices(rows)
	if len(X) != 3 || len(y) != 3 {
		t.Fatalf("矩阵形状错误: X=%d y=%d", len(X), len(y))
	}
	if len(X[0]) != len(FeatureColumns) {
		t.Errorf("特征宽度应为 %d，实际 %d", len(FeatureColumns), len(X[0]))
	}
	if len(group) != 2 || group[0] != 2 || group[1] != 1 {
		t.Errorf("分组应为 [2 1]，实际 %v", group)
	}
	sum := 0
	for _, g := range group {
		sum += g
	}
	if sum != len(X) {
		t.Errorf("group 总和 %d 应等于样本数 %d", sum, len(X))
	}
	if y[0] != 3 || y[1] != 0 || y[2] != 2 {
		t.Errorf("标签顺序错误: %v", y)
	}
}

func TestVectorizeColumnOrder(t *testing.T) {
	features := map[string]float64{"rating": 4.5, "intent_code": 2}
	v := Vectorize(features)
	if len(v) != len(FeatureColumns) {
		t.Fatalf("向量宽度应为 %d", len(FeatureColumns))
	}
	if v[2] != 4.5 {
		t.Errorf("rating 应在第 3 列，实际 %v", v)
	}
	if v[len(v)-1] != 2 {
		t.Errorf("intent_code 应在末列，实际 %v", v)
	}
	if v[0] != 0 {
		t.Error("缺失列应补 0")
	}
}
