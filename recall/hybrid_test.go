package recall

import (
	"context"
	"testing"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/encoder"
)

func testCatalog(t *testing.T) *core.Catalog {
	t.Helper()
	c, err := core.NewCatalog([]core.CatalogItem{
		{ItemID: 1, Name: "Green Sushi Bar", Description: "vegan sushi rolls with avocado", Cuisine: "japanese", PriceRange: "medium", Rating: 4.6, Popularity: 0.8, DeliveryTimeMinutes: 25, IsVeganFriendly: true},
		{ItemID: 2, Name: "Pepperoni Palace", Description: "classic pepperoni pizza and calzones", Cuisine: "italian", PriceRange: "cheap", Rating: 4.1, Popularity: 0.9, DeliveryTimeMinutes: 30},
		{ItemID: 3, Name: "Tokyo Express", Description: "fresh sushi and sashimi delivery", Cuisine: "japanese", PriceRange: "expensive", Rating: 4.8, Popularity: 0.6, DeliveryTimeMinutes: 40},
		{ItemID: 4, Name: "Burger Barn", Description: "smash burgers and fries", Cuisine: "american", PriceRange: "cheap", Rating: 3.9, Popularity: 0.7, DeliveryTimeMinutes: 20},
	})
	if err != nil {
		t.Fatalf("构建目录失败: %v", err)
	}
	return c
}

func TestLexicalRetrieverRanking(t *testing.T) {
	r, err := NewLexicalRetriever(testCatalog(t))
	if err != nil {
		t.Fatalf("构建词法检索失败: %v", err)
	}

	hits, err := r.Query(context.Background(), "vegan sushi", 2)
	if err != nil {
		t.Fatalf("检索失败: %v", err)
	}
	if len(hits) != 2 || hits[0].ItemID != 1 {
		t.Errorf("vegan sushi 应首先命中物品 1，实际 %+v", hits)
	}
	if hits[0].Source != core.SourceLexical {
		t.Errorf("来源应为 lexical，实际 %s", hits[0].Source)
	}
}

func TestLexicalRetrieverScorePair(t *testing.T) {
	r, _ := NewLexicalRetriever(testCatalog(t))
	ctx := context.Background()

	s, err := r.ScorePair(ctx, "sushi", 3)
	if err != nil || s <= 0 {
		t.Errorf("已知相关物品分数应为正，实际 %.4f err=%v", s, err)
	}
	s, err = r.ScorePair(ctx, "sushi", 999)
	if err != nil || s != 0 {
		t.Errorf("未知物品应返回中性 0.0，实际 %.4f err=%v", s, err)
	}
}

func TestLexicalRetrieverValidation(t *testing.T) {
	if _, err := NewLexicalRetriever(nil); !core.IsInvalidInput(err) {
		t.Error("空目录应返回 INVALID_INPUT")
	}
	r, _ := NewLexicalRetriever(testCatalog(t))
	if _, err := r.Query(context.Background(), "sushi", 0); !core.IsInvalidInput(err) {
		t.Error("topK<=0 应返回 INVALID_INPUT")
	}
}

func TestSemanticRetrieverQuery(t *testing.T) {
	ctx := context.Background()
	r, err := NewSemanticRetriever(ctx, encoder.NewHashEncoder(128), testCatalog(t))
	if err != nil {
		t.Fatalf("构建语义检索失败: %v", err)
	}

	hits, err := r.Query(ctx, "vegan sushi rolls", 4)
	if err != nil {
		t.Fatalf("检索失败: %v", err)
	}
	if hits[0].ItemID != 1 {
		t.Errorf("语义最近邻应为物品 1，实际 %+v", hits[0])
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Fatalf("分数应非递增: %+v", hits)
		}
	}
}

func TestSemanticRetrieverEmbeddingCache(t *testing.T) {
	ctx := context.Background()
	counter := &countingEncoder{inner: encoder.NewHashEncoder(64)}
	r, err := NewSemanticRetriever(ctx, counter, testCatalog(t),
		WithEmbeddingCache(newMapStore(), 0))
	if err != nil {
		t.Fatalf("构建语义检索失败: %v", err)
	}

	before := counter.calls
	if _, err := r.Query(ctx, "sushi", 2); err != nil {
		t.Fatalf("首次检索失败: %v", err)
	}
	if _, err := r.Query(ctx, "sushi", 2); err != nil {
		t.Fatalf("二次检索失败: %v", err)
	}
	// 第二次查询应命中缓存，编码次数只增加一次
	if counter.calls != before+1 {
		t.Errorf("重复查询应命中向量缓存，编码次数 %d -> %d", before, counter.calls)
	}
}

func TestHybridRetrieverFusion(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog(t)
	lex, _ := NewLexicalRetriever(catalog)
	sem, err := NewSemanticRetriever(ctx, encoder.NewHashEncoder(128), catalog)
	if err != nil {
		t.Fatalf("构建语义检索失败: %v", err)
	}
	h, err := NewHybridRetriever(lex, sem)
	if err != nil {
		t.Fatalf("构建混合检索失败: %v", err)
	}
	if !h.SemanticEnabled() {
		t.Fatal("语义通道应可用")
	}

	hits, err := h.Retrieve(ctx, "vegan sushi", 3)
	if err != nil {
		t.Fatalf("检索失败: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("应返回 3 个候选，实际 %d", len(hits))
	}
	if hits[0].ItemID != 1 {
		t.Errorf("双通道一致的最佳候选应为物品 1，实际 %+v", hits[0])
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Fatalf("融合分应非递增: %+v", hits)
		}
	}
}

func TestHybridRetrieverDegraded(t *testing.T) {
	lex, _ := NewLexicalRetriever(testCatalog(t))
	h, err := NewHybridRetriever(lex, nil)
	if err != nil {
		t.Fatalf("构建降级检索失败: %v", err)
	}
	if h.SemanticEnabled() {
		t.Fatal("语义通道应不可用")
	}

	ctx := context.Background()
	hits, err := h.Retrieve(ctx, "sushi", 2)
	if err != nil || len(hits) == 0 {
		t.Fatalf("降级模式下纯词法检索应可用: %v", err)
	}

	pairs, err := h.PairScores(ctx, "sushi", []int64{hits[0].ItemID})
	if err != nil {
		t.Fatalf("PairScores 失败: %v", err)
	}
	if ps := pairs[hits[0].ItemID]; ps.Semantic != 0 {
		t.Errorf("语义通道缺席时 Semantic 应为 0.0，实际 %.4f", ps.Semantic)
	}
}

func TestHybridRetrieverCache(t *testing.T) {
	lex, _ := NewLexicalRetriever(testCatalog(t))
	h, _ := NewHybridRetriever(lex, nil, WithResultCache(8))
	ctx := context.Background()

	a, err := h.Retrieve(ctx, "pizza", 2)
	if err != nil {
		t.Fatalf("检索失败: %v", err)
	}
	b, _ := h.Retrieve(ctx, "pizza", 2)
	if len(a) != len(b) {
		t.Fatal("缓存命中应返回相同结果")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("缓存命中应返回相同结果: %+v vs %+v", a, b)
		}
	}
}

func TestMinMaxNormalize(t *testing.T) {
	ids := []int64{1, 2, 3}
	norm := minMaxNormalize(ids, map[int64]float64{1: 1.0, 2: 0.5, 3: 0.0})
	if norm[3] != 0 {
		t.Errorf("最小值应归一化为 0，实际 %.6f", norm[3])
	}
	if norm[1] <= norm[2] || norm[2] <= norm[3] {
		t.Errorf("归一化应保序: %v", norm)
	}

	// 全同分时不应除零，全部归一化为 0
	same := minMaxNormalize(ids, map[int64]float64{1: 0.7, 2: 0.7, 3: 0.7})
	for id, v := range same {
		if v != 0 {
			t.Errorf("全同分时物品 %d 应为 0，实际 %.6f", id, v)
		}
	}
}

func TestRetrieveNode(t *testing.T) {
	catalog := testCatalog(t)
	lex, _ := NewLexicalRetriever(catalog)
	h, _ := NewHybridRetriever(lex, nil)

	node := &RetrieveNode{Retriever: h, TopK: 3}
	qctx := &core.QueryContext{
		Understood: &core.UnderstoodQuery{Raw: "vegan sushi", Normalized: "vegan sushi", Corrected: "vegan sushi"},
	}
	items, err := node.Process(context.Background(), qctx, nil)
	if err != nil {
		t.Fatalf("节点执行失败: %v", err)
	}
	if len(items) == 0 || items[0].ID != 1 {
		t.Fatalf("首位候选应为物品 1，实际 %+v", items)
	}
	if _, ok := items[0].Features["lexical_score"]; !ok {
		t.Error("候选应携带 lexical_score 特征")
	}
	if items[0].Features["semantic_score"] != 0 {
		t.Error("降级模式下 semantic_score 原始分应为 0")
	}
}

// countingEncoder 统计编码调用次数，用于验证缓存。
type countingEncoder struct {
	inner core.Encoder
	calls int
}

func (c *countingEncoder) Name() string { return "counting" }
func (c *countingEncoder) Dim() int     { return c.inner.Dim() }
func (c *countingEncoder) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	c.calls++
	return c.inner.Encode(ctx, texts)
}

// mapStore 是最小的测试用 Store。
type mapStore struct{ m map[string][]byte }

func newMapStore() *mapStore { return &mapStore{m: make(map[string][]byte)} }

func (s *mapStore) Name() string { return "map" }
func (s *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.m[key]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	return v, nil
}
func (s *mapStore) Set(_ context.Context, key string, value []byte, _ ...int) error {
	s.m[key] = value
	return nil
}
func (s *mapStore) Delete(_ context.Context, key string) error { delete(s.m, key); return nil }
func (s *mapStore) BatchGet(_ context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte)
	for _, k := range keys {
		if v, ok := s.m[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}
func (s *mapStore) BatchSet(_ context.Context, kvs map[string][]byte, _ ...int) error {
	for k, v := range kvs {
		s.m[k] = v
	}
	return nil
}
func (s *mapStore) Close() error { return nil }
