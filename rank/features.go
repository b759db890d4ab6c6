// Package rank 提供特征构建与可训练排序：
// 把候选转为固定列序的特征向量，喂给远程排序服务或本地森林模型。
package rank

import (
	"context"
	"strings"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/profile"
	"github.com/rushteam/searchkit/query"
	"github.com/rushteam/searchkit/recall"
)

// FeatureColumns 是特征矩阵的固定列序。
// 训练与预测必须使用同一列序，新增特征只能追加在尾部。
var FeatureColumns = []string{
	"lexical_score",
	"semantic_score",
	"rating",
	"popularity",
	"is_vegan_friendly",
	"delivery_time_minutes",
	"price_bucket",
	"user_pref_score",
	"price_affinity",
	"user_item_bias",
	"ontology_dietary_match",
	"ontology_category_match",
	"price_hint_match",
	"cuisine_match",
	"intent_code",
}

// FeatureRow 是一条 query-item 训练样本。
type FeatureRow struct {
	QueryID  string
	Query    string
	UserID   string
	ItemID   int64
	Features map[string]float64
	Label    float64
}

// UnderstandFunc 把原始查询文本转为结构化理解结果。
type UnderstandFunc func(raw string) *core.UnderstoodQuery

// Builder 构建排序特征。
// Understand 为空时退化为仅归一化（不纠错、默认意图）。
type Builder struct {
	Catalog    *core.Catalog
	Profiles   profile.Source
	Retriever  *recall.HybridRetriever
	Understand UnderstandFunc
}

func (b *Builder) understand(raw string) *core.UnderstoodQuery {
	if b.Understand != nil {
		return b.Understand(raw)
	}
	return query.UnderstandQuery(raw, nil, nil, nil)
}

// Row 计算单个 query-item 对的完整特征。
// 物品不在目录时返回 NOT_FOUND，调用方应跳过该样本。
//
// 语义通道不可用时 semantic_score 以词法分代位，
// 保持列宽不变，模型不需要感知降级。
func (b *Builder) Row(
	ctx context.Context,
	uq *core.UnderstoodQuery,
	userID string,
	itemID int64,
	pair recall.PairScore,
) (map[string]float64, error) {
	item, ok := b.Catalog.ByID(itemID)
	if !ok {
		return nil, core.NewDomainError(core.ModuleRank, core.ErrorCodeNotFound,
			"feature builder: item not in catalog")
	}

	semantic := pair.Semantic
	if b.Retriever != nil && !b.Retriever.SemanticEnabled() {
		semantic = pair.Lexical
	}

	features := map[string]float64{
		"lexical_score":         pair.Lexical,
		"semantic_score":        semantic,
		"rating":                item.Rating,
		"popularity":            item.Popularity,
		"is_vegan_friendly":     boolFeature(item.IsVeganFriendly || item.Ontology.IsVeganFriendly),
		"delivery_time_minutes": item.DeliveryTimeMinutes,
		"price_bucket":          profile.PriceBucket(item.PriceRange),
		"intent_code":           query.IntentCode(uq.Intent),
	}

	// 个性化特征：画像源缺席时取中性 0.0
	if b.Profiles != nil {
		pref, err := b.Profiles.CuisineAffinity(ctx, userID, item.Cuisine)
		if err != nil {
			return nil, err
		}
		price, err := b.Profiles.PriceAffinity(ctx, userID, item.PriceRange)
		if err != nil {
			return nil, err
		}
		bias, err := b.Profiles.ItemBias(ctx, userID, itemID)
		if err != nil {
			return nil, err
		}
		features["user_pref_score"] = pref
		features["price_affinity"] = price
		features["user_item_bias"] = bias
	} else {
		features["user_pref_score"] = 0
		features["price_affinity"] = 0
		features["user_item_bias"] = 0
	}

	features["ontology_dietary_match"] = boolFeature(dietaryMatch(uq.DietaryTags, item))
	features["ontology_category_match"] = boolFeature(categoryMatch(uq.Cuisines, item))
	features["price_hint_match"] = boolFeature(priceHintMatch(uq.PriceHint, item))
	features["cuisine_match"] = boolFeature(cuisineMatch(uq.Cuisines, item))

	return features, nil
}

// BuildDataset 从标注对构建训练样本，按 QueryID 首次出现顺序分组输出。
// 目录中不存在的物品被跳过。
func (b *Builder) BuildDataset(ctx context.Context, pairs []core.LabeledPair) ([]FeatureRow, error) {
	// 1. 按 QueryID 分组，保持首次出现顺序
	var queryOrder []string
	grouped := make(map[string][]core.LabeledPair)
	for _, p := range pairs {
		if _, ok := grouped[p.QueryID]; !ok {
			queryOrder = append(queryOrder, p.QueryID)
		}
		grouped[p.QueryID] = append(grouped[p.QueryID], p)
	}

	var rows []FeatureRow
	for _, qid := range queryOrder {
		qpairs := grouped[qid]
		uq := b.understand(qpairs[0].Query)

		// 2. 批量取双通道原始分
		ids := make([]int64, len(qpairs))
		for i, p := range qpairs {
			ids[i] = p.ItemID
		}
		var scores map[int64]recall.PairScore
		if b.Retriever != nil {
			var err error
			scores, err = b.Retriever.PairScores(ctx, uq.Text(), ids)
			if err != nil {
				return nil, err
			}
		}

		// 3. 逐对构建特征
		for _, p := range qpairs {
			features, err := b.Row(ctx, uq, p.UserID, p.ItemID, scores[p.ItemID])
			if core.IsNotFound(err) {
				continue
			}
			if err != nil {
				return nil, err
			}
			rows = append(rows, FeatureRow{
				QueryID:  p.QueryID,
				Query:    p.Query,
				UserID:   p.UserID,
				ItemID:   p.ItemID,
				Features: features,
				Label:    p.Relevance,
			})
		}
	}
	return rows, nil
}

// BuildMatrices 把样本转为训练矩阵：X 按 FeatureColumns 列序，
// group 是每个 query 的样本数（与 rows 顺序一致）。
// 前置条件：同一 QueryID 的样本必须连续排列（BuildDataset 的输出天然满足），
// 否则同一 query 会被拆成多个 group。
func BuildMatrices(rows []FeatureRow) (X [][]float64, y []float64, group []int) {
	X = make([][]float64, len(rows))
	y = make([]float64, len(rows))
	for i, row := range rows {
		X[i] = Vectorize(row.Features)
		y[i] = row.Label
	}

	lastQuery := ""
	for i, row := range rows {
		if i == 0 || row.QueryID != lastQuery {
			group = append(group, 1)
			lastQuery = row.QueryID
		} else {
			group[len(group)-1]++
		}
	}
	return X, y, group
}

// Vectorize 按 FeatureColumns 列序把特征表展开为向量，缺失列补 0。
func Vectorize(features map[string]float64) []float64 {
	out := make([]float64, len(FeatureColumns))
	for i, col := range FeatureColumns {
		out[i] = features[col]
	}
	return out
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// dietaryMatch 判断查询膳食标签是否命中物品本体属性。
func dietaryMatch(tags []string, item *core.CatalogItem) bool {
	for _, tag := range tags {
		switch tag {
		case "vegan", "vegetarian":
			if item.IsVeganFriendly || item.Ontology.IsVeganFriendly {
				return true
			}
		case "gluten_free":
			if item.Ontology.GlutenFree {
				return true
			}
		}
		for _, d := range item.Ontology.Dietary {
			if strings.EqualFold(d, tag) {
				return true
			}
		}
	}
	return false
}

// categoryMatch 判断查询菜系实体是否命中本体类目。
func categoryMatch(cuisines []string, item *core.CatalogItem) bool {
	category := strings.ToLower(item.Ontology.Category)
	if category == "" {
		return false
	}
	for _, c := range cuisines {
		if c == category {
			return true
		}
	}
	return false
}

// priceHintMatch 判断查询价位提示是否命中物品价位档。
func priceHintMatch(hint string, item *core.CatalogItem) bool {
	if hint == "" {
		return false
	}
	if strings.EqualFold(hint, item.PriceRange) {
		return true
	}
	return strings.EqualFold(hint, item.Ontology.PriceLevel)
}

// cuisineMatch 判断查询菜系实体是否命中物品菜系。
func cuisineMatch(cuisines []string, item *core.CatalogItem) bool {
	cuisine := strings.ToLower(item.Cuisine)
	for _, c := range cuisines {
		if c == cuisine {
			return true
		}
	}
	return false
}
