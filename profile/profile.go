// Package profile 提供个性化画像：从历史标注行为聚合出
// 用户的菜系偏好、价位亲和度与物品偏置。
package profile

import (
	"context"
	"strings"

	"github.com/rushteam/searchkit/core"
)

// Source 是画像查询的领域接口。
// 本地实现为 UserProfiles；线上可接 feature store（见 feast 包）。
// 未知用户/菜系/物品一律返回中性的 0.0，不报错。
type Source interface {
	// CuisineAffinity 返回用户对某菜系的偏好权重，单用户全菜系权重和为 1。
	CuisineAffinity(ctx context.Context, userID, cuisine string) (float64, error)
	// PriceAffinity 返回用户对某价位档的偏好权重。
	PriceAffinity(ctx context.Context, userID, priceRange string) (float64, error)
	// ItemBias 返回用户与单个物品的历史交互偏置。
	ItemBias(ctx context.Context, userID string, itemID int64) (float64, error)
}

// PriceBucket 把价位档文本映射为序数特征。
// 未知档位落在中间值，避免把缺失当极端。
func PriceBucket(priceRange string) float64 {
	switch strings.ToLower(strings.TrimSpace(priceRange)) {
	case "cheap":
		return 0
	case "medium":
		return 1
	case "expensive":
		return 2
	default:
		return 1
	}
}

// UserProfiles 是内存画像：对每个用户把标注相关性按维度求和，
// 再除以该用户的相关性总量，得到归一化的偏好分布。
type UserProfiles struct {
	cuisine map[string]map[string]float64 // user -> cuisine -> weight
	price   map[string]map[string]float64 // user -> price range -> weight
	item    map[string]map[int64]float64  // user -> item -> bias
}

// NewUserProfiles 从标注对聚合画像。目录中不存在的物品被跳过。
func NewUserProfiles(catalog *core.Catalog, pairs []core.LabeledPair) *UserProfiles {
	p := &UserProfiles{
		cuisine: make(map[string]map[string]float64),
		price:   make(map[string]map[string]float64),
		item:    make(map[string]map[int64]float64),
	}

	// 1. 按用户累加相关性
	totals := make(map[string]float64)
	for _, pair := range pairs {
		if pair.Relevance <= 0 {
			continue
		}
		it, ok := catalog.ByID(pair.ItemID)
		if !ok {
			continue
		}
		totals[pair.UserID] += pair.Relevance

		cuisine := strings.ToLower(it.Cuisine)
		addWeight(p.cuisine, pair.UserID, cuisine, pair.Relevance)
		addWeight(p.price, pair.UserID, strings.ToLower(it.PriceRange), pair.Relevance)
		if p.item[pair.UserID] == nil {
			p.item[pair.UserID] = make(map[int64]float64)
		}
		p.item[pair.UserID][pair.ItemID] += pair.Relevance
	}

	// 2. 归一化为分布
	for user, total := range totals {
		if total <= 0 {
			continue
		}
		for k := range p.cuisine[user] {
			p.cuisine[user][k] /= total
		}
		for k := range p.price[user] {
			p.price[user][k] /= total
		}
		for k := range p.item[user] {
			p.item[user][k] /= total
		}
	}
	return p
}

func addWeight(m map[string]map[string]float64, user, key string, w float64) {
	if key == "" {
		return
	}
	if m[user] == nil {
		m[user] = make(map[string]float64)
	}
	m[user][key] += w
}

func (p *UserProfiles) CuisineAffinity(_ context.Context, userID, cuisine string) (float64, error) {
	return p.cuisine[userID][strings.ToLower(cuisine)], nil
}

func (p *UserProfiles) PriceAffinity(_ context.Context, userID, priceRange string) (float64, error) {
	return p.price[userID][strings.ToLower(priceRange)], nil
}

func (p *UserProfiles) ItemBias(_ context.Context, userID string, itemID int64) (float64, error) {
	return p.item[userID][itemID], nil
}

var _ Source = (*UserProfiles)(nil)
