package feast

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/rushteam/searchkit/profile"
)

// 在线画像的特征引用约定。
const (
	FeatureCuisineAffinity = "user_search_profile:cuisine_affinity"
	FeaturePriceAffinity   = "user_search_profile:price_affinity"
	FeatureItemBias        = "user_search_profile:item_bias"
)

// ProfileSource 把 Feast 在线特征适配为 profile.Source。
// 特征库不可达或特征缺失时回落到 fallback（通常是本地 UserProfiles），
// 没有 fallback 时返回中性的 0.0，检索链路不因画像缺席而失败。
type ProfileSource struct {
	client   Client
	fallback profile.Source
	logger   *slog.Logger
}

// NewProfileSource 构建画像源。fallback 可为 nil。
func NewProfileSource(client Client, fallback profile.Source) *ProfileSource {
	return &ProfileSource{
		client:   client,
		fallback: fallback,
		logger:   slog.Default().With("component", "feast-profile"),
	}
}

func (s *ProfileSource) CuisineAffinity(ctx context.Context, userID, cuisine string) (float64, error) {
	v, ok := s.fetch(ctx, FeatureCuisineAffinity, map[string]interface{}{
		"user_id": userID,
		"cuisine": cuisine,
	})
	if ok {
		return v, nil
	}
	if s.fallback != nil {
		return s.fallback.CuisineAffinity(ctx, userID, cuisine)
	}
	return 0, nil
}

func (s *ProfileSource) PriceAffinity(ctx context.Context, userID, priceRange string) (float64, error) {
	v, ok := s.fetch(ctx, FeaturePriceAffinity, map[string]interface{}{
		"user_id":     userID,
		"price_range": priceRange,
	})
	if ok {
		return v, nil
	}
	if s.fallback != nil {
		return s.fallback.PriceAffinity(ctx, userID, priceRange)
	}
	return 0, nil
}

func (s *ProfileSource) ItemBias(ctx context.Context, userID string, itemID int64) (float64, error) {
	v, ok := s.fetch(ctx, FeatureItemBias, map[string]interface{}{
		"user_id": userID,
		"item_id": itemID,
	})
	if ok {
		return v, nil
	}
	if s.fallback != nil {
		return s.fallback.ItemBias(ctx, userID, itemID)
	}
	return 0, nil
}

// fetch 读取单实体单特征，返回 (值, 是否命中)。
func (s *ProfileSource) fetch(ctx context.Context, feature string, entity map[string]interface{}) (float64, bool) {
	resp, err := s.client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   []string{feature},
		EntityRows: []map[string]interface{}{entity},
	})
	if err != nil {
		s.logger.Warn("feature store unavailable, using fallback", "feature", feature, "err", err)
		return 0, false
	}
	if len(resp.FeatureVectors) == 0 {
		return 0, false
	}
	raw, ok := resp.FeatureVectors[0].Values[feature]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

var _ profile.Source = (*ProfileSource)(nil)
