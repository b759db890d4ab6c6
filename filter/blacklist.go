package filter

import (
	"context"
	"encoding/json"

	"github.com/rushteam/searchkit/core"
)

// BlacklistFilter 是黑名单过滤器，移除黑名单中的物品。
// 静态列表用于配置注入；Store 用于多实例共享的动态黑名单
// （Redis 中存 JSON 数组，key 由 Key 指定）。
type BlacklistFilter struct {
	// ItemIDs 是内存中的黑名单物品 ID 列表
	ItemIDs []int64

	// Store 用于从存储中读取黑名单（可选）
	Store core.Store

	// Key 是 Store 中的黑名单 key（可选）
	Key string

	static map[int64]bool
}

// NewBlacklistFilter 创建黑名单过滤器。store 与 key 可为零值。
func NewBlacklistFilter(itemIDs []int64, store core.Store, key string) *BlacklistFilter {
	static := make(map[int64]bool, len(itemIDs))
	for _, id := range itemIDs {
		static[id] = true
	}
	return &BlacklistFilter{
		ItemIDs: itemIDs,
		Store:   store,
		Key:     key,
		static:  static,
	}
}

func (f *BlacklistFilter) Name() string { return "filter.blacklist" }

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.QueryContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}

	if f.static[item.ID] {
		return true, nil
	}

	// 动态黑名单：读取失败时放行，不阻断链路
	if f.Store != nil && f.Key != "" {
		raw, err := f.Store.Get(ctx, f.Key)
		if err != nil {
			return false, nil
		}
		var ids []int64
		if json.Unmarshal(raw, &ids) != nil {
			return false, nil
		}
		for _, id := range ids {
			if id == item.ID {
				return true, nil
			}
		}
	}
	return false, nil
}

var _ Filter = (*BlacklistFilter)(nil)
