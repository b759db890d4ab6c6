package core

import (
	"fmt"
	"strings"
)

// OntologyAttrs 是外部属性抽取器为物品产出的结构化标签。
// 本体抽取本身不在本库范围内，这里只消费其结果。
type OntologyAttrs struct {
	Category        string
	Dietary         []string
	IsVeganFriendly bool
	GlutenFree      bool
	PriceLevel      string
}

// CatalogItem 是商品目录中的一条物品记录，加载后不可变。
// Text 是用于检索的拼接文本（name + description + cuisine，小写）。
type CatalogItem struct {
	ItemID              int64
	Name                string
	Description         string
	Cuisine             string
	PriceRange          string // cheap / medium / expensive
	Rating              float64
	Popularity          float64
	DeliveryTimeMinutes float64
	IsVeganFriendly     bool
	Text                string
	Ontology            OntologyAttrs
}

// Catalog 是物品目录的只读快照，按 ItemID 索引。
// 构建后所有方法均为纯查询，可被多个组件并发共享。
type Catalog struct {
	items []CatalogItem
	byID  map[int64]int
}

// NewCatalog 构建目录快照。Text 为空时由 name/description/cuisine 拼接补齐。
// 空列表或重复 ItemID 在入口处拒绝，返回 INVALID_INPUT。
func NewCatalog(items []CatalogItem) (*Catalog, error) {
	if len(items) == 0 {
		return nil, NewDomainError(ModuleStore, ErrorCodeInvalidInput,
			"catalog: item list is empty")
	}

	c := &Catalog{
		items: make([]CatalogItem, len(items)),
		byID:  make(map[int64]int, len(items)),
	}
	copy(c.items, items)
	for i := range c.items {
		if c.items[i].Text == "" {
			c.items[i].Text = strings.ToLower(strings.TrimSpace(
				c.items[i].Name + " " + c.items[i].Description + " " + c.items[i].Cuisine))
		}
		if _, ok := c.byID[c.items[i].ItemID]; ok {
			return nil, NewDomainError(ModuleStore, ErrorCodeInvalidInput,
				fmt.Sprintf("catalog: duplicate item_id %d", c.items[i].ItemID))
		}
		c.byID[c.items[i].ItemID] = i
	}
	return c, nil
}

func (c *Catalog) Len() int { return len(c.items) }

// Items 返回目录内全部物品（目录顺序）。调用方不应修改返回切片。
func (c *Catalog) Items() []CatalogItem { return c.items }

// ByID 按 ItemID 查找物品。
func (c *Catalog) ByID(itemID int64) (*CatalogItem, bool) {
	idx, ok := c.byID[itemID]
	if !ok {
		return nil, false
	}
	return &c.items[idx], true
}

// Index 返回物品在目录中的下标，用于与向量/稀疏矩阵的行对齐。
func (c *Catalog) Index(itemID int64) (int, bool) {
	idx, ok := c.byID[itemID]
	return idx, ok
}

// At 返回目录中第 idx 个物品。
func (c *Catalog) At(idx int) *CatalogItem { return &c.items[idx] }

// Texts 返回全部物品的检索文本（目录顺序），供向量化/编码使用。
func (c *Catalog) Texts() []string {
	texts := make([]string, len(c.items))
	for i := range c.items {
		texts[i] = c.items[i].Text
	}
	return texts
}

// Cuisines 返回目录内去重后的菜系（小写、目录首次出现顺序）。
func (c *Catalog) Cuisines() []string {
	seen := make(map[string]bool, len(c.items))
	out := make([]string, 0, len(c.items))
	for i := range c.items {
		cu := strings.ToLower(c.items[i].Cuisine)
		if cu == "" || seen[cu] {
			continue
		}
		seen[cu] = true
		out = append(out, cu)
	}
	return out
}
