package query

import (
	"strings"

	"github.com/rushteam/searchkit/core"
)

// 膳食标签词典：标签 -> 触发词（在归一化文本上做子串匹配）。
var dietaryKeywords = []struct {
	tag      string
	keywords []string
}{
	{"vegan", []string{"vegan", "plant based"}},
	{"vegetarian", []string{"vegetarian", "veggie"}},
	{"gluten_free", []string{"gluten free"}},
}

// 价位提示词典：价位 -> 触发词。
var priceHints = []struct {
	level    string
	keywords []string
}{
	{"cheap", []string{"cheap", "budget", "affordable"}},
	{"medium", []string{"medium", "mid priced"}},
	{"expensive", []string{"expensive", "fancy", "upscale"}},
}

// BuildCuisineLexicon 从目录构建菜系词典：去重菜系 + {vegan, vegetarian}。
func BuildCuisineLexicon(catalog *core.Catalog) []string {
	out := catalog.Cuisines()
	seen := make(map[string]bool, len(out)+2)
	for _, c := range out {
		seen[c] = true
	}
	for _, extra := range []string{"vegan", "vegetarian"} {
		if !seen[extra] {
			out = append(out, extra)
		}
	}
	return out
}

// ExtractCuisineEntities 返回查询中以完整 token 出现的菜系词（词典顺序）。
func ExtractCuisineEntities(queryText string, cuisines []string) []string {
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(Normalize(queryText)) {
		tokens[tok] = true
	}
	out := make([]string, 0, 2)
	for _, c := range cuisines {
		if tokens[c] {
			out = append(out, c)
		}
	}
	return out
}

// ExtractDietaryTags 返回查询命中的膳食标签（vegan / vegetarian / gluten_free）。
func ExtractDietaryTags(queryText string) []string {
	text := Normalize(queryText)
	out := make([]string, 0, 2)
	for _, entry := range dietaryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				out = append(out, entry.tag)
				break
			}
		}
	}
	return out
}

// ExtractPriceHint 返回查询中的价位提示（cheap / medium / expensive），无则为空。
func ExtractPriceHint(queryText string) string {
	text := Normalize(queryText)
	for _, entry := range priceHints {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.level
			}
		}
	}
	return ""
}
