// Package query 实现查询理解：归一化、拼写纠错、意图分类、实体抽取，
// 以及把它们组合起来的 UnderstandQuery。
package query

import (
	"regexp"
	"strings"
)

var (
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize 归一化查询文本：小写、去标点（保留空格）、压缩空白。
// 幂等：Normalize(Normalize(x)) == Normalize(x)。
func Normalize(text string) string {
	cleaned := nonAlnumRe.ReplaceAllString(strings.ToLower(text), " ")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
