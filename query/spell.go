package query

import (
	"strings"

	"github.com/rushteam/searchkit/core"
)

// SpellCorrector 是轻量的编辑距离拼写纠错器，带防过度纠错的距离上限。
//
// 逐 token 处理：词表内的 token 原样通过；词表外的 token 取编辑距离最小的
// 词表词（并列时取词表中先出现者），且仅当最小距离 <= MaxEditDistance 时才替换。
type SpellCorrector struct {
	vocab   map[string]bool
	ordered []string // 词表迭代顺序（首次出现序），决定并列时的替换结果
	maxEdit int
}

// NewSpellCorrector 从词条构建纠错器：逐词条小写、按空白切分入表。
// 词表为空时返回 INVALID_INPUT 错误（在调用边界拒绝，而不是静默空转）。
func NewSpellCorrector(vocab []string, maxEditDistance int) (*SpellCorrector, error) {
	c := &SpellCorrector{
		vocab:   make(map[string]bool),
		maxEdit: maxEditDistance,
	}
	for _, entry := range vocab {
		for _, tok := range strings.Fields(strings.ToLower(entry)) {
			if !c.vocab[tok] {
				c.vocab[tok] = true
				c.ordered = append(c.ordered, tok)
			}
		}
	}
	if len(c.ordered) == 0 {
		return nil, core.NewDomainError(core.ModuleQuery, core.ErrorCodeInvalidInput,
			"spell: empty vocabulary")
	}
	if c.maxEdit <= 0 {
		c.maxEdit = 1
	}
	return c, nil
}

// Correct 对查询逐 token 纠错，返回纠错后的文本。
func (c *SpellCorrector) Correct(text string) string {
	tokens := strings.Fields(text)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if c.vocab[tok] || len(c.ordered) == 0 {
			out = append(out, tok)
			continue
		}
		best := tok
		bestDist := c.maxEdit + 1
		for _, cand := range c.ordered {
			if d := levenshtein(tok, cand); d < bestDist {
				bestDist = d
				best = cand
			}
		}
		if bestDist <= c.maxEdit {
			out = append(out, best)
		} else {
			out = append(out, tok)
		}
	}
	return strings.Join(out, " ")
}

// levenshtein 计算编辑距离（插入/删除/替换代价均为 1），两行 DP。
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
