package filter

import (
	"context"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/pkg/dsl"
)

// RuleFilter 是 CEL 规则过滤器：表达式命中的候选被移除。
// 表达式在构建时编译一次，之后每个候选求值。
//
// 示例：
//   - `item.features.rating < 3.0` → 过滤低评分物品
//   - `query.intent == "faq_search" && label.recall_source == "semantic"`
type RuleFilter struct {
	expr    string
	program *dsl.Program
}

// NewRuleFilter 编译过滤规则。表达式非法返回 INVALID_INPUT。
func NewRuleFilter(expr string) (*RuleFilter, error) {
	program, err := dsl.Compile(expr)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput,
			"rule filter: "+err.Error())
	}
	return &RuleFilter{expr: expr, program: program}, nil
}

func (f *RuleFilter) Name() string { return "filter.rule" }

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	qctx *core.QueryContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	return f.program.EvalBool(item, qctx)
}

var _ Filter = (*RuleFilter)(nil)
