// Package dsl 提供基于 CEL (Common Expression Language) 的规则表达式求值，
// 驱动检索结果的声明式后置过滤。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/searchkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("query", cel.DynType),
	)
	return env, err
}

func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Program 是编译后的 CEL 规则，可跨请求复用。
//
// 表达式语法（CEL 标准语法）：
//   - 数值：item.score > 0.7 / item.features.rating >= 4.0
//   - 标签：label.recall_source == "hybrid"
//   - 查询侧：query.intent == "product_search" / "japanese" in query.cuisines
//   - 逻辑：query.intent == "faq_search" && item.score < 0.3
//
// 注意：CEL 访问不存在的 key 会报错，用 label.key != null 检查存在性。
type Program struct {
	prg cel.Program
}

// Compile 编译规则表达式。表达式应只编译一次，之后多次求值。
func Compile(expr string) (*Program, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{prg: prg}, nil
}

// EvalBool 对单个候选求值，返回布尔结果。
func (p *Program) EvalBool(item *core.Item, qctx *core.QueryContext) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(item, qctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据。
func buildInput(it *core.Item, qctx *core.QueryContext) map[string]interface{} {
	labels := make(map[string]interface{})
	labelAccessor := make(map[string]interface{})
	for k, v := range it.Labels {
		labels[k] = map[string]interface{}{
			"value":  v.Value,
			"source": v.Source,
		}
		// label.recall_source 直接返回 value
		labelAccessor[k] = v.Value
	}

	item := map[string]interface{}{
		"id":       it.ID,
		"score":    it.Score,
		"features": it.Features,
		"meta":     it.Meta,
		"labels":   labels,
	}

	query := map[string]interface{}{
		"user_id":  "",
		"query_id": "",
		"raw":      "",
		"text":     "",
		"intent":   "",
		"cuisines": []string{},
		"params":   map[string]any{},
	}
	if qctx != nil {
		query["user_id"] = qctx.UserID
		query["query_id"] = qctx.QueryID
		query["raw"] = qctx.Raw
		query["text"] = qctx.QueryText()
		if qctx.Params != nil {
			query["params"] = qctx.Params
		}
		if qctx.Understood != nil {
			query["intent"] = qctx.Understood.Intent
			query["cuisines"] = qctx.Understood.Cuisines
		}
	}

	return map[string]interface{}{
		"item":  item,
		"label": labelAccessor,
		"query": query,
	}
}
