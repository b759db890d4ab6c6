// Package config 把重量级组件（目录、检索器、模型）与 YAML 配置的
// Node 声明装配成可执行 Pipeline。
package config

import (
	"fmt"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/filter"
	"github.com/rushteam/searchkit/pipeline"
	"github.com/rushteam/searchkit/pkg/conv"
	"github.com/rushteam/searchkit/query"
	"github.com/rushteam/searchkit/rank"
	"github.com/rushteam/searchkit/recall"
	"github.com/rushteam/searchkit/rerank"
)

// Components 是配置无法表达的重量级依赖，由调用方构建后注入。
// Node 构建器从这里取组件，YAML 只负责链路编排与轻量参数。
type Components struct {
	Catalog    *core.Catalog
	Retriever  *recall.HybridRetriever
	Builder    *rank.Builder
	Ranker     *rank.Ranker
	Corrector  *query.SpellCorrector
	Classifier *query.IntentClassifier
	Cuisines   []string
	Store      core.Store // 动态黑名单等共享状态（可选）
}

// NewFactory 返回注册了全部内置 Node 的工厂。
//
// 支持的类型：
//   - query.understand
//   - recall.retrieve   (top_k)
//   - rank.feature
//   - rank.predict
//   - filter            (rules: []CEL 表达式; blacklist: []ID; blacklist_key)
//   - rerank.topn       (n)
//   - rerank.diversity  (key)
func NewFactory(c *Components) *pipeline.NodeFactory {
	f := pipeline.NewNodeFactory()

	f.Register("query.understand", func(_ map[string]any) (pipeline.Node, error) {
		return &query.UnderstandNode{
			Corrector:  c.Corrector,
			Classifier: c.Classifier,
			Cuisines:   c.Cuisines,
		}, nil
	})

	f.Register("recall.retrieve", func(cfg map[string]any) (pipeline.Node, error) {
		if c.Retriever == nil {
			return nil, fmt.Errorf("recall.retrieve: retriever component missing")
		}
		return &recall.RetrieveNode{
			Retriever: c.Retriever,
			TopK:      conv.ConfigGetInt(cfg, "top_k", 10),
		}, nil
	})

	f.Register("rank.feature", func(_ map[string]any) (pipeline.Node, error) {
		if c.Builder == nil {
			return nil, fmt.Errorf("rank.feature: builder component missing")
		}
		return &rank.FeatureNode{Builder: c.Builder}, nil
	})

	f.Register("rank.predict", func(_ map[string]any) (pipeline.Node, error) {
		if c.Ranker == nil {
			return nil, fmt.Errorf("rank.predict: ranker component missing")
		}
		return &rank.RankNode{Ranker: c.Ranker}, nil
	})

	f.Register("filter", func(cfg map[string]any) (pipeline.Node, error) {
		return buildFilterNode(c, cfg)
	})

	f.Register("rerank.topn", func(cfg map[string]any) (pipeline.Node, error) {
		return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
	})

	f.Register("rerank.diversity", func(cfg map[string]any) (pipeline.Node, error) {
		return &rerank.Diversity{MetaKey: conv.ConfigGet[string](cfg, "key", "")}, nil
	})

	return f
}

func buildFilterNode(c *Components, cfg map[string]any) (pipeline.Node, error) {
	var filters []filter.Filter

	if rules, ok := cfg["rules"].([]any); ok {
		for _, r := range rules {
			expr, ok := r.(string)
			if !ok {
				return nil, fmt.Errorf("filter: rule must be a string, got %T", r)
			}
			rf, err := filter.NewRuleFilter(expr)
			if err != nil {
				return nil, err
			}
			filters = append(filters, rf)
		}
	}

	ids := sliceAnyToInt64(cfg["blacklist"])
	blacklistKey := conv.ConfigGet[string](cfg, "blacklist_key", "")
	if len(ids) > 0 || blacklistKey != "" {
		filters = append(filters, filter.NewBlacklistFilter(ids, c.Store, blacklistKey))
	}

	return &filter.FilterNode{Filters: filters}, nil
}

// sliceAnyToInt64 把 YAML 解析出的 []any 转为 []int64，非数值条目被跳过。
func sliceAnyToInt64(v any) []int64 {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(raw))
	for _, e := range raw {
		if f, ok := conv.ToFloat64(e); ok {
			out = append(out, int64(f))
		}
	}
	return out
}
