package query

import (
	"context"
	"strings"

	"github.com/rushteam/searchkit/core"
	"github.com/rushteam/searchkit/pipeline"
	"github.com/rushteam/searchkit/pkg/utils"
)

// UnderstandNode 是查询理解 Node：填充 qctx.Understood，并写入意图/实体 Label。
// 候选集原样透传（理解阶段不产生候选）。
type UnderstandNode struct {
	Corrector  *SpellCorrector
	Classifier *IntentClassifier
	Cuisines   []string
}

func (n *UnderstandNode) Name() string        { return "query.understand" }
func (n *UnderstandNode) Kind() pipeline.Kind { return pipeline.KindUnderstand }

func (n *UnderstandNode) Process(
	_ context.Context,
	qctx *core.QueryContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if qctx == nil {
		return items, nil
	}
	qctx.Understood = UnderstandQuery(qctx.Raw, n.Corrector, n.Classifier, n.Cuisines)
	qctx.PutLabel("intent", utils.Label{Value: qctx.Understood.Intent, Source: "understand"})
	if len(qctx.Understood.Cuisines) > 0 {
		qctx.PutLabel("cuisines", utils.Label{
			Value:  strings.Join(qctx.Understood.Cuisines, "|"),
			Source: "understand",
		})
	}
	return items, nil
}
