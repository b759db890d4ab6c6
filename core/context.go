package core

import "github.com/rushteam/searchkit/pkg/utils"

// UnderstoodQuery 是查询理解的产物：每个原始查询只产出一次，
// 之后被检索与特征构建环节消费。
type UnderstoodQuery struct {
	Raw         string
	Normalized  string
	Corrected   string
	Intent      string
	Cuisines    []string // 查询中命中的菜系实体（小写）
	DietaryTags []string // vegan / vegetarian / gluten_free
	PriceHint   string   // cheap / medium / expensive，无提示为空
}

// Text 返回用于检索的查询文本：优先使用纠错结果。
func (q *UnderstoodQuery) Text() string {
	if q == nil {
		return ""
	}
	if q.Corrected != "" {
		return q.Corrected
	}
	return q.Raw
}

// QueryContext 承载一次查询请求的用户/查询信息，贯穿整个 Pipeline 透传。
type QueryContext struct {
	UserID  string
	QueryID string
	Raw     string // 原始查询文本

	// Understood 由查询理解节点填充；之后的节点只读。
	Understood *UnderstoodQuery

	// Labels 是请求级标签，可驱动 Pipeline 行为（例如实验桶、降级标记）。
	Labels map[string]utils.Label

	// Params 请求级上下文参数（经纬度、设备类型等），按需透传。
	Params map[string]any
}

// QueryText 返回当前可用的最佳查询文本：已理解时为纠错文本，否则为原始文本。
func (qctx *QueryContext) QueryText() string {
	if qctx == nil {
		return ""
	}
	if qctx.Understood != nil {
		return qctx.Understood.Text()
	}
	return qctx.Raw
}

// PutLabel 写入请求级 Label。
func (qctx *QueryContext) PutLabel(key string, lbl utils.Label) {
	if qctx.Labels == nil {
		qctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := qctx.Labels[key]; ok {
		qctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	qctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (qctx *QueryContext) GetLabel(key string) (utils.Label, bool) {
	if qctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := qctx.Labels[key]
	return lbl, ok
}
