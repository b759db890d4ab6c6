package query

import "github.com/rushteam/searchkit/core"

// UnderstandQuery 组合完整的查询理解流程：
// 归一化 -> 纠错 -> 意图分类（基于纠错文本）-> 菜系实体抽取（基于纠错文本）。
//
// 无错误路径：corrector 为 nil 时跳过纠错，classifier 未训练时使用其兜底意图，
// 始终返回可用结果。
func UnderstandQuery(
	raw string,
	corrector *SpellCorrector,
	classifier *IntentClassifier,
	cuisines []string,
) *core.UnderstoodQuery {
	normalized := Normalize(raw)
	corrected := normalized
	if corrector != nil {
		corrected = corrector.Correct(normalized)
	}
	intent := DefaultIntentLabel
	if classifier != nil {
		intent = classifier.Predict([]string{corrected})[0]
	}
	return &core.UnderstoodQuery{
		Raw:         raw,
		Normalized:  normalized,
		Corrected:   corrected,
		Intent:      intent,
		Cuisines:    ExtractCuisineEntities(corrected, cuisines),
		DietaryTags: ExtractDietaryTags(corrected),
		PriceHint:   ExtractPriceHint(corrected),
	}
}
