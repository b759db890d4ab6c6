package core

// LabeledPair 是一条 (query, item) 训练/评估样本。
// 共享同一 QueryID 的样本构成一个分组（group），供组感知排序模型使用。
type LabeledPair struct {
	QueryID   string
	Query     string
	UserID    string
	ItemID    int64
	Relevance float64 // 非负相关性等级，0 表示不相关
}

// IntentExample 是意图分类器的一条训练样本。
type IntentExample struct {
	Text  string
	Label string
}
