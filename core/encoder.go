package core

import "context"

// Encoder 是文本向量化模型的领域接口（embedding 协作方）。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（encoder）实现
//   - 模型加载/推理对本库是不透明的阻塞调用
//   - 能力缺失通过 ProbeEncoder 在构造期一次性探测，
//     失败以 CAPABILITY_UNAVAILABLE 暴露，而不是每次调用时检查
type Encoder interface {
	// Name 返回编码器名称（用于日志/Label）
	Name() string

	// Encode 将一批文本编码为固定维度向量，顺序与输入一致。
	Encode(ctx context.Context, texts []string) ([][]float64, error)

	// Dim 返回向量维度。
	Dim() int
}

// ErrEncoderUnavailable 表示 embedding 能力不可用，调用方应降级到纯词法检索。
var ErrEncoderUnavailable = NewDomainError(ModuleVector, ErrorCodeCapabilityUnavailable,
	"encoder: embedding model unavailable, semantic retrieval disabled")

// ProbeEncoder 在构造期探测编码器能力：执行一次最小编码调用。
// 返回 nil 表示可用；否则返回 ErrEncoderUnavailable。
func ProbeEncoder(ctx context.Context, enc Encoder) error {
	if enc == nil {
		return ErrEncoderUnavailable
	}
	vecs, err := enc.Encode(ctx, []string{"probe"})
	if err != nil || len(vecs) == 0 || len(vecs[0]) == 0 {
		return ErrEncoderUnavailable
	}
	return nil
}
