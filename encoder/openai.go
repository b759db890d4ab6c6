// Package encoder 提供 core.Encoder 的基础设施实现：
// OpenAI 兼容的远程 embedding 服务，以及离线可用的特征哈希编码器。
package encoder

import (
	"context"
	"log/slog"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/rushteam/searchkit/core"
)

// OpenAIEncoder 通过 OpenAI 兼容接口调用远程 embedding 模型。
// 本地部署的兼容服务（vLLM、Ollama 等）同样适用。
type OpenAIEncoder struct {
	embedder embeddings.Embedder
	dim      int
	logger   *slog.Logger
}

// NewOpenAIEncoder 创建远程编码器。
// baseURL 为服务地址，model 为 embedding 模型名，dim 为模型输出维度。
// 构建失败（依赖不可达、配置无效）返回 CAPABILITY_UNAVAILABLE，
// 调用方应据此降级到纯词法检索，而不是中止。
func NewOpenAIEncoder(baseURL, model string, dim int) (*OpenAIEncoder, error) {
	// 本地兼容服务通常不校验 token，使用占位值
	client, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		slog.Warn("embedding client unavailable", "base_url", baseURL, "err", err)
		return nil, core.ErrEncoderUnavailable
	}
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		slog.Warn("embedding client unavailable", "base_url", baseURL, "err", err)
		return nil, core.ErrEncoderUnavailable
	}
	return &OpenAIEncoder{
		embedder: embedder,
		dim:      dim,
		logger:   slog.Default().With("component", "openai-encoder"),
	}, nil
}

func (e *OpenAIEncoder) Name() string { return "openai" }

func (e *OpenAIEncoder) Dim() int { return e.dim }

// Encode 批量编码文本，输出顺序与输入一致。
func (e *OpenAIEncoder) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vecs32, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(vecs32))
	for i, v := range vecs32 {
		out[i] = make([]float64, len(v))
		for j, x := range v {
			out[i][j] = float64(x)
		}
	}
	return out, nil
}
