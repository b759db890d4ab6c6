package encoder

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// HashEncoder 是确定性的特征哈希编码器：
// 对 token 与字符 3-gram 做带符号哈希，落入固定维度桶后 L2 归一化。
//
// 不需要外部模型即可给出可用的文本相似度，供离线评估、示例与测试使用；
// 线上语义检索应使用真实 embedding 模型（OpenAIEncoder）。
type HashEncoder struct {
	dim int
}

// NewHashEncoder 创建哈希编码器，dim <= 0 时使用默认 64 维。
func NewHashEncoder(dim int) *HashEncoder {
	if dim <= 0 {
		dim = 64
	}
	return &HashEncoder{dim: dim}
}

func (e *HashEncoder) Name() string { return "hash" }

func (e *HashEncoder) Dim() int { return e.dim }

func (e *HashEncoder) Encode(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = e.encodeOne(text)
	}
	return out, nil
}

func (e *HashEncoder) encodeOne(text string) []float64 {
	vec := make([]float64, e.dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		e.add(vec, tok)
		// 字符 3-gram 提供一定的拼写鲁棒性
		runes := []rune(tok)
		for j := 0; j+3 <= len(runes); j++ {
			e.add(vec, "#"+string(runes[j:j+3]))
		}
	}
	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for j := range vec {
			vec[j] /= norm
		}
	}
	return vec
}

// add 把一个特征的带符号贡献累加到哈希桶。
func (e *HashEncoder) add(vec []float64, feature string) {
	h := fnv.New32a()
	h.Write([]byte(feature))
	sum := h.Sum32()
	bucket := int(sum % uint32(e.dim))
	if sum&0x80000000 != 0 {
		vec[bucket] -= 1
	} else {
		vec[bucket] += 1
	}
}
