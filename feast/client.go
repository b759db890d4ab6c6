// Package feast 提供 Feast Feature Store 接入：
// 线上画像特征（菜系偏好/价位亲和/物品偏置）从在线特征库读取，
// 读取失败时回落到本地画像或中性默认值。
package feast

import (
	"context"
	"time"
)

// Client 是 Feast Feature Store 的客户端接口。
//
// Feast 是开源 Feature Store，在线存储（Online Store）提供
// 实时预测所需的低延迟特征读取。
//
// 参考：https://github.com/feast-dev/feast
type Client interface {
	// GetOnlineFeatures 获取在线特征（用于实时预测）。
	// features 形如 ["user_search_profile:cuisine_affinity"]，
	// entityRows 形如 [{"user_id": "u1", "cuisine": "japanese"}]。
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接。
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求。
type GetOnlineFeaturesRequest struct {
	// Features 特征名称列表
	Features []string

	// EntityRows 实体行
	EntityRows []map[string]interface{}

	// Project 项目名称（可选，为空时用客户端默认值）
	Project string
}

// GetOnlineFeaturesResponse 获取在线特征响应。
type GetOnlineFeaturesResponse struct {
	// FeatureVectors 特征向量列表，每个元素对应一个实体行
	FeatureVectors []FeatureVector
}

// FeatureVector 特征向量。
type FeatureVector struct {
	// Values 特征值，key 为特征名称
	Values map[string]interface{}

	// EntityRow 对应的实体行
	EntityRow map[string]interface{}
}

// ClientOption Feast 客户端配置选项。
type ClientOption func(*ClientConfig)

// ClientConfig Feast 客户端配置。
type ClientConfig struct {
	Endpoint string
	Project  string
	Timeout  time.Duration
	Auth     *AuthConfig
}

// AuthConfig 认证配置。Type 为 "static" 时使用静态 Token。
type AuthConfig struct {
	Type  string
	Token string
}

// WithTimeout 配置选项：设置超时时间。
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithAuth 配置选项：设置认证信息。
func WithAuth(auth *AuthConfig) ClientOption {
	return func(c *ClientConfig) {
		c.Auth = auth
	}
}
