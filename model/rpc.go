package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rushteam/searchkit/core"
)

// RemoteRanker 通过 HTTP 调用外部排序服务（GBDT/XGBoost 等）。
//
// 接口约定：
//
//	POST {endpoint}/fit     {"features": [[...]], "labels": [...], "groups": [...]}
//	POST {endpoint}/predict {"features": [[...]]}  ->  {"scores": [...]}
//	GET  {endpoint}/health  ->  200
type RemoteRanker struct {
	name     string
	Endpoint string // 例如 "http://localhost:8080"
	Timeout  time.Duration
	Client   *http.Client
}

func NewRemoteRanker(name, endpoint string, timeout time.Duration) *RemoteRanker {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &RemoteRanker{
		name:     name,
		Endpoint: strings.TrimRight(endpoint, "/"),
		Timeout:  timeout,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (m *RemoteRanker) Name() string {
	return m.name
}

// Probe 在构造期探测服务是否可达。
// 不可达返回 CAPABILITY_UNAVAILABLE，调用方应改用本地兜底模型。
func (m *RemoteRanker) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.Endpoint+"/health", nil)
	if err != nil {
		return core.NewDomainError(core.ModuleRank, core.ErrorCodeCapabilityUnavailable,
			"remote ranker: invalid endpoint")
	}
	resp, err := m.Client.Do(req)
	if err != nil {
		return core.NewDomainError(core.ModuleRank, core.ErrorCodeCapabilityUnavailable,
			"remote ranker: service unreachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return core.NewDomainError(core.ModuleRank, core.ErrorCodeCapabilityUnavailable,
			fmt.Sprintf("remote ranker: health check status=%d", resp.StatusCode))
	}
	return nil
}

// Fit 把训练集提交给远程服务。
func (m *RemoteRanker) Fit(X [][]float64, y []float64, group []int) error {
	if err := validateTrainingSet(X, y, group); err != nil {
		return err
	}
	body := map[string]any{
		"features": X,
		"labels":   y,
		"groups":   group,
	}
	_, err := m.post("/fit", body)
	return err
}

// Predict 调用远程服务批量打分。
func (m *RemoteRanker) Predict(X [][]float64) ([]float64, error) {
	if len(X) == 0 {
		return []float64{}, nil
	}
	raw, err := m.post("/predict", map[string]any{"features": X})
	if err != nil {
		return nil, err
	}

	var result struct {
		Scores []float64 `json:"scores"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Scores) != len(X) {
		return nil, fmt.Errorf("response scores count mismatch: expected %d, got %d", len(X), len(result.Scores))
	}
	return result.Scores, nil
}

func (m *RemoteRanker) post(path string, body map[string]any) ([]byte, error) {
	if m.Client == nil {
		m.Client = &http.Client{Timeout: m.Timeout}
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, m.Endpoint+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rpc error: status=%d, body=%s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

var _ TrainableRanker = (*RemoteRanker)(nil)
