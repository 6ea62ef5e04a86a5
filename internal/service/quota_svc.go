package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ==================== 配置 ====================

type QuotaConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// QuotaDecision 配额裁决
type QuotaDecision struct {
	Allowed bool   `json:"allowed"`
	Message string `json:"message"`
}

// ==================== 服务实现 ====================

// QuotaService 配额服务客户端
// 配额拒绝是预期的业务状态，不是错误：消息原样透传给用户
type QuotaService struct {
	config *QuotaConfig
	client *resty.Client
}

func NewQuotaService(cfg *QuotaConfig) *QuotaService {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetRetryCount(2)
	client.SetBaseURL(cfg.BaseURL)
	if cfg.APIKey != "" {
		client.SetHeader("x-api-key", cfg.APIKey)
	}

	return &QuotaService{config: cfg, client: client}
}

// Check 询问用户是否还能发布新公告
func (s *QuotaService) Check(ctx context.Context, userID int64) (*QuotaDecision, error) {
	var result struct {
		Code int           `json:"code"`
		Data QuotaDecision `json:"data"`
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("userID", fmt.Sprintf("%d", userID)).
		SetResult(&result).
		Get("/v1/users/{userID}/listing-quota")
	if err != nil {
		return nil, fmt.Errorf("service quota injoignable: %v", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("service quota HTTP %d", resp.StatusCode())
	}

	return &result.Data, nil
}
