package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ==================== 配置 ====================

type ProfileConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ==================== 服务实现 ====================

// ProfileService 身份/档案服务客户端
// 只读：取用户已保存的联系信息，预填联系步骤
type ProfileService struct {
	config *ProfileConfig
	client *resty.Client
}

func NewProfileService(cfg *ProfileConfig) *ProfileService {
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

	return &ProfileService{config: cfg, client: client}
}

// FetchContact 读取保存的联系信息
func (s *ProfileService) FetchContact(ctx context.Context, userID int64) (*SavedContact, error) {
	var result struct {
		Code int          `json:"code"`
		Data SavedContact `json:"data"`
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("userID", fmt.Sprintf("%d", userID)).
		SetResult(&result).
		Get("/v1/users/{userID}/contact")
	if err != nil {
		return nil, fmt.Errorf("service profil injoignable: %v", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("service profil HTTP %d", resp.StatusCode())
	}

	return &result.Data, nil
}
