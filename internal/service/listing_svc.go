package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"annonce_auto_v1_202608/internal/api/dto"
)

// ==================== 配置 ====================

type ListingConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ==================== 服务实现 ====================

// ListingService 公告创建端点客户端
type ListingService struct {
	config *ListingConfig
	client *resty.Client
}

func NewListingService(cfg *ListingConfig) *ListingService {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetBaseURL(cfg.BaseURL)
	if cfg.APIKey != "" {
		client.SetHeader("x-api-key", cfg.APIKey)
	}

	return &ListingService{config: cfg, client: client}
}

// CreateListing 提交规范载荷，返回创建的公告
func (s *ListingService) CreateListing(ctx context.Context, payload *dto.ListingPayload) (*dto.ListingCreated, error) {
	var result struct {
		Code int                `json:"code"`
		Data dto.ListingCreated `json:"data"`
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&result).
		Post("/v1/listings")
	if err != nil {
		return nil, fmt.Errorf("endpoint de création injoignable: %v", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("création refusée: HTTP %d", resp.StatusCode())
	}

	return &result.Data, nil
}
