package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"annonce_auto_v1_202608/pkg/geometry"
)

// ==================== 配置 ====================

type RedactConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ==================== 服务实现 ====================

// RedactService 打码服务客户端
// 输入托管引用 + 原图像素空间的整数矩形，返回打码后的新引用
type RedactService struct {
	config *RedactConfig
	client *resty.Client
}

func NewRedactService(cfg *RedactConfig) *RedactService {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetRetryCount(2)
	client.SetBaseURL(cfg.BaseURL)
	if cfg.APIKey != "" {
		client.SetHeader("x-api-key", cfg.APIKey)
	}

	return &RedactService{config: cfg, client: client}
}

// Redact 永久遮挡指定区域
func (s *RedactService) Redact(ctx context.Context, locator string, rect geometry.MaskRect) (string, error) {
	body := map[string]interface{}{
		"url":      locator,
		"center_x": rect.CenterX,
		"center_y": rect.CenterY,
		"width":    rect.Width,
		"height":   rect.Height,
		"angle":    rect.Angle,
	}

	var result struct {
		Code int `json:"code"`
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post("/v1/redact")
	if err != nil {
		return "", fmt.Errorf("service de floutage injoignable: %v", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("service de floutage HTTP %d", resp.StatusCode())
	}
	if result.Data.URL == "" {
		return "", fmt.Errorf("réponse du service de floutage sans URL")
	}

	return result.Data.URL, nil
}
