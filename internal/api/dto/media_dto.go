package dto

import "annonce_auto_v1_202608/pkg/geometry"

// ==================== 打码请求 ====================

// ApplyMaskRequest 对指定照片应用遮挡区域
// 矩形以画布坐标提交，服务端负责映射回原图像素空间
type ApplyMaskRequest struct {
	Rect          geometry.CanvasRect `json:"rect" binding:"required"`
	Fit           geometry.FitParams  `json:"fit" binding:"required"`
	Zoom          float64             `json:"zoom"`
	NaturalWidth  int                 `json:"natural_width" binding:"required,min=1"`
	NaturalHeight int                 `json:"natural_height" binding:"required,min=1"`
}

// ==================== 响应 ====================

// AddPhotosResultVO 添加照片结果
type AddPhotosResultVO struct {
	Added   int       `json:"added"`
	Dropped int       `json:"dropped"`
	Photos  []PhotoVO `json:"photos"`
}
