package geometry

import "math"

// ==================== 数据结构 ====================

// CanvasRect 画布坐标系下的遮挡矩形（用户在缩放/平移后的画布上绘制）
// ScaleX/ScaleY 是用户拖拽手柄产生的拉伸系数，区别于画布的整体缩放
type CanvasRect struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Angle   float64 `json:"angle"` // 旋转角度（度）
	ScaleX  float64 `json:"scale_x"`
	ScaleY  float64 `json:"scale_y"`
}

// FitParams "contain" 适配参数：原图如何被缩放、居中到固定画布内
type FitParams struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// MaskRect 原图像素坐标系下的遮挡矩形（整数，交给打码服务）
type MaskRect struct {
	CenterX int `json:"center_x"`
	CenterY int `json:"center_y"`
	Width   int `json:"width"`
	Height  int `json:"height"`
	Angle   int `json:"angle"`
}

// ==================== 适配计算 ====================

// ContainFit 计算 "contain" 模式下的统一缩放系数与居中偏移
func ContainFit(naturalW, naturalH, canvasW, canvasH float64) FitParams {
	if naturalW <= 0 || naturalH <= 0 {
		return FitParams{Scale: 1}
	}

	scale := math.Min(canvasW/naturalW, canvasH/naturalH)
	return FitParams{
		Scale:   scale,
		OffsetX: (canvasW - naturalW*scale) / 2,
		OffsetY: (canvasH - naturalH*scale) / 2,
	}
}

// ==================== 坐标映射 ====================

// ToOriginalSpace 将画布坐标系下的矩形映射回原图像素坐标系
//
// 映射顺序：
//  1. 中心点先消除交互缩放 (coord / zoom)
//  2. 再消除适配偏移与适配缩放 ((coord - offset) / fitScale)
//  3. 宽高只受自身拉伸系数与统一缩放影响，旋转不改变矩形本身的宽高
//  4. 角度在等比缩放/平移下不变，原样透传
//
// 所有空间量裁剪到 [0, naturalW] x [0, naturalH] 并取整，
// 打码服务要求像素级整数几何
func ToOriginalSpace(r CanvasRect, fit FitParams, zoom float64, naturalW, naturalH int) MaskRect {
	if zoom == 0 {
		zoom = 1
	}
	if fit.Scale == 0 {
		fit.Scale = 1
	}

	scaleX := r.ScaleX
	if scaleX == 0 {
		scaleX = 1
	}
	scaleY := r.ScaleY
	if scaleY == 0 {
		scaleY = 1
	}

	cx := ((r.CenterX / zoom) - fit.OffsetX) / fit.Scale
	cy := ((r.CenterY / zoom) - fit.OffsetY) / fit.Scale
	w := (r.Width * scaleX / zoom) / fit.Scale
	h := (r.Height * scaleY / zoom) / fit.Scale

	maxW := float64(naturalW)
	maxH := float64(naturalH)

	return MaskRect{
		CenterX: round(clamp(cx, 0, maxW)),
		CenterY: round(clamp(cy, 0, maxH)),
		Width:   round(clamp(w, 0, maxW)),
		Height:  round(clamp(h, 0, maxH)),
		Angle:   round(r.Angle),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round(v float64) int {
	return int(math.Round(v))
}
