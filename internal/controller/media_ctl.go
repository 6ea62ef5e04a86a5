package controller

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"annonce_auto_v1_202608/internal/api/dto"
	"annonce_auto_v1_202608/internal/model"
	"annonce_auto_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// MediaController 照片管线控制器
type MediaController struct {
	drafts *service.DraftService
	media  *service.MediaService
}

func NewMediaController(drafts *service.DraftService, media *service.MediaService) *MediaController {
	return &MediaController{drafts: drafts, media: media}
}

// ==================== API 方法 ====================

// AddPhotos 添加照片
// @Summary 批量添加照片，超出4张的部分静默丢弃
// @Tags Media
// @Accept multipart/form-data
// @Param id path int true "会话ID"
// @Param photos formData file true "照片文件"
// @Success 200 {object} dto.AddPhotosResultVO
// @Router /api/wizard/sessions/{id}/photos [post]
func (ctrl *MediaController) AddPhotos(c *gin.Context) {
	draft, ok := ctrl.loadDraft(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	var files [][]byte
	for _, fh := range form.File["photos"] {
		f, err := fh.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			continue
		}
		files = append(files, data)
	}

	ctx := c.Request.Context()
	added, err := ctrl.media.AddPhotos(ctx, draft, files)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": dto.AddPhotosResultVO{
			Added:   added,
			Dropped: len(files) - added,
			Photos:  toPhotoVOs(draft),
		},
	})
}

// RemovePhoto 移除照片
// @Summary 按索引移除照片
// @Tags Media
// @Param id path int true "会话ID"
// @Param index path int true "照片索引"
// @Success 200 {array} dto.PhotoVO
// @Router /api/wizard/sessions/{id}/photos/{index} [delete]
func (ctrl *MediaController) RemovePhoto(c *gin.Context) {
	draft, ok := ctrl.loadDraft(c)
	if !ok {
		return
	}
	index, ok := ctrl.photoIndex(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := ctrl.media.RemovePhoto(ctx, draft, index); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toPhotoVOs(draft),
	})
}

// UploadPhoto 上传照片
// @Summary 把原始照片迁移到托管存储
// @Tags Media
// @Param id path int true "会话ID"
// @Param index path int true "照片索引"
// @Success 200 {object} dto.PhotoVO
// @Router /api/wizard/sessions/{id}/photos/{index}/upload [post]
func (ctrl *MediaController) UploadPhoto(c *gin.Context) {
	draft, ok := ctrl.loadDraft(c)
	if !ok {
		return
	}
	index, ok := ctrl.photoIndex(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := ctrl.media.EnsureUploaded(ctx, draft, index); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": dto.PhotoVO{
			Index:  index,
			URL:    draft.Photos[index].URL,
			Hosted: true,
			Masked: draft.Photos[index].Masked,
		},
	})
}

// ApplyMask 打码
// @Summary 对照片应用遮挡区域（画布坐标，服务端映射回原图）
// @Tags Media
// @Accept json
// @Param id path int true "会话ID"
// @Param index path int true "照片索引"
// @Param body body dto.ApplyMaskRequest true "遮挡参数"
// @Success 200 {object} dto.PhotoVO
// @Router /api/wizard/sessions/{id}/photos/{index}/mask [post]
func (ctrl *MediaController) ApplyMask(c *gin.Context) {
	draft, ok := ctrl.loadDraft(c)
	if !ok {
		return
	}
	index, ok := ctrl.photoIndex(c)
	if !ok {
		return
	}

	var req dto.ApplyMaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	err := ctrl.media.ApplyMask(ctx, draft, index, service.MaskRequest{
		Rect:          req.Rect,
		Fit:           req.Fit,
		Zoom:          req.Zoom,
		NaturalWidth:  req.NaturalWidth,
		NaturalHeight: req.NaturalHeight,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    502,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": dto.PhotoVO{
			Index:  index,
			URL:    draft.Photos[index].URL,
			Hosted: true,
			Masked: true,
		},
	})
}

// ==================== 辅助方法 ====================

func (ctrl *MediaController) loadDraft(c *gin.Context) (*model.WizardDraft, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的会话ID",
		})
		return nil, false
	}

	draft, err := ctrl.drafts.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    404,
			"message": "session introuvable",
		})
		return nil, false
	}
	return draft, true
}

func (ctrl *MediaController) photoIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的照片索引",
		})
		return 0, false
	}
	return index, true
}

func toPhotoVOs(d *model.WizardDraft) []dto.PhotoVO {
	vos := make([]dto.PhotoVO, len(d.Photos))
	for i := range d.Photos {
		vos[i] = dto.PhotoVO{
			Index:  i,
			URL:    d.Photos[i].URL,
			Hosted: d.Photos[i].Hosted(),
			Masked: d.Photos[i].Masked,
		}
	}
	return vos
}
