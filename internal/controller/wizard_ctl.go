package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"annonce_auto_v1_202608/internal/api/dto"
	"annonce_auto_v1_202608/internal/model"
	"annonce_auto_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// WizardController 发布向导控制器
type WizardController struct {
	drafts    *service.DraftService
	schema    *service.SchemaService
	sequencer *service.SequencerService
	validate  *service.ValidationService
	publish   *service.PublishService
}

func NewWizardController(
	drafts *service.DraftService,
	schema *service.SchemaService,
	sequencer *service.SequencerService,
	validate *service.ValidationService,
	publish *service.PublishService,
) *WizardController {
	return &WizardController{
		drafts:    drafts,
		schema:    schema,
		sequencer: sequencer,
		validate:  validate,
		publish:   publish,
	}
}

// ==================== API 方法 ====================

// OpenSession 打开向导会话
// @Summary 创建一个空草稿并尽力预填联系信息
// @Tags Wizard
// @Accept json
// @Produce json
// @Param body body dto.OpenSessionRequest true "创建请求"
// @Success 201 {object} dto.DraftVO
// @Router /api/wizard/sessions [post]
func (ctrl *WizardController) OpenSession(c *gin.Context) {
	var req dto.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	draft, err := ctrl.drafts.OpenSession(ctx, req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "创建失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.toDraftVO(draft),
	})
}

// GetSession 读取会话
// @Summary 获取草稿当前状态（含有效步骤序列与动态字段）
// @Tags Wizard
// @Param id path int true "会话ID"
// @Success 200 {object} dto.DraftVO
// @Router /api/wizard/sessions/{id} [get]
func (ctrl *WizardController) GetSession(c *gin.Context) {
	draft, ok := ctrl.loadDraft(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.toDraftVO(draft),
	})
}

// UpdateDraft 字段补丁
// @Summary 更新草稿字段（出现的字段才更新；单输入步骤满足后自动推进）
// @Tags Wizard
// @Accept json
// @Param id path int true "会话ID"
// @Param body body dto.UpdateDraftRequest true "补丁"
// @Success 200 {object} dto.DraftVO
// @Router /api/wizard/sessions/{id} [patch]
func (ctrl *WizardController) UpdateDraft(c *gin.Context) {
	draft, ok := ctrl.loadDraft(c)
	if !ok {
		return
	}

	var req dto.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	if err := ctrl.drafts.ApplyUpdate(ctx, draft, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": err.Error(),
		})
		return
	}

	// 单输入步骤满足后自动前进（回退冷却期内不触发）
	if advanced, _ := ctrl.sequencer.MaybeAutoAdvance(draft); advanced {
		if err := ctrl.drafts.ApplyUpdate(ctx, draft, &dto.UpdateDraftRequest{}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    500,
				"message": "保存失败: " + err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.toDraftVO(draft),
	})
}

// GoNext 前进一步
// @Summary 当前步骤通过校验时前进
// @Tags Wizard
// @Param id path int true "会话ID"
// @Success 200 {object} dto.StepStateVO
// @Router /api/wizard/sessions/{id}/next [post]
func (ctrl *WizardController) GoNext(c *gin.Context) {
	draft, ok := ctrl.loadDraft(c)
	if !ok {
		return
	}

	if _, err := ctrl.sequencer.GoNext(draft); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":    422,
			"message": err.Error(),
			"data":    ctrl.toStepState(draft),
		})
		return
	}

	ctx := c.Request.Context()
	if err := ctrl.drafts.ApplyUpdate(ctx, draft, &dto.UpdateDraftRequest{}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "保存失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.toStepState(draft),
	})
}

// GoBack 后退一步
// @Summary 后退并回滚离开步骤之后的依赖选择
// @Tags Wizard
// @Param id path int true "会话ID"
// @Success 200 {object} dto.StepStateVO
// @Router /api/wizard/sessions/{id}/back [post]
func (ctrl *WizardController) GoBack(c *gin.Context) {
	draft, ok := ctrl.loadDraft(c)
	if !ok {
		return
	}

	ctrl.sequencer.GoBack(draft)

	ctx := c.Request.Context()
	if err := ctrl.drafts.ApplyUpdate(ctx, draft, &dto.UpdateDraftRequest{}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "保存失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.toStepState(draft),
	})
}

// AbandonSession 放弃会话
// @Summary 放弃草稿（已上传照片由清理任务兜底）
// @Tags Wizard
// @Param id path int true "会话ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/wizard/sessions/{id} [delete]
func (ctrl *WizardController) AbandonSession(c *gin.Context) {
	draft, ok := ctrl.loadDraft(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := ctrl.drafts.Abandon(ctx, draft.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "放弃失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "annonce abandonnée",
	})
}

// GetCategories 类目表
// @Summary 获取一级/二级类目
// @Tags Wizard
// @Success 200 {object} map[string]interface{}
// @Router /api/wizard/categories [get]
func (ctrl *WizardController) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    model.AllCategories(),
	})
}

// GetFields 动态字段
// @Summary 获取二级类目的有序字段描述
// @Tags Wizard
// @Param subcategory_id path string true "二级类目ID"
// @Success 200 {array} dto.FieldVO
// @Router /api/wizard/fields/{subcategory_id} [get]
func (ctrl *WizardController) GetFields(c *gin.Context) {
	subcategoryID := c.Param("subcategory_id")

	fields := ctrl.schema.ResolveFields(subcategoryID)
	vos := make([]dto.FieldVO, len(fields))
	for i, f := range fields {
		vos[i] = toFieldVO(f)
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    vos,
	})
}

// Publish 发布
// @Summary 配额检查后发布草稿，成功返回置顶推销
// @Tags Wizard
// @Param id path int true "会话ID"
// @Success 200 {object} dto.PublishResultVO
// @Router /api/wizard/sessions/{id}/publish [post]
func (ctrl *WizardController) Publish(c *gin.Context) {
	draft, ok := ctrl.loadDraft(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	result, err := ctrl.publish.Publish(ctx, draft)
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
		"data":    result,
	})
}

// ==================== 辅助方法 ====================

func (ctrl *WizardController) loadDraft(c *gin.Context) (*model.WizardDraft, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
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

func (ctrl *WizardController) toStepState(d *model.WizardDraft) dto.StepStateVO {
	steps := ctrl.sequencer.EffectiveSteps(d)
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = string(s)
	}
	current := ctrl.sequencer.CurrentStep(d)
	return dto.StepStateVO{
		Steps:      names,
		Cursor:     d.StepCursor,
		Current:    string(current),
		CanAdvance: ctrl.validate.CanAdvance(current, d),
	}
}

func (ctrl *WizardController) toDraftVO(d *model.WizardDraft) dto.DraftVO {
	photos := make([]dto.PhotoVO, len(d.Photos))
	for i := range d.Photos {
		photos[i] = dto.PhotoVO{
			Index:  i,
			URL:    d.Photos[i].URL,
			Hosted: d.Photos[i].Hosted(),
			Masked: d.Photos[i].Masked,
		}
	}

	fields := ctrl.schema.ResolveFields(d.SubcategoryID)
	fieldVOs := make([]dto.FieldVO, len(fields))
	for i, f := range fields {
		fieldVOs[i] = toFieldVO(f)
	}

	return dto.DraftVO{
		ID:              d.ID,
		UserID:          d.UserID,
		Status:          d.Status,
		Intent:          d.Intent,
		CategoryID:      d.CategoryID,
		SubcategoryID:   d.SubcategoryID,
		Condition:       d.Condition,
		Title:           d.Title,
		Description:     d.Description,
		SpecificDetails: d.SpecificDetails,
		Photos:          photos,
		Price:           d.Price,
		City:            d.City,
		PostalCode:      d.PostalCode,
		Contact: dto.ContactVO{
			Phone:                 d.Contact.Phone,
			Email:                 d.Contact.Email,
			Whatsapp:              d.Contact.Whatsapp,
			ShowPhone:             d.Contact.ShowPhone,
			ShowWhatsapp:          d.Contact.ShowWhatsapp,
			ShowInternalMessaging: d.Contact.ShowInternalMessaging,
		},
		Fields:       fieldVOs,
		StepState:    ctrl.toStepState(d),
		PublishError: d.PublishError,
	}
}

func toFieldVO(f service.FieldDescriptor) dto.FieldVO {
	return dto.FieldVO{
		ID:          f.ID,
		Kind:        string(f.Kind),
		Required:    f.Required,
		Min:         f.Min,
		Max:         f.Max,
		HasBounds:   f.HasBounds,
		Options:     f.Options,
		Placeholder: f.Placeholder,
	}
}
