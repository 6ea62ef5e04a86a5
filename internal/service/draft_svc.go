package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"gorm.io/datatypes"

	"annonce_auto_v1_202608/internal/api/dto"
	"annonce_auto_v1_202608/internal/model"
	"annonce_auto_v1_202608/internal/repository"
)

// ==================== 外部服务依赖 ====================

// SavedContact 用户档案中保存的联系信息（用于预填联系步骤）
type SavedContact struct {
	Phone      string `json:"phone"`
	Whatsapp   string `json:"whatsapp"`
	Email      string `json:"email"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// ProfilePort 身份/档案服务接口
type ProfilePort interface {
	FetchContact(ctx context.Context, userID int64) (*SavedContact, error)
}

// ==================== 文本净化 ====================

// 标题：字母/数字/空白/重音字母
var titleDisallowed = regexp.MustCompile(`[^0-9A-Za-zÀ-ÖØ-öø-ÿŒœ\s]`)

// 描述：在标题字符集基础上放开有限的标点
var descriptionDisallowed = regexp.MustCompile(`[^0-9A-Za-zÀ-ÖØ-öø-ÿŒœ\s,.;:!?'()\-/€%]`)

const (
	titleMaxLen       = 50
	descriptionMaxLen = 300
)

// SanitizeTitle 标题净化：剔除非法字符后截断到 50 字符（幂等）
func SanitizeTitle(s string) string {
	return truncateRunes(titleDisallowed.ReplaceAllString(s, ""), titleMaxLen)
}

// SanitizeDescription 描述净化：剔除非法字符后截断到 300 字符（幂等）
func SanitizeDescription(s string) string {
	return truncateRunes(descriptionDisallowed.ReplaceAllString(s, ""), descriptionMaxLen)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// 本地法国格式：0 + 9 位
var domesticPhonePattern = regexp.MustCompile(`^0[1-9][0-9]{8}$`)

// NormalizePhone 本地格式归一化为国际格式（录入时执行）
// 归一化与校验是两回事：校验器永远不做归一化
func NormalizePhone(phone string) string {
	cleaned := strings.NewReplacer(" ", "", ".", "", "-", "").Replace(strings.TrimSpace(phone))
	if domesticPhonePattern.MatchString(cleaned) {
		return "+33" + cleaned[1:]
	}
	return cleaned
}

// ==================== 服务实现 ====================

// DraftService 草稿存取：净化后的字段写入与级联重置
// 不做任何校验，校验是 ValidationService 的只读关注点
type DraftService struct {
	repo    repository.DraftRepository
	profile ProfilePort
}

func NewDraftService(repo repository.DraftRepository, profile ProfilePort) *DraftService {
	return &DraftService{repo: repo, profile: profile}
}

// ==================== 会话生命周期 ====================

// OpenSession 打开一个空草稿，尽力从用户档案预填联系信息
func (s *DraftService) OpenSession(ctx context.Context, userID int64) (*model.WizardDraft, error) {
	draft := &model.WizardDraft{
		UserID:          userID,
		Status:          model.DraftStatusEditing,
		StepCursor:      1,
		AutoAdvance:     true,
		SpecificDetails: datatypes.JSONMap{},
		Photos:          model.PhotoList{},
	}

	// 预填失败不阻塞会话打开
	if s.profile != nil {
		if saved, err := s.profile.FetchContact(ctx, userID); err == nil && saved != nil {
			draft.Contact.Phone = NormalizePhone(saved.Phone)
			draft.Contact.Whatsapp = saved.Whatsapp
			draft.Contact.Email = saved.Email
			draft.City = saved.City
			draft.PostalCode = saved.PostalCode
		} else if err != nil {
			log.Printf("[Draft] 档案预填失败 user=%d: %v", userID, err)
		}
	}

	if err := s.repo.Create(ctx, draft); err != nil {
		return nil, fmt.Errorf("création de session impossible: %v", err)
	}
	return draft, nil
}

// Get 读取草稿
func (s *DraftService) Get(ctx context.Context, id int64) (*model.WizardDraft, error) {
	return s.repo.GetByID(ctx, id)
}

// Abandon 放弃草稿
// 已上传的照片留在外部存储里（接受的资源泄漏，由清理任务兜底）
func (s *DraftService) Abandon(ctx context.Context, id int64) error {
	return s.repo.MarkAbandoned(ctx, id)
}

// ==================== 字段写入 ====================

// ApplyUpdate 应用字段补丁：出现的字段逐个经由净化写入
func (s *DraftService) ApplyUpdate(ctx context.Context, d *model.WizardDraft, req *dto.UpdateDraftRequest) error {
	if !d.Editable() {
		return fmt.Errorf("cette annonce n'est plus modifiable")
	}

	if req.Intent != nil {
		s.setIntent(d, *req.Intent)
	}
	if req.CategoryID != nil {
		s.setCategory(d, *req.CategoryID)
	}
	if req.SubcategoryID != nil {
		d.SubcategoryID = *req.SubcategoryID
	}
	if req.Condition != nil {
		d.Condition = *req.Condition
	}
	if req.Title != nil {
		d.Title = SanitizeTitle(*req.Title)
	}
	if req.Description != nil {
		d.Description = SanitizeDescription(*req.Description)
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return fmt.Errorf("le prix ne peut pas être négatif")
		}
		d.Price = *req.Price
	}
	if req.City != nil {
		d.City = *req.City
	}
	if req.PostalCode != nil {
		d.PostalCode = *req.PostalCode
	}
	if req.Phone != nil {
		d.Contact.Phone = NormalizePhone(*req.Phone)
	}
	if req.Email != nil {
		d.Contact.Email = *req.Email
	}
	if req.Whatsapp != nil {
		d.Contact.Whatsapp = *req.Whatsapp
	}
	if req.ShowPhone != nil {
		d.Contact.ShowPhone = *req.ShowPhone
	}
	if req.ShowWhatsapp != nil {
		d.Contact.ShowWhatsapp = *req.ShowWhatsapp
	}
	if req.ShowInternalMessaging != nil {
		d.Contact.ShowInternalMessaging = *req.ShowInternalMessaging
	}
	for key, value := range req.SpecificDetails {
		s.setSpecificDetail(d, key, value)
	}

	return s.repo.Save(ctx, d)
}

// UpdateSpecificDetail 单个动态字段写入
func (s *DraftService) UpdateSpecificDetail(ctx context.Context, d *model.WizardDraft, key string, value interface{}) error {
	if !d.Editable() {
		return fmt.Errorf("cette annonce n'est plus modifiable")
	}
	s.setSpecificDetail(d, key, value)
	return s.repo.Save(ctx, d)
}

// setIntent 意向变更级联：类目与派生选择全部清空
func (s *DraftService) setIntent(d *model.WizardDraft, intent string) {
	if d.Intent == intent {
		return
	}
	d.Intent = intent
	d.ResetTaxonomy()
}

// setCategory 类目变更级联：二级类目与动态字段清空
// 这是可观察的副作用，不是单纯的赋值
func (s *DraftService) setCategory(d *model.WizardDraft, categoryID string) {
	if d.CategoryID == categoryID {
		return
	}
	d.CategoryID = categoryID
	d.ResetSubcategory()
}

// setSpecificDetail schema 之外的键也照存不误，校验端自会忽略
func (s *DraftService) setSpecificDetail(d *model.WizardDraft, key string, value interface{}) {
	if d.SpecificDetails == nil {
		d.SpecificDetails = datatypes.JSONMap{}
	}
	d.SpecificDetails[key] = value
}
