package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"annonce_auto_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// DraftRepository 向导草稿仓储接口
type DraftRepository interface {
	Create(ctx context.Context, draft *model.WizardDraft) error
	GetByID(ctx context.Context, id int64) (*model.WizardDraft, error)
	Save(ctx context.Context, draft *model.WizardDraft) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error

	// 清理相关
	FindStaleEditing(ctx context.Context, before time.Time) ([]model.WizardDraft, error)
	MarkAbandoned(ctx context.Context, id int64) error
}

// ==================== 仓储实现 ====================

type draftRepo struct {
	db *gorm.DB
}

// NewDraftRepository 创建草稿仓储
func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepo{db: db}
}

func (r *draftRepo) Create(ctx context.Context, draft *model.WizardDraft) error {
	return r.db.WithContext(ctx).Create(draft).Error
}

func (r *draftRepo) GetByID(ctx context.Context, id int64) (*model.WizardDraft, error) {
	var draft model.WizardDraft
	if err := r.db.WithContext(ctx).First(&draft, id).Error; err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *draftRepo) Save(ctx context.Context, draft *model.WizardDraft) error {
	return r.db.WithContext(ctx).Save(draft).Error
}

func (r *draftRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.WizardDraft{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *draftRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.WizardDraft{}, id).Error
}

// FindStaleEditing 查找超过期限仍处于编辑状态的草稿
func (r *draftRepo) FindStaleEditing(ctx context.Context, before time.Time) ([]model.WizardDraft, error) {
	var drafts []model.WizardDraft
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", model.DraftStatusEditing, before).
		Find(&drafts).Error
	return drafts, err
}

func (r *draftRepo) MarkAbandoned(ctx context.Context, id int64) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{
		"status": model.DraftStatusAbandoned,
	})
}
