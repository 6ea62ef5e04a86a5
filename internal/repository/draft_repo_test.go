package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"annonce_auto_v1_202608/internal/model"
)

// ==================== 测试辅助函数 ====================

func setupRepoTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.WizardDraft{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

// ==================== CRUD 测试 ====================

func TestDraftRepo_CreateAndGet(t *testing.T) {
	repo := NewDraftRepository(setupRepoTestDB(t))
	ctx := context.Background()

	draft := &model.WizardDraft{
		UserID: 42,
		Status: model.DraftStatusEditing,
		Photos: model.PhotoList{{Data: []byte("p1")}},
		Contact: model.Contact{
			Phone:     "+33612345678",
			ShowPhone: true,
		},
	}
	if err := repo.Create(ctx, draft); err != nil {
		t.Fatalf("Create 出错: %v", err)
	}

	got, err := repo.GetByID(ctx, draft.ID)
	if err != nil {
		t.Fatalf("GetByID 出错: %v", err)
	}
	// JSON 列往返
	if len(got.Photos) != 1 || string(got.Photos[0].Data) != "p1" {
		t.Errorf("照片列往返失败: %+v", got.Photos)
	}
	if got.Contact.Phone != "+33612345678" || !got.Contact.ShowPhone {
		t.Errorf("联系方式往返失败: %+v", got.Contact)
	}
}

func TestDraftRepo_UpdateFields(t *testing.T) {
	repo := NewDraftRepository(setupRepoTestDB(t))
	ctx := context.Background()

	draft := &model.WizardDraft{UserID: 42, Status: model.DraftStatusEditing}
	repo.Create(ctx, draft)

	if err := repo.UpdateFields(ctx, draft.ID, map[string]interface{}{
		"publish_error": "HTTP 503",
	}); err != nil {
		t.Fatalf("UpdateFields 出错: %v", err)
	}

	got, _ := repo.GetByID(ctx, draft.ID)
	if got.PublishError != "HTTP 503" {
		t.Errorf("PublishError = %q", got.PublishError)
	}
}

// ==================== 清理查询测试 ====================

func TestDraftRepo_FindStaleEditing(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewDraftRepository(db)
	ctx := context.Background()

	stale := &model.WizardDraft{UserID: 1, Status: model.DraftStatusEditing}
	fresh := &model.WizardDraft{UserID: 2, Status: model.DraftStatusEditing}
	published := &model.WizardDraft{UserID: 3, Status: model.DraftStatusPublished}
	repo.Create(ctx, stale)
	repo.Create(ctx, fresh)
	repo.Create(ctx, published)

	// 人为做旧
	old := time.Now().Add(-10 * 24 * time.Hour)
	db.Model(&model.WizardDraft{}).Where("id IN ?", []int64{stale.ID, published.ID}).
		UpdateColumn("updated_at", old)

	got, err := repo.FindStaleEditing(ctx, time.Now().Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("FindStaleEditing 出错: %v", err)
	}
	// 只命中过期且仍在编辑的草稿
	if len(got) != 1 || got[0].ID != stale.ID {
		t.Errorf("FindStaleEditing = %d 条, want 1 (id=%d)", len(got), stale.ID)
	}
}

func TestDraftRepo_MarkAbandoned(t *testing.T) {
	repo := NewDraftRepository(setupRepoTestDB(t))
	ctx := context.Background()

	draft := &model.WizardDraft{UserID: 42, Status: model.DraftStatusEditing}
	repo.Create(ctx, draft)

	if err := repo.MarkAbandoned(ctx, draft.ID); err != nil {
		t.Fatalf("MarkAbandoned 出错: %v", err)
	}
	got, _ := repo.GetByID(ctx, draft.ID)
	if got.Status != model.DraftStatusAbandoned {
		t.Errorf("Status = %s, want abandoned", got.Status)
	}
}
