package service

import (
	"context"
	"fmt"
	"testing"

	"annonce_auto_v1_202608/internal/model"
	"annonce_auto_v1_202608/internal/repository"
	"annonce_auto_v1_202608/pkg/geometry"
)

// ==================== Mock 实现 ====================

type mockStorage struct {
	uploadFn func(ctx context.Context, data []byte, filename, contentType string) (string, error)
	calls    int
}

func (m *mockStorage) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	m.calls++
	if m.uploadFn != nil {
		return m.uploadFn(ctx, data, filename, contentType)
	}
	return fmt.Sprintf("https://cdn.example.com/%s", filename), nil
}

type mockRedact struct {
	redactFn func(ctx context.Context, locator string, rect geometry.MaskRect) (string, error)
	lastRect geometry.MaskRect
}

func (m *mockRedact) Redact(ctx context.Context, locator string, rect geometry.MaskRect) (string, error) {
	m.lastRect = rect
	if m.redactFn != nil {
		return m.redactFn(ctx, locator, rect)
	}
	return locator + "?masked=1", nil
}

// ==================== 测试辅助函数 ====================

func newTestMediaService(t *testing.T) (*MediaService, *mockStorage, *mockRedact, *model.WizardDraft) {
	repo := repository.NewDraftRepository(setupServiceTestDB(t))
	storage := &mockStorage{}
	redact := &mockRedact{}
	svc := NewMediaService(repo, storage, redact)

	draft := &model.WizardDraft{UserID: 42, Status: model.DraftStatusEditing}
	if err := repo.Create(context.Background(), draft); err != nil {
		t.Fatalf("创建测试草稿失败: %v", err)
	}
	return svc, storage, redact, draft
}

func maskReq() MaskRequest {
	return MaskRequest{
		Rect:          geometry.CanvasRect{CenterX: 210, CenterY: 110, Width: 100, Height: 40, Angle: 15, ScaleX: 1, ScaleY: 1},
		Fit:           geometry.FitParams{Scale: 0.5, OffsetX: 10, OffsetY: 10},
		Zoom:          2,
		NaturalWidth:  800,
		NaturalHeight: 600,
	}
}

// ==================== 照片收集测试 ====================

func TestAddPhotos_SoftCap(t *testing.T) {
	svc, _, _, draft := newTestMediaService(t)
	ctx := context.Background()

	files := [][]byte{
		[]byte("p1"), []byte("p2"), []byte("p3"), []byte("p4"), []byte("p5"), []byte("p6"),
	}
	added, err := svc.AddPhotos(ctx, draft, files)
	if err != nil {
		t.Fatalf("AddPhotos 出错: %v", err)
	}
	// 第 5、6 张静默丢弃
	if added != 4 || len(draft.Photos) != 4 {
		t.Errorf("added=%d photos=%d, want 4/4", added, len(draft.Photos))
	}

	// 已满再加：无变化也无错误
	added, err = svc.AddPhotos(ctx, draft, [][]byte{[]byte("p7")})
	if err != nil {
		t.Fatalf("满额追加不应报错: %v", err)
	}
	if added != 0 || len(draft.Photos) != 4 {
		t.Errorf("满额追加 added=%d photos=%d, want 0/4", added, len(draft.Photos))
	}
}

func TestAddPhotos_SkipsEmpty(t *testing.T) {
	svc, _, _, draft := newTestMediaService(t)

	added, err := svc.AddPhotos(context.Background(), draft, [][]byte{nil, []byte("p1"), {}})
	if err != nil {
		t.Fatalf("AddPhotos 出错: %v", err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
}

func TestRemovePhoto(t *testing.T) {
	svc, _, _, draft := newTestMediaService(t)
	ctx := context.Background()
	svc.AddPhotos(ctx, draft, [][]byte{[]byte("p1"), []byte("p2"), []byte("p3")})

	if err := svc.RemovePhoto(ctx, draft, 1); err != nil {
		t.Fatalf("RemovePhoto 出错: %v", err)
	}
	if len(draft.Photos) != 2 {
		t.Errorf("photos = %d, want 2", len(draft.Photos))
	}
	if string(draft.Photos[1].Data) != "p3" {
		t.Errorf("删除后顺序错误: %q", draft.Photos[1].Data)
	}

	if err := svc.RemovePhoto(ctx, draft, 5); err == nil {
		t.Error("越界索引应报错")
	}
}

// ==================== 上传测试 ====================

func TestEnsureUploaded(t *testing.T) {
	svc, storage, _, draft := newTestMediaService(t)
	ctx := context.Background()
	svc.AddPhotos(ctx, draft, [][]byte{[]byte("p1")})

	if err := svc.EnsureUploaded(ctx, draft, 0); err != nil {
		t.Fatalf("EnsureUploaded 出错: %v", err)
	}
	if !draft.Photos[0].Hosted() {
		t.Error("照片未迁移到托管状态")
	}
	if draft.Photos[0].Data != nil {
		t.Error("托管后原始数据应释放")
	}

	// 已托管再调用：幂等，不再上传
	if err := svc.EnsureUploaded(ctx, draft, 0); err != nil {
		t.Fatalf("重复 EnsureUploaded 出错: %v", err)
	}
	if storage.calls != 1 {
		t.Errorf("上传调用 = %d 次, want 1", storage.calls)
	}
}

func TestEnsureUploaded_FailureKeepsRaw(t *testing.T) {
	svc, storage, _, draft := newTestMediaService(t)
	ctx := context.Background()
	svc.AddPhotos(ctx, draft, [][]byte{[]byte("p1")})

	storage.uploadFn = func(ctx context.Context, data []byte, filename, contentType string) (string, error) {
		return "", fmt.Errorf("stockage indisponible")
	}

	if err := svc.EnsureUploaded(ctx, draft, 0); err == nil {
		t.Fatal("上传失败应报错")
	}
	// 失败后照片保持原始形态
	if draft.Photos[0].Hosted() {
		t.Error("失败后不应标记托管")
	}
	if string(draft.Photos[0].Data) != "p1" {
		t.Error("失败后原始数据不应丢失")
	}
}

// ==================== 打码测试 ====================

func TestApplyMask_UploadsFirst(t *testing.T) {
	svc, storage, redact, draft := newTestMediaService(t)
	ctx := context.Background()
	svc.AddPhotos(ctx, draft, [][]byte{[]byte("p1")})

	if err := svc.ApplyMask(ctx, draft, 0, maskReq()); err != nil {
		t.Fatalf("ApplyMask 出错: %v", err)
	}
	// 打码前自动完成上传
	if storage.calls != 1 {
		t.Errorf("上传调用 = %d 次, want 1", storage.calls)
	}
	if !draft.Photos[0].Masked {
		t.Error("打码标记未置位")
	}
	if !draft.Photos[0].Hosted() {
		t.Error("打码后照片应为托管状态")
	}

	// 矩形已映射回原图像素空间
	want := geometry.MaskRect{CenterX: 190, CenterY: 90, Width: 100, Height: 40, Angle: 15}
	if redact.lastRect != want {
		t.Errorf("映射矩形 = %+v, want %+v", redact.lastRect, want)
	}
}

func TestApplyMask_RedactFailure(t *testing.T) {
	svc, _, redact, draft := newTestMediaService(t)
	ctx := context.Background()
	svc.AddPhotos(ctx, draft, [][]byte{[]byte("p1")})

	redact.redactFn = func(ctx context.Context, locator string, rect geometry.MaskRect) (string, error) {
		return "", fmt.Errorf("service indisponible")
	}

	if err := svc.ApplyMask(ctx, draft, 0, maskReq()); err == nil {
		t.Fatal("打码失败应报错")
	}
	// 失败后标记不置位，托管引用不变
	if draft.Photos[0].Masked {
		t.Error("失败后打码标记不应置位")
	}
}

func TestApplyMask_MonotonicFlag(t *testing.T) {
	svc, _, _, draft := newTestMediaService(t)
	ctx := context.Background()
	svc.AddPhotos(ctx, draft, [][]byte{[]byte("p1")})

	if err := svc.ApplyMask(ctx, draft, 0, maskReq()); err != nil {
		t.Fatalf("ApplyMask 出错: %v", err)
	}
	firstURL := draft.Photos[0].URL

	// 二次打码：引用更新，标记保持置位
	if err := svc.ApplyMask(ctx, draft, 0, maskReq()); err != nil {
		t.Fatalf("二次 ApplyMask 出错: %v", err)
	}
	if !draft.Photos[0].Masked {
		t.Error("二次打码后标记不应回退")
	}
	if draft.Photos[0].URL == firstURL {
		t.Error("二次打码应产生新引用")
	}
}
