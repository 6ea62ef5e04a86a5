package service

import (
	"context"
	"fmt"
	"sync"

	"annonce_auto_v1_202608/internal/model"
	"annonce_auto_v1_202608/internal/repository"
	"annonce_auto_v1_202608/pkg/geometry"
)

// ==================== 外部服务依赖 ====================

// StoragePort 媒体存储接口（实现见 storage_svc.go）
type StoragePort interface {
	Upload(ctx context.Context, data []byte, filename string, contentType string) (url string, err error)
}

// RedactPort 打码服务接口（实现见 redact_svc.go）
type RedactPort interface {
	Redact(ctx context.Context, locator string, rect geometry.MaskRect) (maskedLocator string, err error)
}

// ==================== 服务实现 ====================

// MediaService 照片管线：收集、上传、打码编排
// 上传可按索引并发，但同一索引的打码必须等它自己的上传先完成
type MediaService struct {
	repo    repository.DraftRepository
	storage StoragePort
	redact  RedactPort

	// 按 (草稿,索引) 串行化 raw->hosted 迁移
	uploadLocks sync.Map
}

func NewMediaService(repo repository.DraftRepository, storage StoragePort, redact RedactPort) *MediaService {
	return &MediaService{
		repo:    repo,
		storage: storage,
		redact:  redact,
	}
}

// ==================== 照片收集 ====================

// AddPhotos 追加照片，最多补到 4 张
// 超出部分静默丢弃：这是软上限，不是校验失败
func (m *MediaService) AddPhotos(ctx context.Context, d *model.WizardDraft, files [][]byte) (added int, err error) {
	if !d.Editable() {
		return 0, fmt.Errorf("cette annonce n'est plus modifiable")
	}

	room := model.MaxPhotos - len(d.Photos)
	for _, data := range files {
		if room <= 0 {
			break
		}
		if len(data) == 0 {
			continue
		}
		d.Photos = append(d.Photos, model.Photo{Data: data})
		room--
		added++
	}

	if added == 0 {
		// 集合不变就不落库，也不报错
		return 0, nil
	}
	return added, m.repo.Save(ctx, d)
}

// RemovePhoto 移除指定照片
func (m *MediaService) RemovePhoto(ctx context.Context, d *model.WizardDraft, index int) error {
	if !d.Editable() {
		return fmt.Errorf("cette annonce n'est plus modifiable")
	}
	if index < 0 || index >= len(d.Photos) {
		return fmt.Errorf("photo %d introuvable", index)
	}

	d.Photos = append(d.Photos[:index], d.Photos[index+1:]...)
	return m.repo.Save(ctx, d)
}

// ==================== 上传 ====================

// EnsureUploaded 保证照片处于托管状态（raw -> hosted）
// 失败时照片保持原始形态，不会被部分替换
func (m *MediaService) EnsureUploaded(ctx context.Context, d *model.WizardDraft, index int) error {
	if index < 0 || index >= len(d.Photos) {
		return fmt.Errorf("photo %d introuvable", index)
	}

	lock := m.lockFor(d.ID, index)
	lock.Lock()
	defer lock.Unlock()

	photo := &d.Photos[index]
	if photo.Hosted() {
		return nil
	}
	if len(photo.Data) == 0 {
		return fmt.Errorf("photo %d sans contenu", index)
	}

	filename := fmt.Sprintf("annonce_%d_photo_%d.jpg", d.ID, index)
	url, err := m.storage.Upload(ctx, photo.Data, filename, "image/jpeg")
	if err != nil {
		return fmt.Errorf("échec de l'envoi de la photo: %v", err)
	}

	photo.URL = url
	photo.Data = nil
	return m.repo.Save(ctx, d)
}

// ==================== 打码 ====================

// ApplyMask 对指定照片应用遮挡区域
// 顺序约束：同一索引先上传后打码；矩形映射回原图像素空间后才交给打码服务
// 打码标记单向，正常编辑不会回退
func (m *MediaService) ApplyMask(ctx context.Context, d *model.WizardDraft, index int, req MaskRequest) error {
	if !d.Editable() {
		return fmt.Errorf("cette annonce n'est plus modifiable")
	}

	if err := m.EnsureUploaded(ctx, d, index); err != nil {
		return err
	}

	rect := geometry.ToOriginalSpace(req.Rect, req.Fit, req.Zoom, req.NaturalWidth, req.NaturalHeight)

	maskedURL, err := m.redact.Redact(ctx, d.Photos[index].URL, rect)
	if err != nil {
		return fmt.Errorf("échec du floutage: %v", err)
	}

	if err := d.MarkPhotoMasked(index, maskedURL); err != nil {
		return err
	}
	return m.repo.Save(ctx, d)
}

// MaskRequest 画布坐标系下的打码参数
type MaskRequest struct {
	Rect          geometry.CanvasRect
	Fit           geometry.FitParams
	Zoom          float64
	NaturalWidth  int
	NaturalHeight int
}

func (m *MediaService) lockFor(draftID int64, index int) *sync.Mutex {
	key := fmt.Sprintf("%d/%d", draftID, index)
	actual, _ := m.uploadLocks.LoadOrStore(key, &sync.Mutex{})
	return actual.(*sync.Mutex)
}
