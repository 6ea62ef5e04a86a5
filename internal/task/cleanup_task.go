package task

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"annonce_auto_v1_202608/internal/model"
	"annonce_auto_v1_202608/internal/repository"
	"annonce_auto_v1_202608/internal/service"
)

// CleanupTask 过期草稿清理任务
// 超过保留期仍在编辑的会话标记为放弃，已托管的照片一并回收
type CleanupTask struct {
	DraftRepo repository.DraftRepository
	Storage   *service.StorageService
	Cron      *cron.Cron

	// 草稿保留期，超期未活动即视为放弃
	retention time.Duration

	// 控制并发删除的数量
	concurrencyLimit int
}

func NewCleanupTask(draftRepo repository.DraftRepository, storage *service.StorageService) *CleanupTask {
	return &CleanupTask{
		DraftRepo:        draftRepo,
		Storage:          storage,
		Cron:             cron.New(cron.WithSeconds()), // 支持秒级控制
		retention:        7 * 24 * time.Hour,
		concurrencyLimit: 10,
	}
}

// Start 启动定时任务
func (t *CleanupTask) Start() {
	// 首次执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		log.Println("[Task] 服务启动，正在执行首次草稿清理...")
		t.cleanupJob(ctx)
	}()

	// 每天凌晨 3 点执行
	_, err := t.Cron.AddFunc("0 0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		t.cleanupJob(ctx)
	})

	if err != nil {
		log.Fatalf("无法启动草稿清理任务: %v", err)
	}

	t.Cron.Start()
	log.Println("草稿清理任务已启动 (每天凌晨3点执行)")
}

// cleanupJob 清理逻辑
func (t *CleanupTask) cleanupJob(ctx context.Context) {
	before := time.Now().Add(-t.retention)
	drafts, err := t.DraftRepo.FindStaleEditing(ctx, before)
	if err != nil {
		log.Printf("[Cron] 过期草稿查询失败: %v", err)
		return
	}
	if len(drafts) == 0 {
		return
	}

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	log.Printf("[Cron] 开始清理 %d 个过期草稿，并发上限: %d", len(drafts), t.concurrencyLimit)

	for _, draft := range drafts {
		select {
		case <-ctx.Done():
			log.Println("[Cron] 清理任务超时停止")
			return
		default:
		}

		sem <- struct{}{}
		wg.Add(1)

		currentDraft := draft

		go func(d model.WizardDraft) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := t.DraftRepo.MarkAbandoned(ctx, d.ID); err != nil {
				log.Printf("[Cron] 草稿 [%d] 标记放弃失败: %v", d.ID, err)
				return
			}

			// 回收已托管的照片，失败只记录不重试
			if t.Storage == nil {
				return
			}
			for _, url := range d.HostedPhotoURLs() {
				if err := t.Storage.Delete(ctx, url); err != nil {
					log.Printf("[Cron] 草稿 [%d] 照片回收失败 %s: %v", d.ID, url, err)
				}
			}
		}(currentDraft)
	}

	wg.Wait()
	log.Println("[Cron] 本轮草稿清理任务完成")
}
