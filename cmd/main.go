package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"annonce_auto_v1_202608/internal/controller"
	"annonce_auto_v1_202608/internal/model"
	"annonce_auto_v1_202608/internal/repository"
	"annonce_auto_v1_202608/internal/router"
	"annonce_auto_v1_202608/internal/service"
	"annonce_auto_v1_202608/internal/task"
	"annonce_auto_v1_202608/pkg/database"
)

func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps)

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r, deps.Controllers.Wizard, deps.Controllers.Media)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Draft repository.DraftRepository
}

// Services 服务集合
type Services struct {
	Schema    *service.SchemaService
	Validate  *service.ValidationService
	Sequencer *service.SequencerService
	Draft     *service.DraftService
	Media     *service.MediaService
	Publish   *service.PublishService
	Storage   *service.StorageService
	Profile   *service.ProfileService
	Quota     *service.QuotaService
	Redact    *service.RedactService
	Listing   *service.ListingService
}

// Controllers 控制器集合
type Controllers struct {
	Wizard *controller.WizardController
	Media  *controller.MediaController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=postgres password=postgres dbname=annonce_auto port=5432 sslmode=disable")
	return database.InitDB(dsn,
		&model.WizardDraft{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Draft: repository.NewDraftRepository(db),
	}

	// -------- 存储服务 --------
	storageSvc := initStorageService()

	// -------- 外部协作方 --------
	profileSvc := service.NewProfileService(&service.ProfileConfig{
		BaseURL: getEnv("PROFILE_API_URL", "http://localhost:9001"),
		APIKey:  getEnv("PROFILE_API_KEY", ""),
	})
	quotaSvc := service.NewQuotaService(&service.QuotaConfig{
		BaseURL: getEnv("QUOTA_API_URL", "http://localhost:9002"),
		APIKey:  getEnv("QUOTA_API_KEY", ""),
	})
	redactSvc := service.NewRedactService(&service.RedactConfig{
		BaseURL: getEnv("REDACT_API_URL", "http://localhost:9003"),
		APIKey:  getEnv("REDACT_API_KEY", ""),
	})
	listingSvc := service.NewListingService(&service.ListingConfig{
		BaseURL: getEnv("LISTING_API_URL", "http://localhost:9004"),
		APIKey:  getEnv("LISTING_API_KEY", ""),
	})

	// -------- 业务服务 --------
	schemaSvc := service.NewSchemaService()
	validateSvc := service.NewValidationService(schemaSvc)
	sequencerSvc := service.NewSequencerService(validateSvc)
	draftSvc := service.NewDraftService(repos.Draft, profileSvc)
	mediaSvc := service.NewMediaService(repos.Draft, storageSvc, redactSvc)
	publishSvc := service.NewPublishService(repos.Draft, quotaSvc, listingSvc)

	services := &Services{
		Schema:    schemaSvc,
		Validate:  validateSvc,
		Sequencer: sequencerSvc,
		Draft:     draftSvc,
		Media:     mediaSvc,
		Publish:   publishSvc,
		Storage:   storageSvc,
		Profile:   profileSvc,
		Quota:     quotaSvc,
		Redact:    redactSvc,
		Listing:   listingSvc,
	}

	// -------- Controller 层 --------
	controllers := &Controllers{
		Wizard: controller.NewWizardController(draftSvc, schemaSvc, sequencerSvc, validateSvc, publishSvc),
		Media:  controller.NewMediaController(draftSvc, mediaSvc),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// initStorageService 初始化存储服务
func initStorageService() *service.StorageService {
	storageSvc, err := service.NewStorageService(&service.StorageConfig{
		Provider:  getEnv("STORAGE_PROVIDER", "s3"),
		Bucket:    getEnv("AWS_BUCKET", ""),
		Region:    getEnv("AWS_REGION", ""),
		AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
		CDNDomain: getEnv("AWS_CDN_DOMAIN", ""),
		BasePath:  getEnv("STORAGE_BASE_PATH", "annonce-auto"),
	})
	if err != nil {
		log.Printf("警告: 存储服务初始化失败: %v", err)
		return nil
	}
	return storageSvc
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	// 过期草稿清理
	cleanupTask := task.NewCleanupTask(
		deps.Repos.Draft,
		deps.Services.Storage,
	)
	cleanupTask.Start()

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
