package router

import (
	"annonce_auto_v1_202608/internal/controller"
	"annonce_auto_v1_202608/internal/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	wizardCtl *controller.WizardController,
	mediaCtl *controller.MediaController) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. API 路由组
	api := r.Group("/api")
	api.Use(middleware.JWTAuth())
	{
		// wizard 发布向导
		wizard := api.Group("/wizard")
		{
			// GET /api/wizard/categories
			wizard.GET("/categories", wizardCtl.GetCategories)
			wizard.GET("/fields/:subcategory_id", wizardCtl.GetFields)

			sessions := wizard.Group("/sessions")
			{
				// POST /api/wizard/sessions
				sessions.POST("", wizardCtl.OpenSession)
				sessions.GET("/:id", wizardCtl.GetSession)
				sessions.PATCH("/:id", wizardCtl.UpdateDraft)
				sessions.DELETE("/:id", wizardCtl.AbandonSession)

				// 步骤导航
				sessions.POST("/:id/next", wizardCtl.GoNext)
				sessions.POST("/:id/back", wizardCtl.GoBack)

				// 照片管线
				sessions.POST("/:id/photos", mediaCtl.AddPhotos)
				sessions.DELETE("/:id/photos/:index", mediaCtl.RemovePhoto)
				sessions.POST("/:id/photos/:index/upload", mediaCtl.UploadPhoto)
				sessions.POST("/:id/photos/:index/mask", mediaCtl.ApplyMask)

				// 发布
				sessions.POST("/:id/publish", wizardCtl.Publish)
			}
		}
	}
}
