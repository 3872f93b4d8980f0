package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"panel_keeper_v1_202608/internal/controller"
	"panel_keeper_v1_202608/internal/middleware"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	authCtl *controller.AuthController,
	accountCtl *controller.AccountController,
	syncCtl *controller.SyncController,
	checkinCtl *controller.CheckinController,
	settingCtl *controller.SettingController) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. API 路由组
	v1 := r.Group("/api/v1")
	{
		// auth 鉴权组（公开）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authCtl.Login)
			auth.POST("/refresh", authCtl.Refresh)
		}

		// 其余路由一律要求登录
		authed := v1.Group("")
		authed.Use(middleware.JWTAuth())

		// account 账户管理
		accounts := authed.Group("/accounts")
		{
			accounts.GET("", accountCtl.List)
			accounts.GET("/:id", accountCtl.Get)
			accounts.POST("", accountCtl.Create)
			accounts.PUT("/:id", accountCtl.Update)
			accounts.DELETE("/:id", accountCtl.Delete)
		}

		// sync 手动同步（带冷却限流）
		sync := authed.Group("/sync")
		{
			sync.POST("/accounts/:id",
				middleware.SyncRateLimit(middleware.SyncTypeAccount, 0),
				syncCtl.SyncAccount,
			)
			sync.POST("/accounts",
				middleware.GlobalSyncRateLimit(middleware.SyncTypeAccount, 0),
				syncCtl.SyncAllAccounts,
			)
		}

		// checkin 自动签到
		checkin := authed.Group("/checkin")
		{
			checkin.POST("/run",
				middleware.GlobalSyncRateLimit(middleware.SyncTypeCheckin, 0),
				checkinCtl.Run,
			)
			checkin.POST("/retry", checkinCtl.Retry)
			checkin.GET("/status", checkinCtl.GetStatus)
			checkin.DELETE("/status", checkinCtl.ClearStatus)
			checkin.GET("/logs/:id", checkinCtl.ListLogs)
		}

		// setting 全局偏好
		settings := authed.Group("/settings")
		{
			settings.GET("", settingCtl.Get)
			settings.PUT("", settingCtl.Update)
		}
	}
}
