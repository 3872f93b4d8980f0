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

	"panel_keeper_v1_202608/internal/controller"
	"panel_keeper_v1_202608/internal/middleware"
	"panel_keeper_v1_202608/internal/migration"
	"panel_keeper_v1_202608/internal/provider"
	"panel_keeper_v1_202608/internal/repository"
	"panel_keeper_v1_202608/internal/router"
	"panel_keeper_v1_202608/internal/service"
	"panel_keeper_v1_202608/internal/task"
	"panel_keeper_v1_202608/pkg/database"
	"panel_keeper_v1_202608/pkg/daykey"
)

func main() {
	// 1. 初始化数据库并执行结构迁移
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	deps.TaskManager.Start()
	defer deps.TaskManager.Stop()

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r,
		deps.Controllers.Auth,
		deps.Controllers.Account,
		deps.Controllers.Sync,
		deps.Controllers.Checkin,
		deps.Controllers.Setting,
	)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	TaskManager *task.TaskManager
	Controllers *Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Account repository.AccountRepository
	Status  repository.CheckinStatusRepository
	Log     repository.CheckinLogRepository
	Setting repository.SettingRepository
}

// Services 服务集合
type Services struct {
	Account *service.AccountService
	Sync    *service.SyncService
	Checkin *service.CheckinService
}

// Controllers 控制器集合
type Controllers struct {
	Auth    *controller.AuthController
	Account *controller.AccountController
	Sync    *controller.SyncController
	Checkin *controller.CheckinController
	Setting *controller.SettingController
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库并执行版本化迁移
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=postgres password=postgres dbname=panel_keeper port=5432 sslmode=disable TimeZone=Asia/Shanghai")

	// 建表交给 migration.Apply，这里只建连接
	db := database.InitDB(dsn)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := migration.Apply(ctx, db); err != nil {
		log.Fatalf("结构迁移失败: %v", err)
	}
	return db
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Account: repository.NewAccountRepository(db),
		Status:  repository.NewCheckinStatusRepository(db),
		Log:     repository.NewCheckinLogRepository(db),
		Setting: repository.NewSettingRepository(db),
	}

	// -------- 时区（来自偏好设置，可被环境变量覆盖） --------
	tz := getEnv("TIMEZONE", "")
	if tz == "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if setting, err := repos.Setting.Get(ctx); err == nil {
			tz = setting.Timezone
		}
		cancel()
	}
	loc := daykey.LoadLocation(tz)

	// -------- JWT --------
	if secret := getEnv("JWT_SECRET", ""); secret != "" {
		cfg := middleware.DefaultJWTConfig()
		cfg.SecretKey = secret
		middleware.SetJWTConfig(cfg)
	}

	// -------- 业务服务 --------
	registry := provider.NewRegistry(loc)
	services := &Services{
		Account: service.NewAccountService(repos.Account, registry),
		Sync:    service.NewSyncService(repos.Account, registry, loc),
		Checkin: service.NewCheckinService(repos.Account, repos.Status, repos.Log, registry, loc),
	}

	// -------- 定时任务 --------
	taskCfg := task.DefaultConfig()
	taskCfg.SyncEnabled = getEnv("SYNC_TASK_ENABLED", "true") == "true"
	taskCfg.CheckinEnabled = getEnv("CHECKIN_TASK_ENABLED", "true") == "true"
	tm := task.NewTaskManager(&task.TaskManagerDeps{
		SettingRepo:    repos.Setting,
		SyncService:    services.Sync,
		CheckinService: services.Checkin,
	}, taskCfg)

	// -------- Controller 层 --------
	controllers := &Controllers{
		Auth: controller.NewAuthController(
			getEnv("ADMIN_USER", "admin"),
			getEnv("ADMIN_PASSWORD", "admin"),
		),
		Account: controller.NewAccountController(services.Account),
		Sync:    controller.NewSyncController(services.Sync, tm),
		Checkin: controller.NewCheckinController(services.Checkin),
		Setting: controller.NewSettingController(repos.Setting),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		TaskManager: tm,
		Controllers: controllers,
	}
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
