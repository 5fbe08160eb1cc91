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

	"gorm.io/gorm"

	"ebay_zombie_v1_202608/internal/controller"
	"ebay_zombie_v1_202608/internal/middleware"
	"ebay_zombie_v1_202608/internal/model"
	"ebay_zombie_v1_202608/internal/repository"
	"ebay_zombie_v1_202608/internal/router"
	"ebay_zombie_v1_202608/internal/service"
	"ebay_zombie_v1_202608/internal/task"
	"ebay_zombie_v1_202608/pkg/database"
	"ebay_zombie_v1_202608/pkg/ebay"
)

func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	deps.SweepTask.Start()
	defer deps.SweepTask.Stop()

	// 4. 初始化路由
	r := router.SetupRouter(deps.Controllers)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
	SweepTask   *task.SweepTask
}

// Repositories 仓库集合
type Repositories struct {
	User        repository.SysUserRepository
	Listing     repository.ListingRepository
	DeletionLog repository.DeletionLogRepository
	CSVFormat   repository.CSVFormatRepository
}

// Services 服务集合
type Services struct {
	Supplier *service.SupplierService
	Metrics  *service.MetricAccessor
	Zombie   *service.ZombieService
	Sync     *service.SyncService
	Export   *service.ExportService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=zombie_admin password=1234 dbname=zombie_sweeper port=5432 sslmode=disable")
	return database.InitDB(dsn,
		// Account
		&model.SysUser{},
		// Listing
		&model.Listing{}, &model.DeletionLog{},
		// Export
		&model.CSVFormat{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		User:        repository.NewSysUserRepository(db),
		Listing:     repository.NewListingRepository(db),
		DeletionLog: repository.NewDeletionLogRepository(db),
		CSVFormat:   repository.NewCSVFormatRepository(db),
	}

	// 内置导出模板缺啥补啥
	if err := repos.CSVFormat.SeedDefaults(context.Background()); err != nil {
		log.Printf("[main] 内置导出模板安装失败: %v", err)
	}

	// -------- JWT 配置 --------
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:      getEnv("JWT_SECRET", middleware.DefaultJWTConfig().SecretKey),
		AccessTokenTTL: 2 * time.Hour,
		Issuer:         "zombie-sweeper",
	})

	// -------- Service 层 --------
	services := &Services{
		Supplier: service.NewSupplierService(),
		Metrics:  service.NewMetricAccessor(),
	}
	services.Zombie = service.NewZombieService(repos.Listing, services.Metrics)
	services.Sync = service.NewSyncService(repos.Listing, services.Supplier)
	services.Export = service.NewExportService(repos.Listing, repos.CSVFormat, repos.DeletionLog)

	// -------- 同步协作方 --------
	ebayClient := ebay.NewClient(
		getEnv("EBAY_API_BASE", "https://api.ebay.com/sell/inventory/v1"),
		getEnv("EBAY_APP_KEY", ""),
	)
	sweepTask := task.NewSweepTask(repos.User, services.Sync, ebayClient)

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Auth:   controller.NewAuthController(repos.User),
		Zombie: controller.NewZombieController(services.Zombie, services.Export),
		Sync:   controller.NewSyncController(services.Sync),
		Format: controller.NewFormatController(repos.CSVFormat),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		SweepTask:   sweepTask,
	}
}

// startServer 启动 HTTP 服务并优雅退出
func startServer(handler http.Handler) {
	addr := getEnv("LISTEN_ADDR", ":8080")
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Printf("[main] 服务启动: %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] 服务启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[main] 收到退出信号，开始优雅关闭...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[main] 关闭异常: %v", err)
	}
	log.Println("[main] 已退出")
}

// getEnv 读环境变量，空值回落默认
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
