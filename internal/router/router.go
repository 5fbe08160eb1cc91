package router

import (
	"github.com/gin-gonic/gin"

	"ebay_zombie_v1_202608/internal/controller"
	"ebay_zombie_v1_202608/internal/middleware"
)

// Controllers 控制器集合
type Controllers struct {
	Auth   *controller.AuthController
	Zombie *controller.ZombieController
	Sync   *controller.SyncController
	Format *controller.FormatController
}

// SetupRouter 注册所有路由
func SetupRouter(ctrls *Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")
	{
		// auth 鉴权组（唯一免登录入口）
		auth := api.Group("/auth")
		{
			auth.POST("/login", ctrls.Auth.Login)
		}

		// 以下全部要求 Bearer Token；owner 归属取自 token claims
		secured := api.Group("")
		secured.Use(middleware.JWTAuth())
		{
			// zombie 僵尸筛选与导出
			zombies := secured.Group("/zombies")
			{
				// GET /api/zombies
				zombies.GET("", ctrls.Zombie.GetZombies)
				// GET /api/zombies/count
				zombies.GET("/count", ctrls.Zombie.CountZombies)
				// POST /api/zombies/export
				zombies.POST("/export", ctrls.Zombie.ExportZombies)
			}

			// sync 同步入库
			sync := secured.Group("/sync")
			{
				sync.POST("/listings", ctrls.Sync.SyncListings)
			}

			// format 导出模板
			secured.GET("/formats", ctrls.Format.GetFormats)
		}
	}

	return r
}
