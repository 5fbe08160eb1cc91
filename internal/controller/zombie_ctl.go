package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ebay_zombie_v1_202608/internal/api/dto"
	"ebay_zombie_v1_202608/internal/middleware"
	"ebay_zombie_v1_202608/internal/service"
)

type ZombieController struct {
	zombieService *service.ZombieService
	exportService *service.ExportService
}

func NewZombieController(zombieService *service.ZombieService, exportService *service.ExportService) *ZombieController {
	return &ZombieController{
		zombieService: zombieService,
		exportService: exportService,
	}
}

// GetZombies 僵尸候选列表
// @Summary 按多条件筛选僵尸商品
// @Tags Zombie
// @Param min_days query int false "最少上架天数" default(30)
// @Param max_sales query int false "销量上限" default(0)
// @Param supplier query string false "供应商筛选" default(All)
// @Success 200 {object} dto.ZombieListResp
// @Router /api/zombies [get]
func (ctrl *ZombieController) GetZombies(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "用户归属缺失"})
		return
	}

	var req dto.ZombieQueryReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	filter := toZombieFilter(userID, &req)
	listings, breakdown, err := ctrl.zombieService.SelectZombies(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ZombieListResp{
		Code:      0,
		Message:   "success",
		Data:      listings,
		Total:     int64(len(listings)),
		Breakdown: breakdown,
	})
}

// CountZombies 僵尸候选计数（不回写，不计分析次数）
// @Summary 按相同条件只返回计数
// @Tags Zombie
// @Success 200 {object} dto.ZombieCountResp
// @Router /api/zombies/count [get]
func (ctrl *ZombieController) CountZombies(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "用户归属缺失"})
		return
	}

	var req dto.ZombieQueryReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	count, err := ctrl.zombieService.CountCandidates(c.Request.Context(), toZombieFilter(userID, &req))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ZombieCountResp{Code: 0, Message: "success", Count: count})
}

func toZombieFilter(userID int64, req *dto.ZombieQueryReq) service.ZombieFilter {
	return service.ZombieFilter{
		UserID:         userID,
		MinDays:        req.MinDays,
		MaxSales:       req.MaxSales,
		MaxWatches:     req.MaxWatches,
		MaxWatchCount:  req.MaxWatchCount,
		MaxImpressions: req.MaxImpressions,
		MaxViews:       req.MaxViews,
		Supplier:       req.Supplier,
		Platform:       req.Platform,
		StoreID:        req.StoreID,
		Skip:           req.Skip,
		Limit:          req.Limit,
	}
}

// ExportZombies 导出删除文件
// @Summary 生成删除工具 CSV
// @Tags Zombie
// @Param body body dto.ExportReq true "导出参数"
// @Success 200 {string} string "CSV 文本"
// @Router /api/zombies/export [post]
func (ctrl *ZombieController) ExportZombies(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "用户归属缺失"})
		return
	}

	var req dto.ExportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	csvText, err := ctrl.exportService.ExportByItemIDs(c.Request.Context(), service.ExportRequest{
		UserID:         userID,
		Tool:           req.Tool,
		Mode:           req.Mode,
		PlatformHint:   req.PlatformHint,
		StoreID:        req.StoreID,
		ExcludeItemIDs: req.ItemIDs,
	}, req.ItemIDs)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrFormatNotFound) || errors.Is(err, service.ErrMissingUser) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"code": status, "message": "导出失败: " + err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=zombie_export.csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csvText))
}
