package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ebay_zombie_v1_202608/internal/api/dto"
	"ebay_zombie_v1_202608/internal/middleware"
	"ebay_zombie_v1_202608/internal/service"
)

type SyncController struct {
	syncService *service.SyncService
}

func NewSyncController(syncService *service.SyncService) *SyncController {
	return &SyncController{syncService: syncService}
}

// SyncListings 同步入库
// @Summary 接收同步协作方的商品清单并入库
// @Tags Sync
// @Param body body dto.SyncListingsReq true "商品清单"
// @Success 200 {object} dto.SyncListingsResp
// @Router /api/sync/listings [post]
func (ctrl *SyncController) SyncListings(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var req dto.SyncListingsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	processed, err := ctrl.syncService.UpsertListings(c.Request.Context(), userID, req.Listings)
	if err != nil {
		if errors.Is(err, service.ErrMissingUser) {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "同步失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.SyncListingsResp{
		Code:      0,
		Message:   "success",
		Processed: processed,
	})
}
