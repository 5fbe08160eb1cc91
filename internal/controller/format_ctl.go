package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ebay_zombie_v1_202608/internal/repository"
)

type FormatController struct {
	formatRepo repository.CSVFormatRepository
}

func NewFormatController(formatRepo repository.CSVFormatRepository) *FormatController {
	return &FormatController{formatRepo: formatRepo}
}

// GetFormats 已注册的导出模板列表
// @Summary 查看可用的删除工具导出模板
// @Tags Format
// @Router /api/formats [get]
func (ctrl *FormatController) GetFormats(c *gin.Context) {
	formats, err := ctrl.formatRepo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": formats})
}
