package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ebay_zombie_v1_202608/internal/middleware"
	"ebay_zombie_v1_202608/internal/repository"
)

type AuthController struct {
	userRepo repository.SysUserRepository
}

func NewAuthController(userRepo repository.SysUserRepository) *AuthController {
	return &AuthController{userRepo: userRepo}
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录签发 Token
// @Summary 账号密码登录
// @Tags Auth
// @Router /api/auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	user, err := ctrl.userRepo.GetByUsername(c.Request.Context(), req.Username)
	if err != nil || !user.CheckPassword(req.Password) {
		// 账号不存在和密码错误给同一个提示，不泄露账号存在性
		c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "用户名或密码错误"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"code": 403, "message": "账号已停用"})
		return
	}

	token, err := middleware.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "Token 签发失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"token":    token,
			"user_id":  user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}
