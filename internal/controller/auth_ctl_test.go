package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ebay_zombie_v1_202608/internal/middleware"
	"ebay_zombie_v1_202608/internal/model"
	"ebay_zombie_v1_202608/internal/repository"
)

func setupAuthCtlRouter(t *testing.T) (*gorm.DB, *gin.Engine) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.SysUser{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}

	gin.SetMode(gin.TestMode)
	ctrl := NewAuthController(repository.NewSysUserRepository(db))
	r := gin.New()
	r.POST("/api/auth/login", ctrl.Login)
	return db, r
}

func createAuthUser(t *testing.T, db *gorm.DB, username, password string, active bool) {
	u := model.SysUser{Username: username, Role: "seller", IsActive: active}
	if err := u.SetPassword(password); err != nil {
		t.Fatalf("设置密码失败: %v", err)
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("造数失败: %v", err)
	}
}

func postLogin(r *gin.Engine, username, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(gin.H{"username": username, "password": password})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_Success(t *testing.T) {
	db, r := setupAuthCtlRouter(t)
	createAuthUser(t, db, "seller1", "pass123", true)

	w := postLogin(r, "seller1", "pass123")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应解析失败: %v", err)
	}
	if resp.Data.Token == "" {
		t.Fatal("未签发 Token")
	}

	// 签出的 Token 能解析回归属
	claims, err := middleware.ParseToken(resp.Data.Token)
	if err != nil {
		t.Fatalf("Token 解析失败: %v", err)
	}
	if claims.Username != "seller1" || claims.UserID <= 0 {
		t.Errorf("claims = %+v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db, r := setupAuthCtlRouter(t)
	createAuthUser(t, db, "seller1", "pass123", true)

	// 密码错和账号不存在必须是同一个提示
	wrongPass := postLogin(r, "seller1", "nope")
	noUser := postLogin(r, "ghost", "nope")
	if wrongPass.Code != http.StatusUnauthorized || noUser.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d / %d, want 401 / 401", wrongPass.Code, noUser.Code)
	}
	if wrongPass.Body.String() != noUser.Body.String() {
		t.Error("两种失败的响应体应一致，不泄露账号存在性")
	}
}

func TestLogin_InactiveUser(t *testing.T) {
	db, r := setupAuthCtlRouter(t)
	createAuthUser(t, db, "seller1", "pass123", false)

	w := postLogin(r, "seller1", "pass123")
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}
