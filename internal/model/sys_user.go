package model

import "golang.org/x/crypto/bcrypt"

// SysUser 卖家账号
// 所有 API 调用必须归属到一个 SysUser，owner 缺失属于硬性校验失败
type SysUser struct {
	BaseModel
	Username string `gorm:"size:100;uniqueIndex;not null"`
	Password string `gorm:"size:255;not null"` // 哈希密码
	Email    string `gorm:"size:100"`

	// 系统级角色: admin (管理员), seller (卖家)
	Role string `gorm:"size:20;default:'seller'"`

	IsActive bool `gorm:"default:true"`

	// eBay 侧账号标识与访问令牌（同步拉取时使用；令牌刷新由外部 worker 负责）
	EbayUsername string `gorm:"size:100;index"`
	EbayToken    string `gorm:"size:2048"`
}

func (SysUser) TableName() string {
	return "sys_users"
}

// SetPassword 设置哈希密码
func (u *SysUser) SetPassword(plain string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword 校验密码
func (u *SysUser) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}
