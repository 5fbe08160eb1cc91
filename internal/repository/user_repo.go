package repository

import (
	"context"

	"gorm.io/gorm"

	"ebay_zombie_v1_202608/internal/model"
)

// SysUserRepository 卖家账号仓储接口
type SysUserRepository interface {
	Create(ctx context.Context, user *model.SysUser) error
	GetByID(ctx context.Context, id int64) (*model.SysUser, error)
	GetByUsername(ctx context.Context, username string) (*model.SysUser, error)
	ListActive(ctx context.Context) ([]model.SysUser, error)
}

type sysUserRepo struct {
	db *gorm.DB
}

// NewSysUserRepository 创建账号仓储
func NewSysUserRepository(db *gorm.DB) SysUserRepository {
	return &sysUserRepo{db: db}
}

func (r *sysUserRepo) Create(ctx context.Context, user *model.SysUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *sysUserRepo) GetByID(ctx context.Context, id int64) (*model.SysUser, error) {
	var user model.SysUser
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *sysUserRepo) GetByUsername(ctx context.Context, username string) (*model.SysUser, error) {
	var user model.SysUser
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *sysUserRepo) ListActive(ctx context.Context) ([]model.SysUser, error) {
	var users []model.SysUser
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&users).Error
	return users, err
}
