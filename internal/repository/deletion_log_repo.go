package repository

import (
	"context"

	"gorm.io/gorm"

	"ebay_zombie_v1_202608/internal/model"
)

// DeletionLogRepository 删除审计仓储接口
// 只增不改：导出即落一条快照
type DeletionLogRepository interface {
	Create(ctx context.Context, entry *model.DeletionLog) error
	CreateBatch(ctx context.Context, entries []model.DeletionLog) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.DeletionLog, error)
	CountByRun(ctx context.Context, runID string) (int64, error)
}

type deletionLogRepo struct {
	db *gorm.DB
}

// NewDeletionLogRepository 创建删除审计仓储
func NewDeletionLogRepository(db *gorm.DB) DeletionLogRepository {
	return &deletionLogRepo{db: db}
}

func (r *deletionLogRepo) Create(ctx context.Context, entry *model.DeletionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *deletionLogRepo) CreateBatch(ctx context.Context, entries []model.DeletionLog) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *deletionLogRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]model.DeletionLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []model.DeletionLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *deletionLogRepo) CountByRun(ctx context.Context, runID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.DeletionLog{}).
		Where("export_run_id = ?", runID).
		Count(&count).Error
	return count, err
}
