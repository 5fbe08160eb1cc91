package repository

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ebay_zombie_v1_202608/internal/model"
)

// CSVFormatRepository 导出模板仓储接口
type CSVFormatRepository interface {
	GetByTool(ctx context.Context, toolName string) (*model.CSVFormat, error)
	List(ctx context.Context) ([]model.CSVFormat, error)
	SeedDefaults(ctx context.Context) error
}

type csvFormatRepo struct {
	db *gorm.DB
}

// NewCSVFormatRepository 创建导出模板仓储
func NewCSVFormatRepository(db *gorm.DB) CSVFormatRepository {
	return &csvFormatRepo{db: db}
}

// GetByTool 按工具名取启用中的模板；未注册返回 gorm.ErrRecordNotFound
func (r *csvFormatRepo) GetByTool(ctx context.Context, toolName string) (*model.CSVFormat, error) {
	var format model.CSVFormat
	err := r.db.WithContext(ctx).
		Where("tool_name = ? AND is_active = ?", toolName, true).
		First(&format).Error
	if err != nil {
		return nil, err
	}
	return &format, nil
}

func (r *csvFormatRepo) List(ctx context.Context) ([]model.CSVFormat, error) {
	var formats []model.CSVFormat
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("tool_name ASC").
		Find(&formats).Error
	return formats, err
}

// SeedDefaults 安装内置导出模板（存在则跳过，不覆盖运营改过的配置）
func (r *csvFormatRepo) SeedDefaults(ctx context.Context) error {
	for _, f := range defaultFormats() {
		err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tool_name"}},
			DoNothing: true,
		}).Create(&f).Error
		if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return nil
}

// defaultFormats 内置模板定义
// 每个删除工具吃的 CSV 方言都不一样，列名大小写都不能动
func defaultFormats() []model.CSVFormat {
	return []model.CSVFormat{
		{
			ToolName:    "AutoDS",
			DisplayName: "AutoDS 删除导入",
			ColumnOrder: pq.StringArray{"Item ID", "SKU", "Action"},
			Mapping: datatypes.JSON([]byte(`{
				"Item ID": {"source": "item_id"},
				"SKU": {"source": "sku", "fallback": "supplier_id"},
				"Action": {"static": "delete"}
			}`)),
			IsActive: true,
		},
		{
			ToolName:    "Yaballe",
			DisplayName: "Yaballe 删除导入",
			ColumnOrder: pq.StringArray{"ItemID", "SourceID", "Note"},
			Mapping: datatypes.JSON([]byte(`{
				"ItemID": {"source": "item_id"},
				"SourceID": {"source": "supplier_id", "fallback": "sku"},
				"Note": {"static": "zombie cleanup"}
			}`)),
			IsActive: true,
		},
		{
			ToolName:    "Wholesale2B",
			DisplayName: "Wholesale2B 删除导入",
			ColumnOrder: pq.StringArray{"item_id", "sku"},
			Mapping: datatypes.JSON([]byte(`{
				"item_id": {"source": "item_id"},
				"sku": {"source": "sku"}
			}`)),
			IsActive: true,
		},
		{
			ToolName:    "Excelify",
			DisplayName: "Matrixify/Excelify (Shopify)",
			ColumnOrder: pq.StringArray{"Handle", "ID", "Command"},
			Mapping: datatypes.JSON([]byte(`{
				"Handle": {"source": "handle", "fallback": "sku"},
				"ID": {"source": "item_id"},
				"Command": {"static": "DELETE"}
			}`)),
			IsActive: true,
		},
	}
}
