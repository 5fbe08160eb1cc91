package model

import (
	"encoding/json"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ==================== CSVFormat ====================

// CSVFormat 删除工具导出模板
// ColumnOrder 决定列顺序；Mapping 按列名给出取值规则
type CSVFormat struct {
	BaseModel
	ToolName    string         `gorm:"size:50;uniqueIndex;not null"` // AutoDS / Yaballe / Wholesale2B / Excelify
	DisplayName string         `gorm:"size:100"`
	ColumnOrder pq.StringArray `gorm:"type:text[]"`
	Mapping     datatypes.JSON `gorm:"type:jsonb"`
	IsActive    bool           `gorm:"default:true"`
}

func (CSVFormat) TableName() string {
	return "csv_formats"
}

// ColumnRule 单列取值规则
// Static 非空时直接输出字面量；否则按 Source 取字段，取不到再试 Fallback
type ColumnRule struct {
	Static   string `json:"static,omitempty"`
	Source   string `json:"source,omitempty"`   // item_id / sku / supplier_id / handle
	Fallback string `json:"fallback,omitempty"` // Source 为空值时的备选字段
}

// Rules 解析 Mapping 文档；解析失败返回空表（列按空串渲染）
func (f *CSVFormat) Rules() map[string]ColumnRule {
	rules := make(map[string]ColumnRule)
	if len(f.Mapping) == 0 {
		return rules
	}
	_ = json.Unmarshal(f.Mapping, &rules)
	return rules
}
