package model

import "gorm.io/datatypes"

// DeletionLog 删除导出审计记录
// 商品进入 delete_list 导出时写入一条，之后不再修改或删除
type DeletionLog struct {
	BaseModel
	UserID   int64  `gorm:"index;not null"`
	ItemID   string `gorm:"size:64;index;not null"`
	Title    string `gorm:"size:255"`
	Platform string `gorm:"size:32"`
	Supplier string `gorm:"size:50"`

	// 导出瞬间的商品快照：price / views / sales / title / supplier / platform / metrics
	Snapshot datatypes.JSON `gorm:"type:jsonb"`

	// 本次导出批次（同一次导出共享一个 ID）
	ExportRunID string `gorm:"size:40;index"`
	ExportTool  string `gorm:"size:50"`
}

func (DeletionLog) TableName() string {
	return "deletion_logs"
}
