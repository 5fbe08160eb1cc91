package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 平台常量 ====================

const (
	PlatformEbay     = "eBay"
	PlatformShopify  = "Shopify"
	PlatformEtsy     = "Etsy"
	PlatformFacebook = "Facebook"
)

// SupportedPlatforms 平台筛选白名单：不在列表内的筛选值视为不过滤
var SupportedPlatforms = []string{PlatformEbay, PlatformShopify, PlatformEtsy, PlatformFacebook}

// IsSupportedPlatform 判断是否为受支持的平台值
func IsSupportedPlatform(p string) bool {
	for _, s := range SupportedPlatforms {
		if s == p {
			return true
		}
	}
	return false
}

// 供应商默认值：解析失败时永远回落到 Unverified，绝不为空
const SupplierUnverified = "Unverified"

// ==================== Listing ====================

// Listing 第三方平台在售商品
// 指标数据存在三种形态并存的历史包袱：
//   1. Metrics JSON 文档里的嵌套对象 {"sales": {"total_sales": 3}}
//   2. Metrics JSON 文档里的裸标量 {"sales": 3}
//   3. 旧版标量列 (SoldQty / WatchCount / ViewCount / DateListed)
// 读取一律走 service.MetricAccessor 的降级链，不要直接取列
type Listing struct {
	BaseModel
	UserID int64 `gorm:"index:idx_user_platform_item,unique;not null"` // 归属卖家
	User   *SysUser

	// --- 平台身份 ---
	Platform string `gorm:"size:32;index:idx_user_platform_item,unique;not null"`
	ItemID   string `gorm:"size:64;index:idx_user_platform_item,unique;not null"` // 平台侧商品 ID
	StoreID  string `gorm:"size:64;index"`                                        // 店铺标识（多店铺隔离）

	// --- 商品基本信息 ---
	Title    string `gorm:"size:255"`
	SKU      string `gorm:"size:100;index"`
	ImageURL string `gorm:"size:512"`
	Brand    string `gorm:"size:100"`
	UPC      string `gorm:"size:32"`
	Handle   string `gorm:"size:255"` // Shopify handle（导出映射可引用）

	// --- 供应商识别结果 ---
	Supplier   string  `gorm:"size:50;default:'Unverified';index"`
	SupplierID *string `gorm:"size:100;index"`

	// --- 指标文档（嵌套/扁平混存） ---
	Metrics      datatypes.JSON `gorm:"type:jsonb"`
	AnalysisData datatypes.JSON `gorm:"type:jsonb"` // 分析元数据：recommendation / management_hub 标记

	// --- 旧版标量列（向后兼容，仅作降级链兜底） ---
	Price      float64    `gorm:"default:0"`
	Currency   string     `gorm:"size:5"`
	DateListed *time.Time `gorm:"index"`
	SoldQty    int64      `gorm:"default:0"`
	WatchCount int64      `gorm:"default:0"`
	ViewCount  int64      `gorm:"default:0"`

	// --- 僵尸筛选回写标记（可选列，写入尽力而为） ---
	IsGlobalWinner    bool `gorm:"default:false"`
	IsActiveElsewhere bool `gorm:"default:false"`

	// --- 同步状态 ---
	IsActive     bool       `gorm:"default:true;index"`
	LastSyncedAt *time.Time `gorm:"index"`
}

func (Listing) TableName() string {
	return "listings"
}

// ==================== 工具函数 ====================

// SupplierIDValue 取供应商 ID，空指针返回 ""
func (l *Listing) SupplierIDValue() string {
	if l.SupplierID == nil {
		return ""
	}
	return *l.SupplierID
}
