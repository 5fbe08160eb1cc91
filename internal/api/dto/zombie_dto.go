package dto

import "ebay_zombie_v1_202608/internal/model"

// ==================== 僵尸筛选 ====================

// ZombieQueryReq 筛选入参（query string）
type ZombieQueryReq struct {
	MinDays        int    `form:"min_days,default=30"`
	MaxSales       int64  `form:"max_sales,default=0"`
	MaxWatches     int64  `form:"max_watches,default=0"`
	MaxWatchCount  int64  `form:"max_watch_count,default=0"`
	MaxImpressions int64  `form:"max_impressions,default=100"`
	MaxViews       int64  `form:"max_views,default=10"`
	Supplier       string `form:"supplier,default=All"`
	Platform       string `form:"platform"`
	StoreID        string `form:"store_id,default=all"`
	Skip           int    `form:"skip,default=0"`
	Limit          int    `form:"limit,default=100"`
}

// ZombieListResp 筛选结果
type ZombieListResp struct {
	Code      int              `json:"code"`
	Message   string           `json:"message"`
	Data      []model.Listing  `json:"data"`
	Total     int64            `json:"total"`
	Breakdown map[string]int64 `json:"breakdown"`
}

// ZombieCountResp 计数结果
type ZombieCountResp struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

// ==================== 导出 ====================

// ExportReq 导出入参
type ExportReq struct {
	Tool         string   `json:"tool" binding:"required"`
	Mode         string   `json:"mode" binding:"required"` // delete_list / full_sync_list
	PlatformHint string   `json:"platform_hint"`
	StoreID      string   `json:"store_id"`
	ItemIDs      []string `json:"item_ids"` // delete 模式的目标集 / full_sync 模式的排除集
}
