package dto

// ==================== 同步入参 ====================

// RawListing 同步协作方送来的原始商品字典
// 字段脏且不全是常态：supplier 可能缺失，指标可能只有旧标量，
// metrics 文档里的 key 可能是裸标量也可能是 {"total_x": n} 对象
type RawListing struct {
	ItemID   string `json:"item_id"`
	Title    string `json:"title"`
	SKU      string `json:"sku"`
	ImageURL string `json:"image_url"`
	Brand    string `json:"brand"`
	UPC      string `json:"upc"`
	Handle   string `json:"handle"`
	StoreID  string `json:"store_id"`

	Price    float64 `json:"price"`
	Currency string  `json:"currency"`

	// YYYY-MM-DD
	DateListed string `json:"date_listed"`

	Sales   int64 `json:"sales"`
	Watches int64 `json:"watches"`
	Views   int64 `json:"views"`

	Supplier   string `json:"supplier"`
	SupplierID string `json:"supplier_id"`

	// 半结构化指标文档，存在即原样入库（管道只追加标记）
	Metrics map[string]interface{} `json:"metrics"`
}

// SyncListingsReq 同步请求
type SyncListingsReq struct {
	Listings []RawListing `json:"listings" binding:"required"`
}

// SyncListingsResp 同步结果
type SyncListingsResp struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Processed int    `json:"processed"`
}
