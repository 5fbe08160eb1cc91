package ebay

// ==========================================
// DTO: 接收 eBay API 返回的原始 JSON 数据
// ==========================================

// ListingDTO 单条在售商品（Trading/Sell API 聚合后的扁平结构）
type ListingDTO struct {
	ItemID     string  `json:"item_id"`
	Title      string  `json:"title"`
	SKU        string  `json:"sku"`
	PictureURL string  `json:"picture_url"`
	Brand      string  `json:"brand"`
	UPC        string  `json:"upc"`
	Price      float64 `json:"price"`
	Currency   string  `json:"currency"`
	StartTime  string  `json:"start_time"` // YYYY-MM-DD...
	StoreID    string  `json:"store_id"`

	QuantitySold int64 `json:"quantity_sold"`
	WatchCount   int64 `json:"watch_count"`
	HitCount     int64 `json:"hit_count"`

	// 半结构化指标（部分账号返回嵌套 total_x 形态）
	Metrics map[string]interface{} `json:"metrics"`
}

// ActiveListingsResp 分页响应
type ActiveListingsResp struct {
	Results []ListingDTO `json:"results"`
	Total   int          `json:"total"`
	Offset  int          `json:"offset"`
	Limit   int          `json:"limit"`
}
