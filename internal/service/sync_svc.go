package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"gorm.io/datatypes"

	"ebay_zombie_v1_202608/internal/api/dto"
	"ebay_zombie_v1_202608/internal/model"
	"ebay_zombie_v1_202608/internal/repository"
)

// ==================== 同步入库管道 ====================

// syncBatchSize 批大小：限制单请求事务体量，批间提交保住部分进度
const syncBatchSize = 20

// SyncService 商品同步入库管道（单平台实例）
// 幂等：同一输入重复入库，库内状态不变（除 updated_at）
type SyncService struct {
	listingRepo repository.ListingRepository
	supplier    *SupplierService

	// 管道绑定的平台，入库时强制覆盖，防上游数据串平台
	platform string
}

// NewSyncService 创建同步服务（默认 eBay 管道）
func NewSyncService(listingRepo repository.ListingRepository, supplier *SupplierService) *SyncService {
	return &SyncService{
		listingRepo: listingRepo,
		supplier:    supplier,
		platform:    model.PlatformEbay,
	}
}

// Platform 管道绑定的平台值
func (s *SyncService) Platform() string {
	return s.platform
}

// UpsertListings 批量入库
// userID 是权威归属：每条记录强制改写为该值，防跨租户串数据。
// userID 无法解析时硬性失败，写库之前就终止。
// 返回成功处理条数；单条失败只记日志不终止
func (s *SyncService) UpsertListings(ctx context.Context, userID int64, raws []dto.RawListing) (int, error) {
	if userID <= 0 {
		return 0, ErrMissingUser
	}
	if len(raws) == 0 {
		return 0, nil
	}

	now := time.Now()
	listings := make([]model.Listing, 0, len(raws))
	for i := range raws {
		raw := &raws[i]
		if raw.ItemID == "" {
			log.Printf("[SyncService] 跳过缺 item_id 的记录: sku=%s", raw.SKU)
			continue
		}
		listings = append(listings, s.toListing(userID, raw, now))
	}

	processed := 0
	for start := 0; start < len(listings); start += syncBatchSize {
		end := start + syncBatchSize
		if end > len(listings) {
			end = len(listings)
		}
		batch := listings[start:end]

		if err := s.listingRepo.BatchUpsert(ctx, batch); err == nil {
			processed += len(batch)
			continue
		} else {
			log.Printf("[SyncService] 批量写入失败，降级逐条重试: batch=%d-%d err=%v", start, end, err)
		}

		// 批失败后逐条重试：一条坏记录不能拖垮整批
		for j := range batch {
			if err := s.listingRepo.Upsert(ctx, &batch[j]); err != nil {
				log.Printf("[SyncService] 单条写入失败，放弃: item_id=%s err=%v", batch[j].ItemID, err)
				continue
			}
			processed++
		}
	}

	log.Printf("[SyncService] 入库完成: 收到 %d, 成功 %d", len(raws), processed)
	return processed, nil
}

// ==================== 转换 ====================

// toListing 原始字典 → 入库模型
// 依次：强制 owner、补供应商识别、平台路由打标、强制平台值
func (s *SyncService) toListing(userID int64, raw *dto.RawListing, now time.Time) model.Listing {
	listing := model.Listing{
		UserID:   userID,
		Platform: s.platform,
		ItemID:   raw.ItemID,
		StoreID:  raw.StoreID,
		Title:    raw.Title,
		SKU:      raw.SKU,
		ImageURL: raw.ImageURL,
		Brand:    raw.Brand,
		UPC:      raw.UPC,
		Handle:   raw.Handle,

		Price:      raw.Price,
		Currency:   raw.Currency,
		SoldQty:    raw.Sales,
		WatchCount: raw.Watches,
		ViewCount:  raw.Views,

		IsActive:     true,
		LastSyncedAt: &now,
	}

	if t, ok := toDate(raw.DateListed); ok {
		listing.DateListed = &t
	}

	// 供应商：上游给了可信值就保留，否则跑识别
	listing.Supplier = raw.Supplier
	if raw.SupplierID != "" {
		listing.SupplierID = strPtr(raw.SupplierID)
	}
	if listing.Supplier == "" || listing.Supplier == model.SupplierUnverified || listing.Supplier == "Unknown" {
		name, id := s.supplier.ResolveSupplier(raw.SKU, raw.ImageURL, raw.Title, raw.Brand, raw.UPC)
		listing.Supplier = name
		listing.SupplierID = id
	}

	// 指标文档：上游有就沿用，没有就从标量构建
	metricsDoc := raw.Metrics
	if metricsDoc == nil {
		metricsDoc = map[string]interface{}{
			MetricSales:   raw.Sales,
			MetricWatches: raw.Watches,
			MetricViews:   raw.Views,
			"price":       raw.Price,
			"currency":    raw.Currency,
		}
		if raw.DateListed != "" {
			metricsDoc[MetricDateListed] = raw.DateListed
		}
	}

	analysisDoc := map[string]interface{}{}

	// 二级店面路由：两个文档都打 management_hub 标记
	if s.supplier.IsShopifyRouted(raw.SKU, raw.ImageURL, raw.Title, raw.Brand) {
		metricsDoc["management_hub"] = true
		analysisDoc["management_hub"] = true
	}

	listing.Metrics = mustJSON(metricsDoc)
	if len(analysisDoc) > 0 {
		listing.AnalysisData = mustJSON(analysisDoc)
	}

	return listing
}

// mustJSON 序列化文档；失败退空文档（不让一条坏指标毁掉整条记录）
func mustJSON(doc map[string]interface{}) datatypes.JSON {
	b, err := json.Marshal(doc)
	if err != nil {
		return datatypes.JSON([]byte(`{}`))
	}
	return datatypes.JSON(b)
}
