package repository

import (
	"context"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ebay_zombie_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// ListingRepository 商品仓储接口
type ListingRepository interface {
	// 基础 CRUD
	Create(ctx context.Context, listing *model.Listing) error
	GetByID(ctx context.Context, id int64) (*model.Listing, error)
	GetByItemID(ctx context.Context, userID int64, platform, itemID string) (*model.Listing, error)
	Update(ctx context.Context, listing *model.Listing) error
	List(ctx context.Context, filter ListingFilter) ([]model.Listing, error)

	// 跨平台聚合查询
	ListBySupplierID(ctx context.Context, userID int64, supplierID string) ([]model.Listing, error)
	ListByItemIDs(ctx context.Context, userID int64, itemIDs []string) ([]model.Listing, error)

	// 批量 Upsert（冲突键：user_id + platform + item_id）
	BatchUpsert(ctx context.Context, listings []model.Listing) error
	Upsert(ctx context.Context, listing *model.Listing) error

	// 僵尸筛选回写（可选列，调用方需吞掉错误）
	UpdateFlags(ctx context.Context, id int64, globalWinner, activeElsewhere bool) error

	// 可选列能力探测
	Capabilities() SchemaCapabilities

	// 事务
	WithTx(tx *gorm.DB) ListingRepository
	Transaction(ctx context.Context, fn func(txRepo ListingRepository) error) error
}

// ==================== 过滤条件 ====================

// ListingFilter 商品过滤条件（仅 SQL 层粗筛，指标判断在 service 层做降级链）
type ListingFilter struct {
	UserID     int64
	Platform   string // 空值不过滤
	Supplier   string // 空值或 "All" 不过滤
	StoreID    string // 空值或 "all" 不过滤
	ActiveOnly bool
}

// SchemaCapabilities 可选列存在性描述
// 一次性探测，替代逐字段 HasColumn 试探；旧库缺列时相关功能静默降级
type SchemaCapabilities struct {
	HasFlagColumns bool // is_global_winner / is_active_elsewhere
	HasStoreID     bool
}

// ==================== 仓储实现 ====================

type listingRepo struct {
	db *gorm.DB

	capsOnce *sync.Once
	caps     *SchemaCapabilities
}

// NewListingRepository 创建商品仓储
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepo{
		db:       db,
		capsOnce: &sync.Once{},
		caps:     &SchemaCapabilities{},
	}
}

func (r *listingRepo) Create(ctx context.Context, listing *model.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *listingRepo) GetByID(ctx context.Context, id int64) (*model.Listing, error) {
	var listing model.Listing
	err := r.db.WithContext(ctx).First(&listing, id).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepo) GetByItemID(ctx context.Context, userID int64, platform, itemID string) (*model.Listing, error) {
	var listing model.Listing
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND platform = ? AND item_id = ?", userID, platform, itemID).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepo) Update(ctx context.Context, listing *model.Listing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

func (r *listingRepo) List(ctx context.Context, filter ListingFilter) ([]model.Listing, error) {
	var listings []model.Listing

	query := r.db.WithContext(ctx).Model(&model.Listing{})

	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Platform != "" {
		query = query.Where("platform = ?", filter.Platform)
	}
	if filter.Supplier != "" && filter.Supplier != "All" {
		query = query.Where("supplier = ?", filter.Supplier)
	}
	if filter.StoreID != "" && filter.StoreID != "all" && r.Capabilities().HasStoreID {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	err := query.Order("id ASC").Find(&listings).Error
	return listings, err
}

func (r *listingRepo) ListByItemIDs(ctx context.Context, userID int64, itemIDs []string) ([]model.Listing, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var listings []model.Listing
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id IN ?", userID, itemIDs).
		Find(&listings).Error
	return listings, err
}

func (r *listingRepo) ListBySupplierID(ctx context.Context, userID int64, supplierID string) ([]model.Listing, error) {
	var listings []model.Listing
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND supplier_id = ?", userID, supplierID).
		Find(&listings).Error
	return listings, err
}

// BatchUpsert 批量「插入或按键更新」
// 冲突时必须重申 platform（防两个同步实例写入竞态），
// 不覆盖 created_at 与两个分析回写标记
func (r *listingRepo) BatchUpsert(ctx context.Context, listings []model.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "platform"}, {Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"platform",
			"store_id", "title", "sku", "image_url", "brand", "upc", "handle",
			"supplier", "supplier_id",
			"metrics", "analysis_data",
			"price", "currency", "date_listed",
			"sold_qty", "watch_count", "view_count",
			"is_active", "last_synced_at", "updated_at",
		}),
	}).Create(&listings).Error
}

func (r *listingRepo) Upsert(ctx context.Context, listing *model.Listing) error {
	one := []model.Listing{*listing}
	return r.BatchUpsert(ctx, one)
}

func (r *listingRepo) UpdateFlags(ctx context.Context, id int64, globalWinner, activeElsewhere bool) error {
	if !r.Capabilities().HasFlagColumns {
		return gorm.ErrInvalidField
	}
	return r.db.WithContext(ctx).
		Model(&model.Listing{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_global_winner":    globalWinner,
			"is_active_elsewhere": activeElsewhere,
		}).Error
}

func (r *listingRepo) Capabilities() SchemaCapabilities {
	r.capsOnce.Do(func() {
		m := r.db.Migrator()
		r.caps.HasFlagColumns = m.HasColumn(&model.Listing{}, "is_global_winner") &&
			m.HasColumn(&model.Listing{}, "is_active_elsewhere")
		r.caps.HasStoreID = m.HasColumn(&model.Listing{}, "store_id")
	})
	return *r.caps
}

func (r *listingRepo) WithTx(tx *gorm.DB) ListingRepository {
	return &listingRepo{db: tx, capsOnce: r.capsOnce, caps: r.caps}
}

func (r *listingRepo) Transaction(ctx context.Context, fn func(txRepo ListingRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
