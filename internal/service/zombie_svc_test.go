package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ebay_zombie_v1_202608/internal/model"
	"ebay_zombie_v1_202608/internal/repository"
)

// ==================== 测试基建 ====================

func setupZombieTest(t *testing.T) (*gorm.DB, *ZombieService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Listing{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	repo := repository.NewListingRepository(db)
	return db, NewZombieService(repo, NewMetricAccessor())
}

// zombieSeed 一条典型僵尸：上架 40 天、零销零关注零浏览
func zombieSeed(userID int64, itemID string) model.Listing {
	listed := time.Now().AddDate(0, 0, -40)
	return model.Listing{
		UserID:     userID,
		Platform:   model.PlatformEbay,
		ItemID:     itemID,
		Title:      "test item " + itemID,
		Supplier:   "Amazon",
		DateListed: &listed,
		IsActive:   true,
	}
}

func defaultFilter(userID int64) ZombieFilter {
	return ZombieFilter{
		UserID:         userID,
		MinDays:        30,
		MaxSales:       0,
		MaxWatches:     5,
		MaxImpressions: 100,
		MaxViews:       10,
		Supplier:       "All",
		StoreID:        "all",
		Limit:          100,
	}
}

func mustCreate(t *testing.T, db *gorm.DB, listings ...model.Listing) {
	for i := range listings {
		if err := db.Create(&listings[i]).Error; err != nil {
			t.Fatalf("造数失败: %v", err)
		}
	}
}

// ==================== 筛选谓词 ====================

func TestSelectZombies_AgeGate(t *testing.T) {
	db, svc := setupZombieTest(t)

	old := zombieSeed(1, "ITEM-OLD")
	young := zombieSeed(1, "ITEM-YOUNG")
	youngDate := time.Now().AddDate(0, 0, -10)
	young.DateListed = &youngDate
	mustCreate(t, db, old, young)

	got, _, err := svc.SelectZombies(context.Background(), defaultFilter(1))
	if err != nil {
		t.Fatalf("SelectZombies: %v", err)
	}
	if len(got) != 1 || got[0].ItemID != "ITEM-OLD" {
		t.Errorf("结果 = %d 条, 只应命中 ITEM-OLD", len(got))
	}
}

func TestSelectZombies_MetricGates(t *testing.T) {
	db, svc := setupZombieTest(t)

	pass := zombieSeed(1, "PASS")

	// 嵌套文档里的销量要被读到
	soldDoc := zombieSeed(1, "SOLD")
	soldDoc.Metrics = datatypes.JSON([]byte(`{"sales": {"total_sales": 5}}`))

	// 旧列销量同样定罪
	soldCol := zombieSeed(1, "SOLD-COL")
	soldCol.SoldQty = 2

	// 浏览过线（条件是严格小于）
	viewed := zombieSeed(1, "VIEWED")
	viewed.ViewCount = 10

	// 曝光过线
	seen := zombieSeed(1, "SEEN")
	seen.Metrics = datatypes.JSON([]byte(`{"impressions": 150}`))

	mustCreate(t, db, pass, soldDoc, soldCol, viewed, seen)

	got, _, err := svc.SelectZombies(context.Background(), defaultFilter(1))
	if err != nil {
		t.Fatalf("SelectZombies: %v", err)
	}
	if len(got) != 1 || got[0].ItemID != "PASS" {
		ids := make([]string, 0, len(got))
		for _, l := range got {
			ids = append(ids, l.ItemID)
		}
		t.Errorf("命中 %v, 只应命中 PASS", ids)
	}
}

// 曝光数据完全缺失时跳过该条件，不能定罪也不能豁免
func TestSelectZombies_ImpressionsNoSignal(t *testing.T) {
	db, svc := setupZombieTest(t)
	mustCreate(t, db, zombieSeed(1, "NO-IMP"))

	f := defaultFilter(1)
	f.MaxImpressions = 0 // 有信号时 0 阈值会排除一切
	got, _, err := svc.SelectZombies(context.Background(), f)
	if err != nil {
		t.Fatalf("SelectZombies: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("无曝光信号的商品应放行, got %d 条", len(got))
	}
}

func TestSelectZombies_WatchThresholdFallback(t *testing.T) {
	db, svc := setupZombieTest(t)

	watched := zombieSeed(1, "WATCHED")
	watched.WatchCount = 8
	mustCreate(t, db, watched)

	// 新阈值未给：回落旧阈值 10，放行
	f := defaultFilter(1)
	f.MaxWatches = 0
	f.MaxWatchCount = 10
	got, _, _ := svc.SelectZombies(context.Background(), f)
	if len(got) != 1 {
		t.Errorf("旧阈值 10 应放行 8 个关注, got %d", len(got))
	}

	// 新阈值给了就用新的
	f.MaxWatches = 5
	got, _, _ = svc.SelectZombies(context.Background(), f)
	if len(got) != 0 {
		t.Errorf("新阈值 5 应排除 8 个关注, got %d", len(got))
	}
}

func TestCountCandidates_MatchesSelect(t *testing.T) {
	db, svc := setupZombieTest(t)
	mustCreate(t, db, zombieSeed(1, "A"), zombieSeed(1, "B"), zombieSeed(1, "C"))

	f := defaultFilter(1)
	count, err := svc.CountCandidates(context.Background(), f)
	if err != nil {
		t.Fatalf("CountCandidates: %v", err)
	}
	got, _, err := svc.SelectZombies(context.Background(), f)
	if err != nil {
		t.Fatalf("SelectZombies: %v", err)
	}
	if count != int64(len(got)) {
		t.Errorf("计数 %d 与查询 %d 不一致", count, len(got))
	}
}

// ==================== 跨平台检查与排序 ====================

func TestSelectZombies_ActiveElsewhereOrdering(t *testing.T) {
	db, svc := setupZombieTest(t)

	sid := "B08ABC1234"

	// 候选 1：他平台兄弟有销量 → 活跃，排最前
	flagged := zombieSeed(1, "FLAGGED")
	flagged.SupplierID = &sid

	// 候选 2：更老但无兄弟
	older := zombieSeed(1, "OLDER")
	olderDate := time.Now().AddDate(0, 0, -200)
	older.DateListed = &olderDate

	// Shopify 侧兄弟：销量 5（自己触线销量，不进候选集）
	sibling := zombieSeed(1, "SIB")
	sibling.Platform = model.PlatformShopify
	sibling.SupplierID = &sid
	sibling.SoldQty = 5

	mustCreate(t, db, flagged, older, sibling)

	got, _, err := svc.SelectZombies(context.Background(), defaultFilter(1))
	if err != nil {
		t.Fatalf("SelectZombies: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("候选 = %d, want 2", len(got))
	}
	if got[0].ItemID != "FLAGGED" || !got[0].IsActiveElsewhere {
		t.Errorf("他平台活跃的应排第一且打标, got[0]=%s active=%v",
			got[0].ItemID, got[0].IsActiveElsewhere)
	}

	// 标记已回写库里
	var stored model.Listing
	db.Where("item_id = ?", "FLAGGED").First(&stored)
	if !stored.IsActiveElsewhere {
		t.Error("IsActiveElsewhere 应已回写")
	}
}

func TestSelectZombies_GlobalWinnerFlag(t *testing.T) {
	db, svc := setupZombieTest(t)

	sid := "W-778899"
	candidate := zombieSeed(1, "CAND")
	candidate.SupplierID = &sid

	// 同源兄弟累计销量 25 > 阈值 20
	rich := zombieSeed(1, "RICH")
	rich.Platform = model.PlatformEtsy
	rich.SupplierID = &sid
	rich.Metrics = datatypes.JSON([]byte(`{"sales": {"total_sales": 25}}`))

	mustCreate(t, db, candidate, rich)

	got, _, err := svc.SelectZombies(context.Background(), defaultFilter(1))
	if err != nil {
		t.Fatalf("SelectZombies: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("候选 = %d, want 1", len(got))
	}
	if !got[0].IsGlobalWinner {
		t.Error("跨平台累计销量 25 应判整体赢家")
	}
}

func TestIsGlobalWinner_EmptySupplierID(t *testing.T) {
	_, svc := setupZombieTest(t)

	winner, err := svc.IsGlobalWinner(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("IsGlobalWinner: %v", err)
	}
	if winner {
		t.Error("supplier_id 缺失必须判 false")
	}
}

// ==================== 统计与分页 ====================

func TestSelectZombies_Breakdown(t *testing.T) {
	db, svc := setupZombieTest(t)

	a := zombieSeed(1, "A")
	b := zombieSeed(1, "B")
	c := zombieSeed(1, "C")
	c.Platform = model.PlatformEtsy
	mustCreate(t, db, a, b, c)

	f := defaultFilter(1)
	f.Limit = 1 // 统计不受分页影响
	got, breakdown, err := svc.SelectZombies(context.Background(), f)
	if err != nil {
		t.Fatalf("SelectZombies: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("分页后 = %d, want 1", len(got))
	}
	if breakdown[model.PlatformEbay] != 2 || breakdown[model.PlatformEtsy] != 1 {
		t.Errorf("breakdown = %v, want eBay:2 Etsy:1", breakdown)
	}
}

func TestSelectZombies_PaginationClamp(t *testing.T) {
	db, svc := setupZombieTest(t)
	mustCreate(t, db, zombieSeed(1, "A"), zombieSeed(1, "B"))

	// skip 越界 → 空页而非报错
	f := defaultFilter(1)
	f.Skip = 100
	got, _, err := svc.SelectZombies(context.Background(), f)
	if err != nil {
		t.Fatalf("SelectZombies: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("越界分页应返回空页, got %d", len(got))
	}

	// 负 skip / 零 limit 钳到合法区间
	f = defaultFilter(1)
	f.Skip = -5
	f.Limit = 0
	got, _, err = svc.SelectZombies(context.Background(), f)
	if err != nil {
		t.Fatalf("SelectZombies: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("limit 钳到 1, got %d", len(got))
	}
}

func TestSelectZombies_SupplierAndPlatformFilter(t *testing.T) {
	db, svc := setupZombieTest(t)

	amz := zombieSeed(1, "AMZ")
	wm := zombieSeed(1, "WM")
	wm.Supplier = "Walmart"
	mustCreate(t, db, amz, wm)

	f := defaultFilter(1)
	f.Supplier = "Walmart"
	got, _, _ := svc.SelectZombies(context.Background(), f)
	if len(got) != 1 || got[0].ItemID != "WM" {
		t.Errorf("供应商筛选失败, got %d 条", len(got))
	}

	// 白名单之外的平台值视为不过滤
	f = defaultFilter(1)
	f.Platform = "NotAPlatform"
	got, _, _ = svc.SelectZombies(context.Background(), f)
	if len(got) != 2 {
		t.Errorf("非法平台值应不过滤, got %d 条", len(got))
	}
}
