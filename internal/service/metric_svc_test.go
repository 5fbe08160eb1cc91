package service

import (
	"testing"
	"time"

	"gorm.io/datatypes"

	"ebay_zombie_v1_202608/internal/model"
)

func docListing(doc string) *model.Listing {
	return &model.Listing{Metrics: datatypes.JSON([]byte(doc))}
}

// ==================== 数值降级链 ====================

func TestMetricValue_NestedDoc(t *testing.T) {
	a := NewMetricAccessor()

	l := docListing(`{"sales": {"total_sales": 7}}`)
	l.SoldQty = 99 // 旧列不应被读到
	md := a.ParseDoc(l)

	v, has := a.Value(md, l, MetricSales)
	if !has || v != 7 {
		t.Errorf("sales = (%v, %v), want (7, true)", v, has)
	}
}

func TestMetricValue_FlatScalar(t *testing.T) {
	a := NewMetricAccessor()

	// 裸数字
	l := docListing(`{"views": 42}`)
	md := a.ParseDoc(l)
	if v, _ := a.Value(md, l, MetricViews); v != 42 {
		t.Errorf("views = %v, want 42", v)
	}

	// 数字串也要认
	l = docListing(`{"watches": "15"}`)
	md = a.ParseDoc(l)
	if v, _ := a.Value(md, l, MetricWatches); v != 15 {
		t.Errorf("watches = %v, want 15", v)
	}
}

func TestMetricValue_LegacyColumnFallback(t *testing.T) {
	a := NewMetricAccessor()

	// 文档缺失：回落旧列
	l := &model.Listing{SoldQty: 3, WatchCount: 8, ViewCount: 21}
	md := a.ParseDoc(l)

	if v, has := a.Value(md, l, MetricSales); !has || v != 3 {
		t.Errorf("sales = (%v, %v), want (3, true)", v, has)
	}
	if v, has := a.Value(md, l, MetricWatches); !has || v != 8 {
		t.Errorf("watches = (%v, %v), want (8, true)", v, has)
	}
	if v, has := a.Value(md, l, MetricViews); !has || v != 21 {
		t.Errorf("views = (%v, %v), want (21, true)", v, has)
	}
}

func TestMetricValue_MalformedPayloadFallsThrough(t *testing.T) {
	a := NewMetricAccessor()

	// 嵌套对象里不是数字：当作缺失继续降级
	l := docListing(`{"sales": {"total_sales": "not-a-number"}}`)
	l.SoldQty = 5
	md := a.ParseDoc(l)

	if v, has := a.Value(md, l, MetricSales); !has || v != 5 {
		t.Errorf("sales = (%v, %v), want (5, true)", v, has)
	}
}

func TestMetricValue_ImpressionsAbsent(t *testing.T) {
	a := NewMetricAccessor()

	// impressions 没有旧列：文档也没有时必须报「无信号」
	l := &model.Listing{SoldQty: 5, ViewCount: 100}
	md := a.ParseDoc(l)

	if _, has := a.Value(md, l, MetricImpressions); has {
		t.Error("impressions 完全缺失时 has 应为 false")
	}

	// 文档里有就正常取
	l = docListing(`{"impressions": {"total_impressions": 250}}`)
	md = a.ParseDoc(l)
	if v, has := a.Value(md, l, MetricImpressions); !has || v != 250 {
		t.Errorf("impressions = (%v, %v), want (250, true)", v, has)
	}
}

// ==================== 日期降级链 ====================

func TestListedDate_DocFormats(t *testing.T) {
	a := NewMetricAccessor()
	now := time.Now()

	// 字符串日期（带时间后缀也只取前 10 位）
	l := docListing(`{"date_listed": "2025-06-15T08:30:00Z"}`)
	md := a.ParseDoc(l)
	got := a.ListedDate(md, l, now)
	want := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("date = %v, want %v", got, want)
	}

	// Unix 秒数字
	l = docListing(`{"date_listed": 1750000000}`)
	md = a.ParseDoc(l)
	got = a.ListedDate(md, l, now)
	if got.Unix() != 1750000000 {
		t.Errorf("date unix = %d, want 1750000000", got.Unix())
	}

	// 嵌套形态
	l = docListing(`{"date_listed": {"total_date_listed": "2024-01-02"}}`)
	md = a.ParseDoc(l)
	got = a.ListedDate(md, l, now)
	if got.Format("2006-01-02") != "2024-01-02" {
		t.Errorf("date = %v, want 2024-01-02", got)
	}
}

func TestListedDate_ColumnAndSyncFallback(t *testing.T) {
	a := NewMetricAccessor()
	now := time.Now()

	listed := now.AddDate(0, 0, -40)
	synced := now.AddDate(0, 0, -5)

	// 文档缺失 → 旧列
	l := &model.Listing{DateListed: &listed, LastSyncedAt: &synced}
	md := a.ParseDoc(l)
	if got := a.ListedDate(md, l, now); !got.Equal(listed) {
		t.Errorf("date = %v, want DateListed 列", got)
	}

	// 旧列也缺 → 最后同步时间
	l = &model.Listing{LastSyncedAt: &synced}
	md = a.ParseDoc(l)
	if got := a.ListedDate(md, l, now); !got.Equal(synced) {
		t.Errorf("date = %v, want LastSyncedAt", got)
	}
}

func TestListedDate_UnknownIsAncient(t *testing.T) {
	a := NewMetricAccessor()
	now := time.Now()

	// 坏日期串 + 无任何列：按 999 天前处理
	l := docListing(`{"date_listed": "someday"}`)
	md := a.ParseDoc(l)

	if age := a.AgeDays(md, l, now); age != UnknownAgeDays {
		t.Errorf("age = %d, want %d", age, UnknownAgeDays)
	}
}

func TestAgeDays_NeverNegative(t *testing.T) {
	a := NewMetricAccessor()
	now := time.Now()

	future := now.AddDate(0, 0, 3)
	l := &model.Listing{DateListed: &future}
	md := a.ParseDoc(l)

	if age := a.AgeDays(md, l, now); age != 0 {
		t.Errorf("age = %d, want 0 (未来时间钳到 0)", age)
	}
}
