package service

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"ebay_zombie_v1_202608/internal/model"
)

// ==================== 指标读取 ====================
//
// 同一个指标可能存在三种表示：Metrics 文档里的嵌套对象、文档里的裸标量、
// 旧版标量列。按固定优先级逐层降级，命中第一层可用表示即停。
// 解析歧义（坏日期、非数值负载）不抛错，继续往下落。

// 指标名常量
const (
	MetricSales       = "sales"
	MetricWatches     = "watches"
	MetricImpressions = "impressions"
	MetricViews       = "views"
	MetricDateListed  = "date_listed"
)

// UnknownAgeDays 完全无时间信息时按极老处理
const UnknownAgeDays = 999

// MetricAccessor 指标访问器（无状态）
type MetricAccessor struct{}

// NewMetricAccessor 创建指标访问器
func NewMetricAccessor() *MetricAccessor {
	return &MetricAccessor{}
}

// MetricDoc 单条 Listing 的指标文档，解析一次重复使用
type MetricDoc struct {
	doc map[string]interface{}
}

// ParseDoc 解析 Metrics 文档；空/坏文档得到空 map（全部走旧列降级）
func (a *MetricAccessor) ParseDoc(l *model.Listing) MetricDoc {
	md := MetricDoc{doc: map[string]interface{}{}}
	if len(l.Metrics) == 0 {
		return md
	}
	_ = json.Unmarshal(l.Metrics, &md.doc)
	return md
}

// Value 按降级链取数值指标
// 返回 (值, 是否有信号)：impressions 完全缺失时返回 (0, false)，
// 其余指标缺失时落到旧列默认值 (x, true)
func (a *MetricAccessor) Value(md MetricDoc, l *model.Listing, name string) (float64, bool) {
	if raw, ok := md.doc[name]; ok {
		// 第 1 层：嵌套对象形态 {"sales": {"total_sales": 3}}
		if nested, isDoc := raw.(map[string]interface{}); isDoc {
			if v, numOK := toNumber(nested["total_"+name]); numOK {
				return v, true
			}
		} else if v, numOK := toNumber(raw); numOK {
			// 第 2 层：裸标量形态（数字或数字串）
			return v, true
		}
	}

	// 第 3 层：旧版标量列
	switch name {
	case MetricSales:
		return float64(l.SoldQty), true
	case MetricWatches:
		return float64(l.WatchCount), true
	case MetricViews:
		return float64(l.ViewCount), true
	case MetricImpressions:
		// impressions 没有旧列：完全缺失视为「无信号」，筛选时直接放行
		return 0, false
	}
	return 0, false
}

// ListedDate 按降级链取上架日期
// 文档形态 → 旧列 → 最后同步时间 → 未知（按 999 天前处理）
func (a *MetricAccessor) ListedDate(md MetricDoc, l *model.Listing, now time.Time) time.Time {
	if raw, ok := md.doc[MetricDateListed]; ok {
		if nested, isDoc := raw.(map[string]interface{}); isDoc {
			if t, dateOK := toDate(nested["total_"+MetricDateListed]); dateOK {
				return t
			}
		} else if t, dateOK := toDate(raw); dateOK {
			return t
		}
	}
	if l.DateListed != nil {
		return *l.DateListed
	}
	if l.LastSyncedAt != nil {
		return *l.LastSyncedAt
	}
	return now.AddDate(0, 0, -UnknownAgeDays)
}

// AgeDays 上架至今天数
func (a *MetricAccessor) AgeDays(md MetricDoc, l *model.Listing, now time.Time) int {
	listed := a.ListedDate(md, l, now)
	age := int(now.Sub(listed).Hours() / 24)
	if age < 0 {
		return 0
	}
	return age
}

// ==================== 解析原语 ====================

// toNumber 数字或数字串转 float64
func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// toDate 字符串按 YYYY-MM-DD 解析，数字按 Unix 秒解析
func toDate(v interface{}) (time.Time, bool) {
	switch d := v.(type) {
	case string:
		s := strings.TrimSpace(d)
		if len(s) >= 10 {
			if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
				return t, true
			}
		}
	case float64:
		if d > 0 {
			return time.Unix(int64(d), 0).UTC(), true
		}
	case int64:
		if d > 0 {
			return time.Unix(d, 0).UTC(), true
		}
	}
	return time.Time{}, false
}
