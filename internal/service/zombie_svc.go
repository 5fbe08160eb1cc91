package service

import (
	"context"
	"log"
	"sort"
	"time"

	"ebay_zombie_v1_202608/internal/model"
	"ebay_zombie_v1_202608/internal/repository"
)

// ==================== 僵尸筛选 ====================

// GlobalWinnerSalesThreshold 跨平台累计销量超过该值即视为整体盈利，豁免删除
const GlobalWinnerSalesThreshold = 20

// ZombieFilter 筛选条件（所有条件 AND 连接）
type ZombieFilter struct {
	UserID         int64
	MinDays        int    // 上架至少天数
	MaxSales       int64  // 销量 ≤
	MaxWatches     int64  // 关注 ≤（>0 时生效）
	MaxWatchCount  int64  // 旧版关注阈值（MaxWatches 未给时兜底）
	MaxImpressions int64  // 曝光 <（数据完全缺失时跳过该条件）
	MaxViews       int64  // 浏览 <
	Supplier       string // "All" 或空不过滤
	Platform       string // 非白名单值不过滤
	StoreID        string // "all" 或空不过滤
	Skip           int
	Limit          int
}

// ZombieService 僵尸商品筛选 + 跨平台健康检查
type ZombieService struct {
	listingRepo repository.ListingRepository
	metrics     *MetricAccessor
}

// NewZombieService 创建僵尸筛选服务
func NewZombieService(listingRepo repository.ListingRepository, metrics *MetricAccessor) *ZombieService {
	return &ZombieService{
		listingRepo: listingRepo,
		metrics:     metrics,
	}
}

// ==================== 查询入口 ====================

// SelectZombies 选出僵尸候选集
// 返回排序分页后的列表 + 按平台统计（统计基于完整候选集，不受分页影响）。
// 后置遍历为每条候选计算并尽力回写两个标记，回写失败只记日志，绝不影响读取
func (s *ZombieService) SelectZombies(ctx context.Context, filter ZombieFilter) ([]model.Listing, map[string]int64, error) {
	candidates, err := s.selectCandidates(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	// 后置遍历：跨平台健康检查 + 他平台活跃检查
	now := time.Now()
	siblingCache := make(map[string][]model.Listing)
	ages := make(map[int64]int, len(candidates))
	for i := range candidates {
		l := &candidates[i]
		md := s.metrics.ParseDoc(l)
		ages[l.ID] = s.metrics.AgeDays(md, l, now)

		siblings := s.siblingsOf(ctx, l, siblingCache)
		l.IsGlobalWinner = s.globalWinnerFromSiblings(l, siblings)
		l.IsActiveElsewhere = s.activeElsewhere(l, siblings, now)

		// 尽力回写：旧库缺列或写失败都不能打断读路径
		if err := s.listingRepo.UpdateFlags(ctx, l.ID, l.IsGlobalWinner, l.IsActiveElsewhere); err != nil {
			log.Printf("[ZombieService] 标记回写失败，忽略: listing=%d err=%v", l.ID, err)
		}
	}

	// 排序：他平台活跃的排最前（删除前需人工复核），同档按上架天数降序（最老优先）
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].IsActiveElsewhere != candidates[j].IsActiveElsewhere {
			return candidates[i].IsActiveElsewhere
		}
		return ages[candidates[i].ID] > ages[candidates[j].ID]
	})

	breakdown := platformBreakdown(candidates)

	// 分页
	skip := filter.Skip
	if skip < 0 {
		skip = 0
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 1
	}
	if limit > 1000 {
		limit = 1000
	}
	if skip >= len(candidates) {
		return []model.Listing{}, breakdown, nil
	}
	end := skip + limit
	if end > len(candidates) {
		end = len(candidates)
	}
	return candidates[skip:end], breakdown, nil
}

// CountCandidates 只计数，不回写、不分页、不计入分析次数
func (s *ZombieService) CountCandidates(ctx context.Context, filter ZombieFilter) (int64, error) {
	candidates, err := s.selectCandidates(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(candidates)), nil
}

// ==================== 筛选谓词 ====================

// selectCandidates SQL 粗筛后在内存里跑指标降级链谓词
func (s *ZombieService) selectCandidates(ctx context.Context, filter ZombieFilter) ([]model.Listing, error) {
	repoFilter := repository.ListingFilter{
		UserID:     filter.UserID,
		Supplier:   filter.Supplier,
		StoreID:    filter.StoreID,
		ActiveOnly: true,
	}
	// 平台筛选只认白名单值，其余视为不过滤
	if model.IsSupportedPlatform(filter.Platform) {
		repoFilter.Platform = filter.Platform
	}

	listings, err := s.listingRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cutoff := now.AddDate(0, 0, -filter.MinDays)

	matched := make([]model.Listing, 0, len(listings))
	for i := range listings {
		l := &listings[i]
		md := s.metrics.ParseDoc(l)

		// 上架时间：必须早于回看窗口起点
		if !s.metrics.ListedDate(md, l, now).Before(cutoff) {
			continue
		}

		// 销量 ≤
		if sales, _ := s.metrics.Value(md, l, MetricSales); sales > float64(filter.MaxSales) {
			continue
		}

		// 关注 ≤（新阈值为正时生效，否则用旧阈值）
		watchLimit := filter.MaxWatches
		if watchLimit <= 0 {
			watchLimit = filter.MaxWatchCount
		}
		if watches, _ := s.metrics.Value(md, l, MetricWatches); watches > float64(watchLimit) {
			continue
		}

		// 曝光 <：数据完全缺失时跳过该条件（缺信号不能定罪也不能豁免其他条件）
		if impressions, has := s.metrics.Value(md, l, MetricImpressions); has {
			if impressions >= float64(filter.MaxImpressions) {
				continue
			}
		}

		// 浏览 <
		if views, _ := s.metrics.Value(md, l, MetricViews); views >= float64(filter.MaxViews) {
			continue
		}

		matched = append(matched, *l)
	}
	return matched, nil
}

// ==================== 跨平台检查 ====================

// IsGlobalWinner 跨平台健康检查
// 同一卖家同一 supplier_id 在所有平台/店铺的销量求和 > 阈值即为整体赢家。
// supplier_id 缺失一律 false
func (s *ZombieService) IsGlobalWinner(ctx context.Context, userID int64, supplierID string) (bool, error) {
	if supplierID == "" {
		return false, nil
	}
	listings, err := s.listingRepo.ListBySupplierID(ctx, userID, supplierID)
	if err != nil {
		return false, err
	}
	return s.sumSales(listings) > GlobalWinnerSalesThreshold, nil
}

// siblingsOf 取同 supplier_id 的全部商品（含自身），按 supplier_id 缓存
func (s *ZombieService) siblingsOf(ctx context.Context, l *model.Listing, cache map[string][]model.Listing) []model.Listing {
	sid := l.SupplierIDValue()
	if sid == "" {
		return nil
	}
	if cached, ok := cache[sid]; ok {
		return cached
	}
	siblings, err := s.listingRepo.ListBySupplierID(ctx, l.UserID, sid)
	if err != nil {
		log.Printf("[ZombieService] 同源商品查询失败: supplier_id=%s err=%v", sid, err)
		siblings = nil
	}
	cache[sid] = siblings
	return siblings
}

func (s *ZombieService) globalWinnerFromSiblings(l *model.Listing, siblings []model.Listing) bool {
	if l.SupplierIDValue() == "" {
		return false
	}
	return s.sumSales(siblings) > GlobalWinnerSalesThreshold
}

// activeElsewhere 同卖家同 supplier_id 的「其他平台」商品是否还活着
// 活着的定义：有销量，或浏览 > 10，或上架不足 3 天
func (s *ZombieService) activeElsewhere(l *model.Listing, siblings []model.Listing, now time.Time) bool {
	for i := range siblings {
		other := &siblings[i]
		if other.ID == l.ID || other.Platform == l.Platform {
			continue
		}
		md := s.metrics.ParseDoc(other)
		if sales, _ := s.metrics.Value(md, other, MetricSales); sales > 0 {
			return true
		}
		if views, _ := s.metrics.Value(md, other, MetricViews); views > 10 {
			return true
		}
		if s.metrics.AgeDays(md, other, now) < 3 {
			return true
		}
	}
	return false
}

func (s *ZombieService) sumSales(listings []model.Listing) float64 {
	var total float64
	for i := range listings {
		l := &listings[i]
		md := s.metrics.ParseDoc(l)
		sales, _ := s.metrics.Value(md, l, MetricSales)
		total += sales
	}
	return total
}

// ==================== 统计 ====================

// platformBreakdown 候选集按平台计数；平台缺失时落到店铺标识，再不行归 Unknown
func platformBreakdown(listings []model.Listing) map[string]int64 {
	breakdown := make(map[string]int64)
	for i := range listings {
		key := listings[i].Platform
		if key == "" {
			key = listings[i].StoreID
		}
		if key == "" {
			key = "Unknown"
		}
		breakdown[key]++
	}
	return breakdown
}
