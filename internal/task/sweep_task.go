package task

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"ebay_zombie_v1_202608/internal/api/dto"
	"ebay_zombie_v1_202608/internal/model"
	"ebay_zombie_v1_202608/internal/repository"
	"ebay_zombie_v1_202608/internal/service"
	"ebay_zombie_v1_202608/pkg/ebay"
)

// ==================== SweepTask 定时同步任务 ====================

// SweepTask 账号级商品同步任务
// 同步策略：
//   - 增量同步：每 6 小时
//   - 全量同步：每日凌晨 4 点
type SweepTask struct {
	userRepo    repository.SysUserRepository
	syncService *service.SyncService
	ebayClient  *ebay.Client
	cron        *cron.Cron

	// 并发控制
	concurrencyLimit int
	sleepTime        time.Duration
}

// NewSweepTask 创建同步任务
func NewSweepTask(
	userRepo repository.SysUserRepository,
	syncService *service.SyncService,
	ebayClient *ebay.Client,
) *SweepTask {
	return &SweepTask{
		userRepo:         userRepo,
		syncService:      syncService,
		ebayClient:       ebayClient,
		cron:             cron.New(cron.WithSeconds()),
		concurrencyLimit: 3,
		sleepTime:        300 * time.Millisecond,
	}
}

// Start 启动定时任务
func (t *SweepTask) Start() {
	// 增量同步：每 6 小时
	_, _ = t.cron.AddFunc("0 0 */6 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()
		t.syncAllUsers(ctx)
	})

	// 全量同步：每日凌晨 4 点
	_, _ = t.cron.AddFunc("0 0 4 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Hour)
		defer cancel()
		log.Println("[SweepTask] 开始每日全量同步...")
		t.syncAllUsers(ctx)
	})

	t.cron.Start()
	log.Println("[SweepTask] 已启动 (增量每6小时/全量每日4点)")
}

// Stop 停止任务
func (t *SweepTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
	log.Println("[SweepTask] 已停止")
}

// syncAllUsers 同步所有活跃账号
func (t *SweepTask) syncAllUsers(ctx context.Context) {
	users, err := t.userRepo.ListActive(ctx)
	if err != nil {
		log.Printf("[SweepTask] 获取账号列表失败: %v", err)
		return
	}
	if len(users) == 0 {
		log.Println("[SweepTask] 无活跃账号需要同步")
		return
	}

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	var (
		successCount   int
		failCount      int
		totalProcessed int
		mu             sync.Mutex
	)

	log.Printf("[SweepTask] 开始处理 %d 个账号", len(users))

	for i := range users {
		user := users[i]
		if user.EbayUsername == "" || user.EbayToken == "" {
			continue
		}

		select {
		case <-ctx.Done():
			log.Println("[SweepTask] 任务超时停止")
			wg.Wait()
			return
		default:
		}

		sem <- struct{}{}
		wg.Add(1)
		time.Sleep(t.sleepTime)

		go func(u model.SysUser) {
			defer wg.Done()
			defer func() { <-sem }()

			processed, err := t.syncUser(ctx, &u)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				log.Printf("[SweepTask] 账号 %s(%d) 同步失败: %v", u.Username, u.ID, err)
				failCount++
			} else {
				successCount++
				totalProcessed += processed
			}
		}(user)
	}

	wg.Wait()
	log.Printf("[SweepTask] 同步完成: 账号成功 %d, 失败 %d, 入库商品 %d",
		successCount, failCount, totalProcessed)
}

// syncUser 同步单个账号：拉取在售清单 → 入库管道
func (t *SweepTask) syncUser(ctx context.Context, user *model.SysUser) (int, error) {
	dtos, err := t.ebayClient.FetchActiveListings(ctx, user.EbayToken, user.EbayUsername)
	if err != nil {
		return 0, err
	}
	if len(dtos) == 0 {
		return 0, nil
	}

	raws := make([]dto.RawListing, 0, len(dtos))
	for i := range dtos {
		raws = append(raws, toRawListing(&dtos[i]))
	}

	return t.syncService.UpsertListings(ctx, user.ID, raws)
}

// toRawListing eBay DTO → 入库管道入参
func toRawListing(d *ebay.ListingDTO) dto.RawListing {
	return dto.RawListing{
		ItemID:     d.ItemID,
		Title:      d.Title,
		SKU:        d.SKU,
		ImageURL:   d.PictureURL,
		Brand:      d.Brand,
		UPC:        d.UPC,
		StoreID:    d.StoreID,
		Price:      d.Price,
		Currency:   d.Currency,
		DateListed: d.StartTime,
		Sales:      d.QuantitySold,
		Watches:    d.WatchCount,
		Views:      d.HitCount,
		Metrics:    d.Metrics,
	}
}

// ==================== 手动触发 ====================

// SyncUserNow 立即同步单个账号
func (t *SweepTask) SyncUserNow(ctx context.Context, userID int64) (int, error) {
	user, err := t.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return t.syncUser(ctx, user)
}
