package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"ebay_zombie_v1_202608/internal/model"
	"ebay_zombie_v1_202608/internal/repository"
)

// ==================== 导出模式 ====================

const (
	// ExportModeDelete 入参即导出集；导出前逐条落删除审计快照
	ExportModeDelete = "delete_list"
	// ExportModeFullSync 入参是排除集；导出「幸存者全量清单」，
	// 删除工具靠 diff 幸存清单反推要删什么
	ExportModeFullSync = "full_sync_list"
)

// ExportRequest 导出入参
type ExportRequest struct {
	UserID       int64
	Tool         string
	Mode         string
	PlatformHint string // "shopify" 时强制改走 Excelify 模板
	StoreID      string

	// delete 模式：要导出的商品
	Listings []model.Listing
	// full_sync 模式：要排除的 item_id 集合
	ExcludeItemIDs []string
}

// ExportService 格式驱动的 CSV 导出
type ExportService struct {
	listingRepo repository.ListingRepository
	formatRepo  repository.CSVFormatRepository
	logRepo     repository.DeletionLogRepository
}

// NewExportService 创建导出服务
func NewExportService(
	listingRepo repository.ListingRepository,
	formatRepo repository.CSVFormatRepository,
	logRepo repository.DeletionLogRepository,
) *ExportService {
	return &ExportService{
		listingRepo: listingRepo,
		formatRepo:  formatRepo,
		logRepo:     logRepo,
	}
}

// Export 生成 CSV 文本
// 归属缺失 / 模板未注册都是硬性失败；delete 模式保证审计快照先于
// CSV 落库成功，否则整个调用失败
func (s *ExportService) Export(ctx context.Context, req ExportRequest) (string, error) {
	if req.UserID <= 0 {
		return "", ErrMissingUser
	}

	// 平台提示可以覆盖模板选择
	tool := req.Tool
	if strings.EqualFold(req.PlatformHint, "shopify") {
		tool = "Excelify"
	}

	format, err := s.formatRepo.GetByTool(ctx, tool)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrFormatNotFound, tool)
	}

	var rows []model.Listing
	switch req.Mode {
	case ExportModeDelete:
		rows = req.Listings
		if err := s.writeDeletionLogs(ctx, req, tool, rows); err != nil {
			return "", fmt.Errorf("删除审计落库失败: %w", err)
		}
	case ExportModeFullSync:
		rows, err = s.survivorRows(ctx, req)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("未知导出模式: %s", req.Mode)
	}

	return renderCSV(format, rows)
}

// ExportByItemIDs 控制器便捷入口
// delete 模式把 itemIDs 当目标集（按归属加载商品），full_sync 模式当排除集
func (s *ExportService) ExportByItemIDs(ctx context.Context, req ExportRequest, itemIDs []string) (string, error) {
	if req.UserID <= 0 {
		return "", ErrMissingUser
	}
	if req.Mode == ExportModeDelete {
		listings, err := s.listingRepo.ListByItemIDs(ctx, req.UserID, itemIDs)
		if err != nil {
			return "", err
		}
		req.Listings = listings
		req.ExcludeItemIDs = nil
	} else {
		req.ExcludeItemIDs = itemIDs
	}
	return s.Export(ctx, req)
}

// survivorRows 全量在售商品去掉排除集
func (s *ExportService) survivorRows(ctx context.Context, req ExportRequest) ([]model.Listing, error) {
	listings, err := s.listingRepo.List(ctx, repository.ListingFilter{
		UserID:     req.UserID,
		StoreID:    req.StoreID,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]struct{}, len(req.ExcludeItemIDs))
	for _, id := range req.ExcludeItemIDs {
		excluded[id] = struct{}{}
	}

	rows := make([]model.Listing, 0, len(listings))
	for i := range listings {
		if _, skip := excluded[listings[i].ItemID]; skip {
			continue
		}
		rows = append(rows, listings[i])
	}
	return rows, nil
}

// ==================== 删除审计 ====================

// writeDeletionLogs 每条导出商品落一份导出瞬间的快照
func (s *ExportService) writeDeletionLogs(ctx context.Context, req ExportRequest, tool string, rows []model.Listing) error {
	if len(rows) == 0 {
		return nil
	}
	runID := uuid.NewString()
	entries := make([]model.DeletionLog, 0, len(rows))
	for i := range rows {
		l := &rows[i]
		entries = append(entries, model.DeletionLog{
			UserID:      req.UserID,
			ItemID:      l.ItemID,
			Title:       l.Title,
			Platform:    l.Platform,
			Supplier:    l.Supplier,
			Snapshot:    snapshotDoc(l),
			ExportRunID: runID,
			ExportTool:  tool,
		})
	}
	if err := s.logRepo.CreateBatch(ctx, entries); err != nil {
		return err
	}
	log.Printf("[ExportService] 删除审计落库: run=%s tool=%s count=%d", runID, tool, len(entries))
	return nil
}

// snapshotDoc 导出瞬间快照：price / views / sales / title / supplier / platform / metrics
func snapshotDoc(l *model.Listing) datatypes.JSON {
	var metricsDoc map[string]interface{}
	if len(l.Metrics) > 0 {
		_ = json.Unmarshal(l.Metrics, &metricsDoc)
	}
	doc := map[string]interface{}{
		"price":    l.Price,
		"views":    l.ViewCount,
		"sales":    l.SoldQty,
		"title":    l.Title,
		"supplier": l.Supplier,
		"platform": l.Platform,
		"metrics":  metricsDoc,
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return datatypes.JSON([]byte(`{}`))
	}
	return datatypes.JSON(b)
}

// ==================== 行构造 ====================

// renderCSV 按模板列顺序逐列取值
// 未解析出的列渲染空串，绝不输出 "None"/"null"
func renderCSV(format *model.CSVFormat, rows []model.Listing) (string, error) {
	rules := format.Rules()

	var sb strings.Builder
	w := csv.NewWriter(&sb)

	header := make([]string, len(format.ColumnOrder))
	copy(header, format.ColumnOrder)
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i := range rows {
		record := make([]string, 0, len(format.ColumnOrder))
		for _, col := range format.ColumnOrder {
			record = append(record, resolveColumn(rules[col], &rows[i]))
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// resolveColumn 静态字面量 > 主字段 > 备选字段 > 空串
func resolveColumn(rule model.ColumnRule, l *model.Listing) string {
	if rule.Static != "" {
		return rule.Static
	}
	if v := sourceField(l, rule.Source); v != "" {
		return v
	}
	return sourceField(l, rule.Fallback)
}

// sourceField 可引用的源字段
func sourceField(l *model.Listing, name string) string {
	switch name {
	case "item_id":
		return l.ItemID
	case "sku":
		return l.SKU
	case "supplier_id":
		return l.SupplierIDValue()
	case "handle":
		return l.Handle
	case "title":
		return l.Title
	}
	return ""
}
