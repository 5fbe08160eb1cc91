package service

import (
	"regexp"
	"strings"
)

// ==================== 供应商识别 ====================
//
// 纯字符串启发式：SKU 前缀 > 图片主机 > 独占关键词，块内优先级固定。
// 各供应商块本身也按固定顺序扫描，模式可能互相覆盖（比如裸 "SH" 前缀
// 在 Shopify 与 SaleHoo 之间有歧义），顺序不能随意调整。

// SupplierRule 单个供应商/工具的匹配规则
type SupplierRule struct {
	Name     string
	Prefixes []string // SKU 前缀或分段 token（大写）
	Hosts    []string // 图片 URL 主机子串（小写）
	Keywords []string // 标题/品牌独占自有品牌词（小写）
}

// asinPattern Amazon ASIN：B0 + 8 位字母数字
var asinPattern = regexp.MustCompile(`B0[0-9A-Z]{8}`)

// directSuppliers 直接供应商，按优先级排列
var directSuppliers = []SupplierRule{
	{
		Name:     "Amazon",
		Prefixes: []string{"AMZ", "AMAZON"},
		Hosts:    []string{"media-amazon.com", "images-amazon.com", "amazon.com", "amazon-adsystem.com"},
		Keywords: []string{"amazon basics", "amazonbasics", "kindle", "echo dot", "fire tv"},
	},
	{
		Name:     "Walmart",
		Prefixes: []string{"WM", "WMT", "WALMART"},
		Hosts:    []string{"walmartimages.com", "walmart.com"},
		Keywords: []string{"great value", "mainstays", "equate", "ozark trail", "hyper tough", "parent's choice"},
	},
	{
		Name:     "AliExpress",
		Prefixes: []string{"AE", "ALI"},
		Hosts:    []string{"alicdn.com", "aliexpress.com"},
	},
	{
		Name:     "CJ Dropshipping",
		Prefixes: []string{"CJ", "CJD"},
		Hosts:    []string{"cjdropshipping.com", "cjdropshipping"},
	},
	{
		Name:     "Home Depot",
		Prefixes: []string{"HD", "HOMEDEPOT"},
		Hosts:    []string{"homedepot.com", "thdstatic.com"},
		Keywords: []string{"husky", "hdx", "glacier bay", "home decorators collection"},
	},
	{
		Name:     "Wayfair",
		Prefixes: []string{"WF", "WAYFAIR"},
		Hosts:    []string{"wayfair.com", "wfcdn.com"},
	},
	{
		Name:     "Costco",
		Prefixes: []string{"CO", "COSTCO"},
		Hosts:    []string{"costco.com", "costco-static.com"},
		Keywords: []string{"kirkland", "kirkland signature"},
	},
	{
		Name:     "Costway",
		Prefixes: []string{"CW", "COSTWAY"},
		Hosts:    []string{"costway.com"},
		Keywords: []string{"costway"},
	},
}

// automationTools 自动化刊登工具，排在直接供应商之后检查
// 命中时返回工具名而非底层供应商：删除路由要按工具走
var automationTools = []SupplierRule{
	{
		Name:     "AutoDS",
		Prefixes: []string{"AUTODS", "ADS"},
		Hosts:    []string{"autods.com"},
		Keywords: []string{"autods"},
	},
	{
		Name:     "Yaballe",
		Prefixes: []string{"YABALLE", "YBL"},
		Hosts:    []string{"yaballe.com"},
		Keywords: []string{"yaballe"},
	},
}

// aggregators 批发/聚合商，最后检查
var aggregators = []SupplierRule{
	{
		Name:     "Wholesale2B",
		Prefixes: []string{"W2B", "WS2B", "WHOLESALE2B"},
		Hosts:    []string{"wholesale2b.com"},
	},
	{
		Name:     "Spocket",
		Prefixes: []string{"SPK", "SPOCKET"},
		Hosts:    []string{"spocket.co"},
	},
	{
		Name:     "SaleHoo",
		Prefixes: []string{"SH", "SALEHOO"},
		Hosts:    []string{"salehoo.com"},
	},
	{
		Name:     "Inventory Source",
		Prefixes: []string{"IS", "INVSRC", "INVENTORYSOURCE"},
		Hosts:    []string{"inventorysource.com"},
	},
	{
		Name:     "Dropified",
		Prefixes: []string{"DRP", "DROPIFIED"},
		Hosts:    []string{"dropified.com"},
	},
}

// innerSupplierTokens 工具前缀剥离后，用来定位内嵌供应商 ID 的 token 表
var innerSupplierTokens = []string{
	"AMAZON", "AMZ", "WALMART", "WMT", "WM", "ALI", "AE",
	"CJD", "CJ", "HOMEDEPOT", "HD", "WAYFAIR", "WF",
	"COSTCO", "CO", "COSTWAY", "CW",
}

// ==================== 服务定义 ====================

// SupplierService 供应商识别 + 平台路由探测（无状态，可并发调用）
type SupplierService struct{}

// NewSupplierService 创建供应商识别服务
func NewSupplierService() *SupplierService {
	return &SupplierService{}
}

// ResolveSupplier 推断商品来源
// 永不失败：识别不出时回落 ("Unverified", nil)
func (s *SupplierService) ResolveSupplier(sku, imageURL, title, brand, upc string) (string, *string) {
	normSKU := strings.ToUpper(strings.TrimSpace(sku))
	tokens := splitSKU(normSKU)
	lowURL := strings.ToLower(imageURL)
	lowTitle := strings.ToLower(title)
	lowBrand := strings.ToLower(brand)

	// 工具前缀打头的 SKU 直接走工具分类。
	// 不能先跑 Amazon 块：它的「SKU 任意位置 ASIN」规则会把
	// AUTODS-AMZ-B08XXXXXXX 这类 SKU 吞掉
	for i := range automationTools {
		tool := &automationTools[i]
		if leadToken(tokens, tool.Prefixes) {
			return tool.Name, toolInnerID(tool, normSKU)
		}
	}

	// 直接供应商，固定顺序
	for i := range directSuppliers {
		rule := &directSuppliers[i]
		if matchRule(rule, normSKU, tokens, lowURL, lowTitle, lowBrand) {
			return rule.Name, supplierID(rule, normSKU, tokens)
		}
	}

	// 工具的主机/关键词信号（前缀已在上面处理过）
	for i := range automationTools {
		tool := &automationTools[i]
		if matchHosts(tool, lowURL) || matchKeywords(tool, lowTitle, lowBrand) {
			return tool.Name, toolInnerID(tool, normSKU)
		}
	}

	// 聚合商
	for i := range aggregators {
		rule := &aggregators[i]
		// SaleHoo 守卫："SH" 前缀在出现 Shopify 信号时不生效
		if rule.Name == "SaleHoo" && s.IsShopifyRouted(sku, imageURL, title, brand) {
			if matchPrefix(rule, normSKU, tokens) == "SH" {
				continue
			}
		}
		if matchRule(rule, normSKU, tokens, lowURL, lowTitle, lowBrand) {
			return rule.Name, supplierID(rule, normSKU, tokens)
		}
	}

	return "Unverified", nil
}

// ==================== 平台路由探测 ====================

// shopifyRule 二级店面平台（Shopify 路由）信号
var shopifyRule = SupplierRule{
	Name:     "Shopify",
	Prefixes: []string{"SHOPIFY", "SPF"},
	Hosts:    []string{"cdn.shopify.com", "myshopify.com", "shopifycdn.com"},
	Keywords: []string{"shopify"},
}

// IsShopifyRouted 判断商品是否经由二级店面平台托管
func (s *SupplierService) IsShopifyRouted(sku, imageURL, title, brand string) bool {
	normSKU := strings.ToUpper(strings.TrimSpace(sku))
	tokens := splitSKU(normSKU)
	if matchPrefix(&shopifyRule, normSKU, tokens) != "" {
		return true
	}
	if matchHosts(&shopifyRule, strings.ToLower(imageURL)) {
		return true
	}
	return matchKeywords(&shopifyRule, strings.ToLower(title), strings.ToLower(brand))
}

// ==================== 匹配原语 ====================

// splitSKU 按 - 和 _ 分段
func splitSKU(sku string) []string {
	if sku == "" {
		return nil
	}
	return strings.FieldsFunc(sku, func(r rune) bool {
		return r == '-' || r == '_'
	})
}

// leadToken 首段是否命中前缀表
func leadToken(tokens []string, prefixes []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, p := range prefixes {
		if tokens[0] == p {
			return true
		}
	}
	return false
}

// matchPrefix 返回命中的前缀（优先整段相等，其次裸前缀），未命中返回 ""
func matchPrefix(rule *SupplierRule, sku string, tokens []string) string {
	for _, p := range rule.Prefixes {
		for _, t := range tokens {
			if t == p {
				return p
			}
		}
	}
	for _, p := range rule.Prefixes {
		if strings.HasPrefix(sku, p) {
			return p
		}
	}
	return ""
}

func matchHosts(rule *SupplierRule, lowURL string) bool {
	if lowURL == "" {
		return false
	}
	for _, h := range rule.Hosts {
		if strings.Contains(lowURL, h) {
			return true
		}
	}
	return false
}

func matchKeywords(rule *SupplierRule, lowTitle, lowBrand string) bool {
	for _, kw := range rule.Keywords {
		if lowTitle != "" && strings.Contains(lowTitle, kw) {
			return true
		}
		if lowBrand != "" && strings.Contains(lowBrand, kw) {
			return true
		}
	}
	return false
}

// matchRule 块内优先级：前缀 > 主机 > 关键词
func matchRule(rule *SupplierRule, sku string, tokens []string, lowURL, lowTitle, lowBrand string) bool {
	if matchPrefix(rule, sku, tokens) != "" {
		return true
	}
	// Amazon 特例：ASIN 可以出现在 SKU 任意位置
	if rule.Name == "Amazon" && asinPattern.MatchString(sku) {
		return true
	}
	if matchHosts(rule, lowURL) {
		return true
	}
	return matchKeywords(rule, lowTitle, lowBrand)
}

// ==================== 供应商 ID 提取 ====================

// supplierID 直接供应商的 ID：ASIN 优先，否则剥掉命中前缀后的剩余部分
func supplierID(rule *SupplierRule, sku string, tokens []string) *string {
	if rule.Name == "Amazon" {
		if asin := asinPattern.FindString(sku); asin != "" {
			return strPtr(asin)
		}
	}
	prefix := matchPrefix(rule, sku, tokens)
	rest := stripPrefix(sku, prefix)
	if rest == "" {
		return nil
	}
	return strPtr(rest)
}

// toolInnerID 两段式分类：剥掉工具自身前缀后，对剩余部分重扫供应商 token 表，
// 还原工具前缀后面内嵌的底层供应商 ID（避免字面递归，见 innerSupplierTokens）
func toolInnerID(tool *SupplierRule, sku string) *string {
	rest := sku
	for _, p := range tool.Prefixes {
		if strings.HasPrefix(rest, p) {
			rest = stripPrefix(rest, p)
			break
		}
	}
	if rest == "" {
		return nil
	}

	// 内嵌 ASIN 直接作为 ID
	if asin := asinPattern.FindString(rest); asin != "" {
		return strPtr(asin)
	}

	// 内嵌供应商 token 后面的剩余部分作为 ID
	innerTokens := splitSKU(rest)
	for _, sup := range innerSupplierTokens {
		for i, t := range innerTokens {
			if t == sup && i+1 < len(innerTokens) {
				return strPtr(strings.Join(innerTokens[i+1:], "-"))
			}
		}
	}

	// 找不到内嵌供应商：整个去前缀剩余部分就是 ID
	return strPtr(rest)
}

// stripPrefix 剥掉前缀以及跟随的分隔符
func stripPrefix(sku, prefix string) string {
	if prefix == "" || !strings.HasPrefix(sku, prefix) {
		return sku
	}
	rest := sku[len(prefix):]
	return strings.TrimLeft(rest, "-_")
}

func strPtr(s string) *string {
	return &s
}
