package ebay

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client eBay 同步协作方客户端
// 只负责分页拉取在售商品，入库逻辑在 service 层
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient 创建客户端
func NewClient(baseURL, appKey string) *Client {
	client := resty.New()
	// 超时和重试，防网络波动
	client.SetTimeout(15 * time.Second)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(2 * time.Second)
	client.SetHeader("x-api-key", appKey)

	return &Client{
		http:    client,
		baseURL: baseURL,
	}
}

// FetchActiveListings 分页拉取卖家全部在售商品
// 本页不足 limit 即为最后一页；页间休眠防 QPS 限制
func (c *Client) FetchActiveListings(ctx context.Context, accessToken, ebayUsername string) ([]ListingDTO, error) {
	const limit = 100
	offset := 0
	var all []ListingDTO

	for {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		apiURL := fmt.Sprintf("%s/sellers/%s/listings/active?limit=%d&offset=%d",
			c.baseURL, ebayUsername, limit, offset)

		var res ActiveListingsResp
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Authorization", "Bearer "+accessToken).
			SetResult(&res).
			Get(apiURL)
		if err != nil {
			return all, fmt.Errorf("网络请求失败: %v", err)
		}
		if resp.StatusCode() != 200 {
			return all, fmt.Errorf("API 异常 [%d]: %s", resp.StatusCode(), resp.String())
		}

		all = append(all, res.Results...)

		if len(res.Results) < limit {
			break
		}
		offset += limit
		time.Sleep(500 * time.Millisecond)
	}

	return all, nil
}
