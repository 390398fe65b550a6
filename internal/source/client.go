// 包 source：成员表格的拉取、载荷缓存与加载周期
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"chapter-map/internal/logger"
	"chapter-map/internal/metrics"
)

// ErrFetch：传输错误或非 2xx 响应
var ErrFetch = errors.New("fetch failed")

// DefaultTimeout：未配置 SOURCE_TIMEOUT_SECONDS 时的请求超时
const DefaultTimeout = 10 * time.Second

// Client：拉取已发布表格的 CSV 文本
type Client struct {
	URL  string
	HTTP *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{URL: url, HTTP: &http.Client{Timeout: timeout}}
}

// 文档注释：拉取一次载荷
// 参数：ctx 用于关停时取消请求；超时由 HTTP 客户端控制。
// 返回：响应体全文；失败一律以 ErrFetch 包装，上层用 errors.Is 判定。
// 约束：不重试。
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("accept", "text/csv, text/plain;q=0.9, */*;q=0.1")
	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	t0 := time.Now()
	metrics.FetchTotal.Inc()
	logger.L().Debug("csv_fetch_req", "url", c.URL)
	resp, err := client.Do(req)
	if err != nil {
		logger.L().Error("csv_fetch_error", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.L().Error("csv_fetch_status", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.L().Error("csv_fetch_read_error", "err", err)
		return nil, fmt.Errorf("%w: read body: %v", ErrFetch, err)
	}
	dur := time.Since(t0).Milliseconds()
	metrics.FetchDurationMs.Observe(float64(dur))
	metrics.FetchBytes.Observe(float64(len(body)))
	logger.L().Debug("csv_fetch_resp", "status", resp.StatusCode, "bytes", len(body), "duration_ms", dur)
	return body, nil
}
