package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/visitech/portfolio-api/internal/common"
)

// Format webhook 的负载格式
type Format string

const (
	FormatJSON   Format = "json"
	FormatFeishu Format = "feishu"
)

// Notifier 实现了 port.Notifier 接口，在重新验证后通知外部系统 (例如静态站点重建钩子)
type Notifier struct {
	webhookURL string
	format     Format
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	nowFunc    func() time.Time
}

// Option 通知器可选配置
type Option func(*Notifier)

// WithFormat 设置负载格式，默认 json
func WithFormat(f Format) Option {
	return func(n *Notifier) { n.format = f }
}

// WithHTTPClient 替换默认的 http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(n *Notifier) { n.httpClient = c }
}

// WithRetry 设置重试次数与初始间隔
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(n *Notifier) {
		n.maxRetries = maxRetries
		n.retryDelay = delay
	}
}

// NewNotifier 创建通知器；webhook 为空时返回 nil，调用方据此跳过通知
func NewNotifier(webhook string, opts ...Option) *Notifier {
	if webhook == "" {
		return nil
	}
	n := &Notifier{
		webhookURL: webhook,
		format:     FormatJSON,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
		retryDelay: 500 * time.Millisecond,
		nowFunc:    time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// revalidateEvent 通用 JSON 负载
type revalidateEvent struct {
	Event     string    `json:"event"`
	Paths     []string  `json:"paths"`
	Timestamp time.Time `json:"timestamp"`
}

// NotifyRevalidated 发送重新验证事件 (带重试机制)
func (n *Notifier) NotifyRevalidated(ctx context.Context, paths []string) error {
	if n == nil || n.webhookURL == "" {
		return common.NewError(common.ErrCodeNotification, "Webhook URL 为空")
	}

	body, err := n.payload(paths)
	if err != nil {
		return common.WrapError(common.ErrCodeNotification, "构造通知内容失败", err)
	}

	err = common.Do(ctx, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
		if reqErr != nil {
			return reqErr
		}
		req.Header.Set("Content-Type", "application/json")

		resp, postErr := n.httpClient.Do(req)
		if postErr != nil {
			return postErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("webhook 报错: 状态码 %d", resp.StatusCode)
		}
		return nil
	},
		common.WithMaxRetries(n.maxRetries),
		common.WithInitialDelay(n.retryDelay),
	)
	if err != nil {
		return common.WrapError(common.ErrCodeNotification, "发送请求失败", err)
	}
	return nil
}

func (n *Notifier) payload(paths []string) ([]byte, error) {
	now := n.nowFunc().UTC()
	if n.format == FormatFeishu {
		return json.Marshal(feishuCard(paths, now))
	}
	return json.Marshal(revalidateEvent{Event: "revalidate", Paths: paths, Timestamp: now})
}

// feishuCard 飞书卡片消息 (Schema 2.0)
func feishuCard(paths []string, at time.Time) map[string]interface{} {
	var md strings.Builder
	fmt.Fprintf(&md, "**🕒 时间:** %s\n\n**📄 已刷新路径:**\n", at.Format(time.RFC3339))
	for _, p := range paths {
		fmt.Fprintf(&md, "- `%s`\n", p)
	}

	return map[string]interface{}{
		"msg_type": "interactive",
		"card": map[string]interface{}{
			"schema": "2.0",
			"header": map[string]interface{}{
				"title": map[string]interface{}{
					"tag":     "plain_text",
					"content": "🔄 作品集缓存已刷新",
				},
				"template": "blue",
			},
			"body": map[string]interface{}{
				"direction": "vertical",
				"elements": []map[string]interface{}{
					{
						"tag":       "markdown",
						"content":   md.String(),
						"text_size": "normal",
					},
				},
			},
		},
	}
}
