package api

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// HeaderCache 标记响应是否来自渲染缓存 (HIT / MISS)
const HeaderCache = "X-Cache"

type rendered struct {
	contentType string
	body        []byte
}

// renderCache 按请求 URI 缓存成功的 GET 响应，重新验证时按路径前缀清除。
// 带 Cache-Control: no-store 的响应 (降级结果) 不缓存。nil 表示禁用。
type renderCache struct {
	store *cache.Cache
}

func newRenderCache(ttl time.Duration) *renderCache {
	if ttl <= 0 {
		return nil
	}
	return &renderCache{store: cache.New(ttl, 2*ttl)}
}

// bufferingWriter 把响应同时写给客户端和缓冲区
type bufferingWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *bufferingWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *bufferingWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (c *renderCache) wrap(next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.RequestURI()
		if v, ok := c.store.Get(key); ok {
			hit := v.(*rendered)
			w.Header().Set("Content-Type", hit.contentType)
			w.Header().Set(HeaderCache, "HIT")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(hit.body)
			return
		}

		w.Header().Set(HeaderCache, "MISS")
		bw := &bufferingWriter{ResponseWriter: w}
		next.ServeHTTP(bw, r)
		if bw.status == http.StatusOK && !strings.Contains(w.Header().Get("Cache-Control"), "no-store") {
			c.store.SetDefault(key, &rendered{
				contentType: w.Header().Get("Content-Type"),
				body:        bw.buf.Bytes(),
			})
		}
	})
}

// purge 删除所有以 prefixes 中任一路径开头的条目，返回删除数量
func (c *renderCache) purge(prefixes []string) int {
	if c == nil {
		return 0
	}
	removed := 0
	for key := range c.store.Items() {
		for _, p := range prefixes {
			if strings.HasPrefix(key, p) {
				c.store.Delete(key)
				removed++
				break
			}
		}
	}
	return removed
}
