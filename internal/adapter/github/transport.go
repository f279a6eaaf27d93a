package github

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// CachePolicy 每类端点各自的新鲜度窗口，反映这类数据大概多久变一次
type CachePolicy struct {
	RepoList     time.Duration
	RepoDetail   time.Duration
	Readme       time.Duration
	Languages    time.Duration
	Commits      time.Duration
	Contributors time.Duration
	Topics       time.Duration
}

// DefaultCachePolicy 默认窗口
var DefaultCachePolicy = CachePolicy{
	RepoList:     time.Hour,
	RepoDetail:   time.Hour,
	Readme:       24 * time.Hour,
	Languages:    7 * 24 * time.Hour,
	Commits:      30 * time.Minute,
	Contributors: 24 * time.Hour,
	Topics:       24 * time.Hour,
}

// TTLFor 根据请求路径返回缓存时长，0 表示不缓存。
// 只看路径末尾几段，这样 GitHub Enterprise 的 /api/v3 前缀也能匹配。
func (p CachePolicy) TTLFor(path string) time.Duration {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	n := len(segs)
	if n == 0 {
		return 0
	}
	at := func(i int) string {
		if i < 0 || i >= n {
			return ""
		}
		return segs[i]
	}

	// /users/{user}/repos
	if at(n-1) == "repos" && at(n-3) == "users" {
		return p.RepoList
	}
	// /repos/{owner}/{name}/{resource}
	if at(n-4) == "repos" {
		switch at(n - 1) {
		case "readme":
			return p.Readme
		case "languages":
			return p.Languages
		case "commits":
			return p.Commits
		case "contributors":
			return p.Contributors
		case "topics":
			return p.Topics
		}
		return 0
	}
	// /repos/{owner}/{name}
	if at(n-3) == "repos" {
		return p.RepoDetail
	}
	return 0
}

type cachedResponse struct {
	status int
	header http.Header
	body   []byte
}

// cachingTransport 只缓存 GET 的 200 响应，key 为完整 URL
type cachingTransport struct {
	next   http.RoundTripper
	store  *gocache.Cache
	policy CachePolicy
}

func newCachingTransport(next http.RoundTripper, policy CachePolicy) *cachingTransport {
	return &cachingTransport{
		next:   next,
		store:  gocache.New(time.Hour, 10*time.Minute),
		policy: policy,
	}
}

func (t *cachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ttl := t.policy.TTLFor(req.URL.Path)
	if req.Method != http.MethodGet || ttl <= 0 {
		return t.next.RoundTrip(req)
	}

	key := req.URL.String()
	if v, ok := t.store.Get(key); ok {
		return v.(*cachedResponse).toResponse(req), nil
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		return resp, err
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	entry := &cachedResponse{status: resp.StatusCode, header: resp.Header.Clone(), body: body}
	t.store.Set(key, entry, ttl)
	return entry.toResponse(req), nil
}

// Purge 清空全部缓存条目
func (t *cachingTransport) Purge() {
	n := t.store.ItemCount()
	t.store.Flush()
	log.Printf("🔄 已清空 GitHub 响应缓存 (%d 条)", n)
}

func (c *cachedResponse) toResponse(req *http.Request) *http.Response {
	return &http.Response{
		Status:        http.StatusText(c.status),
		StatusCode:    c.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        c.header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(c.body)),
		ContentLength: int64(len(c.body)),
		Request:       req,
	}
}

// limitingTransport 客户端令牌桶，避免并发抓取时瞬间打满 GitHub 限额
type limitingTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func (t *limitingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(req)
}

// APIVersion 固定的 REST API 版本头
const APIVersion = "2022-11-28"

// versionTransport 保证每个请求都带上 API 版本头
type versionTransport struct {
	next http.RoundTripper
}

func (t *versionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("X-GitHub-Api-Version") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("X-GitHub-Api-Version", APIVersion)
	}
	return t.next.RoundTrip(req)
}
