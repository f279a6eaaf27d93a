package github

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestCachePolicy_TTLFor(t *testing.T) {
	p := DefaultCachePolicy

	tests := []struct {
		name string
		path string
		want time.Duration
	}{
		{name: "仓库列表", path: "/users/vjrivmon/repos", want: time.Hour},
		{name: "仓库详情", path: "/repos/vjrivmon/aura-backend", want: time.Hour},
		{name: "README", path: "/repos/vjrivmon/aura-backend/readme", want: 24 * time.Hour},
		{name: "语言", path: "/repos/vjrivmon/aura-backend/languages", want: 7 * 24 * time.Hour},
		{name: "提交", path: "/repos/vjrivmon/aura-backend/commits", want: 30 * time.Minute},
		{name: "贡献者", path: "/repos/vjrivmon/aura-backend/contributors", want: 24 * time.Hour},
		{name: "话题", path: "/repos/vjrivmon/aura-backend/topics", want: 24 * time.Hour},
		{name: "企业版前缀", path: "/api/v3/repos/vjrivmon/aura-backend/readme", want: 24 * time.Hour},
		{name: "速率限制不缓存", path: "/rate_limit", want: 0},
		{name: "未知子资源不缓存", path: "/repos/vjrivmon/aura-backend/pulls", want: 0},
		{name: "根路径", path: "/", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.TTLFor(tt.path))
		})
	}
}

type countingTransport struct {
	calls  int32
	status int
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&c.calls, 1)
	rec := httptest.NewRecorder()
	rec.WriteHeader(c.status)
	_, _ = rec.WriteString(`{"ok":true}`)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

func doGet(t *testing.T, rt http.RoundTripper, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)
	return resp
}

func TestCachingTransport_CachesOKResponses(t *testing.T) {
	next := &countingTransport{status: http.StatusOK}
	ct := newCachingTransport(next, DefaultCachePolicy)

	first := doGet(t, ct, "https://api.github.com/repos/o/n/readme")
	second := doGet(t, ct, "https://api.github.com/repos/o/n/readme")

	assert.Equal(t, int32(1), atomic.LoadInt32(&next.calls))
	body, err := io.ReadAll(second.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, http.StatusOK, first.StatusCode)

	ct.Purge()
	doGet(t, ct, "https://api.github.com/repos/o/n/readme")
	assert.Equal(t, int32(2), atomic.LoadInt32(&next.calls))
}

func TestCachingTransport_SkipsUncacheable(t *testing.T) {
	t.Run("非 200 不缓存", func(t *testing.T) {
		next := &countingTransport{status: http.StatusInternalServerError}
		ct := newCachingTransport(next, DefaultCachePolicy)
		doGet(t, ct, "https://api.github.com/repos/o/n")
		doGet(t, ct, "https://api.github.com/repos/o/n")
		assert.Equal(t, int32(2), atomic.LoadInt32(&next.calls))
	})

	t.Run("速率限制端点不缓存", func(t *testing.T) {
		next := &countingTransport{status: http.StatusOK}
		ct := newCachingTransport(next, DefaultCachePolicy)
		doGet(t, ct, "https://api.github.com/rate_limit")
		doGet(t, ct, "https://api.github.com/rate_limit")
		assert.Equal(t, int32(2), atomic.LoadInt32(&next.calls))
	})

	t.Run("非 GET 不缓存", func(t *testing.T) {
		next := &countingTransport{status: http.StatusOK}
		ct := newCachingTransport(next, DefaultCachePolicy)
		for i := 0; i < 2; i++ {
			req, err := http.NewRequest(http.MethodPost, "https://api.github.com/repos/o/n", nil)
			require.NoError(t, err)
			_, err = ct.RoundTrip(req)
			require.NoError(t, err)
		}
		assert.Equal(t, int32(2), atomic.LoadInt32(&next.calls))
	})
}

func TestLimitingTransport_RespectsContext(t *testing.T) {
	next := &countingTransport{status: http.StatusOK}
	lt := &limitingTransport{next: next, limiter: rate.NewLimiter(rate.Every(time.Hour), 1)}

	doGet(t, lt, "https://api.github.com/rate_limit")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.github.com/rate_limit", nil)
	require.NoError(t, err)
	_, err = lt.RoundTrip(req)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&next.calls))
}

func TestVersionTransport_SetsHeader(t *testing.T) {
	var got []string
	vt := &versionTransport{next: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		got = append(got, req.Header.Get("X-GitHub-Api-Version"))
		return httptest.NewRecorder().Result(), nil
	})}

	doGet(t, vt, "https://api.github.com/rate_limit")

	req, err := http.NewRequest(http.MethodGet, "https://api.github.com/rate_limit", nil)
	require.NoError(t, err)
	req.Header.Set("X-GitHub-Api-Version", "2099-01-01")
	_, err = vt.RoundTrip(req)
	require.NoError(t, err)

	assert.Equal(t, []string{APIVersion, "2099-01-01"}, got)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }
