package github

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/visitech/portfolio-api/internal/adapter/filter"
	"github.com/visitech/portfolio-api/internal/common"
	"github.com/visitech/portfolio-api/internal/domain"
)

// Client 实现了 port.RepoSource 接口
type Client struct {
	client     *github.Client
	owner      string
	cache      *cachingTransport
	maxRetries int
	retryDelay time.Duration
}

// Option 客户端可选配置
type Option func(*clientOptions)

type clientOptions struct {
	baseURL    string
	rps        float64
	maxRetries int
	policy     CachePolicy
	base       http.RoundTripper
}

// WithBaseURL 指向 GitHub Enterprise 或测试服务器
func WithBaseURL(u string) Option {
	return func(o *clientOptions) { o.baseURL = u }
}

// WithRequestsPerSecond 客户端限速，<=0 表示不限速
func WithRequestsPerSecond(rps float64) Option {
	return func(o *clientOptions) { o.rps = rps }
}

// WithMaxRetries 对 5xx 与二级限流的重试次数
func WithMaxRetries(n int) Option {
	return func(o *clientOptions) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithCachePolicy 覆盖默认的缓存窗口
func WithCachePolicy(p CachePolicy) Option {
	return func(o *clientOptions) { o.policy = p }
}

// WithTransport 替换最底层的 http.RoundTripper
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.base = rt }
}

// NewClient 初始化 GitHub 客户端。
// token 为空时匿名访问 (60 次/小时)，只打印警告，不算错误。
// 请求链路: 缓存 → 限速 → OAuth2 → 版本头 → 底层 transport
func NewClient(token, owner string, opts ...Option) (*Client, error) {
	o := &clientOptions{
		maxRetries: 2,
		policy:     DefaultCachePolicy,
		base:       http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(o)
	}

	var rt http.RoundTripper = &versionTransport{next: o.base}
	if token == "" {
		log.Println("⚠️ 警告: 未配置 GitHub Token，使用匿名访问，速率限制较低")
	} else {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   rt,
		}
	}
	if o.rps > 0 {
		rt = &limitingTransport{next: rt, limiter: rate.NewLimiter(rate.Limit(o.rps), 1)}
	}
	cache := newCachingTransport(rt, o.policy)

	client := github.NewClient(&http.Client{Transport: cache})
	if o.baseURL != "" {
		base := o.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("无效的 GitHub base URL %q: %w", o.baseURL, err)
		}
		client.BaseURL = u
	}

	return &Client{
		client:     client,
		owner:      owner,
		cache:      cache,
		maxRetries: o.maxRetries,
		retryDelay: 500 * time.Millisecond,
	}, nil
}

// Purge 清空响应缓存 (重新验证时调用)
func (c *Client) Purge() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

// ListRepositories 获取账号下的全部仓库，按更新时间倒序，排除 fork 与归档
func (c *Client) ListRepositories(ctx context.Context) ([]*domain.RepoRecord, error) {
	opts := &github.RepositoryListOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var items []*github.Repository
	err := c.do(ctx, func() error {
		var apiErr error
		items, _, apiErr = c.client.Repositories.List(ctx, c.owner, opts)
		return apiErr
	})
	if err != nil {
		return nil, c.fail("获取仓库列表", err)
	}

	repos := make([]*domain.RepoRecord, 0, len(items))
	for _, item := range items {
		repos = append(repos, toRecord(item))
	}
	return filter.ExcludeForksAndArchived(repos), nil
}

// GetRepository 获取单个仓库，不存在时返回 (nil, nil)
func (c *Client) GetRepository(ctx context.Context, name string) (*domain.RepoRecord, error) {
	var item *github.Repository
	err := c.do(ctx, func() error {
		var apiErr error
		item, _, apiErr = c.client.Repositories.Get(ctx, c.owner, name)
		return apiErr
	})
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, c.fail("获取仓库 "+name, err)
	}
	return toRecord(item), nil
}

// GetReadme 返回解码后的 README 文本，不存在时返回 (nil, nil)
func (c *Client) GetReadme(ctx context.Context, name string) (*string, error) {
	var content *github.RepositoryContent
	err := c.do(ctx, func() error {
		var apiErr error
		content, _, apiErr = c.client.Repositories.GetReadme(ctx, c.owner, name, nil)
		return apiErr
	})
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, c.fail("获取 README "+name, err)
	}
	if content == nil || content.Content == nil {
		return nil, nil
	}

	// 远端返回 base64，GetContent 负责解码
	text, err := content.GetContent()
	if err != nil {
		return nil, c.fail("解码 README "+name, err)
	}
	return &text, nil
}

// GetLanguages 语言 → 字节数，不存在时返回 (nil, nil)
func (c *Client) GetLanguages(ctx context.Context, name string) (map[string]int, error) {
	var langs map[string]int
	err := c.do(ctx, func() error {
		var apiErr error
		langs, _, apiErr = c.client.Repositories.ListLanguages(ctx, c.owner, name)
		return apiErr
	})
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, c.fail("获取语言 "+name, err)
	}
	return langs, nil
}

// GetRecentCommits 最近 limit 条提交，不存在时返回空切片
func (c *Client) GetRecentCommits(ctx context.Context, name string, limit int) ([]domain.CommitRecord, error) {
	opts := &github.CommitsListOptions{ListOptions: github.ListOptions{PerPage: limit}}

	var commits []*github.RepositoryCommit
	err := c.do(ctx, func() error {
		var apiErr error
		commits, _, apiErr = c.client.Repositories.ListCommits(ctx, c.owner, name, opts)
		return apiErr
	})
	if isNotFound(err) {
		return []domain.CommitRecord{}, nil
	}
	if err != nil {
		return []domain.CommitRecord{}, c.fail("获取提交 "+name, err)
	}

	out := make([]domain.CommitRecord, 0, len(commits))
	for _, rc := range commits {
		if limit > 0 && len(out) >= limit {
			break
		}
		commit := rc.GetCommit()
		out = append(out, domain.CommitRecord{
			SHA:        rc.GetSHA(),
			Message:    commit.GetMessage(),
			AuthorName: commit.GetAuthor().GetName(),
			AuthoredAt: commit.GetAuthor().GetDate().Time,
		})
	}
	return out, nil
}

// GetContributors 贡献者列表，不存在时返回空切片
func (c *Client) GetContributors(ctx context.Context, name string) ([]domain.ContributorRecord, error) {
	var contributors []*github.Contributor
	err := c.do(ctx, func() error {
		var apiErr error
		contributors, _, apiErr = c.client.Repositories.ListContributors(ctx, c.owner, name, nil)
		return apiErr
	})
	if isNotFound(err) {
		return []domain.ContributorRecord{}, nil
	}
	if err != nil {
		return []domain.ContributorRecord{}, c.fail("获取贡献者 "+name, err)
	}

	out := make([]domain.ContributorRecord, 0, len(contributors))
	for _, ct := range contributors {
		out = append(out, domain.ContributorRecord{
			Login:         ct.GetLogin(),
			AvatarURL:     ct.GetAvatarURL(),
			HTMLURL:       ct.GetHTMLURL(),
			Contributions: ct.GetContributions(),
		})
	}
	return out, nil
}

// GetTopics 话题列表，不存在时返回空切片
func (c *Client) GetTopics(ctx context.Context, name string) ([]string, error) {
	var topics []string
	err := c.do(ctx, func() error {
		var apiErr error
		topics, _, apiErr = c.client.Repositories.ListAllTopics(ctx, c.owner, name)
		return apiErr
	})
	if isNotFound(err) {
		return []string{}, nil
	}
	if err != nil {
		return []string{}, c.fail("获取话题 "+name, err)
	}
	if topics == nil {
		topics = []string{}
	}
	return topics, nil
}

// GetRateLimitStatus 当前 core 配额，仅用于诊断
func (c *Client) GetRateLimitStatus(ctx context.Context) (*domain.RateLimitStatus, error) {
	limits, _, err := c.client.RateLimits(ctx)
	if err != nil {
		return nil, c.fail("获取速率限制", err)
	}
	core := limits.GetCore()
	if core == nil {
		return &domain.RateLimitStatus{}, nil
	}
	return &domain.RateLimitStatus{
		Limit:     core.Limit,
		Remaining: core.Remaining,
		Reset:     core.Reset.Time,
	}, nil
}

// do 执行一次 API 调用，5xx 和二级限流按配置重试
func (c *Client) do(ctx context.Context, call func() error) error {
	return common.Do(ctx, call,
		common.WithMaxRetries(c.maxRetries),
		common.WithInitialDelay(c.retryDelay),
		common.WithRetryIf(isTransient),
		common.WithOnRetry(func(attempt int, err error) {
			log.Printf("⚠️ GitHub API 调用失败，第 %d 次重试: %v", attempt, err)
		}),
	)
}

// fail 统一记录并包装错误
func (c *Client) fail(action string, err error) error {
	log.Printf("❌ %s失败: %v", action, err)
	return common.WrapError(common.ErrCodeGitHubAPI, "GitHub API 调用失败: "+action, err)
}

func statusOf(err error) int {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	return 0
}

func isNotFound(err error) bool {
	return err != nil && statusOf(err) == http.StatusNotFound
}

// isTransient 主限流 (需要等到 reset) 和 4xx 都不重试
func isTransient(err error) bool {
	var abuse *github.AbuseRateLimitError
	if errors.As(err, &abuse) {
		return true
	}
	var primary *github.RateLimitError
	if errors.As(err, &primary) {
		return false
	}
	return statusOf(err) >= 500
}

// toRecord 将 GitHub 的数据结构转换为 Domain 实体
func toRecord(item *github.Repository) *domain.RepoRecord {
	rec := &domain.RepoRecord{
		Name:        item.GetName(),
		FullName:    item.GetFullName(),
		OwnerLogin:  item.GetOwner().GetLogin(),
		Private:     item.GetPrivate(),
		HTMLURL:     item.GetHTMLURL(),
		Description: item.Description,
		Fork:        item.GetFork(),
		Archived:    item.GetArchived(),
		HasIssues:   item.GetHasIssues(),
		Language:    item.Language,
		Topics:      item.Topics,
		Size:        item.GetSize(),
		Stars:       item.GetStargazersCount(),
		Watchers:    item.GetWatchersCount(),
		Forks:       item.GetForksCount(),
		OpenIssues:  item.GetOpenIssuesCount(),
		CreatedAt:   item.GetCreatedAt().Time,
		UpdatedAt:   item.GetUpdatedAt().Time,
		PushedAt:    item.GetPushedAt().Time,
	}
	if item.Homepage != nil && *item.Homepage != "" {
		rec.Homepage = item.Homepage
	}
	if lic := item.GetLicense(); lic != nil {
		id := lic.GetSPDXID()
		if id == "" {
			id = lic.GetName()
		}
		rec.License = &id
	}
	if rec.Topics == nil {
		rec.Topics = []string{}
	}
	return rec
}
