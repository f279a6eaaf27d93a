package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/visitech/portfolio-api/internal/adapter/filter"
	"github.com/visitech/portfolio-api/internal/common"
	"github.com/visitech/portfolio-api/internal/domain"
	"github.com/visitech/portfolio-api/internal/port"
)

const (
	maxPageLimit = 100
	// maxPage 保证 (page-1)*limit 不会溢出
	maxPage = math.MaxInt / maxPageLimit
)

// DefaultRevalidatePaths 重新验证请求未指定 paths 时清除的路径
var DefaultRevalidatePaths = []string{"/api/projects", "/api/stats"}

// Handler 对外暴露项目目录的 HTTP 接口
type Handler struct {
	catalog  port.ProjectCatalog
	blog     port.BlogCatalog
	secret   string
	notifier port.Notifier
	purgers  []port.CachePurger
	cacheTTL time.Duration
	render   *renderCache
	nowFunc  func() time.Time
}

// HandlerOption Handler 可选配置
type HandlerOption func(*Handler)

// WithRevalidateSecret 设置 /api/revalidate 的共享密钥，为空时拒绝所有请求
func WithRevalidateSecret(secret string) HandlerOption {
	return func(h *Handler) { h.secret = secret }
}

// WithNotifier 重新验证成功后通知外部
func WithNotifier(n port.Notifier) HandlerOption {
	return func(h *Handler) { h.notifier = n }
}

// WithCachePurger 重新验证时一并清空的上游缓存
func WithCachePurger(p port.CachePurger) HandlerOption {
	return func(h *Handler) {
		if p != nil {
			h.purgers = append(h.purgers, p)
		}
	}
}

// WithBlog 挂载 /api/blog 路由，不设置时博客路由不存在
func WithBlog(b port.BlogCatalog) HandlerOption {
	return func(h *Handler) { h.blog = b }
}

// WithRenderCacheTTL 开启渲染缓存，<=0 表示不缓存
func WithRenderCacheTTL(ttl time.Duration) HandlerOption {
	return func(h *Handler) { h.cacheTTL = ttl }
}

// NewHandler 创建 Handler
func NewHandler(catalog port.ProjectCatalog, opts ...HandlerOption) *Handler {
	h := &Handler{
		catalog: catalog,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.render = newRenderCache(h.cacheTTL)
	return h
}

// Routes 注册全部路由并套上请求 ID 与访问日志中间件
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /api/projects", h.render.wrap(http.HandlerFunc(h.listProjects)))
	mux.Handle("GET /api/projects/{slug}", h.render.wrap(http.HandlerFunc(h.getProject)))
	mux.Handle("GET /api/stats", h.render.wrap(http.HandlerFunc(h.getStats)))
	if h.blog != nil {
		mux.Handle("GET /api/blog", h.render.wrap(http.HandlerFunc(h.listBlogPosts)))
		mux.Handle("GET /api/blog/{slug}", h.render.wrap(http.HandlerFunc(h.getBlogPost)))
	}
	mux.HandleFunc("GET /api/rate-limit", h.getRateLimit)
	mux.HandleFunc("POST /api/revalidate", h.revalidate)
	mux.HandleFunc("GET /healthz", h.healthz)

	return withRequestID(withAccessLog(withDegradation(mux)))
}

// listQuery /api/projects 的查询参数
type listQuery struct {
	featured bool
	category domain.Category
	search   string
	language string
	status   domain.Status
	sort     filter.SortKey
	order    string
	sorted   bool
	page     int
	limit    int
}

func parseListQuery(q url.Values) (listQuery, error) {
	lq := listQuery{
		featured: q.Get("featured") == "true",
		search:   strings.TrimSpace(q.Get("q")),
		language: strings.TrimSpace(q.Get("language")),
		page:     1,
	}

	if raw := q.Get("category"); raw != "" {
		c, ok := domain.ParseCategory(raw)
		if !ok {
			return lq, fmt.Errorf("invalid category %q", raw)
		}
		lq.category = c
	}
	if raw := q.Get("status"); raw != "" {
		st, ok := domain.ParseStatus(raw)
		if !ok {
			return lq, fmt.Errorf("invalid status %q", raw)
		}
		lq.status = st
	}

	rawSort, rawOrder := q.Get("sort"), strings.ToLower(q.Get("order"))
	key, ok := filter.ParseSortKey(rawSort)
	if !ok {
		return lq, fmt.Errorf("invalid sort %q", rawSort)
	}
	switch rawOrder {
	case "", "asc", "desc":
	default:
		return lq, fmt.Errorf("invalid order %q", rawOrder)
	}
	lq.sort, lq.order = key, rawOrder
	lq.sorted = rawSort != "" || rawOrder != ""

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPage {
			return lq, fmt.Errorf("invalid page %q", raw)
		}
		lq.page = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return lq, fmt.Errorf("invalid limit %q", raw)
		}
		lq.limit = min(n, maxPageLimit)
	}
	return lq, nil
}

// listProjects GET /api/projects
// 精选列表保持优先级顺序，只有显式传入 sort/order 时才重新排序
func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	lq, err := parseListQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	var projects []*domain.Project
	switch {
	case lq.featured:
		projects, err = h.catalog.GetFeaturedProjects(ctx)
	case lq.category != "":
		projects, err = h.catalog.GetProjectsByCategory(ctx, lq.category)
	case lq.search != "":
		projects, err = h.catalog.SearchProjects(ctx, lq.search)
	default:
		projects, err = h.catalog.GetAllProjects(ctx)
	}
	if err != nil {
		h.internalError(w, r, "获取项目列表", err)
		return
	}

	if lq.category != "" {
		projects = filter.ByCategory(projects, lq.category)
	}
	if lq.search != "" {
		projects = filter.Search(projects, lq.search)
	}
	if lq.status != "" {
		projects = filter.ByStatus(projects, lq.status)
	}
	if lq.language != "" {
		projects = filter.ByLanguage(projects, lq.language)
	}
	if lq.sorted {
		projects = filter.Sort(projects, lq.sort, lq.order)
	}
	projects = filter.Paginate(projects, lq.page, lq.limit)
	if projects == nil {
		projects = []*domain.Project{}
	}

	writeJSON(w, http.StatusOK, projects)
}

// getProject GET /api/projects/{slug}
func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if !domain.ValidRepoName(slug) {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}

	detail, err := h.catalog.GetProjectByID(r.Context(), slug)
	if err != nil {
		h.internalError(w, r, "获取项目 "+slug, err)
		return
	}
	if detail == nil {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// getStats GET /api/stats
func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.catalog.GetProjectStats(r.Context())
	if err != nil {
		h.internalError(w, r, "统计项目", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// getRateLimit GET /api/rate-limit，不缓存
func (h *Handler) getRateLimit(w http.ResponseWriter, r *http.Request) {
	status, err := h.catalog.GetRateLimitStatus(r.Context())
	if err != nil {
		if common.CodeOf(err) == common.ErrCodeGitHubAPI {
			log.Printf("❌ [%s] 获取速率限制失败: %v", RequestIDFrom(r.Context()), err)
			writeError(w, http.StatusBadGateway, "GitHub API unavailable")
			return
		}
		h.internalError(w, r, "获取速率限制", err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

type revalidateRequest struct {
	Secret string   `json:"secret"`
	Paths  []string `json:"paths"`
}

type revalidateResponse struct {
	Revalidated bool     `json:"revalidated"`
	Timestamp   string   `json:"timestamp"`
	Paths       []string `json:"paths"`
	Message     string   `json:"message"`
}

// revalidate POST /api/revalidate
func (h *Handler) revalidate(w http.ResponseWriter, r *http.Request) {
	var req revalidateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !h.authorized(req.Secret) {
		log.Printf("⚠️ [%s] 重新验证请求被拒绝: 密钥不匹配", RequestIDFrom(r.Context()))
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	paths := normalizePaths(req.Paths)
	if len(paths) == 0 {
		paths = append([]string(nil), DefaultRevalidatePaths...)
	}

	removed := h.render.purge(paths)
	for _, p := range h.purgers {
		p.Purge()
	}
	log.Printf("🔄 [%s] 缓存已重新验证: %v (清除 %d 条渲染缓存)", RequestIDFrom(r.Context()), paths, removed)

	if h.notifier != nil {
		if err := h.notifier.NotifyRevalidated(r.Context(), paths); err != nil {
			log.Printf("⚠️ [%s] 重新验证通知发送失败: %v", RequestIDFrom(r.Context()), err)
		}
	}

	writeJSON(w, http.StatusOK, revalidateResponse{
		Revalidated: true,
		Timestamp:   h.nowFunc().UTC().Format(time.RFC3339),
		Paths:       paths,
		Message:     "Cache successfully revalidated",
	})
}

func (h *Handler) authorized(secret string) bool {
	if h.secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(h.secret)) == 1
}

// normalizePaths 去空白、补全前导斜杠、去重
func normalizePaths(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, action string, err error) {
	if ctxErr := r.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		log.Printf("⚠️ [%s] %s被取消: %v", RequestIDFrom(r.Context()), action, err)
	} else {
		log.Printf("❌ [%s] %s失败: %v", RequestIDFrom(r.Context()), action, err)
	}
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ JSON 编码失败: %v", err)
	}
}
