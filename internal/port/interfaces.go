package port

import (
	"context"

	"github.com/visitech/portfolio-api/internal/domain"
)

// RepoSource (数据源): 只读访问代码托管平台上固定账号的仓库。
// 404 统一返回零值 (nil / 空切片) 且 error 为 nil；其余失败返回 error，由调用方决定是否吞掉。
type RepoSource interface {
	// 按更新时间倒序，已排除 fork 与归档仓库
	ListRepositories(ctx context.Context) ([]*domain.RepoRecord, error)
	GetRepository(ctx context.Context, name string) (*domain.RepoRecord, error)
	GetReadme(ctx context.Context, name string) (*string, error)
	GetLanguages(ctx context.Context, name string) (map[string]int, error)
	GetRecentCommits(ctx context.Context, name string, limit int) ([]domain.CommitRecord, error)
	GetContributors(ctx context.Context, name string) ([]domain.ContributorRecord, error)
	GetTopics(ctx context.Context, name string) ([]string, error)
	GetRateLimitStatus(ctx context.Context) (*domain.RateLimitStatus, error)
}

// Analyzer (转换器): 原始仓库数据 → 归一化的 Project，纯函数，无 I/O
type Analyzer interface {
	Analyze(in domain.RepoInput) *domain.Project
}

// SnapshotStore (快照): 保存最近一次成功的项目列表，数据源不可用时兜底
type SnapshotStore interface {
	SaveProjects(ctx context.Context, projects []*domain.Project) error
	LoadProjects(ctx context.Context) ([]*domain.Project, error)
}

// Notifier (信使): 缓存重新验证之后通知外部 (比如静态站点的构建 hook)
type Notifier interface {
	NotifyRevalidated(ctx context.Context, paths []string) error
}

// CachePurger 可被清空的缓存
type CachePurger interface {
	Purge()
}

// ProjectCatalog 展示层 (HTTP / CLI) 能看到的全部读操作
type ProjectCatalog interface {
	GetAllProjects(ctx context.Context) ([]*domain.Project, error)
	GetProjectByID(ctx context.Context, id string) (*domain.ProjectDetail, error)
	GetFeaturedProjects(ctx context.Context) ([]*domain.Project, error)
	GetProjectsByCategory(ctx context.Context, category domain.Category) ([]*domain.Project, error)
	SearchProjects(ctx context.Context, query string) ([]*domain.Project, error)
	GetProjectStats(ctx context.Context) (*domain.ProjectStats, error)
	GetRateLimitStatus(ctx context.Context) (*domain.RateLimitStatus, error)
}

// BlogCatalog 博客文章的只读目录。列表按日期倒序，找不到的 slug 返回 nil, nil。
type BlogCatalog interface {
	GetAllBlogPosts(ctx context.Context) ([]*domain.BlogPost, error)
	GetFeaturedBlogPosts(ctx context.Context) ([]*domain.BlogPost, error)
	GetBlogPostBySlug(ctx context.Context, slug string) (*domain.BlogPost, error)
	GetBlogPostsByCategory(ctx context.Context, category domain.BlogCategory) ([]*domain.BlogPost, error)
}
