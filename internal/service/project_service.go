package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/visitech/portfolio-api/internal/adapter/filter"
	"github.com/visitech/portfolio-api/internal/common"
	"github.com/visitech/portfolio-api/internal/domain"
	"github.com/visitech/portfolio-api/internal/port"
)

// Settings 编排层的可调参数
type Settings struct {
	Owner       string   // 贡献者中角色为 Owner 的账号
	Concurrency int      // 列表抓取时同时处理的仓库数，<=0 不限制
	CommitLimit int      // 详情页最近提交条数
	Featured    []string // 精选白名单，同时决定精选列表的排序
}

// ProjectService 组合数据源与转换器，实现 port.ProjectCatalog
type ProjectService struct {
	source   port.RepoSource
	analyzer port.Analyzer
	store    port.SnapshotStore // 可为 nil
	settings Settings
	nowFunc  func() time.Time
}

// NewProjectService 创建项目服务
func NewProjectService(
	source port.RepoSource,
	analyzer port.Analyzer,
	store port.SnapshotStore,
	settings Settings,
) *ProjectService {
	if settings.CommitLimit <= 0 {
		settings.CommitLimit = 10
	}
	if len(settings.Featured) == 0 {
		settings.Featured = domain.FeaturedProjects
	}
	return &ProjectService{
		source:   source,
		analyzer: analyzer,
		store:    store,
		settings: settings,
		nowFunc:  time.Now,
	}
}

func (s *ProjectService) now() time.Time {
	if s.nowFunc != nil {
		return s.nowFunc()
	}
	return time.Now()
}

// GetAllProjects 抓取全部仓库并并行转换，按更新时间倒序。
// 单个仓库的 README / 语言获取失败只记录日志；仓库列表本身失败时退回快照，没有快照则返回空列表，
// 两种情况都会在 ctx 的降级标记上记录 (见 common.WithDegraded)。
func (s *ProjectService) GetAllProjects(ctx context.Context) ([]*domain.Project, error) {
	repos, err := s.source.ListRepositories(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("❌ 获取仓库列表失败: %v", err)
		common.MarkDegraded(ctx)
		return s.loadSnapshot(ctx), nil
	}

	projects := make([]*domain.Project, len(repos))
	g, gCtx := errgroup.WithContext(ctx)
	if s.settings.Concurrency > 0 {
		g.SetLimit(s.settings.Concurrency)
	}
	for i, repo := range repos {
		g.Go(func() error {
			projects[i] = s.buildSummary(gCtx, repo)
			return nil // 单个仓库失败不影响整体
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*domain.Project, 0, len(projects))
	for _, p := range projects {
		if p != nil {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	s.saveSnapshot(ctx, out)
	return out, nil
}

// buildSummary 列表项：README 与语言并行获取
func (s *ProjectService) buildSummary(ctx context.Context, repo *domain.RepoRecord) *domain.Project {
	if repo == nil {
		return nil
	}
	var (
		readme    *string
		languages map[string]int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.source.GetReadme(gCtx, repo.Name)
		if err != nil {
			log.Printf("⚠️ 获取 %s 的 README 失败，按缺失处理: %v", repo.Name, err)
			return nil
		}
		readme = r
		return nil
	})
	g.Go(func() error {
		l, err := s.source.GetLanguages(gCtx, repo.Name)
		if err != nil {
			log.Printf("⚠️ 获取 %s 的语言失败，按缺失处理: %v", repo.Name, err)
			return nil
		}
		languages = l
		return nil
	})
	_ = g.Wait()

	return s.analyzer.Analyze(domain.RepoInput{Repo: repo, Readme: readme, Languages: languages})
}

// GetProjectByID 单项目详情。仓库不存在或名称非法返回 (nil, nil)；仓库本身获取失败返回 error。
// README、语言、提交、贡献者、话题并行获取，失败时按缺失处理。
func (s *ProjectService) GetProjectByID(ctx context.Context, id string) (*domain.ProjectDetail, error) {
	id = strings.TrimSpace(id)
	if !domain.ValidRepoName(id) {
		return nil, nil
	}

	repo, err := s.source.GetRepository(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("获取项目 %s 失败: %w", id, err)
	}
	if repo == nil {
		return nil, nil
	}

	var (
		readme       *string
		languages    map[string]int
		commits      []domain.CommitRecord
		contributors []domain.ContributorRecord
		topics       []string
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.source.GetReadme(gCtx, id)
		if err != nil {
			log.Printf("⚠️ 获取 %s 的 README 失败: %v", id, err)
			return nil
		}
		readme = r
		return nil
	})
	g.Go(func() error {
		l, err := s.source.GetLanguages(gCtx, id)
		if err != nil {
			log.Printf("⚠️ 获取 %s 的语言失败: %v", id, err)
			return nil
		}
		languages = l
		return nil
	})
	g.Go(func() error {
		c, err := s.source.GetRecentCommits(gCtx, id, s.settings.CommitLimit)
		if err != nil {
			log.Printf("⚠️ 获取 %s 的提交失败: %v", id, err)
			return nil
		}
		commits = c
		return nil
	})
	g.Go(func() error {
		c, err := s.source.GetContributors(gCtx, id)
		if err != nil {
			log.Printf("⚠️ 获取 %s 的贡献者失败: %v", id, err)
			return nil
		}
		contributors = c
		return nil
	})
	// 列表接口返回的仓库已带话题，只有缺失时才单独请求
	if len(repo.Topics) == 0 {
		g.Go(func() error {
			t, err := s.source.GetTopics(gCtx, id)
			if err != nil {
				log.Printf("⚠️ 获取 %s 的话题失败: %v", id, err)
				return nil
			}
			topics = t
			return nil
		})
	}
	_ = g.Wait()

	if len(topics) > 0 {
		withTopics := *repo
		withTopics.Topics = topics
		repo = &withTopics
	}

	project := s.analyzer.Analyze(domain.RepoInput{
		Repo:      repo,
		Readme:    readme,
		Languages: languages,
		Commits:   commits,
	})
	if project == nil {
		return nil, nil
	}

	detail := &domain.ProjectDetail{
		Project:      *project,
		Contributors: make([]domain.Contributor, 0, len(contributors)),
	}
	for _, c := range contributors {
		role := "Contributor"
		if strings.EqualFold(c.Login, s.settings.Owner) {
			role = "Owner"
		}
		detail.Contributors = append(detail.Contributors, domain.Contributor{
			Username:      c.Login,
			AvatarURL:     c.AvatarURL,
			ProfileURL:    c.HTMLURL,
			Contributions: c.Contributions,
			Role:          role,
		})
	}
	return detail, nil
}

// GetFeaturedProjects 精选列表，最多 domain.MaxFeatured 个
func (s *ProjectService) GetFeaturedProjects(ctx context.Context) ([]*domain.Project, error) {
	all, err := s.GetAllProjects(ctx)
	if err != nil {
		return nil, err
	}
	return SelectFeatured(all, s.settings.Featured), nil
}

// GetProjectsByCategory 按分类过滤全部项目
func (s *ProjectService) GetProjectsByCategory(ctx context.Context, category domain.Category) ([]*domain.Project, error) {
	all, err := s.GetAllProjects(ctx)
	if err != nil {
		return nil, err
	}
	return filter.ByCategory(all, category), nil
}

// SearchProjects 大小写不敏感的关键词搜索
func (s *ProjectService) SearchProjects(ctx context.Context, query string) ([]*domain.Project, error) {
	all, err := s.GetAllProjects(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Search(all, query), nil
}

// GetProjectStats 聚合统计
func (s *ProjectService) GetProjectStats(ctx context.Context) (*domain.ProjectStats, error) {
	all, err := s.GetAllProjects(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeStats(all, s.now()), nil
}

// GetRateLimitStatus 透传数据源的配额信息
func (s *ProjectService) GetRateLimitStatus(ctx context.Context) (*domain.RateLimitStatus, error) {
	status, err := s.source.GetRateLimitStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取速率限制失败: %w", err)
	}
	return status, nil
}

func (s *ProjectService) saveSnapshot(ctx context.Context, projects []*domain.Project) {
	if s.store == nil || len(projects) == 0 {
		return
	}
	if err := s.store.SaveProjects(ctx, projects); err != nil {
		log.Printf("⚠️ 保存项目快照失败: %v", err)
	}
}

func (s *ProjectService) loadSnapshot(ctx context.Context) []*domain.Project {
	if s.store == nil {
		return []*domain.Project{}
	}
	projects, err := s.store.LoadProjects(ctx)
	if err != nil {
		log.Printf("❌ 读取项目快照失败: %v", err)
		return []*domain.Project{}
	}
	log.Printf("⚠️ 数据源不可用，使用快照中的 %d 个项目", len(projects))
	return projects
}
