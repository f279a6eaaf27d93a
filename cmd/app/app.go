package main

import (
	"fmt"
	"log"

	"github.com/visitech/portfolio-api/internal/adapter/analyzer"
	"github.com/visitech/portfolio-api/internal/adapter/content"
	"github.com/visitech/portfolio-api/internal/adapter/github"
	"github.com/visitech/portfolio-api/internal/adapter/repository"
	"github.com/visitech/portfolio-api/internal/adapter/webhook"
	"github.com/visitech/portfolio-api/internal/api"
	"github.com/visitech/portfolio-api/internal/config"
	"github.com/visitech/portfolio-api/internal/port"
	"github.com/visitech/portfolio-api/internal/service"
)

// app 组装好的依赖
type app struct {
	cfg     *config.Config
	client  *github.Client
	store   *repository.SnapshotRepo // 未配置快照时为 nil
	catalog *service.ProjectService
	blog    *content.Blog
}

// newApp 按配置初始化 GitHub 客户端、转换器、快照存储、项目服务和博客目录
func newApp(cfg *config.Config) (*app, error) {
	client, err := github.NewClient(cfg.GitHubToken, cfg.GitHubUser,
		github.WithBaseURL(cfg.GitHubBaseURL),
		github.WithRequestsPerSecond(cfg.GitHubRequestsPerSecond),
		github.WithMaxRetries(cfg.GitHubMaxRetries),
	)
	if err != nil {
		return nil, fmt.Errorf("GitHub 客户端初始化失败: %w", err)
	}

	blog, err := content.NewBlog(cfg.BlogFile)
	if err != nil {
		return nil, fmt.Errorf("博客内容加载失败: %w", err)
	}

	a := &app{cfg: cfg, client: client, blog: blog}

	// 接口变量只在真正有存储时赋值，避免 typed nil
	var store port.SnapshotStore
	if cfg.SnapshotEnabled() {
		repo, err := repository.NewSnapshotRepo(cfg.SnapshotDriver, cfg.SnapshotDSN)
		if err != nil {
			return nil, fmt.Errorf("快照存储初始化失败: %w", err)
		}
		log.Printf("✅ 快照存储已启用 (%s)", cfg.SnapshotDriver)
		a.store = repo
		store = repo
	}

	a.catalog = service.NewProjectService(
		client,
		analyzer.NewAnalyzer(cfg.FeaturedProjects),
		store,
		service.Settings{
			Owner:       cfg.GitHubUser,
			Concurrency: cfg.FetchConcurrency,
			CommitLimit: cfg.CommitLimit,
			Featured:    cfg.FeaturedProjects,
		},
	)
	return a, nil
}

// handler 组装 HTTP 层
func (a *app) handler() *api.Handler {
	opts := []api.HandlerOption{
		api.WithRevalidateSecret(a.cfg.RevalidateSecret),
		api.WithRenderCacheTTL(a.cfg.RenderCacheTTL),
		api.WithCachePurger(a.client),
		api.WithBlog(a.blog),
	}
	if n := webhook.NewNotifier(a.cfg.RevalidateWebhook,
		webhook.WithFormat(webhook.Format(a.cfg.RevalidateWebhookFormat))); n != nil {
		opts = append(opts, api.WithNotifier(n))
	}
	return api.NewHandler(a.catalog, opts...)
}

func (a *app) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		log.Printf("⚠️ 关闭快照存储失败: %v", err)
	}
}
