package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/visitech/portfolio-api/internal/api"
	"github.com/visitech/portfolio-api/internal/config"
	"github.com/visitech/portfolio-api/internal/domain"
)

// loader 读取配置，测试中可替换
type loader func() (*config.Config, error)

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(load loader) *cobra.Command {
	var configDir string
	if load == nil {
		load = func() (*config.Config, error) {
			if configDir != "" {
				return config.Load(configDir)
			}
			return config.Load()
		}
	}

	root := &cobra.Command{
		Use:          "portfolio",
		Short:        "GitHub 仓库 → 作品集项目 API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configDir, "config", "", "portfolio.yaml 所在目录")

	root.AddCommand(
		serveCmd(load),
		projectsCmd(load),
		projectCmd(load),
		statsCmd(load),
		rateLimitCmd(load),
		blogCmd(load),
	)
	return root
}

// withApp 读取配置、组装依赖，执行 fn 后释放资源
func withApp(load loader, fn func(a *app) error) error {
	cfg, err := load()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}

func serveCmd(load loader) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP API 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(load, func(a *app) error {
				if addr == "" {
					addr = a.cfg.ListenAddr
				}
				srv := api.NewServer(addr, a.handler())

				errCh := make(chan error, 1)
				go func() { errCh <- srv.Start() }()

				// 设置信号处理，优雅关闭
				sigChan := make(chan os.Signal, 1)
				signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
				defer signal.Stop(sigChan)

				select {
				case err := <-errCh:
					return err
				case <-sigChan:
					fmt.Fprintln(cmd.ErrOrStderr(), "\n👋 收到停止信号，正在退出...")
				}

				ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				if err := srv.Stop(ctx); err != nil {
					return fmt.Errorf("关闭 API 服务失败: %w", err)
				}
				return <-errCh
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "监听地址，默认取配置 listen_addr")
	return cmd
}

func projectsCmd(load loader) *cobra.Command {
	var (
		featured bool
		category string
		search   string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "列出项目",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cat domain.Category
			if category != "" {
				c, ok := domain.ParseCategory(category)
				if !ok {
					return fmt.Errorf("未知分类 %q", category)
				}
				cat = c
			}

			return withApp(load, func(a *app) error {
				ctx := cmd.Context()
				var (
					projects []*domain.Project
					err      error
				)
				switch {
				case featured:
					projects, err = a.catalog.GetFeaturedProjects(ctx)
				case cat != "":
					projects, err = a.catalog.GetProjectsByCategory(ctx, cat)
				case search != "":
					projects, err = a.catalog.SearchProjects(ctx, search)
				default:
					projects, err = a.catalog.GetAllProjects(ctx)
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if asJSON {
					return printJSON(out, projects)
				}
				printProjects(out, projects)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&featured, "featured", false, "只显示精选项目")
	cmd.Flags().StringVar(&category, "category", "", "按分类过滤")
	cmd.Flags().StringVarP(&search, "search", "q", "", "关键词搜索")
	cmd.Flags().BoolVar(&asJSON, "json", false, "输出 JSON")
	return cmd
}

func projectCmd(load loader) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "project <slug>",
		Short: "显示单个项目详情",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(load, func(a *app) error {
				detail, err := a.catalog.GetProjectByID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if detail == nil {
					return errors.New("项目不存在: " + args[0])
				}

				out := cmd.OutOrStdout()
				if asJSON {
					return printJSON(out, detail)
				}
				printDetail(out, detail)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "输出 JSON")
	return cmd
}

func statsCmd(load loader) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "显示项目统计",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(load, func(a *app) error {
				stats, err := a.catalog.GetProjectStats(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), stats)
				}
				printStats(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "输出 JSON")
	return cmd
}

func blogCmd(load loader) *cobra.Command {
	var (
		featured bool
		category string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "blog [slug]",
		Short: "列出博客文章，或显示单篇文章",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cat domain.BlogCategory
			if category != "" {
				c, ok := domain.ParseBlogCategory(category)
				if !ok {
					return fmt.Errorf("未知博客分类 %q", category)
				}
				cat = c
			}

			return withApp(load, func(a *app) error {
				ctx := cmd.Context()
				out := cmd.OutOrStdout()

				if len(args) == 1 {
					post, err := a.blog.GetBlogPostBySlug(ctx, args[0])
					if err != nil {
						return err
					}
					if post == nil {
						return errors.New("文章不存在: " + args[0])
					}
					if asJSON {
						return printJSON(out, post)
					}
					printPost(out, post)
					return nil
				}

				var (
					posts []*domain.BlogPost
					err   error
				)
				switch {
				case cat != "":
					posts, err = a.blog.GetBlogPostsByCategory(ctx, cat)
				case featured:
					posts, err = a.blog.GetFeaturedBlogPosts(ctx)
				default:
					posts, err = a.blog.GetAllBlogPosts(ctx)
				}
				if err != nil {
					return err
				}
				if featured && cat != "" {
					kept := posts[:0]
					for _, p := range posts {
						if p.Featured {
							kept = append(kept, p)
						}
					}
					posts = kept
				}

				if asJSON {
					return printJSON(out, posts)
				}
				printPosts(out, posts)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&featured, "featured", false, "只显示精选文章")
	cmd.Flags().StringVar(&category, "category", "", "按博客分类过滤")
	cmd.Flags().BoolVar(&asJSON, "json", false, "输出 JSON")
	return cmd
}

func rateLimitCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "ratelimit",
		Short: "显示 GitHub API 速率限制",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(load, func(a *app) error {
				status, err := a.catalog.GetRateLimitStatus(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Limit:     %d\nRemaining: %d\nReset:     %s\n",
					status.Limit, status.Remaining, status.Reset.Local().Format(time.DateTime))
				if status.Remaining == 0 {
					log.Println("⚠️ 配额已用完，请等待重置或配置 GITHUB_TOKEN")
				}
				return nil
			})
		},
	}
}
