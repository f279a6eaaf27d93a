package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/visitech/portfolio-api/internal/adapter/analyzer"
	"github.com/visitech/portfolio-api/internal/adapter/github"
	"github.com/visitech/portfolio-api/internal/config"
)

// 调试工具：逐个仓库打印分类结果和触发分类的关键词，用来调整分类规则
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}

	client, err := github.NewClient(cfg.GitHubToken, cfg.GitHubUser,
		github.WithBaseURL(cfg.GitHubBaseURL),
		github.WithMaxRetries(cfg.GitHubMaxRetries),
	)
	if err != nil {
		log.Fatalf("❌ GitHub 客户端初始化失败: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Printf("🔍 调试模式：分析 %s 的仓库分类\n", cfg.GitHubUser)

	fmt.Println("📥 正在获取仓库列表...")
	repos, err := client.ListRepositories(ctx)
	if err != nil {
		log.Fatalf("❌ 获取仓库列表失败: %v", err)
	}
	fmt.Printf("✅ 成功获取 %d 个仓库 (已排除 fork 与归档)\n\n", len(repos))

	now := time.Now()
	counts := make(map[string]int)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REPO\tCATEGORY\tKEYWORD\tSTATUS\tACTIVITY\tCOMPLETE\tPOPULAR\tFEATURED\tTECH")
	for _, repo := range repos {
		langs, err := client.GetLanguages(ctx, repo.Name)
		if err != nil {
			log.Printf("⚠️ 获取 %s 的语言失败: %v", repo.Name, err)
		}
		readme, err := client.GetReadme(ctx, repo.Name)
		if err != nil {
			log.Printf("⚠️ 获取 %s 的 README 失败: %v", repo.Name, err)
		}

		tech := analyzer.ExtractTechStack(repo, langs)
		category, keyword := analyzer.ExplainClassification(repo, tech)
		if keyword == "" {
			keyword = "(fallback)"
		}
		counts[string(category)]++

		featured := ""
		if analyzer.CalculateFeatured(repo, category, cfg.FeaturedProjects, now) {
			featured = "★"
		}
		techNames := ""
		for i, t := range tech {
			if i > 0 {
				techNames += ","
			}
			techNames += t.Name
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			repo.Name, category, keyword,
			analyzer.DetermineStatus(repo, now),
			analyzer.CalculateActivityLevel(repo, now),
			analyzer.CalculateCompleteness(repo, readme),
			analyzer.CalculatePopularity(repo),
			featured, techNames)
	}
	_ = tw.Flush()

	fmt.Println("\n📊 分类统计:")
	for category, n := range counts {
		fmt.Printf("  %-14s %d\n", category, n)
	}
}
