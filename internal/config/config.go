package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/visitech/portfolio-api/internal/domain"
)

type Config struct {
	GitHubToken             string  `mapstructure:"github_token"`
	GitHubUser              string  `mapstructure:"github_user"`
	GitHubBaseURL           string  `mapstructure:"github_base_url"`
	GitHubRequestsPerSecond float64 `mapstructure:"github_requests_per_second"`
	GitHubMaxRetries        int     `mapstructure:"github_max_retries"`

	CommitLimit      int      `mapstructure:"commit_limit"`
	FetchConcurrency int      `mapstructure:"fetch_concurrency"`
	FeaturedProjects []string `mapstructure:"featured_projects"`

	ListenAddr     string        `mapstructure:"listen_addr"`
	RenderCacheTTL time.Duration `mapstructure:"render_cache_ttl"`

	RevalidateSecret        string `mapstructure:"revalidate_secret"`
	RevalidateWebhook       string `mapstructure:"revalidate_webhook"`
	RevalidateWebhookFormat string `mapstructure:"revalidate_webhook_format"`

	SnapshotDriver string `mapstructure:"snapshot_driver"`
	SnapshotDSN    string `mapstructure:"snapshot_dsn"`

	BlogFile string `mapstructure:"blog_file"` // 为空时使用内置文章
}

var keys = []string{
	"github_token", "github_user", "github_base_url", "github_requests_per_second",
	"github_max_retries", "commit_limit", "fetch_concurrency", "featured_projects",
	"listen_addr", "render_cache_ttl", "revalidate_secret", "revalidate_webhook",
	"revalidate_webhook_format", "snapshot_driver", "snapshot_dsn", "blog_file",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("github_user", "vjrivmon")
	v.SetDefault("github_max_retries", 2)
	v.SetDefault("commit_limit", 10)
	v.SetDefault("fetch_concurrency", 8)
	v.SetDefault("featured_projects", domain.FeaturedProjects)
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("render_cache_ttl", time.Hour)
	v.SetDefault("revalidate_webhook_format", "json")
	v.SetDefault("snapshot_driver", "postgres")
}

// Load 读取配置：.env → portfolio.yaml (可选) → 环境变量，后者覆盖前者。
// configPaths 为空时在当前目录和 ./config 下查找 portfolio.yaml。
func Load(configPaths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("portfolio")
	v.SetConfigType("yaml")
	if len(configPaths) == 0 {
		configPaths = []string{".", "./config"}
	}
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv 只对已知 key 生效，Unmarshal 前需要显式绑定
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("绑定环境变量 %s 失败: %w", k, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.GitHubBaseURL = strings.TrimSpace(cfg.GitHubBaseURL)
	cfg.FeaturedProjects = normalizeList(cfg.FeaturedProjects)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.GitHubToken == "" {
		log.Println("⚠️ 警告: GITHUB_TOKEN 为空，将以匿名方式访问 GitHub (60 次/小时)")
	}
	if cfg.RevalidateSecret == "" {
		log.Println("⚠️ 警告: REVALIDATE_SECRET 为空，/api/revalidate 将拒绝所有请求")
	}
	return cfg, nil
}

// Validate 检查取值范围
func (c *Config) Validate() error {
	if c.GitHubUser == "" {
		return errors.New("github_user 不能为空")
	}
	if c.FetchConcurrency < 0 {
		return fmt.Errorf("fetch_concurrency 不能为负数: %d", c.FetchConcurrency)
	}
	if c.GitHubMaxRetries < 0 {
		return fmt.Errorf("github_max_retries 不能为负数: %d", c.GitHubMaxRetries)
	}
	if c.GitHubRequestsPerSecond < 0 {
		return fmt.Errorf("github_requests_per_second 不能为负数: %v", c.GitHubRequestsPerSecond)
	}
	if c.CommitLimit <= 0 {
		return fmt.Errorf("commit_limit 必须为正数: %d", c.CommitLimit)
	}
	switch c.RevalidateWebhookFormat {
	case "json", "feishu":
	default:
		return fmt.Errorf("未知的 revalidate_webhook_format: %q", c.RevalidateWebhookFormat)
	}
	switch c.SnapshotDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("未知的 snapshot_driver: %q", c.SnapshotDriver)
	}
	return nil
}

// SnapshotEnabled 是否配置了快照存储
func (c *Config) SnapshotEnabled() bool {
	return c.SnapshotDSN != ""
}

// normalizeList 环境变量里的列表是逗号或空白分隔的单个字符串，这里统一展开
func normalizeList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.FieldsFunc(item, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		}) {
			out = append(out, part)
		}
	}
	return out
}
