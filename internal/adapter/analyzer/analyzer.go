package analyzer

import (
	"time"

	"github.com/visitech/portfolio-api/internal/domain"
)

// Analyzer 实现了 port.Analyzer 接口：把一条原始仓库记录转换成 Project。
// 转换是纯函数，唯一依赖的外部状态是当前时间，由 nowFunc 提供。
type Analyzer struct {
	featured []string
	nowFunc  func() time.Time
}

// NewAnalyzer 创建转换器，featured 为空时使用默认的精选白名单
func NewAnalyzer(featured []string) *Analyzer {
	if len(featured) == 0 {
		featured = domain.FeaturedProjects
	}
	return &Analyzer{
		featured: featured,
		nowFunc:  time.Now, // 便于测试注入当前时间
	}
}

func (a *Analyzer) now() time.Time {
	if a != nil && a.nowFunc != nil {
		return a.nowFunc()
	}
	return time.Now()
}

// Analyze 将仓库及其可选的 README、语言、提交数据转换为 Project
func (a *Analyzer) Analyze(in domain.RepoInput) *domain.Project {
	repo := in.Repo
	if repo == nil {
		return nil
	}
	now := a.now()

	techStack := ExtractTechStack(repo, in.Languages)
	category := ClassifyProject(repo, techStack)

	var readme *string
	if in.Readme != nil && *in.Readme != "" {
		text := *in.Readme
		readme = &text
	}

	topics := make([]string, len(repo.Topics))
	copy(topics, repo.Topics)

	visibility := domain.VisibilityPublic
	if repo.Private {
		visibility = domain.VisibilityPrivate
	}

	p := &domain.Project{
		ID:          repo.Name,
		Name:        repo.Name,
		DisplayName: FormatProjectName(repo.Name),
		Description: cloneString(repo.Description),
		URL:         repo.HTMLURL,
		Homepage:    cloneString(repo.Homepage),
		Topics:      topics,
		Category:    category,
		Featured:    CalculateFeatured(repo, category, a.featured, now),
		Status:      DetermineStatus(repo, now),
		Visibility:  visibility,

		PrimaryLanguage: cloneString(repo.Language),
		Languages:       ProcessLanguages(in.Languages),
		TechStack:       techStack,

		Readme:      readme,
		Screenshots: ExtractScreenshots(readme),

		Stars:      repo.Stars,
		Forks:      repo.Forks,
		OpenIssues: repo.OpenIssues,
		SizeKB:     repo.Size,

		CreatedAt: repo.CreatedAt,
		UpdatedAt: repo.UpdatedAt,
		Commits:   len(in.Commits),

		ActivityLevel: CalculateActivityLevel(repo, now),
		Completeness:  CalculateCompleteness(repo, readme),
		Popularity:    CalculatePopularity(repo),
	}
	if len(in.Commits) > 0 {
		last := in.Commits[0].AuthoredAt
		p.LastCommitAt = &last
	}
	return p
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// daysSince 距 t 的天数 (含小数)
func daysSince(now, t time.Time) float64 {
	return now.Sub(t).Hours() / 24
}
