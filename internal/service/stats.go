package service

import (
	"math"
	"time"

	"github.com/visitech/portfolio-api/internal/adapter/filter"
	"github.com/visitech/portfolio-api/internal/domain"
)

const recentWindow = 30 * 24 * time.Hour

// ComputeStats 对项目列表做一次折叠
func ComputeStats(projects []*domain.Project, now time.Time) *domain.ProjectStats {
	stats := &domain.ProjectStats{
		TotalProjects:     len(projects),
		CategoryBreakdown: make(map[domain.Category]int),
		LanguageBreakdown: make(map[string]int),
	}
	if len(projects) == 0 {
		return stats
	}

	var (
		totalAgeDays float64
		first, last  time.Time
		months       = make(map[string]int)
	)
	for i, p := range projects {
		if p.Visibility == domain.VisibilityPublic {
			stats.PublicProjects++
		}
		if p.Featured {
			stats.FeaturedProjects++
		}
		if p.Status == domain.StatusActive {
			stats.ActiveProjects++
		}

		stats.CategoryBreakdown[p.Category]++
		if lang := p.PrimaryLanguageName(); lang != "" {
			stats.LanguageBreakdown[lang]++
		}

		stats.Metrics.TotalStars += p.Stars
		stats.Metrics.TotalForks += p.Forks
		totalAgeDays += now.Sub(p.CreatedAt).Hours() / 24

		if i == 0 || p.CreatedAt.Before(first) {
			first = p.CreatedAt
		}
		if i == 0 || p.CreatedAt.After(last) {
			last = p.CreatedAt
		}
		months[p.CreatedAt.UTC().Format("2006-01")]++
	}

	stats.Metrics.AvgProjectAge = int(math.Floor(totalAgeDays/float64(len(projects)) + 0.5))
	stats.Metrics.RecentlyUpdated = len(filter.UpdatedWithin(projects, recentWindow, now))

	stats.Timeline.FirstProject = first.UTC().Format(time.RFC3339)
	stats.Timeline.LatestProject = last.UTC().Format(time.RFC3339)
	stats.Timeline.MostActiveMonth = mostActiveMonth(months)
	return stats
}

// mostActiveMonth 创建项目最多的月份，并列时取较晚的月份
func mostActiveMonth(months map[string]int) string {
	best, bestCount := "", 0
	for month, n := range months {
		if n > bestCount || (n == bestCount && month > best) {
			best, bestCount = month, n
		}
	}
	return best
}
