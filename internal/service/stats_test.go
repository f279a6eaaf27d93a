package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitech/portfolio-api/internal/domain"
)

func TestComputeStats(t *testing.T) {
	now := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	lang := func(s string) *string { return &s }

	projects := []*domain.Project{
		{
			Category: domain.CategoryIoT, Visibility: domain.VisibilityPublic, Status: domain.StatusActive, Featured: true,
			PrimaryLanguage: lang("C++"), Stars: 10, Forks: 2,
			CreatedAt: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), UpdatedAt: now.AddDate(0, 0, -3),
		},
		{
			Category: domain.CategoryIoT, Visibility: domain.VisibilityPrivate, Status: domain.StatusPaused,
			PrimaryLanguage: lang("Python"), Stars: 1,
			CreatedAt: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), UpdatedAt: now.AddDate(0, 0, -60),
		},
		{
			Category: domain.CategoryWeb, Visibility: domain.VisibilityPublic, Status: domain.StatusActive,
			Forks: 1,
			CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), UpdatedAt: now.AddDate(0, 0, -30),
		},
	}

	stats := ComputeStats(projects, now)

	assert.Equal(t, 3, stats.TotalProjects)
	assert.Equal(t, 2, stats.PublicProjects)
	assert.Equal(t, 1, stats.FeaturedProjects)
	assert.Equal(t, 2, stats.ActiveProjects)
	assert.Equal(t, map[domain.Category]int{domain.CategoryIoT: 2, domain.CategoryWeb: 1}, stats.CategoryBreakdown)
	assert.Equal(t, map[string]int{"C++": 1, "Python": 1}, stats.LanguageBreakdown)
	assert.Equal(t, 11, stats.Metrics.TotalStars)
	assert.Equal(t, 3, stats.Metrics.TotalForks)
	assert.Equal(t, 2, stats.Metrics.RecentlyUpdated, "30 天整也算近期更新")

	// (225 + 210 + 653) / 3 = 362.67
	assert.Equal(t, 363, stats.Metrics.AvgProjectAge)

	assert.Equal(t, "2025-01-01T00:00:00Z", stats.Timeline.FirstProject)
	assert.Equal(t, "2026-03-20T00:00:00Z", stats.Timeline.LatestProject)
	assert.Equal(t, "2026-03", stats.Timeline.MostActiveMonth)
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil, time.Now())

	assert.Equal(t, 0, stats.TotalProjects)
	assert.Equal(t, 0, stats.Metrics.AvgProjectAge)
	assert.Equal(t, "", stats.Timeline.MostActiveMonth)

	raw, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"categoryBreakdown":{}`)
	assert.Contains(t, string(raw), `"languageBreakdown":{}`)
}

func TestMostActiveMonth_TiePicksLatest(t *testing.T) {
	assert.Equal(t, "2026-05", mostActiveMonth(map[string]int{"2025-12": 2, "2026-05": 2, "2024-01": 1}))
	assert.Equal(t, "", mostActiveMonth(map[string]int{}))
}
