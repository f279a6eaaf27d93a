package analyzer

import (
	"math"
	"unicode/utf8"

	"github.com/visitech/portfolio-api/internal/domain"
)

// 完整度各项权重
const (
	weightDescription = 20
	weightReadme      = 30
	weightTopics      = 10
	weightHomepage    = 10
	weightLicense     = 10
	weightIssues      = 10
	weightSize        = 10
)

// CalculateCompleteness 加权清单得分，封顶 100
func CalculateCompleteness(repo *domain.RepoRecord, readme *string) int {
	score := 0
	if repo.Description != nil && utf8.RuneCountInString(*repo.Description) > 20 {
		score += weightDescription
	}
	if readme != nil && utf8.RuneCountInString(*readme) > 100 {
		score += weightReadme
	}
	if len(repo.Topics) > 0 {
		score += weightTopics
	}
	if repo.Homepage != nil && *repo.Homepage != "" {
		score += weightHomepage
	}
	if repo.License != nil {
		score += weightLicense
	}
	if repo.HasIssues {
		score += weightIssues
	}
	if repo.Size > 100 {
		score += weightSize
	}
	if score > 100 {
		score = 100
	}
	return score
}

// CalculatePopularity stars*10 + forks*5 + watchers*3 + min(size*0.01, 100)，四舍五入
func CalculatePopularity(repo *domain.RepoRecord) int {
	sizeTerm := math.Min(float64(repo.Size)*0.01, 100)
	raw := float64(repo.Stars*10+repo.Forks*5+repo.Watchers*3) + sizeTerm
	return roundHalfUp(raw)
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
