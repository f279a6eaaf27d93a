package analyzer

import (
	"strings"
	"time"

	"github.com/visitech/portfolio-api/internal/domain"
)

// 自动精选的门槛
const (
	featuredMinStars    = 5
	featuredMaxIdleDays = 90
	featuredMinSizeKB   = 100
)

var priorityCategories = map[domain.Category]bool{
	domain.CategoryAIRobotics: true,
	domain.CategoryIoT:        true,
	domain.CategorySaaS:       true,
}

// CalculateFeatured 名称命中白名单即为精选；否则必须同时满足全部自动条件
func CalculateFeatured(repo *domain.RepoRecord, category domain.Category, allowList []string, now time.Time) bool {
	name := strings.ToLower(repo.Name)
	for _, f := range allowList {
		if strings.Contains(name, strings.ToLower(f)) {
			return true
		}
	}

	return repo.Stars >= featuredMinStars &&
		daysSince(now, repo.UpdatedAt) <= featuredMaxIdleDays &&
		repo.Description != nil &&
		repo.Size >= featuredMinSizeKB &&
		priorityCategories[category]
}

// DetermineStatus 叙事性的生命周期，依据最后一次 push 的时间
func DetermineStatus(repo *domain.RepoRecord, now time.Time) domain.Status {
	if repo.Archived {
		return domain.StatusArchived
	}

	days := daysSince(now, repo.PushedAt)
	switch {
	case days < 30:
		return domain.StatusActive
	case days < 180:
		return domain.StatusPaused
	}

	desc := strings.ToLower(repo.DescriptionText())
	if strings.Contains(desc, "completed") || strings.Contains(desc, "finished") {
		return domain.StatusCompleted
	}
	if days > 365 {
		return domain.StatusArchived
	}
	return domain.StatusPaused
}

// CalculateActivityLevel 机械的活跃度阶梯，与 DetermineStatus 使用同一时间戳
func CalculateActivityLevel(repo *domain.RepoRecord, now time.Time) domain.ActivityLevel {
	if repo.Archived {
		return domain.ActivityArchived
	}

	days := daysSince(now, repo.PushedAt)
	switch {
	case days < 30:
		return domain.ActivityActive
	case days < 90:
		return domain.ActivityMaintained
	case days < 365:
		return domain.ActivityDormant
	default:
		return domain.ActivityArchived
	}
}
