package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/visitech/portfolio-api/internal/domain"
)

// SortKey 列表排序字段
type SortKey string

const (
	SortByStars      SortKey = "stars"
	SortByUpdated    SortKey = "updated"
	SortByCreated    SortKey = "created"
	SortByName       SortKey = "name"
	SortByPopularity SortKey = "popularity"
)

// ParseSortKey 解析排序字段，空串视为 updated
func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortByUpdated, true
	case SortByStars, SortByUpdated, SortByCreated, SortByName, SortByPopularity:
		return k, true
	}
	return "", false
}

// ExcludeForksAndArchived 去掉 fork 与已归档的仓库
func ExcludeForksAndArchived(repos []*domain.RepoRecord) []*domain.RepoRecord {
	filtered := make([]*domain.RepoRecord, 0, len(repos))
	for _, r := range repos {
		if r == nil || r.Fork || r.Archived {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// where 保留满足条件的项目，结果总是非 nil
func where(projects []*domain.Project, keep func(*domain.Project) bool) []*domain.Project {
	filtered := make([]*domain.Project, 0, len(projects))
	for _, p := range projects {
		if keep(p) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Featured 只保留精选项目
func Featured(projects []*domain.Project) []*domain.Project {
	return where(projects, func(p *domain.Project) bool { return p.Featured })
}

// ByCategory 按分类过滤
func ByCategory(projects []*domain.Project, category domain.Category) []*domain.Project {
	return where(projects, func(p *domain.Project) bool { return p.Category == category })
}

// ByStatus 按生命周期状态过滤
func ByStatus(projects []*domain.Project, status domain.Status) []*domain.Project {
	return where(projects, func(p *domain.Project) bool { return p.Status == status })
}

// ByLanguage 主语言或语言明细中包含该语言 (大小写不敏感)
func ByLanguage(projects []*domain.Project, language string) []*domain.Project {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return where(projects, func(*domain.Project) bool { return true })
	}
	return where(projects, func(p *domain.Project) bool {
		if strings.ToLower(p.PrimaryLanguageName()) == language {
			return true
		}
		for _, l := range p.Languages {
			if strings.ToLower(l.Name) == language {
				return true
			}
		}
		return false
	})
}

// UpdatedWithin 保留在 window 时间内更新过的项目
func UpdatedWithin(projects []*domain.Project, window time.Duration, now time.Time) []*domain.Project {
	return where(projects, func(p *domain.Project) bool {
		return now.Sub(p.UpdatedAt) <= window
	})
}

// Search 在名称、展示名、描述、话题、技术栈和语言中做大小写不敏感的子串匹配。
// 空查询返回全部项目。
func Search(projects []*domain.Project, query string) []*domain.Project {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return where(projects, func(*domain.Project) bool { return true })
	}
	return where(projects, func(p *domain.Project) bool { return matches(p, q) })
}

func matches(p *domain.Project, q string) bool {
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), q) }

	if contains(p.Name) || contains(p.DisplayName) || contains(p.DescriptionText()) {
		return true
	}
	for _, t := range p.Topics {
		if contains(t) {
			return true
		}
	}
	for _, t := range p.TechStack {
		if contains(t.Name) {
			return true
		}
	}
	for _, l := range p.Languages {
		if contains(l.Name) {
			return true
		}
	}
	return false
}

// Sort 返回排序后的新切片，原切片不变。
// order 为 "asc" 或 "desc"；为空时 name 默认升序，其余默认降序。
// 稳定排序，相同键保持输入顺序。
func Sort(projects []*domain.Project, key SortKey, order string) []*domain.Project {
	sorted := make([]*domain.Project, len(projects))
	copy(sorted, projects)

	asc := strings.EqualFold(order, "asc") || (order == "" && key == SortByName)

	less := func(a, b *domain.Project) bool {
		switch key {
		case SortByStars:
			return a.Stars < b.Stars
		case SortByCreated:
			return a.CreatedAt.Before(b.CreatedAt)
		case SortByName:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case SortByPopularity:
			return a.Popularity < b.Popularity
		default:
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if asc {
			return less(sorted[i], sorted[j])
		}
		return less(sorted[j], sorted[i])
	})
	return sorted
}

// Paginate 取第 page 页 (从 1 开始)，limit<=0 时不分页。超出范围返回空切片。
func Paginate(projects []*domain.Project, page, limit int) []*domain.Project {
	if limit <= 0 {
		return projects
	}
	if page < 1 {
		page = 1
	}
	// 先按页数比较，避免 (page-1)*limit 溢出
	if len(projects) == 0 || page-1 > (len(projects)-1)/limit {
		return []*domain.Project{}
	}
	start := (page - 1) * limit
	end := start + limit
	if end > len(projects) {
		end = len(projects)
	}
	return projects[start:end]
}
