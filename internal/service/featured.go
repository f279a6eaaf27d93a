package service

import (
	"sort"
	"strings"

	"github.com/visitech/portfolio-api/internal/adapter/filter"
	"github.com/visitech/portfolio-api/internal/domain"
)

// SelectFeatured 从全部项目中挑出精选列表：
//  1. 取 Featured 为 true 的项目，不足 MaxFeatured 个时按热度补足
//  2. 名称命中 priority 的排在前面 (按 priority 顺序)，其余按 star 倒序
//  3. 截断到 MaxFeatured
func SelectFeatured(projects []*domain.Project, priority []string) []*domain.Project {
	selected := filter.Featured(projects)

	if len(selected) < domain.MaxFeatured {
		rest := filter.Sort(
			filterOut(projects, func(p *domain.Project) bool { return p.Featured }),
			filter.SortByPopularity, "desc",
		)
		need := domain.MaxFeatured - len(selected)
		if need > len(rest) {
			need = len(rest)
		}
		selected = append(selected, rest[:need]...)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		a, b := priorityIndex(selected[i].ID, priority), priorityIndex(selected[j].ID, priority)
		switch {
		case a >= 0 && b >= 0:
			return a < b
		case a >= 0:
			return true
		case b >= 0:
			return false
		}
		return selected[i].Stars > selected[j].Stars
	})

	if len(selected) > domain.MaxFeatured {
		selected = selected[:domain.MaxFeatured]
	}
	return selected
}

// priorityIndex id 命中的第一个白名单下标，未命中返回 -1
func priorityIndex(id string, priority []string) int {
	id = strings.ToLower(id)
	for i, name := range priority {
		if strings.Contains(id, strings.ToLower(name)) {
			return i
		}
	}
	return -1
}

func filterOut(projects []*domain.Project, drop func(*domain.Project) bool) []*domain.Project {
	out := make([]*domain.Project, 0, len(projects))
	for _, p := range projects {
		if !drop(p) {
			out = append(out, p)
		}
	}
	return out
}
