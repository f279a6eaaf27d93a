package domain

// ProjectStats 对项目列表做一次折叠得到的聚合统计
type ProjectStats struct {
	TotalProjects    int `json:"totalProjects"`
	PublicProjects   int `json:"publicProjects"`
	FeaturedProjects int `json:"featuredProjects"`
	ActiveProjects   int `json:"activeProjects"`

	CategoryBreakdown map[Category]int `json:"categoryBreakdown"`
	LanguageBreakdown map[string]int   `json:"languageBreakdown"`

	Metrics  StatsMetrics  `json:"metrics"`
	Timeline StatsTimeline `json:"timeline"`
}

type StatsMetrics struct {
	TotalStars      int `json:"totalStars"`
	TotalForks      int `json:"totalForks"`
	AvgProjectAge   int `json:"avgProjectAge"` // 天
	RecentlyUpdated int `json:"recentlyUpdated"`
}

type StatsTimeline struct {
	FirstProject    string `json:"firstProject"`
	LatestProject   string `json:"latestProject"`
	MostActiveMonth string `json:"mostActiveMonth"` // YYYY-MM
}
