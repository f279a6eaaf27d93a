package domain

import (
	"strings"
	"time"
)

// Category 项目分类，固定枚举
type Category string

const (
	CategoryAIRobotics   Category = "ai-robotics"
	CategoryIoT          Category = "iot"
	CategoryGames        Category = "games"
	CategoryWeb          Category = "web"
	CategoryMobile       Category = "mobile"
	CategoryDevOps       Category = "devops"
	CategorySaaS         Category = "saas"
	CategoryTools        Category = "tools"
	CategoryAcademic     Category = "academic"
	CategoryExperimental Category = "experimental"
	CategoryOther        Category = "other"
)

// AllCategories 全部分类
var AllCategories = []Category{
	CategoryAIRobotics, CategoryIoT, CategoryGames, CategoryWeb, CategoryMobile,
	CategoryDevOps, CategorySaaS, CategoryTools, CategoryAcademic,
	CategoryExperimental, CategoryOther,
}

// ParseCategory 解析分类字符串 (大小写不敏感)
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range AllCategories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Status 项目的叙事性生命周期
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusPaused    Status = "paused"
	StatusArchived  Status = "archived"
)

// ParseStatus 解析状态字符串
func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusActive, StatusCompleted, StatusPaused, StatusArchived:
		return st, true
	}
	return "", false
}

// ActivityLevel 机械的最近活跃度，与 Status 分开计算
type ActivityLevel string

const (
	ActivityActive     ActivityLevel = "active"
	ActivityMaintained ActivityLevel = "maintained"
	ActivityDormant    ActivityLevel = "dormant"
	ActivityArchived   ActivityLevel = "archived"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type TechCategory string

const (
	TechLanguage  TechCategory = "language"
	TechFramework TechCategory = "framework"
	TechTool      TechCategory = "tool"
	TechDatabase  TechCategory = "database"
	TechCloud     TechCategory = "cloud"
)

// Language 按字节占比排序的语言条目
type Language struct {
	Name         string `json:"name"`
	Percentage   int    `json:"percentage"`
	Bytes        int    `json:"bytes"`
	Color        string `json:"color"`
	DisplayColor string `json:"displayColor"` // 对过浅的颜色做过对比度修正
}

type Technology struct {
	Name     string       `json:"name"`
	Category TechCategory `json:"category"`
	Icon     string       `json:"icon,omitempty"`
}

type Contributor struct {
	Username      string `json:"username"`
	AvatarURL     string `json:"avatarUrl"`
	ProfileURL    string `json:"profileUrl"`
	Contributions int    `json:"contributions"`
	Role          string `json:"role"`
}

// Project 是仓库归一化之后、可直接给展示层使用的表示。
// 每次请求都从源数据重新推导，不做原地修改。
type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName"`
	Description *string    `json:"description"`
	URL         string     `json:"url"`
	Homepage    *string    `json:"homepage"`
	Topics      []string   `json:"topics"`
	Category    Category   `json:"category"`
	Featured    bool       `json:"featured"`
	Status      Status     `json:"status"`
	Visibility  Visibility `json:"visibility"`

	PrimaryLanguage *string      `json:"primaryLanguage"`
	Languages       []Language   `json:"languages"`
	TechStack       []Technology `json:"techStack"`

	Readme      *string  `json:"readme"`
	Screenshots []string `json:"screenshots"`

	Stars      int `json:"stars"`
	Forks      int `json:"forks"`
	OpenIssues int `json:"openIssues"`
	SizeKB     int `json:"size"`

	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastCommitAt *time.Time `json:"lastCommitAt"`
	Commits      int        `json:"commits"`

	ActivityLevel ActivityLevel `json:"activityLevel"`
	Completeness  int           `json:"completeness"`
	Popularity    int           `json:"popularity"`
}

// ProjectDetail 单项目详情。贡献者只在详情接口中获取，列表接口不会填充。
type ProjectDetail struct {
	Project
	Contributors []Contributor `json:"contributors"`
}

// DescriptionText 返回描述文本，缺失时为空串
func (p *Project) DescriptionText() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}

// PrimaryLanguageName 返回主语言，缺失时为空串
func (p *Project) PrimaryLanguageName() string {
	if p.PrimaryLanguage == nil {
		return ""
	}
	return *p.PrimaryLanguage
}
