package domain

import (
	"regexp"
	"time"
)

var repoNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidRepoName 判断 name 是否是合法的仓库名 (字母、数字、'.'、'_'、'-'，最长 100)，"." 和 ".." 不合法
func ValidRepoName(name string) bool {
	if name == "." || name == ".." || len(name) > 100 {
		return false
	}
	return repoNamePattern.MatchString(name)
}

// RepoRecord 是来自代码托管平台的原始仓库记录 (与具体 API 客户端解耦)
type RepoRecord struct {
	Name        string
	FullName    string
	OwnerLogin  string
	Private     bool
	HTMLURL     string
	Description *string
	Homepage    *string
	Fork        bool
	Archived    bool
	HasIssues   bool
	License     *string // SPDX ID 或许可证名称
	Language    *string
	Topics      []string

	Size       int // KB
	Stars      int
	Watchers   int
	Forks      int
	OpenIssues int

	CreatedAt time.Time
	UpdatedAt time.Time
	PushedAt  time.Time
}

// DescriptionText 返回描述文本，缺失时为空串
func (r *RepoRecord) DescriptionText() string {
	if r.Description == nil {
		return ""
	}
	return *r.Description
}

// CommitRecord 最近提交的精简信息
type CommitRecord struct {
	SHA        string
	Message    string
	AuthorName string
	AuthoredAt time.Time
}

// ContributorRecord 贡献者原始信息
type ContributorRecord struct {
	Login         string
	AvatarURL     string
	HTMLURL       string
	Contributions int
}

// RateLimitStatus 仅用于诊断
type RateLimitStatus struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

// RepoInput 转换层的一次输入：仓库本身加上可选的 README、语言、提交数据
type RepoInput struct {
	Repo      *RepoRecord
	Readme    *string
	Languages map[string]int
	Commits   []CommitRecord
}
