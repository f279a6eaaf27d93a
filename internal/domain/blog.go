package domain

import (
	"regexp"
	"strings"
)

// BlogCategory 博客文章分类
type BlogCategory string

const (
	BlogDevOps       BlogCategory = "devops"
	BlogAI           BlogCategory = "ai"
	BlogArchitecture BlogCategory = "architecture"
	BlogAutomation   BlogCategory = "automation"
	BlogBackend      BlogCategory = "backend"
	BlogMindfulness  BlogCategory = "mindfulness"
	BlogLearning     BlogCategory = "learning"
)

// AllBlogCategories 全部博客分类
var AllBlogCategories = []BlogCategory{
	BlogDevOps, BlogAI, BlogArchitecture, BlogAutomation,
	BlogBackend, BlogMindfulness, BlogLearning,
}

// ParseBlogCategory 解析博客分类 (大小写不敏感)
func ParseBlogCategory(s string) (BlogCategory, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range AllBlogCategories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Localized 西班牙语 / 英语双语文本
type Localized struct {
	ES string `json:"es"`
	EN string `json:"en"`
}

// BlogPost 一篇博客文章。Content 是 Markdown 原文，Date 为 YYYY-MM-DD。
type BlogPost struct {
	ID       string       `json:"id"`
	Slug     string       `json:"slug"`
	Title    Localized    `json:"title"`
	Subtitle Localized    `json:"subtitle"`
	Excerpt  Localized    `json:"excerpt"`
	Content  Localized    `json:"content"`
	Date     string       `json:"date"`
	ReadTime int          `json:"readTime"` // 分钟
	Category BlogCategory `json:"category"`
	Tags     []string     `json:"tags"`
	Featured bool         `json:"featured"`
	Image    *string      `json:"image,omitempty"`
}

var blogSlugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidBlogSlug 文章 slug 只允许小写字母、数字和单个连字符分隔
func ValidBlogSlug(slug string) bool {
	return len(slug) <= 128 && blogSlugPattern.MatchString(slug)
}
