package analyzer

import (
	"regexp"
	"strings"
)

var (
	imagePattern    = regexp.MustCompile(`!\[.*?\]\((.*?)\)`)
	separatorRe     = regexp.MustCompile(`[_-]`)
	wordStartRe     = regexp.MustCompile(`\b\w`)
	camelBoundaryRe = regexp.MustCompile(`([a-z])([A-Z])`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// ExtractScreenshots 提取 README 中 markdown 图片的 URL，跳过徽章
func ExtractScreenshots(readme *string) []string {
	shots := []string{}
	if readme == nil {
		return shots
	}
	for _, m := range imagePattern.FindAllStringSubmatch(*readme, -1) {
		url := m[1]
		if url == "" || strings.Contains(url, "badge") || strings.Contains(url, "shield") {
			continue
		}
		shots = append(shots, url)
	}
	return shots
}

// FormatProjectName 仓库名 → 标题格式，例如 "aura-backend" → "Aura Backend"
func FormatProjectName(name string) string {
	s := separatorRe.ReplaceAllString(name, " ")
	s = wordStartRe.ReplaceAllStringFunc(s, strings.ToUpper)
	s = camelBoundaryRe.ReplaceAllString(s, "$1 $2")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
