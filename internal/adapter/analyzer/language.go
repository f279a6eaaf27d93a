package analyzer

import (
	"sort"
	"strings"

	"github.com/visitech/portfolio-api/internal/domain"
)

// DefaultLanguageColor 未知语言的中性灰
const DefaultLanguageColor = "#666666"

var languageColors = map[string]string{
	"TypeScript": "#2b7489",
	"JavaScript": "#f1e05a",
	"Python":     "#3572A5",
	"Java":       "#b07219",
	"C++":        "#f34b7d",
	"C#":         "#178600",
	"HTML":       "#e34c26",
	"CSS":        "#563d7c",
	"Shell":      "#89e051",
	"PHP":        "#4F5D95",
	"Ruby":       "#701516",
	"Go":         "#00ADD8",
	"Rust":       "#dea584",
	"Swift":      "#FA7343",
	"Kotlin":     "#A97BFF",
}

// 在浅色背景上对比度不足的颜色
var contrastColors = map[string]string{
	"#f1e05a": "#d4af37",
	"#e34c26": "#ff6b35",
	"#563d7c": "#7952b3",
}

// LanguageColor 语言的原始显示颜色
func LanguageColor(name string) string {
	if c, ok := languageColors[name]; ok {
		return c
	}
	return DefaultLanguageColor
}

// ContrastColor 展示层的对比度修正，其余颜色原样返回
func ContrastColor(color string) string {
	if c, ok := contrastColors[strings.ToLower(color)]; ok {
		return c
	}
	return color
}

// sortedLanguages 按字节数倒序，字节数相同按名称排序
func sortedLanguages(languages map[string]int) []string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		bi, bj := languages[names[i]], languages[names[j]]
		if bi != bj {
			return bi > bj
		}
		return names[i] < names[j]
	})
	return names
}

// ProcessLanguages 语言字节数 → 百分比列表。百分比各自四舍五入，总和可能不是 100。
func ProcessLanguages(languages map[string]int) []domain.Language {
	out := make([]domain.Language, 0, len(languages))
	if len(languages) == 0 {
		return out
	}

	total := 0
	for _, b := range languages {
		total += b
	}

	for _, name := range sortedLanguages(languages) {
		bytes := languages[name]
		pct := 0
		if total > 0 {
			pct = roundHalfUp(float64(bytes) / float64(total) * 100)
		}
		color := LanguageColor(name)
		out = append(out, domain.Language{
			Name:         name,
			Percentage:   pct,
			Bytes:        bytes,
			Color:        color,
			DisplayColor: ContrastColor(color),
		})
	}
	return out
}

// topicTechnologies 可识别的话题 → 技术
var topicTechnologies = map[string]domain.Technology{
	"react":      {Name: "React", Category: domain.TechFramework},
	"nextjs":     {Name: "Next.js", Category: domain.TechFramework},
	"nodejs":     {Name: "Node.js", Category: domain.TechFramework},
	"typescript": {Name: "TypeScript", Category: domain.TechLanguage},
	"docker":     {Name: "Docker", Category: domain.TechTool},
	"kubernetes": {Name: "Kubernetes", Category: domain.TechTool},
	"aws":        {Name: "AWS", Category: domain.TechCloud},
	"mongodb":    {Name: "MongoDB", Category: domain.TechDatabase},
	"postgresql": {Name: "PostgreSQL", Category: domain.TechDatabase},
	"ros2":       {Name: "ROS 2", Category: domain.TechFramework},
	"arduino":    {Name: "Arduino", Category: domain.TechTool},
	"unity":      {Name: "Unity", Category: domain.TechFramework},
}

// ExtractTechStack 先收集语言，再收集可识别的话题；名称大小写不敏感去重
func ExtractTechStack(repo *domain.RepoRecord, languages map[string]int) []domain.Technology {
	out := make([]domain.Technology, 0, len(languages)+len(repo.Topics))
	seen := make(map[string]bool)
	add := func(t domain.Technology) {
		key := strings.ToLower(t.Name)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, t)
	}

	for _, name := range sortedLanguages(languages) {
		add(domain.Technology{Name: name, Category: domain.TechLanguage})
	}
	for _, topic := range repo.Topics {
		if t, ok := topicTechnologies[strings.ToLower(topic)]; ok {
			add(t)
		}
	}
	return out
}
