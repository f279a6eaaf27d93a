package analyzer

import (
	"strings"

	"github.com/visitech/portfolio-api/internal/domain"
)

// ClassificationRule 一条分类规则，命中任意关键词即归入该分类
type ClassificationRule struct {
	Category domain.Category
	Keywords []string
}

// ClassificationRules 按优先级排列：越具体的分类越靠前，
// 例如用 React 写的机器人项目应当归入 ai-robotics 而不是 web。
var ClassificationRules = []ClassificationRule{
	{domain.CategoryAIRobotics, []string{
		"aidguide", "neurospot", "aura", "ros", "ros2", "ai", "ml",
		"machine-learning", "deep-learning", "robotics", "computer-vision",
		"neural", "tensorflow", "pytorch", "opencv", "gazebo",
	}},
	{domain.CategoryIoT, []string{
		"ecocity", "polihuerto", "iot", "arduino", "raspberry", "sensor",
		"mqtt", "embedded", "hardware", "esp32", "esp8266", "farola",
	}},
	{domain.CategoryGames, []string{
		"poligames", "unity", "game", "gaming", "unreal", "3d", "blender", "godot", "pygame",
	}},
	{domain.CategoryMobile, []string{
		"android", "ios", "flutter", "react-native", "kotlin", "swift", "mobile", "app",
	}},
	{domain.CategorySaaS, []string{
		"saas", "subscription", "platform", "service", "api", "multi-tenant", "b2b", "dashboard",
	}},
	{domain.CategoryDevOps, []string{
		"docker", "kubernetes", "ci-cd", "terraform", "ansible",
		"jenkins", "github-actions", "aws", "cloud", "infrastructure",
	}},
	{domain.CategoryWeb, []string{
		"react", "vue", "angular", "next", "nuxt", "svelte",
		"web", "website", "frontend", "backend", "fullstack", "api",
		"osyris", "sustainability",
	}},
	{domain.CategoryTools, []string{
		"cli", "tool", "utility", "library", "package", "plugin",
		"extension", "helper", "pdf_reader",
	}},
	{domain.CategoryAcademic, []string{
		"sprint0", "assignment", "homework", "course", "university",
		"upv", "cdio", "practice", "lab",
	}},
}

// experimentalMarkers 所有规则都未命中时，名称包含这些词的归为 experimental
var experimentalMarkers = []string{"portfolio", "test", "experiment", "demo"}

// classifyInput 归一化后的匹配对象
type classifyInput struct {
	name        string
	description string
	topics      map[string]struct{}
	techNames   []string
}

func newClassifyInput(repo *domain.RepoRecord, techStack []domain.Technology) classifyInput {
	in := classifyInput{
		name:        strings.ToLower(repo.Name),
		description: strings.ToLower(repo.DescriptionText()),
		topics:      make(map[string]struct{}, len(repo.Topics)),
		techNames:   make([]string, 0, len(techStack)),
	}
	for _, t := range repo.Topics {
		in.topics[strings.ToLower(t)] = struct{}{}
	}
	for _, t := range techStack {
		in.techNames = append(in.techNames, strings.ToLower(t.Name))
	}
	return in
}

// matches 名称、描述、技术栈做子串匹配；话题做精确匹配
func (in classifyInput) matches(keyword string) bool {
	if strings.Contains(in.name, keyword) || strings.Contains(in.description, keyword) {
		return true
	}
	if _, ok := in.topics[keyword]; ok {
		return true
	}
	for _, tech := range in.techNames {
		if strings.Contains(tech, keyword) {
			return true
		}
	}
	return false
}

// Matches 判断单条规则是否命中
func (r ClassificationRule) Matches(repo *domain.RepoRecord, techStack []domain.Technology) bool {
	return r.matches(newClassifyInput(repo, techStack))
}

func (r ClassificationRule) matches(in classifyInput) bool {
	return r.firstMatch(in) != ""
}

func (r ClassificationRule) firstMatch(in classifyInput) string {
	for _, kw := range r.Keywords {
		if in.matches(kw) {
			return kw
		}
	}
	return ""
}

// ClassifyProject 返回第一条命中规则的分类；全部未命中时按名称回退到 experimental 或 other
func ClassifyProject(repo *domain.RepoRecord, techStack []domain.Technology) domain.Category {
	category, _ := ExplainClassification(repo, techStack)
	return category
}

// ExplainClassification 同 ClassifyProject，另外返回触发分类的关键词 (回退分类时为空)
func ExplainClassification(repo *domain.RepoRecord, techStack []domain.Technology) (domain.Category, string) {
	in := newClassifyInput(repo, techStack)
	for _, rule := range ClassificationRules {
		if kw := rule.firstMatch(in); kw != "" {
			return rule.Category, kw
		}
	}
	for _, marker := range experimentalMarkers {
		if strings.Contains(in.name, marker) {
			return domain.CategoryExperimental, ""
		}
	}
	return domain.CategoryOther, ""
}
