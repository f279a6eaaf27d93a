package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitech/portfolio-api/internal/domain"
)

func TestProcessLanguages(t *testing.T) {
	langs := ProcessLanguages(map[string]int{"Python": 700, "Shell": 200, "Dockerfile": 100})
	require.Len(t, langs, 3)

	assert.Equal(t, domain.Language{Name: "Python", Percentage: 70, Bytes: 700, Color: "#3572A5", DisplayColor: "#3572A5"}, langs[0])
	assert.Equal(t, "Shell", langs[1].Name)
	assert.Equal(t, 20, langs[1].Percentage)
	assert.Equal(t, "Dockerfile", langs[2].Name)
	assert.Equal(t, DefaultLanguageColor, langs[2].Color)
}

func TestProcessLanguages_RoundingDrift(t *testing.T) {
	langs := ProcessLanguages(map[string]int{"Go": 1, "Rust": 1, "C#": 1})

	sum := 0
	for _, l := range langs {
		assert.Equal(t, 33, l.Percentage)
		sum += l.Percentage
	}
	assert.Equal(t, 99, sum)
	// 字节数相同时按名称排序
	assert.Equal(t, []string{"C#", "Go", "Rust"}, []string{langs[0].Name, langs[1].Name, langs[2].Name})
}

func TestProcessLanguages_Empty(t *testing.T) {
	assert.Equal(t, []domain.Language{}, ProcessLanguages(nil))
	assert.Equal(t, []domain.Language{}, ProcessLanguages(map[string]int{}))

	zero := ProcessLanguages(map[string]int{"Go": 0})
	require.Len(t, zero, 1)
	assert.Equal(t, 0, zero[0].Percentage)
}

func TestLanguageColors(t *testing.T) {
	assert.Equal(t, "#00ADD8", LanguageColor("Go"))
	assert.Equal(t, "#666666", LanguageColor("COBOL"))
	assert.Equal(t, "#666666", LanguageColor("go"), "名称区分大小写")

	assert.Equal(t, "#d4af37", ContrastColor(LanguageColor("JavaScript")))
	assert.Equal(t, "#ff6b35", ContrastColor(LanguageColor("HTML")))
	assert.Equal(t, "#7952b3", ContrastColor(LanguageColor("CSS")))
	assert.Equal(t, "#2b7489", ContrastColor(LanguageColor("TypeScript")))
}

func TestExtractTechStack(t *testing.T) {
	repo := &domain.RepoRecord{Topics: []string{"TypeScript", "nextjs", "docker", "unknown-topic", "aws"}}
	langs := map[string]int{"TypeScript": 900, "CSS": 100}

	got := ExtractTechStack(repo, langs)

	assert.Equal(t, []domain.Technology{
		{Name: "TypeScript", Category: domain.TechLanguage},
		{Name: "CSS", Category: domain.TechLanguage},
		{Name: "Next.js", Category: domain.TechFramework},
		{Name: "Docker", Category: domain.TechTool},
		{Name: "AWS", Category: domain.TechCloud},
	}, got)
}
