package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/visitech/portfolio-api/internal/domain"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printProjects(w io.Writer, projects []*domain.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(w, "📭 没有匹配的项目")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tSTATUS\tLANGUAGE\tSTARS\tUPDATED\tFEATURED")
	for _, p := range projects {
		star := ""
		if p.Featured {
			star = "★"
		}
		lang := p.PrimaryLanguageName()
		if lang == "" {
			lang = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			p.Name, p.Category, p.Status, lang, p.Stars, p.UpdatedAt.Format("2006-01-02"), star)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n共 %d 个项目\n", len(projects))
}

func printDetail(w io.Writer, d *domain.ProjectDetail) {
	fmt.Fprintf(w, "%s (%s)\n", d.DisplayName, d.Name)
	if desc := d.DescriptionText(); desc != "" {
		fmt.Fprintf(w, "  %s\n", desc)
	}
	fmt.Fprintf(w, "  URL:          %s\n", d.URL)
	if d.Homepage != nil {
		fmt.Fprintf(w, "  Homepage:     %s\n", *d.Homepage)
	}
	fmt.Fprintf(w, "  Category:     %s\n", d.Category)
	fmt.Fprintf(w, "  Status:       %s (activity: %s)\n", d.Status, d.ActivityLevel)
	fmt.Fprintf(w, "  Stars/Forks:  %d / %d\n", d.Stars, d.Forks)
	fmt.Fprintf(w, "  Completeness: %d%%  Popularity: %d\n", d.Completeness, d.Popularity)

	if len(d.Languages) > 0 {
		parts := make([]string, 0, len(d.Languages))
		for _, l := range d.Languages {
			parts = append(parts, fmt.Sprintf("%s %d%%", l.Name, l.Percentage))
		}
		fmt.Fprintf(w, "  Languages:    %s\n", strings.Join(parts, ", "))
	}
	if len(d.TechStack) > 0 {
		names := make([]string, 0, len(d.TechStack))
		for _, t := range d.TechStack {
			names = append(names, t.Name)
		}
		fmt.Fprintf(w, "  Tech:         %s\n", strings.Join(names, ", "))
	}
	if d.LastCommitAt != nil {
		fmt.Fprintf(w, "  Last commit:  %s (%d recent)\n", d.LastCommitAt.Format("2006-01-02"), d.Commits)
	}
	if len(d.Contributors) > 0 {
		fmt.Fprintln(w, "  Contributors:")
		for _, c := range d.Contributors {
			fmt.Fprintf(w, "    - %s (%s, %d commits)\n", c.Username, c.Role, c.Contributions)
		}
	}
}

func printPosts(w io.Writer, posts []*domain.BlogPost) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "📭 没有匹配的文章")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSLUG\tCATEGORY\tREAD\tFEATURED\tTITLE")
	for _, p := range posts {
		star := ""
		if p.Featured {
			star = "★"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d min\t%s\t%s\n",
			p.Date, p.Slug, p.Category, p.ReadTime, star, p.Title.ES)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n共 %d 篇文章\n", len(posts))
}

func printPost(w io.Writer, p *domain.BlogPost) {
	fmt.Fprintf(w, "%s\n", p.Title.ES)
	if p.Subtitle.ES != "" {
		fmt.Fprintf(w, "  %s\n", p.Subtitle.ES)
	}
	fmt.Fprintf(w, "  %s · %d min · %s\n", p.Date, p.ReadTime, p.Category)
	if len(p.Tags) > 0 {
		fmt.Fprintf(w, "  Tags: %s\n", strings.Join(p.Tags, ", "))
	}
	fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(p.Content.ES))
}

func printStats(w io.Writer, s *domain.ProjectStats) {
	fmt.Fprintf(w, "Projects:  %d (public %d, featured %d, active %d)\n",
		s.TotalProjects, s.PublicProjects, s.FeaturedProjects, s.ActiveProjects)
	fmt.Fprintf(w, "Stars:     %d\nForks:     %d\n", s.Metrics.TotalStars, s.Metrics.TotalForks)
	fmt.Fprintf(w, "Avg age:   %d days\nRecent:    %d updated in the last 30 days\n",
		s.Metrics.AvgProjectAge, s.Metrics.RecentlyUpdated)
	if s.Timeline.FirstProject != "" {
		fmt.Fprintf(w, "Timeline:  %s → %s (most active %s)\n",
			s.Timeline.FirstProject, s.Timeline.LatestProject, s.Timeline.MostActiveMonth)
	}

	cats := make([]string, 0, len(s.CategoryBreakdown))
	for c := range s.CategoryBreakdown {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	if len(cats) > 0 {
		fmt.Fprintln(w, "Categories:")
		for _, c := range cats {
			fmt.Fprintf(w, "  %-14s %d\n", c, s.CategoryBreakdown[domain.Category(c)])
		}
	}

	langs := make([]string, 0, len(s.LanguageBreakdown))
	for l := range s.LanguageBreakdown {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool {
		if s.LanguageBreakdown[langs[i]] != s.LanguageBreakdown[langs[j]] {
			return s.LanguageBreakdown[langs[i]] > s.LanguageBreakdown[langs[j]]
		}
		return langs[i] < langs[j]
	})
	if len(langs) > 0 {
		fmt.Fprintln(w, "Languages:")
		for _, l := range langs {
			fmt.Fprintf(w, "  %-14s %d\n", l, s.LanguageBreakdown[l])
		}
	}
}
