package content

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/visitech/portfolio-api/internal/common"
	"github.com/visitech/portfolio-api/internal/domain"
)

//go:embed blog.yaml
var embeddedBlog []byte

const dateLayout = "2006-01-02"

type localizedRecord struct {
	ES string `mapstructure:"es"`
	EN string `mapstructure:"en"`
}

func (l localizedRecord) toDomain() domain.Localized {
	return domain.Localized{ES: strings.TrimSpace(l.ES), EN: strings.TrimSpace(l.EN)}
}

// postRecord blog.yaml 中的一条文章
type postRecord struct {
	ID       string          `mapstructure:"id"`
	Slug     string          `mapstructure:"slug"`
	Title    localizedRecord `mapstructure:"title"`
	Subtitle localizedRecord `mapstructure:"subtitle"`
	Excerpt  localizedRecord `mapstructure:"excerpt"`
	Content  localizedRecord `mapstructure:"content"`
	Date     string          `mapstructure:"date"`
	ReadTime int             `mapstructure:"read_time"`
	Category string          `mapstructure:"category"`
	Tags     []string        `mapstructure:"tags"`
	Featured bool            `mapstructure:"featured"`
	Image    string          `mapstructure:"image"`
}

// Blog 内存中的博客目录，加载后只读，可并发访问
type Blog struct {
	posts  []*domain.BlogPost // 按日期倒序，同一天保持文件顺序
	bySlug map[string]*domain.BlogPost
}

// NewBlog 从 path 加载文章；path 为空时使用内置的 blog.yaml
func NewBlog(path string) (*Blog, error) {
	if path == "" {
		return ParseBlog(embeddedBlog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeInvalidInput, "读取博客文件失败", err)
	}
	return ParseBlog(data)
}

// ParseBlog 解析 YAML 格式的文章列表 (顶层 posts 键) 并校验每篇文章
func ParseBlog(data []byte) (*Blog, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, common.WrapError(common.ErrCodeInvalidInput, "解析博客文件失败", err)
	}

	var records []postRecord
	if err := v.UnmarshalKey("posts", &records); err != nil {
		return nil, common.WrapError(common.ErrCodeInvalidInput, "解析博客文章失败", err)
	}

	b := &Blog{
		posts:  make([]*domain.BlogPost, 0, len(records)),
		bySlug: make(map[string]*domain.BlogPost, len(records)),
	}
	dates := make(map[*domain.BlogPost]time.Time, len(records))
	for i, rec := range records {
		post, date, err := rec.toDomain()
		if err != nil {
			return nil, common.WrapError(common.ErrCodeInvalidInput, fmt.Sprintf("第 %d 篇文章无效", i+1), err)
		}
		if _, dup := b.bySlug[post.Slug]; dup {
			return nil, common.NewError(common.ErrCodeInvalidInput, "文章 slug 重复: "+post.Slug)
		}
		b.posts = append(b.posts, post)
		b.bySlug[post.Slug] = post
		dates[post] = date
	}

	sort.SliceStable(b.posts, func(i, j int) bool {
		return dates[b.posts[i]].After(dates[b.posts[j]])
	})
	return b, nil
}

func (r postRecord) toDomain() (*domain.BlogPost, time.Time, error) {
	slug := strings.TrimSpace(r.Slug)
	if !domain.ValidBlogSlug(slug) {
		return nil, time.Time{}, fmt.Errorf("非法 slug %q", r.Slug)
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(r.Date))
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("%s: 日期格式应为 YYYY-MM-DD: %w", slug, err)
	}
	category, ok := domain.ParseBlogCategory(r.Category)
	if !ok {
		return nil, time.Time{}, fmt.Errorf("%s: 未知分类 %q", slug, r.Category)
	}
	if strings.TrimSpace(r.Title.ES) == "" && strings.TrimSpace(r.Title.EN) == "" {
		return nil, time.Time{}, fmt.Errorf("%s: 缺少标题", slug)
	}
	if r.ReadTime < 0 {
		return nil, time.Time{}, fmt.Errorf("%s: 阅读时间不能为负数", slug)
	}

	post := &domain.BlogPost{
		ID:       strings.TrimSpace(r.ID),
		Slug:     slug,
		Title:    r.Title.toDomain(),
		Subtitle: r.Subtitle.toDomain(),
		Excerpt:  r.Excerpt.toDomain(),
		Content:  r.Content.toDomain(),
		Date:     date.Format(dateLayout),
		ReadTime: r.ReadTime,
		Category: category,
		Tags:     r.Tags,
		Featured: r.Featured,
	}
	if post.ID == "" {
		post.ID = slug
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if img := strings.TrimSpace(r.Image); img != "" {
		post.Image = &img
	}
	return post, date, nil
}

// clone 复制文章，调用方修改返回值不会影响目录
func clone(p *domain.BlogPost) *domain.BlogPost {
	c := *p
	c.Tags = append([]string{}, p.Tags...)
	if p.Image != nil {
		img := *p.Image
		c.Image = &img
	}
	return &c
}

func (b *Blog) where(keep func(*domain.BlogPost) bool) []*domain.BlogPost {
	out := make([]*domain.BlogPost, 0, len(b.posts))
	for _, p := range b.posts {
		if keep(p) {
			out = append(out, clone(p))
		}
	}
	return out
}

// GetAllBlogPosts 全部文章，按日期倒序
func (b *Blog) GetAllBlogPosts(ctx context.Context) ([]*domain.BlogPost, error) {
	return b.where(func(*domain.BlogPost) bool { return true }), nil
}

// GetFeaturedBlogPosts 精选文章，按日期倒序
func (b *Blog) GetFeaturedBlogPosts(ctx context.Context) ([]*domain.BlogPost, error) {
	return b.where(func(p *domain.BlogPost) bool { return p.Featured }), nil
}

// GetBlogPostBySlug 精确匹配 slug，找不到返回 nil, nil
func (b *Blog) GetBlogPostBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	if p, ok := b.bySlug[slug]; ok {
		return clone(p), nil
	}
	return nil, nil
}

// GetBlogPostsByCategory 某个分类下的文章，按日期倒序
func (b *Blog) GetBlogPostsByCategory(ctx context.Context, category domain.BlogCategory) ([]*domain.BlogPost, error) {
	return b.where(func(p *domain.BlogPost) bool { return p.Category == category }), nil
}
