package api

import (
	"fmt"
	"net/http"

	"github.com/visitech/portfolio-api/internal/domain"
)

// listBlogPosts GET /api/blog
// ?featured=true 只返回精选，?category= 按分类过滤，两者可以同时使用。结果按日期倒序。
func (h *Handler) listBlogPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	featured := q.Get("featured") == "true"

	var category domain.BlogCategory
	if raw := q.Get("category"); raw != "" {
		c, ok := domain.ParseBlogCategory(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid category %q", raw))
			return
		}
		category = c
	}

	var (
		posts []*domain.BlogPost
		err   error
	)
	switch {
	case category != "":
		posts, err = h.blog.GetBlogPostsByCategory(r.Context(), category)
	case featured:
		posts, err = h.blog.GetFeaturedBlogPosts(r.Context())
	default:
		posts, err = h.blog.GetAllBlogPosts(r.Context())
	}
	if err != nil {
		h.internalError(w, r, "获取博客文章", err)
		return
	}

	if featured && category != "" {
		kept := make([]*domain.BlogPost, 0, len(posts))
		for _, p := range posts {
			if p.Featured {
				kept = append(kept, p)
			}
		}
		posts = kept
	}
	if posts == nil {
		posts = []*domain.BlogPost{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// getBlogPost GET /api/blog/{slug}
func (h *Handler) getBlogPost(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if !domain.ValidBlogSlug(slug) {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}

	post, err := h.blog.GetBlogPostBySlug(r.Context(), slug)
	if err != nil {
		h.internalError(w, r, "获取文章 "+slug, err)
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "Post not found")
		return
	}
	writeJSON(w, http.StatusOK, post)
}
