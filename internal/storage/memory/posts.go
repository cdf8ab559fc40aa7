package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/storage"
)

// Posts — статический каталог постов slug -> id (posts.driver=static).
type Posts struct {
	bySlug map[string]string
}

// NewPosts копирует переданный каталог; пустые slug/id отбрасываются.
func NewPosts(static map[string]string) *Posts {
	bySlug := make(map[string]string, len(static))
	for slug, id := range static {
		slug, id = strings.TrimSpace(slug), strings.TrimSpace(id)
		if slug == "" || id == "" {
			continue
		}
		bySlug[slug] = id
	}

	return &Posts{bySlug: bySlug}
}

// PostBySlug возвращает пост или storage.ErrPostNotFound.
func (p *Posts) PostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	const op = "storage/memory/PostBySlug"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slug = strings.TrimSpace(slug)
	id, ok := p.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
	}

	return &models.Post{ID: id, Slug: slug, Title: slug}, nil
}

var _ storage.PostFinder = (*Posts)(nil)
