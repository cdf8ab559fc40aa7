// cache — Redis-кэш поиска поста по slug поверх storage.PostFinder.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/storage"
	"github.com/pribylovaa/blog-comments/pkg/log"
)

const (
	defaultPrefix = "comments:post:"
	// lookupTimeout ограничивает общий запрос в источник, не привязанный к отмене вызывающего.
	lookupTimeout = 5 * time.Second
)

// PostCache — read-through кэш: hit отдаётся из Redis, miss идёт в next
// и сохраняется с TTL. Ошибки Redis не фатальны: запрос уходит в next.
// Отсутствующие посты не кэшируются.
type PostCache struct {
	rdb    *redis.Client
	next   storage.PostFinder
	prefix string
	ttl    time.Duration
	group  singleflight.Group
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0) и проверяет соединение.
func New(ctx context.Context, redisURL, prefix string, ttl time.Duration, next storage.PostFinder) (*PostCache, error) {
	const op = "cache/New"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return NewWithClient(rdb, prefix, ttl, next), nil
}

// NewWithClient оборачивает уже созданный клиент. Пустой prefix — "comments:post:".
func NewWithClient(rdb *redis.Client, prefix string, ttl time.Duration, next storage.PostFinder) *PostCache {
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &PostCache{rdb: rdb, next: next, prefix: prefix, ttl: ttl}
}

func (c *PostCache) key(slug string) string { return c.prefix + slug }

// PostBySlug реализует storage.PostFinder.
func (c *PostCache) PostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	const op = "cache/PostBySlug"

	slug = strings.TrimSpace(slug)
	lg := log.From(ctx).With("op", op, "slug", slug)

	post, ok, err := c.get(ctx, slug)
	if err != nil {
		lg.Warn("post_cache_get_failed", "err", err)
	}
	if ok {
		return post, nil
	}

	// Конкурентные промахи по одному slug — один запрос в источник.
	// Запрос идёт в собственном контексте; каждый вызывающий ждёт лишь до своей отмены.
	ch := c.group.DoChan(slug, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()

		return c.next.PostBySlug(lctx, slug)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	post = res.Val.(*models.Post)
	if err := c.set(ctx, slug, post); err != nil {
		lg.Warn("post_cache_set_failed", "err", err)
	}

	out := *post
	return &out, nil
}

// Храним как Redis Hash с полями: id, slug, title.
func (c *PostCache) get(ctx context.Context, slug string) (*models.Post, bool, error) {
	m, err := c.rdb.HGetAll(ctx, c.key(slug)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	if len(m) == 0 || m["id"] == "" {
		return nil, false, nil
	}

	return &models.Post{ID: m["id"], Slug: m["slug"], Title: m["title"]}, true, nil
}

func (c *PostCache) set(ctx context.Context, slug string, p *models.Post) error {
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, c.key(slug), map[string]string{
		"id":    p.ID,
		"slug":  p.Slug,
		"title": p.Title,
	})
	pipe.Expire(ctx, c.key(slug), c.ttl)

	_, err := pipe.Exec(ctx)
	return err
}

// Ping — проверка готовности для /healthz.
func (c *PostCache) Ping(ctx context.Context) error { return c.rdb.Ping(ctx).Err() }

// Close закрывает клиент Redis.
func (c *PostCache) Close() error { return c.rdb.Close() }

var _ storage.PostFinder = (*PostCache)(nil)
