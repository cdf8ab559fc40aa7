// postgres предоставляет реализацию storage.PostFinder на базе PostgreSQL (таблица posts блога).
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/storage"
)

// PostsStorage — доступ только на чтение к постам блога.
type PostsStorage struct {
	db *pgxpool.Pool
}

// New создает и инициализирует пул соединений к PostgreSQL.
func New(ctx context.Context, dbURL string) (*PostsStorage, error) {
	const op = "storage/postgres/New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &PostsStorage{db: db}, nil
}

// PostBySlug возвращает пост по slug.
// Если записи нет — storage.ErrPostNotFound.
func (s *PostsStorage) PostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	const op = "storage/postgres/PostBySlug"

	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
	}

	var post models.Post
	err := s.db.QueryRow(ctx, `
	SELECT id, slug, title
	FROM posts
	WHERE slug = $1
	`, slug).Scan(&post.ID, &post.Slug, &post.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrPostNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &post, nil
}

// Ping — проверка готовности для /healthz.
func (s *PostsStorage) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close закрывает пул соединений.
func (s *PostsStorage) Close() {
	s.db.Close()
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.PostFinder = (*PostsStorage)(nil)
