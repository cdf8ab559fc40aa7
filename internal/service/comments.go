package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/storage"
	"github.com/pribylovaa/blog-comments/pkg/log"
)

// EditComment — правка текста автором.
//
// Валидация:
//   - id, author и content нормализуются (TrimSpace) и не должны быть пустыми;
//   - content не длиннее limits.max_content.
//
// Поведение/ошибки:
//   - ErrNotFound — если комментарий не найден;
//   - ErrForbidden — author не совпадает с автором комментария.
func (s *Service) EditComment(ctx context.Context, id, author, content string) (*models.Comment, error) {
	const op = "service/comments/EditComment"

	id = strings.TrimSpace(id)
	author = strings.TrimSpace(author)
	content = strings.TrimSpace(content)
	lg := log.From(ctx).With("op", op, "comment_id", id)

	if id == "" || author == "" || content == "" {
		lg.Warn("invalid argument: empty id, author or content")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if utf8.RuneCountInString(content) > s.limits.MaxContent {
		lg.Warn("invalid argument: content too long", "max", s.limits.MaxContent)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	out, err := s.storage.UpdateContent(ctx, id, author, content)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("comment not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrForbidden):
			lg.Warn("edit by non-author")
			return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
		default:
			return nil, failure(lg, op, "storage error on UpdateContent", err)
		}
	}

	return out, nil
}

// CommentByID возвращает комментарий по идентификатору.
func (s *Service) CommentByID(ctx context.Context, id string) (*models.Comment, error) {
	const op = "service/comments/CommentByID"

	id = strings.TrimSpace(id)
	lg := log.From(ctx).With("op", op, "comment_id", id)

	if id == "" {
		lg.Warn("invalid argument: empty id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	out, err := s.storage.CommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("comment not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, failure(lg, op, "storage error on CommentByID", err)
	}

	return out, nil
}
