package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/storage"
	"github.com/pribylovaa/blog-comments/pkg/log"
	"github.com/pribylovaa/blog-comments/pkg/redact"
)

// Toggle переключает голос voterID: повтор того же направления снимает голос,
// смена направления переносит его в противоположное множество одним атомарным шагом.
//
// Поведение/ошибки:
//   - ErrInvalidArgument — пустой id комментария/голосующего или неизвестное направление;
//   - ErrNotFound — комментарий не найден (в том числе удалён конкурентно).
func (s *Service) Toggle(ctx context.Context, id, voterID string, dir models.VoteDirection) (*models.Comment, error) {
	const op = "service/votes/Toggle"

	id = strings.TrimSpace(id)
	voterID = strings.TrimSpace(voterID)
	lg := log.From(ctx).With("op", op, "comment_id", id, "voter", redact.Voter(voterID), "direction", dir.String())

	if id == "" || voterID == "" {
		lg.Warn("invalid argument: empty comment id or voter id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if !dir.Valid() {
		lg.Warn("invalid argument: unknown vote direction")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	out, err := s.storage.ToggleVote(ctx, id, voterID, dir)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("comment not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, failure(lg, op, "storage error on ToggleVote", err)
	}

	s.metrics.Vote(dir.String())

	return out, nil
}

// LikeComment — Toggle в направлении «нравится».
func (s *Service) LikeComment(ctx context.Context, id, voterID string) (*models.Comment, error) {
	return s.Toggle(ctx, id, voterID, models.VoteLike)
}

// DislikeComment — Toggle в направлении «не нравится».
func (s *Service) DislikeComment(ctx context.Context, id, voterID string) (*models.Comment, error) {
	return s.Toggle(ctx, id, voterID, models.VoteDislike)
}
