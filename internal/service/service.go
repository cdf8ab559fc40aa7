// service содержит бизнес-логику comments-сервиса:
// модерацию вставки/удаления, сборку ветки и учёт голосов.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/blog-comments/internal/config"
	"github.com/pribylovaa/blog-comments/internal/metrics"
	"github.com/pribylovaa/blog-comments/internal/storage"
	"github.com/pribylovaa/blog-comments/internal/verify"
)

var (
	// ErrInvalidArgument — неверные входные параметры запроса к сервису.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrVerificationFailed — токен проверки «человек/бот» отклонён.
	ErrVerificationFailed = errors.New("verification failed")
	// ErrPostNotFound — пост с таким slug не найден.
	ErrPostNotFound = errors.New("post not found")
	// ErrParentNotFound — родитель не найден.
	ErrParentNotFound = errors.New("parent not found")
	// ErrNotFound — комментарий не найден.
	ErrNotFound = errors.New("not found")
	// ErrCrossPostReply — родитель принадлежит другому посту.
	ErrCrossPostReply = errors.New("cross-post reply")
	// ErrDepthLimitExceeded — превышена максимально допустимая глубина ветки.
	ErrDepthLimitExceeded = errors.New("depth limit exceeded")
	// ErrForbidden — правка чужого комментария.
	ErrForbidden = errors.New("forbidden")
	// ErrTreeCycle — цикл в ссылках parent/child: нарушение целостности данных.
	// Всегда возвращается вместе с ErrInternal.
	ErrTreeCycle = errors.New("tree cycle detected")
	// ErrInternal — внутренняя ошибка (стораж/БД/и т.д.).
	ErrInternal = errors.New("internal")
)

// Service — бизнес-логика comments-service.
type Service struct {
	storage  storage.Storage
	posts    storage.PostFinder
	verifier verify.Verifier
	metrics  *metrics.Metrics
	limits   config.LimitsConfig
}

// New создает новый экземпляр Service.
func New(st storage.Storage, posts storage.PostFinder, v verify.Verifier, m *metrics.Metrics, cfg config.Config) *Service {
	return &Service{
		storage:  st,
		posts:    posts,
		verifier: v,
		metrics:  m,
		limits:   cfg.Limits,
	}
}

// failure — общий хвост маппинга ошибок хранилища:
// отмена и дедлайн пробрасываются как есть, остальное — ErrInternal.
func failure(lg *slog.Logger, op, msg string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		lg.Warn(msg+": context done", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	lg.Error(msg, "err", err)
	return fmt.Errorf("%s: %w", op, ErrInternal)
}

// cycleErr — нарушение целостности дерева.
func cycleErr(lg *slog.Logger, op, id string) error {
	lg.Error("data integrity: cycle in comment tree", "comment_id", id)
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, ErrTreeCycle)
}
