package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/storage"
	"github.com/pribylovaa/blog-comments/pkg/log"
)

// InsertInput — создание корневого комментария или ответа.
// Правила:
//   - Token обязателен (пустой — ошибка вызывающего, а не отказ проверки);
//   - Author и Content нормализуются (TrimSpace) и не должны быть пустыми;
//   - ParentID пуст — корень, иначе ответ на комментарий того же поста.
type InsertInput struct {
	PostSlug string
	Author   string
	Content  string
	ParentID string
	Token    string
}

// Insert — модерируемая вставка комментария. Возвращает комментарий и его глубину (корень = 1).
//
// Порядок проверок:
//  1. пустой токен — ErrInvalidArgument; отказ проверки — ErrVerificationFailed;
//  2. пустые author/content или слишком длинный content — ErrInvalidArgument;
//  3. пост по slug — ErrPostNotFound;
//  4. родитель — ErrParentNotFound, другой пост — ErrCrossPostReply;
//  5. глубина > limits.max_depth — ErrDepthLimitExceeded; цикл — ErrInternal+ErrTreeCycle.
func (s *Service) Insert(ctx context.Context, in InsertInput) (*models.Comment, int, error) {
	const op = "service/moderation/Insert"

	in.PostSlug = strings.TrimSpace(in.PostSlug)
	in.ParentID = strings.TrimSpace(in.ParentID)
	lg := log.From(ctx).With("op", op, "post_slug", in.PostSlug, "parent_id", in.ParentID)

	if strings.TrimSpace(in.Token) == "" {
		lg.Warn("invalid argument: empty verification token")
		return nil, 0, s.reject(op, "invalid_argument", ErrInvalidArgument)
	}

	if !s.verifier.Verify(ctx, in.Token) {
		lg.Warn("verification failed")
		return nil, 0, s.reject(op, "verification_failed", ErrVerificationFailed)
	}

	in.Author = strings.TrimSpace(in.Author)
	if in.Author == "" {
		lg.Warn("invalid argument: empty author")
		return nil, 0, s.reject(op, "invalid_argument", ErrInvalidArgument)
	}

	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		lg.Warn("invalid argument: empty content")
		return nil, 0, s.reject(op, "invalid_argument", ErrInvalidArgument)
	}

	if utf8.RuneCountInString(in.Content) > s.limits.MaxContent {
		lg.Warn("invalid argument: content too long", "max", s.limits.MaxContent)
		return nil, 0, s.reject(op, "invalid_argument", ErrInvalidArgument)
	}

	post, err := s.posts.PostBySlug(ctx, in.PostSlug)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			lg.Warn("post not found")
			return nil, 0, s.reject(op, "post_not_found", ErrPostNotFound)
		}

		return nil, 0, failure(lg, op, "post lookup failed", err)
	}

	depth := 1
	if in.ParentID != "" {
		parent, err := s.storage.CommentByID(ctx, in.ParentID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				lg.Warn("parent not found")
				return nil, 0, s.reject(op, "parent_not_found", ErrParentNotFound)
			}

			return nil, 0, failure(lg, op, "storage error on parent lookup", err)
		}

		if parent.PostID != post.ID {
			lg.Warn("parent belongs to another post", "parent_post_id", parent.PostID, "post_id", post.ID)
			return nil, 0, s.reject(op, "cross_post_reply", ErrCrossPostReply)
		}

		parentDepth, err := s.depthOf(ctx, parent)
		if err != nil {
			switch {
			case errors.Is(err, ErrTreeCycle):
				return nil, 0, cycleErr(lg, op, parent.ID)
			case errors.Is(err, ErrParentNotFound):
				lg.Warn("ancestor vanished during depth walk")
				return nil, 0, s.reject(op, "parent_not_found", ErrParentNotFound)
			default:
				return nil, 0, failure(lg, op, "storage error on depth walk", err)
			}
		}

		depth = parentDepth + 1
		if depth > s.limits.MaxDepth {
			lg.Warn("depth limit exceeded", "depth", depth, "max", s.limits.MaxDepth)
			return nil, 0, s.reject(op, "depth_limit_exceeded", ErrDepthLimitExceeded)
		}
	}

	// Отмена до записи не оставляет следов.
	if err := ctx.Err(); err != nil {
		lg.Warn("cancelled before persist", "err", err)
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.storage.CreateComment(ctx, models.Comment{
		PostID:   post.ID,
		ParentID: in.ParentID,
		Author:   in.Author,
		Content:  in.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrLinkDeferred) && created != nil:
			// Потерянная индексная запись: восстанавливается ReconcileReplies.
			lg.Error("parent link not written", "comment_id", created.ID, "err", err)
		case errors.Is(err, storage.ErrParentNotFound):
			lg.Warn("parent vanished before link")
			return nil, 0, s.reject(op, "parent_not_found", ErrParentNotFound)
		default:
			return nil, 0, failure(lg, op, "storage error on CreateComment", err)
		}
	}

	s.metrics.CommentCreated()
	lg.Info("comment created", "comment_id", created.ID, "depth", depth)

	return created, depth, nil
}

// reject учитывает отказ в метриках и оборачивает ошибку.
func (s *Service) reject(op, reason string, err error) error {
	s.metrics.CommentRejected(reason)
	return fmt.Errorf("%s: %w", op, err)
}

// depthOf — глубина комментария: явный цикл вверх по parent_id с множеством посещённых id.
// Ошибки: ErrTreeCycle, ErrParentNotFound (предок исчез во время обхода), ошибки хранилища.
func (s *Service) depthOf(ctx context.Context, c *models.Comment) (int, error) {
	depth := 1
	visited := map[string]struct{}{c.ID: {}}

	for c.ParentID != "" {
		if _, seen := visited[c.ParentID]; seen {
			return 0, ErrTreeCycle
		}
		visited[c.ParentID] = struct{}{}

		next, err := s.storage.CommentByID(ctx, c.ParentID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return 0, ErrParentNotFound
			}

			return 0, err
		}

		depth++
		c = next
	}

	return depth, nil
}

// Delete — каскадное удаление комментария и всего поддерева.
//
// Поведение/ошибки:
//   - ErrNotFound — если комментарий не найден;
//   - отсутствующие потомки считаются уже удалёнными (конкурентные удаления идемпотентны);
//   - цикл в дереве — ErrInternal+ErrTreeCycle, ничего не удаляется.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "service/moderation/Delete"

	id = strings.TrimSpace(id)
	lg := log.From(ctx).With("op", op, "comment_id", id)

	if id == "" {
		lg.Warn("invalid argument: empty id")
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	root, err := s.storage.CommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("comment not found")
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return failure(lg, op, "storage error on CommentByID", err)
	}

	ids, err := s.collectSubtree(ctx, root)
	if err != nil {
		if errors.Is(err, ErrTreeCycle) {
			return cycleErr(lg, op, root.ID)
		}

		return failure(lg, op, "storage error on subtree walk", err)
	}

	if err := ctx.Err(); err != nil {
		lg.Warn("cancelled before delete", "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	deleted, err := s.storage.DeleteBatch(ctx, ids)
	if err != nil {
		return failure(lg, op, "storage error on DeleteBatch", err)
	}

	// После фиксации удаления хвост выполняется независимо от отмены запроса.
	tail := context.WithoutCancel(ctx)

	swept, err := s.sweepReplies(tail, ids)
	if err != nil {
		return failure(lg, op, "storage error on orphan sweep", err)
	}

	if root.ParentID != "" {
		if err := s.storage.RemoveChild(tail, root.ParentID, root.ID); err != nil {
			return failure(lg, op, "storage error on RemoveChild", err)
		}
	}

	s.metrics.CommentsDeleted(deleted + swept)
	lg.Info("comment subtree deleted", "deleted", deleted, "swept", swept)

	return nil
}

// collectSubtree — id комментария и всех потомков, обход в ширину явной очередью уровней.
// Потомки берутся из child_ids и по обратной ссылке parent_id (на случай потерянной
// индексной записи). Отсутствующие потомки пропускаются.
func (s *Service) collectSubtree(ctx context.Context, root *models.Comment) ([]string, error) {
	visited := map[string]struct{}{root.ID: {}}
	ids := []string{root.ID}
	level := []models.Comment{*root}

	for len(level) > 0 {
		levelIDs := make([]string, 0, len(level))
		for _, c := range level {
			levelIDs = append(levelIDs, c.ID)
		}

		replies, err := s.storage.RepliesOf(ctx, levelIDs)
		if err != nil {
			return nil, err
		}

		found := make(map[string]models.Comment, len(replies))
		for _, r := range replies {
			found[r.ID] = r
		}

		var indexed []string
		for _, c := range level {
			for _, cid := range c.ChildIDs {
				if _, ok := found[cid]; !ok && !slices.Contains(indexed, cid) {
					indexed = append(indexed, cid)
				}
			}
		}

		if len(indexed) > 0 {
			extra, err := s.storage.CommentsByIDs(ctx, indexed)
			if err != nil {
				return nil, err
			}
			for _, c := range extra {
				found[c.ID] = c
			}
		}

		next := make([]models.Comment, 0, len(found))
		for cid, c := range found {
			if _, seen := visited[cid]; seen {
				return nil, ErrTreeCycle
			}
			visited[cid] = struct{}{}
			ids = append(ids, cid)
			next = append(next, c)
		}

		level = next
	}

	return ids, nil
}

// sweepReplies удаляет ответы, вставленные под уже удалёнными id во время обхода.
func (s *Service) sweepReplies(ctx context.Context, deleted []string) (int64, error) {
	seen := make(map[string]struct{}, len(deleted))
	for _, id := range deleted {
		seen[id] = struct{}{}
	}

	var total int64
	frontier := deleted
	for len(frontier) > 0 {
		replies, err := s.storage.RepliesOf(ctx, frontier)
		if err != nil {
			return total, err
		}

		var fresh []string
		for _, r := range replies {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			fresh = append(fresh, r.ID)
		}

		if len(fresh) == 0 {
			break
		}

		n, err := s.storage.DeleteBatch(ctx, fresh)
		if err != nil {
			return total, err
		}
		total += n
		frontier = fresh
	}

	return total, nil
}

// ReconcileReport — итог восстановления обратных ссылок.
type ReconcileReport struct {
	Relinked int
	Removed  int64
}

// ReconcileReplies восстанавливает потерянные записи child_ids:
// родитель существует — AppendChild, родителя нет — осиротевшее поддерево удаляется.
func (s *Service) ReconcileReplies(ctx context.Context) (ReconcileReport, error) {
	const op = "service/moderation/ReconcileReplies"

	lg := log.From(ctx).With("op", op)
	var rep ReconcileReport

	links, err := s.storage.DanglingReplies(ctx)
	if err != nil {
		return rep, failure(lg, op, "storage error on DanglingReplies", err)
	}

	for _, l := range links {
		if l.ParentExists {
			err := s.storage.AppendChild(ctx, l.ParentID, l.ChildID)
			if err == nil {
				rep.Relinked++
				continue
			}
			if !errors.Is(err, storage.ErrNotFound) {
				return rep, failure(lg, op, "storage error on AppendChild", err)
			}
			// Родитель удалён после сканирования — ответ стал сиротой.
		}

		n, err := s.removeOrphan(ctx, l.ChildID)
		if err != nil {
			if errors.Is(err, ErrTreeCycle) {
				return rep, cycleErr(lg, op, l.ChildID)
			}

			return rep, failure(lg, op, "storage error on orphan removal", err)
		}
		rep.Removed += n
	}

	lg.Info("reconcile finished", "relinked", rep.Relinked, "removed", rep.Removed)

	return rep, nil
}

func (s *Service) removeOrphan(ctx context.Context, id string) (int64, error) {
	orphan, err := s.storage.CommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil
		}

		return 0, err
	}

	ids, err := s.collectSubtree(ctx, orphan)
	if err != nil {
		return 0, err
	}

	n, err := s.storage.DeleteBatch(ctx, ids)
	if err != nil {
		return 0, err
	}

	s.metrics.CommentsDeleted(n)

	return n, nil
}
