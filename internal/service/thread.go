package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/storage"
	"github.com/pribylovaa/blog-comments/pkg/log"
)

// Thread собирает дерево обсуждения поста: корни и ответы по child_ids, уровень за уровнем
// (один CommentsByIDs на уровень). Каждый уровень — сначала новые.
// Обход заканчивается на уровне без child_ids; глубина не ограничивается.
//
// Поведение/ошибки:
//   - ErrPostNotFound — пост с таким slug не найден;
//   - id, удалённые конкурентно, пропускаются;
//   - повторная встреча id — ErrInternal+ErrTreeCycle.
func (s *Service) Thread(ctx context.Context, postSlug string) ([]*models.ThreadNode, error) {
	const op = "service/thread/Thread"

	postSlug = strings.TrimSpace(postSlug)
	lg := log.From(ctx).With("op", op, "post_slug", postSlug)

	post, err := s.posts.PostBySlug(ctx, postSlug)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			lg.Warn("post not found")
			return nil, fmt.Errorf("%s: %w", op, ErrPostNotFound)
		}

		return nil, failure(lg, op, "post lookup failed", err)
	}

	roots, err := s.storage.TopLevelByPost(ctx, post.ID)
	if err != nil {
		return nil, failure(lg, op, "storage error on TopLevelByPost", err)
	}

	placed := make(map[string]struct{}, len(roots))
	out := make([]*models.ThreadNode, 0, len(roots))
	for i := range roots {
		placed[roots[i].ID] = struct{}{}
		out = append(out, &models.ThreadNode{Comment: &roots[i], Depth: 1})
	}
	sortNodes(out)

	level := out
	for len(level) > 0 {
		var ids []string
		for _, n := range level {
			// Повтор id в одном списке — дубль ссылки, а не цикл.
			n.Comment.ChildIDs = uniqueIDs(n.Comment.ChildIDs)
			for _, cid := range n.Comment.ChildIDs {
				if _, seen := placed[cid]; seen {
					return nil, cycleErr(lg, op, cid)
				}
				placed[cid] = struct{}{}
				ids = append(ids, cid)
			}
		}

		if len(ids) == 0 {
			break
		}

		children, err := s.storage.CommentsByIDs(ctx, ids)
		if err != nil {
			return nil, failure(lg, op, "storage error on CommentsByIDs", err)
		}

		byID := make(map[string]*models.Comment, len(children))
		for i := range children {
			byID[children[i].ID] = &children[i]
		}

		var next []*models.ThreadNode
		for _, n := range level {
			for _, cid := range n.Comment.ChildIDs {
				c, ok := byID[cid]
				if !ok {
					continue
				}

				child := &models.ThreadNode{Comment: c, Depth: n.Depth + 1}
				n.Replies = append(n.Replies, child)
				next = append(next, child)
			}
			sortNodes(n.Replies)
		}

		level = next
	}

	return out, nil
}

func sortNodes(nodes []*models.ThreadNode) {
	slices.SortFunc(nodes, func(a, b *models.ThreadNode) int {
		return models.NewerFirst(a.Comment, b.Comment)
	})
}

func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
