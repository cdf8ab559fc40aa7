// memory — in-process реализация storage.Storage: арена записей по id.
// Используется для локального запуска (storage.driver=memory) и в тестах сервисного слоя.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/storage"
)

// record — одна запись арены. mu сериализует read-modify-write этой записи.
// Порядок захвата: Storage.mu -> record.mu.
type record struct {
	mu      sync.Mutex
	comment models.Comment
	deleted bool
}

// Storage — арена комментариев.
type Storage struct {
	mu   sync.RWMutex
	byID map[string]*record

	now   func() time.Time
	newID func() string
}

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{
		byID:  make(map[string]*record),
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newID: uuid.NewString,
	}
}

// lookup возвращает запись под захваченным record.mu; вызывающий обязан сделать Unlock.
// Удалённая запись (tombstone) трактуется как отсутствующая.
func (s *Storage) lookup(id string) (*record, bool) {
	s.mu.RLock()
	rec, ok := s.byID[strings.TrimSpace(id)]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}

	rec.mu.Lock()
	if rec.deleted {
		rec.mu.Unlock()
		return nil, false
	}

	return rec, true
}

// CreateComment вставляет комментарий и связывает его с родителем в одной критической секции.
func (s *Storage) CreateComment(ctx context.Context, comm models.Comment) (*models.Comment, error) {
	const op = "storage/memory/CreateComment"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	comm.ID = s.newID()
	comm.ParentID = strings.TrimSpace(comm.ParentID)
	comm.ChildIDs = []string{}
	comm.LikedBy = []string{}
	comm.DislikedBy = []string{}
	comm.CreatedAt = now
	comm.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	if comm.ParentID != "" {
		parent, ok := s.byID[comm.ParentID]
		if !ok {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrParentNotFound)
		}

		parent.mu.Lock()
		parent.comment.ChildIDs = append(parent.comment.ChildIDs, comm.ID)
		parent.mu.Unlock()
	}

	s.byID[comm.ID] = &record{comment: comm}

	return comm.Clone(), nil
}

// CommentByID возвращает копию записи или storage.ErrNotFound.
func (s *Storage) CommentByID(ctx context.Context, id string) (*models.Comment, error) {
	const op = "storage/memory/CommentByID"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rec, ok := s.lookup(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	defer rec.mu.Unlock()

	return rec.comment.Clone(), nil
}

// CommentsByIDs возвращает найденные записи, отсутствующие пропускает.
func (s *Storage) CommentsByIDs(ctx context.Context, ids []string) ([]models.Comment, error) {
	const op = "storage/memory/CommentsByIDs"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.Comment, 0, len(ids))
	for _, id := range ids {
		rec, ok := s.lookup(id)
		if !ok {
			continue
		}

		out = append(out, *rec.comment.Clone())
		rec.mu.Unlock()
	}

	return out, nil
}

// TopLevelByPost — корни поста, сначала новые.
func (s *Storage) TopLevelByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	const op = "storage/memory/TopLevelByPost"

	postID = strings.TrimSpace(postID)
	out, err := s.scan(ctx, func(c *models.Comment) bool {
		return c.PostID == postID && c.ParentID == ""
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slices.SortFunc(out, func(a, b models.Comment) int { return models.NewerFirst(&a, &b) })

	return out, nil
}

// RepliesOf — выборка по полю parent_id.
func (s *Storage) RepliesOf(ctx context.Context, parentIDs []string) ([]models.Comment, error) {
	const op = "storage/memory/RepliesOf"

	if len(parentIDs) == 0 {
		return nil, nil
	}

	set := make(map[string]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		set[id] = struct{}{}
	}

	out, err := s.scan(ctx, func(c *models.Comment) bool {
		_, ok := set[c.ParentID]
		return c.ParentID != "" && ok
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// UpdateContent — правка текста только автором.
func (s *Storage) UpdateContent(ctx context.Context, id, author, content string) (*models.Comment, error) {
	const op = "storage/memory/UpdateContent"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rec, ok := s.lookup(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	defer rec.mu.Unlock()

	if rec.comment.Author != author {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrForbidden)
	}

	rec.comment.Content = content
	rec.comment.UpdatedAt = s.now()

	return rec.comment.Clone(), nil
}

// ToggleVote переключает голос под блокировкой записи:
// голосующий никогда не оказывается одновременно в обоих множествах.
func (s *Storage) ToggleVote(ctx context.Context, id, voterID string, dir models.VoteDirection) (*models.Comment, error) {
	const op = "storage/memory/ToggleVote"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !dir.Valid() {
		return nil, fmt.Errorf("%s: unknown vote direction %d", op, dir)
	}

	rec, ok := s.lookup(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	defer rec.mu.Unlock()

	target, opposite := &rec.comment.LikedBy, &rec.comment.DislikedBy
	if dir == models.VoteDislike {
		target, opposite = opposite, target
	}

	if slices.Contains(*target, voterID) {
		*target = slices.DeleteFunc(*target, func(v string) bool { return v == voterID })
	} else {
		*target = append(*target, voterID)
		*opposite = slices.DeleteFunc(*opposite, func(v string) bool { return v == voterID })
	}

	return rec.comment.Clone(), nil
}

// DeleteBatch удаляет записи и помечает их tombstone под блокировкой записи,
// чтобы конкурентные правки/голоса получили ErrNotFound.
func (s *Storage) DeleteBatch(ctx context.Context, ids []string) (int64, error) {
	const op = "storage/memory/DeleteBatch"

	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, id := range ids {
		rec, ok := s.byID[id]
		if !ok {
			continue
		}

		rec.mu.Lock()
		rec.deleted = true
		rec.mu.Unlock()

		delete(s.byID, id)
		n++
	}

	return n, nil
}

// AppendChild — идемпотентное добавление обратной ссылки.
func (s *Storage) AppendChild(ctx context.Context, parentID, childID string) error {
	const op = "storage/memory/AppendChild"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rec, ok := s.lookup(parentID)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	defer rec.mu.Unlock()

	if !rec.comment.HasChild(childID) {
		rec.comment.ChildIDs = append(rec.comment.ChildIDs, childID)
	}

	return nil
}

// RemoveChild — удаление обратной ссылки; отсутствие родителя не ошибка.
func (s *Storage) RemoveChild(ctx context.Context, parentID, childID string) error {
	const op = "storage/memory/RemoveChild"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rec, ok := s.lookup(parentID)
	if !ok {
		return nil
	}
	defer rec.mu.Unlock()

	rec.comment.ChildIDs = slices.DeleteFunc(rec.comment.ChildIDs, func(v string) bool { return v == childID })

	return nil
}

// DanglingReplies — ответы без обратной ссылки у родителя.
func (s *Storage) DanglingReplies(ctx context.Context) ([]models.ReplyLink, error) {
	const op = "storage/memory/DanglingReplies"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ReplyLink
	for id, rec := range s.byID {
		rec.mu.Lock()
		parentID := rec.comment.ParentID
		rec.mu.Unlock()

		if parentID == "" {
			continue
		}

		parent, ok := s.byID[parentID]
		if !ok {
			out = append(out, models.ReplyLink{ChildID: id, ParentID: parentID})
			continue
		}

		parent.mu.Lock()
		linked := parent.comment.HasChild(id)
		parent.mu.Unlock()

		if !linked {
			out = append(out, models.ReplyLink{ChildID: id, ParentID: parentID, ParentExists: true})
		}
	}

	return out, nil
}

// Close — no-op: ресурсов нет.
func (s *Storage) Close(context.Context) error { return nil }

// scan — копии всех живых записей, удовлетворяющих match.
func (s *Storage) scan(ctx context.Context, match func(*models.Comment) bool) ([]models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Comment
	for _, rec := range s.byID {
		rec.mu.Lock()
		if match(&rec.comment) {
			out = append(out, *rec.comment.Clone())
		}
		rec.mu.Unlock()
	}

	return out, nil
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.Storage = (*Storage)(nil)
