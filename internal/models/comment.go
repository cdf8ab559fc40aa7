// Package models содержит доменные сущности comments-сервиса.
package models

import (
	"slices"
	"time"
)

// Comment — доменная модель комментария к посту блога.
// Важно:
//   - ID — непрозрачный идентификатор (ObjectID hex в MongoDB, UUID в памяти), неизменяем;
//   - PostID — идентификатор поста-владельца, неизменяем;
//   - ParentID — "" для корня, иначе ID родителя того же поста, неизменяем;
//   - ChildIDs — прямые ответы в порядке добавления;
//   - LikedBy/DislikedBy — множества голосующих, не пересекаются;
//   - CreatedAt/UpdatedAt — UTC; UpdatedAt меняется только при правке текста.
type Comment struct {
	ID         string
	PostID     string
	ParentID   string
	Author     string
	Content    string
	ChildIDs   []string
	LikedBy    []string
	DislikedBy []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsRoot сообщает, что комментарий верхнего уровня.
func (c *Comment) IsRoot() bool { return c.ParentID == "" }

// LikeCount — |LikedBy|.
func (c *Comment) LikeCount() int { return len(c.LikedBy) }

// DislikeCount — |DislikedBy|.
func (c *Comment) DislikeCount() int { return len(c.DislikedBy) }

// HasChild сообщает, есть ли id среди прямых ответов.
func (c *Comment) HasChild(id string) bool { return slices.Contains(c.ChildIDs, id) }

// Clone возвращает глубокую копию (срезы не разделяются с оригиналом).
func (c *Comment) Clone() *Comment {
	out := *c
	out.ChildIDs = slices.Clone(c.ChildIDs)
	out.LikedBy = slices.Clone(c.LikedBy)
	out.DislikedBy = slices.Clone(c.DislikedBy)
	return &out
}

// NewerFirst — порядок выдачи внутри одного уровня ветки:
// created_at DESC, при равенстве — id DESC.
func NewerFirst(a, b *Comment) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}

	switch {
	case a.ID > b.ID:
		return -1
	case a.ID < b.ID:
		return 1
	default:
		return 0
	}
}

// ThreadNode — узел собранного дерева обсуждения (проекция на чтение).
type ThreadNode struct {
	Comment *Comment
	Depth   int
	Replies []*ThreadNode
}

// VoteDirection — направление голоса.
type VoteDirection int

const (
	VoteLike VoteDirection = iota + 1
	VoteDislike
)

// String — для логов и метрик.
func (d VoteDirection) String() string {
	switch d {
	case VoteLike:
		return "like"
	case VoteDislike:
		return "dislike"
	default:
		return "unknown"
	}
}

// Valid проверяет, что направление одно из известных.
func (d VoteDirection) Valid() bool { return d == VoteLike || d == VoteDislike }

// ReplyLink — ответ, у родителя которого нет обратной ссылки в ChildIDs.
// ParentExists=false означает осиротевший ответ.
type ReplyLink struct {
	ChildID      string
	ParentID     string
	ParentExists bool
}
