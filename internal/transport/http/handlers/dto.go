package handlers

import (
	"time"

	"github.com/pribylovaa/blog-comments/internal/markup"
	"github.com/pribylovaa/blog-comments/internal/models"
)

// Comment — комментарий в ответах API.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	ParentID  string    `json:"parent_id,omitempty"` // "" — корень
	Author    string    `json:"author"`
	Content   string    `json:"content"`      // исходный текст (Markdown)
	HTML      string    `json:"content_html"` // санитизированный HTML
	Likes     int       `json:"likes"`
	Dislikes  int       `json:"dislikes"`
	ReplyIDs  []string  `json:"reply_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ThreadNode — узел дерева обсуждения.
type ThreadNode struct {
	Comment
	Depth   int           `json:"depth"` // 1 — корень
	Replies []*ThreadNode `json:"replies"`
}

// Создание (корневой или ответ).
type CreateCommentRequest struct {
	Author   string `json:"author"`
	Content  string `json:"content"`
	ParentID string `json:"parent_id,omitempty"` // если задан — reply
	Token    string `json:"token"`               // токен проверки «человек/бот»
}

type CreateCommentResponse struct {
	Comment *Comment `json:"comment"`
	Depth   int      `json:"depth"`
}

type EditCommentRequest struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

type VoteRequest struct {
	VoterID string `json:"voter_id"`
}

type CommentResponse struct {
	Comment *Comment `json:"comment"`
}

type ThreadResponse struct {
	Comments []*ThreadNode `json:"comments"`
}

func commentFromModel(r *markup.Renderer, c *models.Comment) *Comment {
	replies := c.ChildIDs
	if replies == nil {
		replies = []string{}
	}

	return &Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		ParentID:  c.ParentID,
		Author:    c.Author,
		Content:   c.Content,
		HTML:      r.Render(c.Content),
		Likes:     c.LikeCount(),
		Dislikes:  c.DislikeCount(),
		ReplyIDs:  replies,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func threadFromModel(r *markup.Renderer, nodes []*models.ThreadNode) []*ThreadNode {
	out := make([]*ThreadNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &ThreadNode{
			Comment: *commentFromModel(r, n.Comment),
			Depth:   n.Depth,
			Replies: threadFromModel(r, n.Replies),
		})
	}

	return out
}
