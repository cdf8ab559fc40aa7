package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/service"
	"github.com/pribylovaa/blog-comments/internal/transport/http/apierrors"
)

func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	var in CreateCommentRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	c, depth, err := h.comments.Insert(withRemoteIP(r), service.InsertInput{
		PostSlug: chi.URLParam(r, "slug"),
		Author:   in.Author,
		Content:  in.Content,
		ParentID: in.ParentID,
		Token:    in.Token,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateCommentResponse{Comment: commentFromModel(h.markup, c), Depth: depth})
}

func (h *Handlers) GetThread(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.comments.Thread(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ThreadResponse{Comments: threadFromModel(h.markup, nodes)})
}

func (h *Handlers) GetComment(w http.ResponseWriter, r *http.Request) {
	c, err := h.comments.CommentByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, CommentResponse{Comment: commentFromModel(h.markup, c)})
}

func (h *Handlers) EditComment(w http.ResponseWriter, r *http.Request) {
	var in EditCommentRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	c, err := h.comments.EditComment(r.Context(), chi.URLParam(r, "id"), in.Author, in.Content)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, CommentResponse{Comment: commentFromModel(h.markup, c)})
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) LikeComment(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, models.VoteLike)
}

func (h *Handlers) DislikeComment(w http.ResponseWriter, r *http.Request) {
	h.vote(w, r, models.VoteDislike)
}

func (h *Handlers) vote(w http.ResponseWriter, r *http.Request, dir models.VoteDirection) {
	var in VoteRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")

	var (
		c   *models.Comment
		err error
	)
	switch dir {
	case models.VoteLike:
		c, err = h.comments.LikeComment(r.Context(), id, in.VoterID)
	default:
		c, err = h.comments.DislikeComment(r.Context(), id, in.VoterID)
	}
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, CommentResponse{Comment: commentFromModel(h.markup, c)})
}
