package service

// Тесты сервисного слоя с моками (internal/service/*.go).
//
//  Проверяем:
//  - порядок проверок Insert (токен -> проверка -> поля -> пост -> родитель -> глубина);
//  - маппинг ошибок storage -> service;
//  - обнаружение циклов при обходе вверх (глубина) и вниз (удаление, сборка ветки);
//  - отмену контекста до записи.
//
//   mockgen -source=./internal/storage/storage.go -destination=./mocks/storage.go -package=mocks
//   mockgen -source=./internal/verify/verify.go -destination=./mocks/verifier.go -package=mocks
//   go test ./internal/service -v -race -count=1

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/blog-comments/internal/config"
	"github.com/pribylovaa/blog-comments/internal/metrics"
	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/storage"
	"github.com/pribylovaa/blog-comments/mocks"
)

var testLimits = config.LimitsConfig{MaxDepth: 3, MaxContent: 100}

type deps struct {
	storage  *mocks.MockStorage
	posts    *mocks.MockPostFinder
	verifier *mocks.MockVerifier
}

// newServiceWithMocks — поднимает сервис с моками стораджа, поиска постов и проверки.
func newServiceWithMocks(t *testing.T) (*Service, deps) {
	t.Helper()
	ctrl := gomock.NewController(t)

	d := deps{
		storage:  mocks.NewMockStorage(ctrl),
		posts:    mocks.NewMockPostFinder(ctrl),
		verifier: mocks.NewMockVerifier(ctrl),
	}

	s := New(d.storage, d.posts, d.verifier, metrics.New(prometheus.NewRegistry()), config.Config{Limits: testLimits})

	return s, d
}

func comment(id, postID, parentID string, children ...string) *models.Comment {
	now := time.Now().UTC()
	return &models.Comment{
		ID:        id,
		PostID:    postID,
		ParentID:  parentID,
		Author:    "author-" + id,
		Content:   "content-" + id,
		ChildIDs:  children,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

var validInsert = InsertInput{PostSlug: "hello", Author: "Alice", Content: "Nice post", Token: "tok"}

func TestInsert_EmptyToken_GateNotCalled(t *testing.T) {
	s, _ := newServiceWithMocks(t)

	in := validInsert
	in.Token = "   "
	_, _, err := s.Insert(context.Background(), in)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// Отказ проверки идёт раньше валидации полей.
func TestInsert_VerificationFailed(t *testing.T) {
	s, d := newServiceWithMocks(t)

	d.verifier.EXPECT().Verify(gomock.Any(), "tok").Return(false)

	_, _, err := s.Insert(context.Background(), InsertInput{PostSlug: "hello", Token: "tok"})
	require.ErrorIs(t, err, ErrVerificationFailed)
}

func TestInsert_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   InsertInput
	}{
		{"blank author", InsertInput{PostSlug: "hello", Author: "  ", Content: "x", Token: "tok"}},
		{"blank content", InsertInput{PostSlug: "hello", Author: "a", Content: "\n\t", Token: "tok"}},
		{"content too long", InsertInput{PostSlug: "hello", Author: "a", Content: strings.Repeat("я", 101), Token: "tok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, d := newServiceWithMocks(t)
			d.verifier.EXPECT().Verify(gomock.Any(), "tok").Return(true)

			_, _, err := s.Insert(context.Background(), tt.in)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestInsert_PostLookupErrors(t *testing.T) {
	s, d := newServiceWithMocks(t)
	d.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(true).Times(3)

	d.posts.EXPECT().PostBySlug(gomock.Any(), "hello").Return(nil, storage.ErrPostNotFound)
	_, _, err := s.Insert(context.Background(), validInsert)
	require.ErrorIs(t, err, ErrPostNotFound)

	d.posts.EXPECT().PostBySlug(gomock.Any(), "hello").Return(nil, errors.New("db down"))
	_, _, err = s.Insert(context.Background(), validInsert)
	require.ErrorIs(t, err, ErrInternal)

	d.posts.EXPECT().PostBySlug(gomock.Any(), "hello").Return(nil, context.DeadlineExceeded)
	_, _, err = s.Insert(context.Background(), validInsert)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotErrorIs(t, err, ErrInternal)
}

func TestInsert_Root_OK(t *testing.T) {
	s, d := newServiceWithMocks(t)

	d.verifier.EXPECT().Verify(gomock.Any(), "tok").Return(true)
	d.posts.EXPECT().PostBySlug(gomock.Any(), "hello").Return(&models.Post{ID: "p-1", Slug: "hello"}, nil)
	d.storage.EXPECT().
		CreateComment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c models.Comment) (*models.Comment, error) {
			require.Equal(t, "p-1", c.PostID)
			require.Equal(t, "Alice", c.Author)
			require.Equal(t, "Nice post", c.Content)
			require.Empty(t, c.ParentID)
			c.ID = "c1"
			return &c, nil
		})

	in := validInsert
	in.Author = "  Alice "
	in.Content = " Nice post\n"

	got, depth, err := s.Insert(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, "c1", got.ID)
	require.Equal(t, 1, depth)
}

func TestInsert_ParentChecks(t *testing.T) {
	post := &models.Post{ID: "p-1", Slug: "hello"}

	setup := func(t *testing.T) (*Service, deps, InsertInput) {
		s, d := newServiceWithMocks(t)
		d.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(true)
		d.posts.EXPECT().PostBySlug(gomock.Any(), "hello").Return(post, nil)
		in := validInsert
		in.ParentID = "r2"
		return s, d, in
	}

	t.Run("parent not found", func(t *testing.T) {
		s, d, in := setup(t)
		d.storage.EXPECT().CommentByID(gomock.Any(), "r2").Return(nil, storage.ErrNotFound)

		_, _, err := s.Insert(context.Background(), in)
		require.ErrorIs(t, err, ErrParentNotFound)
	})

	t.Run("cross post", func(t *testing.T) {
		s, d, in := setup(t)
		d.storage.EXPECT().CommentByID(gomock.Any(), "r2").Return(comment("r2", "p-2", ""), nil)

		_, _, err := s.Insert(context.Background(), in)
		require.ErrorIs(t, err, ErrCrossPostReply)
	})

	t.Run("depth limit", func(t *testing.T) {
		s, d, in := setup(t)
		d.storage.EXPECT().CommentByID(gomock.Any(), "r2").Return(comment("r2", "p-1", "r1"), nil)
		d.storage.EXPECT().CommentByID(gomock.Any(), "r1").Return(comment("r1", "p-1", "c1"), nil)
		d.storage.EXPECT().CommentByID(gomock.Any(), "c1").Return(comment("c1", "p-1", ""), nil)

		_, _, err := s.Insert(context.Background(), in)
		require.ErrorIs(t, err, ErrDepthLimitExceeded)
	})

	t.Run("cycle", func(t *testing.T) {
		s, d, in := setup(t)
		d.storage.EXPECT().CommentByID(gomock.Any(), "r2").Return(comment("r2", "p-1", "r1"), nil)
		d.storage.EXPECT().CommentByID(gomock.Any(), "r1").Return(comment("r1", "p-1", "r2"), nil)

		_, _, err := s.Insert(context.Background(), in)
		require.ErrorIs(t, err, ErrInternal)
		require.ErrorIs(t, err, ErrTreeCycle)
	})

	t.Run("ancestor vanished mid-walk", func(t *testing.T) {
		s, d, in := setup(t)
		d.storage.EXPECT().CommentByID(gomock.Any(), "r2").Return(comment("r2", "p-1", "r1"), nil)
		d.storage.EXPECT().CommentByID(gomock.Any(), "r1").Return(nil, storage.ErrNotFound)

		_, _, err := s.Insert(context.Background(), in)
		require.ErrorIs(t, err, ErrParentNotFound)
	})

	t.Run("parent vanished before link", func(t *testing.T) {
		s, d, in := setup(t)
		d.storage.EXPECT().CommentByID(gomock.Any(), "r2").Return(comment("r2", "p-1", ""), nil)
		d.storage.EXPECT().CreateComment(gomock.Any(), gomock.Any()).Return(nil, storage.ErrParentNotFound)

		_, _, err := s.Insert(context.Background(), in)
		require.ErrorIs(t, err, ErrParentNotFound)
	})

	t.Run("deferred link is not fatal", func(t *testing.T) {
		s, d, in := setup(t)
		d.storage.EXPECT().CommentByID(gomock.Any(), "r2").Return(comment("r2", "p-1", ""), nil)
		d.storage.EXPECT().CreateComment(gomock.Any(), gomock.Any()).
			Return(comment("new", "p-1", "r2"), storage.ErrLinkDeferred)

		got, depth, err := s.Insert(context.Background(), in)
		require.NoError(t, err)
		require.Equal(t, "new", got.ID)
		require.Equal(t, 2, depth)
	})

	t.Run("depth 3 allowed", func(t *testing.T) {
		s, d, in := setup(t)
		d.storage.EXPECT().CommentByID(gomock.Any(), "r2").Return(comment("r2", "p-1", "c1"), nil)
		d.storage.EXPECT().CommentByID(gomock.Any(), "c1").Return(comment("c1", "p-1", ""), nil)
		d.storage.EXPECT().CreateComment(gomock.Any(), gomock.Any()).Return(comment("r3", "p-1", "r2"), nil)

		_, depth, err := s.Insert(context.Background(), in)
		require.NoError(t, err)
		require.Equal(t, 3, depth)
	})
}

// Отмена контекста до записи: CreateComment не вызывается.
func TestInsert_CancelledBeforePersist(t *testing.T) {
	s, d := newServiceWithMocks(t)
	ctx, cancel := context.WithCancel(context.Background())

	d.verifier.EXPECT().Verify(gomock.Any(), "tok").Return(true)
	d.posts.EXPECT().PostBySlug(gomock.Any(), "hello").
		DoAndReturn(func(context.Context, string) (*models.Post, error) {
			cancel()
			return &models.Post{ID: "p-1"}, nil
		})

	_, _, err := s.Insert(ctx, validInsert)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDelete_Errors(t *testing.T) {
	t.Run("empty id", func(t *testing.T) {
		s, _ := newServiceWithMocks(t)
		require.ErrorIs(t, s.Delete(context.Background(), " "), ErrInvalidArgument)
	})

	t.Run("not found", func(t *testing.T) {
		s, d := newServiceWithMocks(t)
		d.storage.EXPECT().CommentByID(gomock.Any(), "x").Return(nil, storage.ErrNotFound)
		require.ErrorIs(t, s.Delete(context.Background(), "x"), ErrNotFound)
	})

	t.Run("storage failure", func(t *testing.T) {
		s, d := newServiceWithMocks(t)
		d.storage.EXPECT().CommentByID(gomock.Any(), "x").Return(nil, errors.New("boom"))
		require.ErrorIs(t, s.Delete(context.Background(), "x"), ErrInternal)
	})

	// Цикл: child_ids потомка указывает на корень. DeleteBatch не вызывается.
	t.Run("cycle aborts", func(t *testing.T) {
		s, d := newServiceWithMocks(t)
		root := comment("c1", "p-1", "", "r1")
		r1 := comment("r1", "p-1", "c1", "c1")

		d.storage.EXPECT().CommentByID(gomock.Any(), "c1").Return(root, nil)
		d.storage.EXPECT().RepliesOf(gomock.Any(), []string{"c1"}).Return([]models.Comment{*r1}, nil)
		d.storage.EXPECT().RepliesOf(gomock.Any(), []string{"r1"}).Return(nil, nil)
		d.storage.EXPECT().CommentsByIDs(gomock.Any(), []string{"c1"}).Return([]models.Comment{*root}, nil)

		err := s.Delete(context.Background(), "c1")
		require.ErrorIs(t, err, ErrInternal)
		require.ErrorIs(t, err, ErrTreeCycle)
	})
}

func TestDelete_Subtree_OK(t *testing.T) {
	s, d := newServiceWithMocks(t)

	root := comment("r1", "p-1", "c1", "r2")
	r2 := comment("r2", "p-1", "r1")
	lost := comment("r3", "p-1", "r1") // нет в child_ids r1, найден по parent_id

	gomock.InOrder(
		d.storage.EXPECT().CommentByID(gomock.Any(), "r1").Return(root, nil),
		d.storage.EXPECT().RepliesOf(gomock.Any(), []string{"r1"}).Return([]models.Comment{*r2, *lost}, nil),
		d.storage.EXPECT().RepliesOf(gomock.Any(), gomock.Any()).Return(nil, nil),
		d.storage.EXPECT().DeleteBatch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, ids []string) (int64, error) {
				require.ElementsMatch(t, []string{"r1", "r2", "r3"}, ids)
				return 3, nil
			}),
		d.storage.EXPECT().RepliesOf(gomock.Any(), gomock.Any()).Return(nil, nil),
		d.storage.EXPECT().RemoveChild(gomock.Any(), "c1", "r1").Return(nil),
	)

	require.NoError(t, s.Delete(context.Background(), "r1"))
}

func TestToggle_Errors(t *testing.T) {
	s, d := newServiceWithMocks(t)

	_, err := s.LikeComment(context.Background(), "c1", "  ")
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = s.Toggle(context.Background(), "c1", "v1", models.VoteDirection(42))
	require.ErrorIs(t, err, ErrInvalidArgument)

	d.storage.EXPECT().ToggleVote(gomock.Any(), "c1", "v1", models.VoteDislike).Return(nil, storage.ErrNotFound)
	_, err = s.DislikeComment(context.Background(), "c1", "v1")
	require.ErrorIs(t, err, ErrNotFound)

	d.storage.EXPECT().ToggleVote(gomock.Any(), "c1", "v1", models.VoteLike).Return(nil, errors.New("boom"))
	_, err = s.LikeComment(context.Background(), "c1", "v1")
	require.ErrorIs(t, err, ErrInternal)
}

func TestEditComment_Errors(t *testing.T) {
	s, d := newServiceWithMocks(t)

	_, err := s.EditComment(context.Background(), "c1", "alice", "   ")
	require.ErrorIs(t, err, ErrInvalidArgument)

	d.storage.EXPECT().UpdateContent(gomock.Any(), "c1", "bob", "new").Return(nil, storage.ErrForbidden)
	_, err = s.EditComment(context.Background(), "c1", "bob", "new")
	require.ErrorIs(t, err, ErrForbidden)

	d.storage.EXPECT().UpdateContent(gomock.Any(), "c1", "alice", "new").Return(nil, storage.ErrNotFound)
	_, err = s.EditComment(context.Background(), "c1", "alice", " new ")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestThread_Errors(t *testing.T) {
	t.Run("post not found", func(t *testing.T) {
		s, d := newServiceWithMocks(t)
		d.posts.EXPECT().PostBySlug(gomock.Any(), "nope").Return(nil, storage.ErrPostNotFound)

		_, err := s.Thread(context.Background(), "nope")
		require.ErrorIs(t, err, ErrPostNotFound)
	})

	t.Run("cycle", func(t *testing.T) {
		s, d := newServiceWithMocks(t)
		d.posts.EXPECT().PostBySlug(gomock.Any(), "hello").Return(&models.Post{ID: "p-1"}, nil)
		d.storage.EXPECT().TopLevelByPost(gomock.Any(), "p-1").
			Return([]models.Comment{*comment("c1", "p-1", "", "r1")}, nil)
		d.storage.EXPECT().CommentsByIDs(gomock.Any(), []string{"r1"}).
			Return([]models.Comment{*comment("r1", "p-1", "c1", "c1")}, nil)

		_, err := s.Thread(context.Background(), "hello")
		require.ErrorIs(t, err, ErrInternal)
		require.ErrorIs(t, err, ErrTreeCycle)
	})
}

// TestThread_DuplicateChildLink — повтор id в child_ids одного родителя не считается циклом.
func TestThread_DuplicateChildLink(t *testing.T) {
	s, d := newServiceWithMocks(t)
	d.posts.EXPECT().PostBySlug(gomock.Any(), "hello").Return(&models.Post{ID: "p-1"}, nil)
	d.storage.EXPECT().TopLevelByPost(gomock.Any(), "p-1").
		Return([]models.Comment{*comment("c1", "p-1", "", "r1", "r1")}, nil)
	d.storage.EXPECT().CommentsByIDs(gomock.Any(), []string{"r1"}).
		Return([]models.Comment{*comment("r1", "p-1", "c1")}, nil)

	nodes, err := s.Thread(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, []string{"r1"}, nodes[0].Comment.ChildIDs)
	require.Len(t, nodes[0].Replies, 1)
	require.Equal(t, "r1", nodes[0].Replies[0].Comment.ID)
	require.Equal(t, 2, nodes[0].Replies[0].Depth)
}

func TestReconcileReplies(t *testing.T) {
	s, d := newServiceWithMocks(t)

	d.storage.EXPECT().DanglingReplies(gomock.Any()).Return([]models.ReplyLink{
		{ChildID: "r1", ParentID: "c1", ParentExists: true},
		{ChildID: "r9", ParentID: "gone"},
	}, nil)
	d.storage.EXPECT().AppendChild(gomock.Any(), "c1", "r1").Return(nil)
	d.storage.EXPECT().CommentByID(gomock.Any(), "r9").Return(comment("r9", "p-1", "gone"), nil)
	d.storage.EXPECT().RepliesOf(gomock.Any(), []string{"r9"}).Return(nil, nil)
	d.storage.EXPECT().DeleteBatch(gomock.Any(), []string{"r9"}).Return(int64(1), nil)

	rep, err := s.ReconcileReplies(context.Background())
	require.NoError(t, err)
	require.Equal(t, ReconcileReport{Relinked: 1, Removed: 1}, rep)
}
