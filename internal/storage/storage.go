//go:generate mockgen -source=storage.go -destination=../../mocks/storage.go -package=mocks

// storage определяет контракты доступа к данным comments-service.
package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/blog-comments/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrParentNotFound — указан parent_id, но родитель не найден (или исчез до связывания).
	ErrParentNotFound = errors.New("parent not found")
	// ErrForbidden — правка чужого комментария.
	ErrForbidden = errors.New("forbidden")
	// ErrPostNotFound — пост с таким slug не найден.
	ErrPostNotFound = errors.New("post not found")
	// ErrLinkDeferred — комментарий вставлен, но обратная ссылка у родителя не записана
	// (не по причине отсутствия родителя). Восстанавливается через DanglingReplies.
	ErrLinkDeferred = errors.New("parent link deferred")
)

// Storage описывает операции над комментариями.
// Каждая запись — единица взаимного исключения: read-modify-write одной записи
// (правка, голос, изменение ChildIDs) реализация обязана сериализовать.
type Storage interface {
	// CreateComment вставляет комментарий и, если задан ParentID, дописывает его ID
	// в ChildIDs родителя. Если родитель исчез до связывания — вставка откатывается
	// и возвращается ErrParentNotFound. Если связывание не удалось по иной причине —
	// возвращается созданный комментарий вместе с ErrLinkDeferred.
	// Вычисляемые хранилищем поля: ID, ChildIDs, LikedBy, DislikedBy, CreatedAt, UpdatedAt.
	CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error)

	// CommentByID возвращает комментарий по идентификатору.
	// Если запись не найдена — ErrNotFound.
	CommentByID(ctx context.Context, id string) (*models.Comment, error)

	// CommentsByIDs возвращает найденные комментарии; отсутствующие id пропускаются.
	// Порядок результата не определён.
	CommentsByIDs(ctx context.Context, ids []string) ([]models.Comment, error)

	// TopLevelByPost возвращает все корневые комментарии поста.
	// Сортировка: created_at DESC, id DESC.
	TopLevelByPost(ctx context.Context, postID string) ([]models.Comment, error)

	// RepliesOf возвращает комментарии, у которых parent_id входит в parentIDs
	// (по полю parent_id, а не по ChildIDs родителя).
	RepliesOf(ctx context.Context, parentIDs []string) ([]models.Comment, error)

	// UpdateContent меняет текст и updated_at, если author совпадает с автором.
	// Ошибки: ErrNotFound, ErrForbidden.
	UpdateContent(ctx context.Context, id, author, content string) (*models.Comment, error)

	// ToggleVote атомарно переключает голос voterID в направлении dir:
	// уже есть в целевом множестве — убрать; иначе добавить и убрать из противоположного.
	// Если запись не найдена — ErrNotFound.
	ToggleVote(ctx context.Context, id, voterID string, dir models.VoteDirection) (*models.Comment, error)

	// DeleteBatch удаляет записи по списку id и возвращает число удалённых.
	// Отсутствующие id ошибкой не являются.
	DeleteBatch(ctx context.Context, ids []string) (int64, error)

	// AppendChild добавляет childID в ChildIDs родителя (без дублей).
	// Если родителя нет — ErrNotFound.
	AppendChild(ctx context.Context, parentID, childID string) error

	// RemoveChild убирает childID из ChildIDs родителя. Отсутствие родителя — не ошибка.
	RemoveChild(ctx context.Context, parentID, childID string) error

	// DanglingReplies возвращает ответы, которых нет в ChildIDs родителя
	// (потерянная индексная запись или осиротевший ответ).
	DanglingReplies(ctx context.Context) ([]models.ReplyLink, error)

	// Close закрывает соединения/ресурсы хранилища.
	Close(ctx context.Context) error
}

// PostFinder — поиск поста по slug во внешнем блог-хранилище.
type PostFinder interface {
	// PostBySlug возвращает пост или ErrPostNotFound.
	PostBySlug(ctx context.Context, slug string) (*models.Post, error)
}
