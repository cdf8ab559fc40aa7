package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/pribylovaa/blog-comments/internal/markup"
	"github.com/pribylovaa/blog-comments/internal/models"
	"github.com/pribylovaa/blog-comments/internal/service"
	"github.com/pribylovaa/blog-comments/internal/transport/http/apierrors"
	"github.com/pribylovaa/blog-comments/internal/verify"
)

// maxBodyBytes — предел размера JSON-тела запроса.
const maxBodyBytes = 1 << 20

// Comments — операции сервиса, используемые HTTP-слоем (реализуется *service.Service).
type Comments interface {
	Insert(ctx context.Context, in service.InsertInput) (*models.Comment, int, error)
	Thread(ctx context.Context, postSlug string) ([]*models.ThreadNode, error)
	CommentByID(ctx context.Context, id string) (*models.Comment, error)
	EditComment(ctx context.Context, id, author, content string) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
	LikeComment(ctx context.Context, id, voterID string) (*models.Comment, error)
	DislikeComment(ctx context.Context, id, voterID string) (*models.Comment, error)
}

// Handlers агрегирует зависимости HTTP-хендлеров.
type Handlers struct {
	comments Comments
	markup   *markup.Renderer
}

func New(c Comments, r *markup.Renderer) *Handlers {
	if r == nil {
		r = markup.New()
	}

	return &Handlers{comments: c, markup: r}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля и лишние данные после объекта.
func decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("%w: %w", apierrors.ErrMalformedRequest, err)
	}

	if dec.More() {
		return fmt.Errorf("%w: trailing data", apierrors.ErrMalformedRequest)
	}

	return nil
}

// withRemoteIP кладёт адрес клиента в контекст для проверки «человек/бот».
func withRemoteIP(r *http.Request) context.Context {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	return verify.WithRemoteIP(r.Context(), host)
}
