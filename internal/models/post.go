package models

// Post — проекция поста блога, которой владеет внешний блог-сервис.
// Комментариям нужен только ID; Slug/Title — для логов и ответов API.
type Post struct {
	ID    string
	Slug  string
	Title string
}
