package models

import "time"

// Idea строка таблицы ideias. Embedding отсутствует, пока не сгенерирован.
type Idea struct {
	ID        int       `json:"id"`
	Title     string    `json:"titulo"`
	Tag       *string   `json:"tag"`
	Body      string    `json:"ideia"`
	OwnerID   int       `json:"-"`
	Embedding []float32 `json:"-"`
	Date      time.Time `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IdeaInput тело запроса на создание идеи.
type IdeaInput struct {
	Title string  `json:"titulo" validate:"required"`
	Tag   *string `json:"tag,omitempty"`
	Body  string  `json:"ideia" validate:"required"`
}

// IdeaPatch тело запроса на обновление. Пропущенные поля сохраняют прежние значения.
type IdeaPatch struct {
	Title *string `json:"titulo,omitempty"`
	Tag   *string `json:"tag,omitempty"`
	Body  *string `json:"ideia,omitempty"`
}

// Apply накладывает изменения поверх существующей идеи.
func (p IdeaPatch) Apply(idea *Idea) {
	if p.Title != nil {
		idea.Title = *p.Title
	}
	if p.Tag != nil {
		idea.Tag = p.Tag
	}
	if p.Body != nil {
		idea.Body = *p.Body
	}
}

// EmbeddingText текст, из которого строится эмбеддинг идеи.
func EmbeddingText(title string, tag *string, body string) string {
	t := ""
	if tag != nil {
		t = *tag
	}
	return title + " " + t + " " + body
}

// SearchResult элемент ответа поиска.
type SearchResult struct {
	ID         int       `json:"id"`
	Title      string    `json:"titulo"`
	Tag        *string   `json:"tag"`
	Body       string    `json:"ideia"`
	Date       time.Time `json:"data"`
	Similarity float64   `json:"similarity"`
}

// BackfillResult итог пакетного заполнения эмбеддингов.
type BackfillResult struct {
	Total   int   `json:"total"`
	Updated int   `json:"updated"`
	Skipped int   `json:"skipped"`
	IDs     []int `json:"ids"`
}

// SearchRequest тело запроса поиска.
type SearchRequest struct {
	Term   string `json:"termo" validate:"required"`
	Limit  *int   `json:"limite,omitempty"`
	Probes *int   `json:"probes,omitempty"`
}

// BackfillRequest тело запроса пакетного заполнения эмбеддингов.
type BackfillRequest struct {
	Limit *int `json:"limite,omitempty"`
	Force bool `json:"forcar"`
}

// IdeaWithEmbedding идея с заранее вычисленным эмбеддингом.
type IdeaWithEmbedding struct {
	Idea      IdeaInput `json:"ideia" validate:"required"`
	Embedding []float32 `json:"embedding" validate:"required"`
}

// EmbeddingInput тело запроса на замену эмбеддинга.
type EmbeddingInput struct {
	Embedding []float32 `json:"embedding" validate:"required"`
}
