// Package idea содержит бизнес-логику идей: CRUD в пределах владельца,
// генерацию эмбеддингов, поиск по уровням и пакетное заполнение эмбеддингов.
package idea

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/sacola-ideias/internal/cache"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
	"github.com/magabrotheeeer/sacola-ideias/internal/metrics"
	"github.com/magabrotheeeer/sacola-ideias/internal/models"
	"github.com/magabrotheeeer/sacola-ideias/internal/storage/repository"
)

// EmbeddingDimensions размерность столбца ideias.embedding.
const EmbeddingDimensions = 1536

// Параметры поиска и пакетного заполнения.
const (
	DefaultSearchLimit   = 10
	MaxSearchLimit       = 50
	DefaultProbes        = 15
	MaxProbes            = 200
	DefaultBackfillLimit = 50
	MaxBackfillLimit     = 200
)

// Уровни поиска.
const (
	TierTextNoProvider = "text_no_provider"
	TierVectorStrict   = "vector_strict"
	TierVectorRelaxed  = "vector_relaxed"
	TierTextFallback   = "text_fallback"
)

var (
	// ErrIdeaNotFound идея отсутствует или принадлежит другому пользователю.
	ErrIdeaNotFound = errors.New("idea not found")
	// ErrInvalidOwner владелец не является положительным целым.
	ErrInvalidOwner = errors.New("invalid owner id")
	// ErrProviderUnavailable провайдер эмбеддингов не настроен.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
	// ErrInvalidEmbedding размерность эмбеддинга не совпадает со столбцом.
	ErrInvalidEmbedding = errors.New("invalid embedding dimensions")
)

// Repository хранилище идей.
type Repository interface {
	ListIdeas(ctx context.Context, ownerID int) ([]models.Idea, error)
	GetIdea(ctx context.Context, ownerID, id int) (*models.Idea, error)
	CreateIdea(ctx context.Context, idea models.Idea) (*models.Idea, error)
	UpdateIdea(ctx context.Context, idea models.Idea) (*models.Idea, error)
	SetIdeaEmbedding(ctx context.Context, ownerID, id int, embedding []float32) error
	DeleteIdea(ctx context.Context, ownerID, id int) error
	ListIdeasForBackfill(ctx context.Context, ownerID, limit int, force bool) ([]models.Idea, error)
	SearchIdeasByVector(ctx context.Context, ownerID int, embedding []float32, limit, probes int, strict bool) ([]models.SearchResult, error)
	SearchIdeasByText(ctx context.Context, ownerID int, term string, limit int) ([]models.SearchResult, error)
}

// Embedder строит эмбеддинг текста.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingCache кэш эмбеддингов поисковых запросов.
type EmbeddingCache interface {
	GetEmbedding(ctx context.Context, key string) ([]float32, bool, error)
	SetEmbedding(ctx context.Context, key string, embedding []float32) error
}

// Service сервис идей.
type Service struct {
	repo     Repository
	embedder Embedder
	cache    EmbeddingCache
	model    string
	log      *slog.Logger
}

// New создает сервис. embedder и cache могут быть nil.
func New(repo Repository, embedder Embedder, cache EmbeddingCache, model string, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		embedder: embedder,
		cache:    cache,
		model:    model,
		log:      log,
	}
}

// HasProvider сообщает, настроен ли провайдер эмбеддингов.
func (s *Service) HasProvider() bool {
	return s.embedder != nil
}

func mapErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrIdeaNotFound)
	case errors.Is(err, repository.ErrInvalidOwner):
		return fmt.Errorf("%s: %w", op, ErrInvalidOwner)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func clamp(v *int, def, lo, hi int) int {
	if v == nil {
		return def
	}
	return min(max(*v, lo), hi)
}

// embedBestEffort возвращает nil, если провайдера нет или он ответил ошибкой.
func (s *Service) embedBestEffort(ctx context.Context, text string) []float32 {
	if s.embedder == nil {
		return nil
	}
	emb, err := s.embedder.Embed(ctx, text)
	if err != nil {
		s.log.Warn("embedding generation failed, storing without embedding", sl.Err(err))
		return nil
	}
	return emb
}

// List возвращает идеи пользователя, новые первыми.
func (s *Service) List(ctx context.Context, ownerID int) ([]models.Idea, error) {
	const op = "idea.List"
	ideas, err := s.repo.ListIdeas(ctx, ownerID)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return ideas, nil
}

// Get возвращает идею пользователя.
func (s *Service) Get(ctx context.Context, ownerID, id int) (*models.Idea, error) {
	const op = "idea.Get"
	idea, err := s.repo.GetIdea(ctx, ownerID, id)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return idea, nil
}

// Create сохраняет идею, пытаясь построить для нее эмбеддинг.
func (s *Service) Create(ctx context.Context, ownerID int, in models.IdeaInput) (*models.Idea, error) {
	const op = "idea.Create"
	if ownerID <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidOwner)
	}

	emb := s.embedBestEffort(ctx, models.EmbeddingText(in.Title, in.Tag, in.Body))
	created, err := s.repo.CreateIdea(ctx, models.Idea{
		Title:     in.Title,
		Tag:       in.Tag,
		Body:      in.Body,
		OwnerID:   ownerID,
		Embedding: emb,
	})
	if err != nil {
		return nil, mapErr(op, err)
	}
	return created, nil
}

// CreateWithEmbedding сохраняет идею с переданным эмбеддингом.
func (s *Service) CreateWithEmbedding(ctx context.Context, ownerID int, in models.IdeaInput, embedding []float32) (*models.Idea, error) {
	const op = "idea.CreateWithEmbedding"
	if ownerID <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidOwner)
	}
	if len(embedding) != EmbeddingDimensions {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmbedding)
	}

	created, err := s.repo.CreateIdea(ctx, models.Idea{
		Title:     in.Title,
		Tag:       in.Tag,
		Body:      in.Body,
		OwnerID:   ownerID,
		Embedding: embedding,
	})
	if err != nil {
		return nil, mapErr(op, err)
	}
	return created, nil
}

// Update накладывает переданные поля на идею. При наличии провайдера
// эмбеддинг пересчитывается по объединенному тексту.
func (s *Service) Update(ctx context.Context, ownerID, id int, patch models.IdeaPatch) (*models.Idea, error) {
	const op = "idea.Update"

	current, err := s.repo.GetIdea(ctx, ownerID, id)
	if err != nil {
		return nil, mapErr(op, err)
	}
	patch.Apply(current)
	current.Embedding = s.embedBestEffort(ctx, models.EmbeddingText(current.Title, current.Tag, current.Body))

	updated, err := s.repo.UpdateIdea(ctx, *current)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return updated, nil
}

// SetEmbedding заменяет эмбеддинг идеи пользователя.
func (s *Service) SetEmbedding(ctx context.Context, ownerID, id int, embedding []float32) error {
	const op = "idea.SetEmbedding"
	if len(embedding) != EmbeddingDimensions {
		return fmt.Errorf("%s: %w", op, ErrInvalidEmbedding)
	}
	if err := s.repo.SetIdeaEmbedding(ctx, ownerID, id, embedding); err != nil {
		return mapErr(op, err)
	}
	return nil
}

// Delete удаляет идею пользователя.
func (s *Service) Delete(ctx context.Context, ownerID, id int) error {
	const op = "idea.Delete"
	if err := s.repo.DeleteIdea(ctx, ownerID, id); err != nil {
		return mapErr(op, err)
	}
	return nil
}

// Search ищет идеи пользователя. Уровни проверяются по порядку, побеждает
// первый непустой: текст без провайдера, вектор с порогом, вектор без порога,
// текстовый запасной вариант.
func (s *Service) Search(ctx context.Context, ownerID int, req models.SearchRequest) ([]models.SearchResult, string, error) {
	const op = "idea.Search"

	term := strings.TrimSpace(req.Term)
	limit := clamp(req.Limit, DefaultSearchLimit, 1, MaxSearchLimit)
	probes := clamp(req.Probes, DefaultProbes, 1, MaxProbes)

	if s.embedder == nil {
		res, err := s.repo.SearchIdeasByText(ctx, ownerID, term, limit)
		if err != nil {
			return nil, "", mapErr(op, err)
		}
		return s.done(res, TierTextNoProvider)
	}

	emb, err := s.queryEmbedding(ctx, term)
	if err != nil {
		s.log.Warn("query embedding failed, falling back to text search", sl.Err(err))
	} else {
		for _, strict := range []bool{true, false} {
			res, err := s.repo.SearchIdeasByVector(ctx, ownerID, emb, limit, probes, strict)
			if err != nil {
				return nil, "", mapErr(op, err)
			}
			if len(res) > 0 {
				tier := TierVectorRelaxed
				if strict {
					tier = TierVectorStrict
				}
				return s.done(res, tier)
			}
		}
	}

	res, err := s.repo.SearchIdeasByText(ctx, ownerID, term, limit)
	if err != nil {
		return nil, "", mapErr(op, err)
	}
	return s.done(res, TierTextFallback)
}

func (s *Service) done(res []models.SearchResult, tier string) ([]models.SearchResult, string, error) {
	metrics.SearchTier(tier)
	if res == nil {
		res = make([]models.SearchResult, 0)
	}
	return res, tier, nil
}

// queryEmbedding берет эмбеддинг запроса из кэша или у провайдера.
// Ошибки кэша не прерывают поиск.
func (s *Service) queryEmbedding(ctx context.Context, term string) ([]float32, error) {
	var key string
	if s.cache != nil {
		key = cache.Key(s.model, term)
		emb, found, err := s.cache.GetEmbedding(ctx, key)
		if err != nil {
			s.log.Warn("embedding cache read failed", sl.Err(err))
		}
		metrics.EmbeddingCache(found)
		if found {
			return emb, nil
		}
	}

	emb, err := s.embedder.Embed(ctx, term)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetEmbedding(ctx, key, emb); err != nil {
			s.log.Warn("embedding cache write failed", sl.Err(err))
		}
	}
	return emb, nil
}

// Backfill строит эмбеддинги для идей без них (или для всех при Force).
// Ошибки отдельных идей учитываются как пропуски.
func (s *Service) Backfill(ctx context.Context, ownerID int, req models.BackfillRequest) (*models.BackfillResult, error) {
	const op = "idea.Backfill"
	if s.embedder == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrProviderUnavailable)
	}

	limit := clamp(req.Limit, DefaultBackfillLimit, 1, MaxBackfillLimit)
	ideas, err := s.repo.ListIdeasForBackfill(ctx, ownerID, limit, req.Force)
	if err != nil {
		return nil, mapErr(op, err)
	}

	result := &models.BackfillResult{Total: len(ideas), IDs: make([]int, 0, len(ideas))}
	for _, idea := range ideas {
		emb, err := s.embedder.Embed(ctx, models.EmbeddingText(idea.Title, idea.Tag, idea.Body))
		if err != nil {
			s.log.Warn("backfill embedding failed", slog.Int("idea_id", idea.ID), sl.Err(err))
			result.Skipped++
			continue
		}
		if err = s.repo.SetIdeaEmbedding(ctx, ownerID, idea.ID, emb); err != nil {
			s.log.Warn("backfill update failed", slog.Int("idea_id", idea.ID), sl.Err(err))
			result.Skipped++
			continue
		}
		result.Updated++
		result.IDs = append(result.IDs, idea.ID)
	}
	return result, nil
}
