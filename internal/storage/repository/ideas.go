package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/magabrotheeeer/sacola-ideias/internal/models"
)

const ideaColumns = `id, titulo, tag, ideia, usuario_id, data, created_at, updated_at`

// likeEscaper экранирует спецсимволы LIKE.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// maxDistance порог косинусного расстояния (similarity >= 0.3).
const maxDistance = 0.7

func scanIdea(row rowScanner) (*models.Idea, error) {
	var (
		idea models.Idea
		tag  sql.NullString
	)
	if err := row.Scan(&idea.ID, &idea.Title, &tag, &idea.Body, &idea.OwnerID,
		&idea.Date, &idea.CreatedAt, &idea.UpdatedAt); err != nil {
		return nil, err
	}
	idea.Tag = nullString(tag)
	return &idea, nil
}

// vectorArg преобразует эмбеддинг в параметр запроса; пустой эмбеддинг дает NULL.
func vectorArg(embedding []float32) any {
	if len(embedding) == 0 {
		return nil
	}
	return pgvector.NewVector(embedding)
}

// ListIdeas возвращает идеи пользователя, новые первыми.
func (s *Storage) ListIdeas(ctx context.Context, ownerID int) ([]models.Idea, error) {
	const op = "storage.ListIdeas"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+ideaColumns+`
		FROM ideias
		WHERE usuario_id = $1
		ORDER BY data DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Idea, 0)
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *idea)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetIdea возвращает идею, если она принадлежит пользователю.
func (s *Storage) GetIdea(ctx context.Context, ownerID, id int) (*models.Idea, error) {
	const op = "storage.GetIdea"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	idea, err := scanIdea(s.DB.QueryRowContext(ctx, `
		SELECT `+ideaColumns+`
		FROM ideias
		WHERE id = $1 AND usuario_id = $2`, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return idea, nil
}

// CreateIdea сохраняет идею. Владелец обязан быть положительным, иначе
// транзакция откатывается без вставки.
func (s *Storage) CreateIdea(ctx context.Context, idea models.Idea) (*models.Idea, error) {
	const op = "storage.CreateIdea"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var created *models.Idea
	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		if idea.OwnerID <= 0 {
			return ErrInvalidOwner
		}
		var err error
		created, err = scanIdea(tx.QueryRowContext(ctx, `
			INSERT INTO ideias (titulo, tag, ideia, embedding, usuario_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+ideaColumns,
			idea.Title, idea.Tag, idea.Body, vectorArg(idea.Embedding), idea.OwnerID))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created.Embedding = idea.Embedding
	return created, nil
}

// UpdateIdea сохраняет объединенные поля идеи. Если эмбеддинг не передан,
// сохраненный остается без изменений.
func (s *Storage) UpdateIdea(ctx context.Context, idea models.Idea) (*models.Idea, error) {
	const op = "storage.UpdateIdea"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	updated, err := scanIdea(s.DB.QueryRowContext(ctx, `
		UPDATE ideias
		SET titulo = $1,
		    tag = $2,
		    ideia = $3,
		    embedding = COALESCE($4, embedding),
		    updated_at = NOW()
		WHERE id = $5 AND usuario_id = $6
		RETURNING `+ideaColumns,
		idea.Title, idea.Tag, idea.Body, vectorArg(idea.Embedding), idea.ID, idea.OwnerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// SetIdeaEmbedding записывает эмбеддинг идеи пользователя.
func (s *Storage) SetIdeaEmbedding(ctx context.Context, ownerID, id int, embedding []float32) error {
	const op = "storage.SetIdeaEmbedding"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `
		UPDATE ideias
		SET embedding = $1, updated_at = NOW()
		WHERE id = $2 AND usuario_id = $3`,
		vectorArg(embedding), id, ownerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// DeleteIdea удаляет идею пользователя.
func (s *Storage) DeleteIdea(ctx context.Context, ownerID, id int) error {
	const op = "storage.DeleteIdea"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM ideias WHERE id = $1 AND usuario_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ListIdeasForBackfill возвращает идеи без эмбеддинга (или все при force), новые первыми.
func (s *Storage) ListIdeasForBackfill(ctx context.Context, ownerID, limit int, force bool) ([]models.Idea, error) {
	const op = "storage.ListIdeasForBackfill"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+ideaColumns+`
		FROM ideias
		WHERE usuario_id = $1 AND ($2 OR embedding IS NULL)
		ORDER BY data DESC
		LIMIT $3`, ownerID, force, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Idea
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *idea)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SearchIdeasByVector ищет ближайшие идеи пользователя по косинусному расстоянию.
// При strict учитываются только идеи с расстоянием не больше maxDistance.
// probes задает ivfflat.probes в пределах транзакции.
func (s *Storage) SearchIdeasByVector(ctx context.Context, ownerID int, embedding []float32, limit, probes int, strict bool) ([]models.SearchResult, error) {
	const op = "storage.SearchIdeasByVector"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	threshold := ""
	if strict {
		threshold = ` AND (embedding <=> $2) <= ` + strconv.FormatFloat(maxDistance, 'f', -1, 64)
	}
	query := `
		SELECT id, titulo, tag, ideia, data, 1 - (embedding <=> $2) AS similarity
		FROM ideias
		WHERE usuario_id = $1 AND embedding IS NOT NULL` + threshold + `
		ORDER BY embedding <=> $2
		LIMIT $3`

	var result []models.SearchResult
	err := s.withTx(ctx, &sql.TxOptions{ReadOnly: true}, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`SELECT set_config('ivfflat.probes', $1, true)`, strconv.Itoa(probes)); err != nil {
			return err
		}
		rows, err := tx.QueryContext(ctx, query, ownerID, pgvector.NewVector(embedding), limit)
		if err != nil {
			return err
		}
		defer func() {
			_ = rows.Close()
		}()
		result, err = scanSearchResults(rows)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SearchIdeasByText ищет подстроку без учета регистра в заголовке, теге и тексте идеи.
func (s *Storage) SearchIdeasByText(ctx context.Context, ownerID int, term string, limit int) ([]models.SearchResult, error) {
	const op = "storage.SearchIdeasByText"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, titulo, tag, ideia, data, 0.0::float8 AS similarity
		FROM ideias
		WHERE usuario_id = $1
		  AND (LOWER(titulo) LIKE $2 OR LOWER(COALESCE(tag, '')) LIKE $2 OR LOWER(ideia) LIKE $2)
		ORDER BY data DESC
		LIMIT $3`, ownerID, "%"+likeEscaper.Replace(strings.ToLower(term))+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result, err := scanSearchResults(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanSearchResults(rows *sql.Rows) ([]models.SearchResult, error) {
	var result []models.SearchResult
	for rows.Next() {
		var (
			r   models.SearchResult
			tag sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Title, &tag, &r.Body, &r.Date, &r.Similarity); err != nil {
			return nil, err
		}
		r.Tag = nullString(tag)
		result = append(result, r)
	}
	return result, rows.Err()
}
