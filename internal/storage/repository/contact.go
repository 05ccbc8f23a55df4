package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/sacola-ideias/internal/models"
)

// CreateContactMessage сохраняет сообщение обратной связи и возвращает его с id и датой.
func (s *Storage) CreateContactMessage(ctx context.Context, msg models.ContactMessage) (*models.ContactMessage, error) {
	const op = "storage.CreateContactMessage"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO contato (usuario_id, nome, email, assunto, mensagem, email_destino, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, criado_em`,
			msg.UserID, msg.Name, msg.Email, msg.Subject, msg.Message, msg.Destination, msg.Status,
		).Scan(&msg.ID, &msg.CreatedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &msg, nil
}

// UpdateContactStatus меняет статус сообщения обратной связи.
func (s *Storage) UpdateContactStatus(ctx context.Context, id int, status string) error {
	const op = "storage.UpdateContactStatus"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE contato SET status = $1 WHERE id = $2`, status, id)
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
