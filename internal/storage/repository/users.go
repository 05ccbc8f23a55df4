package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/sacola-ideias/internal/models"
)

const userColumns = `id, email, senha_hash, nome, foto_url, google_id, metodo_auth, role, ativo, criado_em`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                           models.User
		hash, name, photo, googleID sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Email, &hash, &name, &photo, &googleID,
		&u.AuthMethod, &u.Role, &u.Active, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.PasswordHash = hash.String
	u.Name = nullString(name)
	u.PhotoURL = nullString(photo)
	u.GoogleID = nullString(googleID)
	return &u, nil
}

// CreateUserWithTrial сохраняет пользователя и его пробную подписку в одной транзакции.
func (s *Storage) CreateUserWithTrial(ctx context.Context, user models.User, trial models.Subscription) (*models.User, error) {
	const op = "storage.CreateUserWithTrial"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var created *models.User
	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		var err error
		created, err = scanUser(tx.QueryRowContext(ctx, `
			INSERT INTO usuarios (email, senha_hash, nome, foto_url, google_id, metodo_auth, role)
			VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7)
			RETURNING `+userColumns,
			user.Email, user.PasswordHash, user.Name, user.PhotoURL, user.GoogleID, user.AuthMethod, user.Role))
		if err != nil {
			return err
		}
		trial.UserID = created.ID
		return insertSubscription(ctx, tx, trial)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM usuarios WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (s *Storage) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	const op = "storage.GetUserByID"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM usuarios WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdatePassword заменяет хэш пароля пользователя.
func (s *Storage) UpdatePassword(ctx context.Context, userID int, hash string) error {
	const op = "storage.UpdatePassword"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE usuarios SET senha_hash = $1, atualizado_em = NOW() WHERE id = $2`, hash, userID)
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

// UpsertGoogleUser находит пользователя по google_id или email и привязывает к нему
// аккаунт Google, либо создает нового пользователя без пароля. Если у пользователя
// нет подписки в активном статусе, создается пробная.
func (s *Storage) UpsertGoogleUser(ctx context.Context, identity models.GoogleIdentity, trial models.Subscription) (*models.User, error) {
	const op = "storage.UpsertGoogleUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var result *models.User
	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		existing, err := scanUser(tx.QueryRowContext(ctx, `
			SELECT `+userColumns+` FROM usuarios
			WHERE google_id = $1 OR email = $2
			ORDER BY id
			LIMIT 1
			FOR UPDATE`, identity.ID, identity.Email))
		switch {
		case errors.Is(err, sql.ErrNoRows):
			result, err = scanUser(tx.QueryRowContext(ctx, `
				INSERT INTO usuarios (email, nome, foto_url, google_id, metodo_auth, role)
				VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6)
				RETURNING `+userColumns,
				identity.Email, identity.Name, identity.Picture, identity.ID,
				models.AuthMethodGoogle, models.RoleUser))
			if err != nil {
				return err
			}
			trial.UserID = result.ID
			return insertSubscription(ctx, tx, trial)
		case err != nil:
			return err
		}

		result, err = scanUser(tx.QueryRowContext(ctx, `
			UPDATE usuarios
			SET google_id = $1,
			    nome = COALESCE(NULLIF($2, ''), nome),
			    foto_url = COALESCE(NULLIF($3, ''), foto_url),
			    metodo_auth = $4,
			    atualizado_em = NOW()
			WHERE id = $5
			RETURNING `+userColumns,
			identity.ID, identity.Name, identity.Picture, models.AuthMethodGoogle, existing.ID))
		if err != nil {
			return err
		}

		var hasActive bool
		if err = tx.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM assinaturas
				WHERE usuario_id = $1 AND LOWER(status) IN ('ativa', 'trial', 'active', 'trialing')
			)`, result.ID).Scan(&hasActive); err != nil {
			return err
		}
		if hasActive {
			return nil
		}
		trial.UserID = result.ID
		return insertSubscription(ctx, tx, trial)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
