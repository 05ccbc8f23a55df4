// Package models содержит типизированные записи, которые собираются
// из результатов запросов на границе хранилища.
package models

import "time"

// Способы аутентификации пользователя.
const (
	AuthMethodEmail  = "email"
	AuthMethodGoogle = "google"
)

// Роли пользователя.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// User строка таблицы usuarios.
type User struct {
	ID           int
	Email        string
	PasswordHash string // пусто для аккаунтов только с OAuth
	Name         *string
	PhotoURL     *string
	GoogleID     *string
	AuthMethod   string
	Role         string
	Active       bool
	CreatedAt    time.Time
}

// GoogleIdentity данные пользователя, полученные от Google.
type GoogleIdentity struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// UserResponse ответ на регистрацию, вход и OAuth.
type UserResponse struct {
	ID         int     `json:"id"`
	Email      string  `json:"email"`
	Name       *string `json:"nome"`
	PhotoURL   *string `json:"foto_url"`
	AuthMethod string  `json:"metodo_auth"`
	Role       string  `json:"role"`
	Token      string  `json:"token"`
}

// NewUserResponse собирает ответ из пользователя и выпущенного токена.
func NewUserResponse(u *User, token string) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		PhotoURL:   u.PhotoURL,
		AuthMethod: u.AuthMethod,
		Role:       u.Role,
		Token:      token,
	}
}

// Profile ответ GET /api/auth/me.
type Profile struct {
	ID             int        `json:"id"`
	Email          string     `json:"email"`
	Name           *string    `json:"nome"`
	PhotoURL       *string    `json:"foto_url"`
	AuthMethod     string     `json:"metodo_auth"`
	Role           string     `json:"role"`
	Plan           *string    `json:"plano"`
	Status         *string    `json:"status"`
	SearchLimit    *int       `json:"limite_buscas"`
	EmbeddingLimit *int       `json:"limite_embeddings"`
	TrialExpiresAt *time.Time `json:"trial_expira_em"`
	TrialActive    bool       `json:"trial_ativo"`
}
