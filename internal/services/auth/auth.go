// Package auth содержит логику регистрации, входа по паролю и через Google,
// профиля пользователя и смены пароля.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/sacola-ideias/internal/config"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/entitlement"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/jwt"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/password"
	"github.com/magabrotheeeer/sacola-ideias/internal/models"
	"github.com/magabrotheeeer/sacola-ideias/internal/storage/repository"
)

var (
	// ErrEmailTaken email уже зарегистрирован.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials неизвестный email, неактивный аккаунт или неверный пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWrongPassword неверный текущий пароль при смене.
	ErrWrongPassword = errors.New("current password is wrong")
	// ErrOAuthOnlyAccount у аккаунта нет пароля.
	ErrOAuthOnlyAccount = errors.New("account has no password")
	// ErrWeakPassword новый пароль не проходит проверку.
	ErrWeakPassword = errors.New("password too weak")
	// ErrGoogleDisabled вход через Google не настроен.
	ErrGoogleDisabled = errors.New("google sign-in is not configured")
	// ErrGoogleAuthFailed Google не подтвердил код авторизации.
	ErrGoogleAuthFailed = errors.New("google authentication failed")
	// ErrUserNotFound пользователь из токена не найден.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository хранилище пользователей и подписок.
type UserRepository interface {
	CreateUserWithTrial(ctx context.Context, user models.User, trial models.Subscription) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int, hash string) error
	UpsertGoogleUser(ctx context.Context, identity models.GoogleIdentity, trial models.Subscription) (*models.User, error)
	GetLatestSubscription(ctx context.Context, userID int) (*models.Subscription, error)
}

// GoogleClient OAuth-клиент Google.
type GoogleClient interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code, redirectURI string) (*models.GoogleIdentity, error)
}

// Service сервис аутентификации.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	google   GoogleClient
	plans    config.Plans
	now      func() time.Time
}

// New создает сервис. google может быть nil, тогда вход через Google отключен.
func New(users UserRepository, jwtMaker jwt.Maker, google GoogleClient, plans config.Plans) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		google:   google,
		plans:    plans,
		now:      time.Now,
	}
}

// trialSubscription пробная подписка free с лимитами из конфигурации.
func (s *Service) trialSubscription() models.Subscription {
	exp := s.now().UTC().Add(s.plans.TrialWindow())
	return models.Subscription{
		Plan:           models.PlanFree,
		Status:         models.StatusTrial,
		SearchLimit:    s.plans.FreeSearchLimit,
		EmbeddingLimit: s.plans.FreeEmbeddingLimit,
		TrialExpiresAt: &exp,
	}
}

func (s *Service) issue(op string, u *models.User) (*models.UserResponse, error) {
	token, err := s.jwtMaker.GenerateToken(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	resp := models.NewUserResponse(u, token)
	return &resp, nil
}

// Register создает пользователя с паролем и пробной подпиской.
func (s *Service) Register(ctx context.Context, email, rawPassword string, name *string) (*models.UserResponse, error) {
	const op = "auth.Register"

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if name != nil && strings.TrimSpace(*name) == "" {
		name = nil
	}

	user, err := s.users.CreateUserWithTrial(ctx, models.User{
		Email:        strings.TrimSpace(email),
		PasswordHash: hashed,
		Name:         name,
		AuthMethod:   models.AuthMethodEmail,
		Role:         models.RoleUser,
	}, s.trialSubscription())
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.issue(op, user)
}

// Login проверяет email и пароль. Любая причина отказа дает ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*models.UserResponse, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.Active {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err = password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	return s.issue(op, user)
}

// GoogleEnabled сообщает, настроен ли вход через Google.
func (s *Service) GoogleEnabled() bool {
	return s.google != nil
}

// GoogleLoginURL адрес страницы согласия Google.
func (s *Service) GoogleLoginURL() (string, error) {
	const op = "auth.GoogleLoginURL"
	if s.google == nil {
		return "", fmt.Errorf("%s: %w", op, ErrGoogleDisabled)
	}
	return s.google.AuthURL(uuid.NewString()), nil
}

// GoogleSignIn меняет код Google на профиль, находит или создает пользователя и выпускает токен.
func (s *Service) GoogleSignIn(ctx context.Context, code, redirectURI string) (*models.UserResponse, error) {
	const op = "auth.GoogleSignIn"
	if s.google == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrGoogleDisabled)
	}

	identity, err := s.google.Exchange(ctx, code, redirectURI)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrGoogleAuthFailed, err)
	}
	if identity == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrGoogleAuthFailed)
	}

	user, err := s.users.UpsertGoogleUser(ctx, *identity, s.trialSubscription())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.issue(op, user)
}

// Me собирает профиль пользователя с последней подпиской.
func (s *Service) Me(ctx context.Context, userID int) (*models.Profile, error) {
	const op = "auth.Me"

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	profile := &models.Profile{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		PhotoURL:   user.PhotoURL,
		AuthMethod: user.AuthMethod,
		Role:       user.Role,
	}

	sub, err := s.users.GetLatestSubscription(ctx, userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return profile, nil
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	profile.Plan = &sub.Plan
	profile.Status = &sub.Status
	profile.SearchLimit = &sub.SearchLimit
	profile.EmbeddingLimit = &sub.EmbeddingLimit
	if exp := entitlement.TrialExpiry(sub, s.plans.TrialWindow()); exp != nil {
		utc := exp.UTC()
		profile.TrialExpiresAt = &utc
		profile.TrialActive = strings.EqualFold(sub.Plan, models.PlanFree) && exp.After(s.now())
	}
	return profile, nil
}

// ChangePassword меняет пароль после проверки текущего.
func (s *Service) ChangePassword(ctx context.Context, userID int, current, next string) error {
	const op = "auth.ChangePassword"

	if err := password.Validate(next); err != nil {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.PasswordHash == "" {
		return fmt.Errorf("%s: %w", op, ErrOAuthOnlyAccount)
	}
	if err = password.CompareHash(user.PasswordHash, current); err != nil {
		return fmt.Errorf("%s: %w", op, ErrWrongPassword)
	}

	hashed, err := password.GetHash(next)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.users.UpdatePassword(ctx, userID, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
