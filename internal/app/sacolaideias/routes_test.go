package sacolaideias

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/sacola-ideias/internal/config"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/jwt"
	"github.com/magabrotheeeer/sacola-ideias/internal/models"
	authservice "github.com/magabrotheeeer/sacola-ideias/internal/services/auth"
	ideaservice "github.com/magabrotheeeer/sacola-ideias/internal/services/idea"
	reminderservice "github.com/magabrotheeeer/sacola-ideias/internal/services/reminder"
	"github.com/magabrotheeeer/sacola-ideias/internal/storage/repository"
)

// memoryUsers хранилище пользователей и подписок в памяти.
type memoryUsers struct {
	mu    sync.Mutex
	users map[int]*models.User
	subs  map[int]*models.Subscription
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[int]*models.User{}, subs: map[int]*models.Subscription{}}
}

func (m *memoryUsers) CreateUserWithTrial(_ context.Context, user models.User, trial models.Subscription) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return nil, repository.ErrEmailExists
		}
	}
	user.ID = len(m.users) + 1
	user.Active = true
	m.users[user.ID] = &user
	trial.UserID = user.ID
	m.subs[user.ID] = &trial
	return &user, nil
}

func (m *memoryUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryUsers) GetUserByID(_ context.Context, id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) UpdatePassword(_ context.Context, userID int, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID].PasswordHash = hash
	return nil
}

func (m *memoryUsers) UpsertGoogleUser(context.Context, models.GoogleIdentity, models.Subscription) (*models.User, error) {
	return nil, repository.ErrNotFound
}

func (m *memoryUsers) GetLatestSubscription(_ context.Context, userID int) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memoryUsers) expireTrial(userID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	past := time.Now().Add(-time.Hour)
	m.subs[userID].TrialExpiresAt = &past
}

// ideaRepo отдает пустой список; остальные методы в этих сценариях не вызываются.
type ideaRepo struct {
	ideaservice.Repository
}

func (ideaRepo) ListIdeas(context.Context, int) ([]models.Idea, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) (http.Handler, *memoryUsers) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := newMemoryUsers()
	plans := config.Plans{FreeSearchLimit: 10, FreeEmbeddingLimit: 10, TrialDays: 3}
	maker := jwt.NewJWTMaker("test-secret", time.Hour)

	r := chi.NewRouter()
	RegisterRoutes(r, logger, Services{
		Auth:          authservice.New(users, maker, nil, plans),
		Ideas:         ideaservice.New(ideaRepo{}, nil, nil, "", logger),
		Reminder:      reminderservice.New(nil, logger),
		Tokens:        maker,
		Subscriptions: users,
		TrialWindow:   plans.TrialWindow(),
		FrontendURL:   "http://localhost:5173",
	})
	return r, users
}

func do(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_TrialLifecycle(t *testing.T) {
	h, users := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/auth/register", `{"email":"ana@example.com","senha":"segredo1","nome":"Ana"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/auth/login", `{"email":"ana@example.com","senha":"segredo1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		Data models.UserResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	token := login.Data.Token
	require.NotEmpty(t, token)

	rec = do(t, h, http.MethodGet, "/api/auth/me", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"trial_ativo":true`)

	rec = do(t, h, http.MethodGet, "/api/ideias", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)

	users.expireTrial(login.Data.ID)

	rec = do(t, h, http.MethodGet, "/api/ideias", "", token)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, rec.Body.String(), "Trial expirado")

	// профиль доступен и после окончания пробного периода
	rec = do(t, h, http.MethodGet, "/api/auth/me", "", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"trial_ativo":false`)
}

func TestRoutes_Public(t *testing.T) {
	h, _ := newTestRouter(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		token    string
		wantCode int
		wantBody string
	}{
		{name: "статус сервиса", method: http.MethodGet, path: "/", wantCode: http.StatusOK, wantBody: `"status":"online"`},
		{name: "список идей без токена", method: http.MethodGet, path: "/api/ideias", wantCode: http.StatusUnauthorized, wantBody: "Token de autenticação não fornecido"},
		{name: "битый токен", method: http.MethodGet, path: "/api/auth/me", token: "garbage", wantCode: http.StatusUnauthorized, wantBody: "Token inválido ou expirado"},
		{name: "google не настроен", method: http.MethodGet, path: "/api/auth/google/login", wantCode: http.StatusServiceUnavailable},
		{name: "подсказки без провайдера", method: http.MethodPost, path: "/api/lembrancas/sugerir", body: `{"texto":"pagar conta"}`, wantCode: http.StatusOK, wantBody: `"sugestoes":[]`},
		{name: "метрики", method: http.MethodGet, path: "/metrics", wantCode: http.StatusOK, wantBody: "sacola_http_requests_total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body, tt.token)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRoutes_CORS(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/ideias", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
