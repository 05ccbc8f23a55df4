package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/sacola-ideias/internal/http/middlewarectx"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/jwt"
	"github.com/magabrotheeeer/sacola-ideias/internal/models"
	ideaservice "github.com/magabrotheeeer/sacola-ideias/internal/services/idea"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, ownerID, id int, patch models.IdeaPatch) (*models.Idea, error) {
	args := m.Called(ctx, ownerID, id, patch)
	resp, _ := args.Get(0).(*models.Idea)
	return resp, args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	title := "Novo"

	tests := []struct {
		name           string
		id             string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "обновлен только заголовок",
			id:   "5",
			body: `{"titulo":"Novo"}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, 1, 5, models.IdeaPatch{Title: &title}).
					Return(&models.Idea{ID: 5, Title: "Novo", Body: "antigo"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"titulo":"Novo"`,
		},
		{
			name:           "некорректный id",
			id:             "x",
			body:           `{}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `ID inválido`,
		},
		{
			name:           "битое тело",
			id:             "5",
			body:           `titulo`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `Corpo da requisição inválido`,
		},
		{
			name: "идея не найдена",
			id:   "6",
			body: `{}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, 1, 6, models.IdeaPatch{}).Return(nil, ideaservice.ErrIdeaNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `Ideia não encontrada`,
		},
		{
			name: "ошибка хранилища",
			id:   "7",
			body: `{}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, 1, 7, models.IdeaPatch{}).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `Erro ao atualizar ideia`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPut, "/api/ideias/"+tt.id, strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithClaims(ctx, &jwt.Claims{UserID: 1}))
			w := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
