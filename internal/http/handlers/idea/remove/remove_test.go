package remove

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
	ideaservice "github.com/magabrotheeeer/sacola-ideias/internal/services/idea"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Delete(ctx context.Context, ownerID, id int) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное удаление",
			id:   "12",
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, 3, 12).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"message":"Ideia deletada com sucesso"`,
		},
		{
			name:           "отрицательный id",
			id:             "-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"ID inválido"`,
		},
		{
			name: "идея не найдена",
			id:   "13",
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, 3, 13).Return(ideaservice.ErrIdeaNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"Ideia não encontrada"`,
		},
		{
			name: "ошибка хранилища",
			id:   "14",
			setupMock: func(m *MockService) {
				m.On("Delete", mock.Anything, 3, 14).Return(errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"Erro ao deletar ideia"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodDelete, "/api/ideias/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithClaims(ctx, &jwt.Claims{UserID: 3}))
			w := httptest.NewRecorder()

			New(logger, mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
