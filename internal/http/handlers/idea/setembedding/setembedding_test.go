package setembedding

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
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

func (m *MockService) SetEmbedding(ctx context.Context, ownerID, id int, embedding []float32) error {
	return m.Called(ctx, ownerID, id, embedding).Error(0)
}

func TestSetEmbeddingHandler(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "эмбеддинг заменен",
			id:   "3",
			body: `{"embedding":[1,2]}`,
			setupMock: func(m *MockService) {
				m.On("SetEmbedding", mock.Anything, 9, 3, []float32{1, 2}).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `Embedding atualizado com sucesso`,
		},
		{
			name: "неверная размерность",
			id:   "3",
			body: `{"embedding":[1]}`,
			setupMock: func(m *MockService) {
				m.On("SetEmbedding", mock.Anything, 9, 3, []float32{1}).Return(ideaservice.ErrInvalidEmbedding)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `Embedding inválido`,
		},
		{
			name: "чужая идея",
			id:   "4",
			body: `{"embedding":[1,2]}`,
			setupMock: func(m *MockService) {
				m.On("SetEmbedding", mock.Anything, 9, 4, []float32{1, 2}).Return(ideaservice.ErrIdeaNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `Ideia não encontrada`,
		},
		{
			name:           "нет поля embedding",
			id:             "3",
			body:           `{}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `campo embedding é obrigatório`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPut, "/api/ideias/"+tt.id+"/embedding", strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithClaims(ctx, &jwt.Claims{UserID: 9}))
			w := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
