package googlecallback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/sacola-ideias/internal/models"
	"github.com/magabrotheeeer/sacola-ideias/internal/services/auth"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) GoogleSignIn(ctx context.Context, code, redirectURI string) (*models.UserResponse, error) {
	args := m.Called(ctx, code, redirectURI)
	resp, _ := args.Get(0).(*models.UserResponse)
	return resp, args.Error(1)
}

func newHandler(svc Service) *Handler {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, "http://front/")
}

func TestCallbackPost(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockResp       *models.UserResponse
		mockErr        error
		wantStatusCode int
	}{
		{name: "success", body: `{"code":"c1","redirect_uri":"http://front/cb"}`, mockResp: &models.UserResponse{ID: 1, Token: "tok"}, wantStatusCode: http.StatusOK},
		{name: "missing code", body: `{}`, wantStatusCode: http.StatusBadRequest},
		{name: "rejected code", body: `{"code":"c1","redirect_uri":"http://front/cb"}`, mockErr: fmt.Errorf("x: %w", auth.ErrGoogleAuthFailed), wantStatusCode: http.StatusUnauthorized},
		{name: "disabled", body: `{"code":"c1","redirect_uri":"http://front/cb"}`, mockErr: auth.ErrGoogleDisabled, wantStatusCode: http.StatusServiceUnavailable},
		{name: "storage failure", body: `{"code":"c1","redirect_uri":"http://front/cb"}`, mockErr: errors.New("db down"), wantStatusCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.mockResp != nil || tt.mockErr != nil {
				svc.On("GoogleSignIn", mock.Anything, "c1", "http://front/cb").Return(tt.mockResp, tt.mockErr).Once()
			}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/auth/google/callback", bytes.NewBufferString(tt.body))

			newHandler(svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestCallbackRedirect(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		mockResp     *models.UserResponse
		mockErr      error
		wantLocation string
	}{
		{
			name:         "success",
			query:        "?code=c1",
			mockResp:     &models.UserResponse{ID: 1, Token: "tok"},
			wantLocation: "http://front/auth/google/callback?token=tok",
		},
		{
			name:         "provider error",
			query:        "?error=access_denied",
			wantLocation: "http://front/auth/google/callback?error=access_denied",
		},
		{
			name:         "missing code",
			wantLocation: "http://front/auth/google/callback?error=authentication_failed",
		},
		{
			name:         "rejected code",
			query:        "?code=c1",
			mockErr:      fmt.Errorf("x: %w", auth.ErrGoogleAuthFailed),
			wantLocation: "http://front/auth/google/callback?error=authentication_failed",
		},
		{
			name:         "server error",
			query:        "?code=c1",
			mockErr:      errors.New("db down"),
			wantLocation: "http://front/auth/google/callback?error=server_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.mockResp != nil || tt.mockErr != nil {
				svc.On("GoogleSignIn", mock.Anything, "c1", "").Return(tt.mockResp, tt.mockErr).Once()
			}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback"+tt.query, nil)

			newHandler(svc).Redirect(rec, req)

			assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			svc.AssertExpectations(t)
		})
	}
}
