package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/sacola-ideias/internal/services/billing"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return m.Called(ctx, payload, signature).Error(0)
}

func TestWebhook(t *testing.T) {
	const body = `{"id":"evt_1","type":"checkout.session.completed"}`

	tests := []struct {
		name           string
		mockErr        error
		wantStatusCode int
		wantBody       string
	}{
		{name: "событие принято", wantStatusCode: http.StatusOK, wantBody: `{"received":true}`},
		{name: "нет секрета", mockErr: fmt.Errorf("op: %w", billing.ErrWebhookNotConfigured), wantStatusCode: http.StatusInternalServerError},
		{name: "нет подписи", mockErr: fmt.Errorf("op: %w", billing.ErrMissingSignature), wantStatusCode: http.StatusBadRequest},
		{name: "неверная подпись", mockErr: fmt.Errorf("op: %w", billing.ErrInvalidSignature), wantStatusCode: http.StatusBadRequest},
		{name: "битый объект события", mockErr: fmt.Errorf("op: %w", billing.ErrInvalidPayload), wantStatusCode: http.StatusBadRequest},
		{name: "ошибка БД", mockErr: errors.New("db down"), wantStatusCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("HandleWebhook", mock.Anything, []byte(body), "t=1,v1=abc").Return(tt.mockErr).Once()

			req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(body))
			req.Header.Set(SignatureHeader, "t=1,v1=abc")
			rec := httptest.NewRecorder()

			New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestWebhook_BodyTooLarge(t *testing.T) {
	svc := new(ServiceMock)

	body := strings.Repeat("a", maxBodyBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(body))
	req.Header.Set(SignatureHeader, "t=1,v1=abc")
	rec := httptest.NewRecorder()

	New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"status":"Error","error":"Payload muito grande"}`, rec.Body.String())
	svc.AssertNotCalled(t, "HandleWebhook", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_BodyAtLimitIsPassedWhole(t *testing.T) {
	body := strings.Repeat("a", maxBodyBytes)
	svc := new(ServiceMock)
	svc.On("HandleWebhook", mock.Anything, []byte(body), "t=1,v1=abc").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(body))
	req.Header.Set(SignatureHeader, "t=1,v1=abc")
	rec := httptest.NewRecorder()

	New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}
