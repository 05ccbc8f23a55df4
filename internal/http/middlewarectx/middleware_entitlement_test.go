package middlewarectx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/sacola-ideias/internal/http/middlewarectx"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/jwt"
	"github.com/magabrotheeeer/sacola-ideias/internal/models"
	"github.com/magabrotheeeer/sacola-ideias/internal/storage/repository"
)

type SubsMock struct {
	mock.Mock
}

func (m *SubsMock) GetLatestSubscription(ctx context.Context, userID int) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func TestEntitlementMiddleware(t *testing.T) {
	const trialWindow = 72 * time.Hour
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Second)

	tests := []struct {
		name           string
		claims         *jwt.Claims
		mockSub        *models.Subscription
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "no user in context",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "admin bypasses lookup",
			claims:         &jwt.Claims{UserID: 1, Role: models.RoleAdmin},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "superadmin bypasses lookup",
			claims:         &jwt.Claims{UserID: 1, Role: "SuperAdmin"},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "active trial",
			claims:         &jwt.Claims{UserID: 2, Role: models.RoleUser},
			mockSub:        &models.Subscription{Plan: models.PlanFree, Status: models.StatusTrial, TrialExpiresAt: &future},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "expired trial",
			claims:         &jwt.Claims{UserID: 2, Role: models.RoleUser},
			mockSub:        &models.Subscription{Plan: models.PlanFree, Status: models.StatusTrial, TrialExpiresAt: &past},
			wantStatusCode: http.StatusPaymentRequired,
			wantError:      middlewarectx.MsgTrialExpired,
		},
		{
			name:           "active pro",
			claims:         &jwt.Claims{UserID: 2, Role: models.RoleUser},
			mockSub:        &models.Subscription{Plan: models.PlanPro, Status: "ATIVA"},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "no subscription",
			claims:         &jwt.Claims{UserID: 2, Role: models.RoleUser},
			mockErr:        repository.ErrNotFound,
			wantStatusCode: http.StatusPaymentRequired,
			wantError:      middlewarectx.MsgTrialExpired,
		},
		{
			name:           "database error",
			claims:         &jwt.Claims{UserID: 2, Role: models.RoleUser},
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := new(SubsMock)
			if tt.mockSub != nil || tt.mockErr != nil {
				subs.On("GetLatestSubscription", mock.Anything, tt.claims.UserID).Return(tt.mockSub, tt.mockErr).Once()
			}

			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/api/ideias", nil)
			if tt.claims != nil {
				req = req.WithContext(middlewarectx.WithClaims(req.Context(), tt.claims))
			}
			rec := httptest.NewRecorder()

			middlewarectx.EntitlementMiddleware(newNoopLogger(), subs, trialWindow)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decode(t, rec).Error)
			}
			subs.AssertExpectations(t)
		})
	}
}
