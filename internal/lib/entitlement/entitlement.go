// Package entitlement вычисляет, дает ли подписка доступ к платным эндпоинтам.
package entitlement

import (
	"strings"
	"time"

	"github.com/magabrotheeeer/sacola-ideias/internal/models"
)

// activeLike статусы, при которых тариф pro считается активным.
var activeLike = map[string]struct{}{
	"ativa":    {},
	"active":   {},
	"trialing": {},
	"trial":    {},
}

// Bypass сообщает, что роль не проходит проверку подписки.
func Bypass(role string) bool {
	switch strings.ToLower(role) {
	case models.RoleAdmin, models.RoleSuperAdmin:
		return true
	}
	return false
}

// IsActiveStatus сообщает, входит ли статус в множество активных.
func IsActiveStatus(status string) bool {
	_, ok := activeLike[strings.ToLower(status)]
	return ok
}

// TrialExpiry возвращает окончание пробного периода: сохраненное значение,
// либо дата создания плюс trialWindow. Nil, если вычислить нельзя.
func TrialExpiry(sub *models.Subscription, trialWindow time.Duration) *time.Time {
	if sub == nil {
		return nil
	}
	if sub.TrialExpiresAt != nil {
		return sub.TrialExpiresAt
	}
	if sub.CreatedAt.IsZero() {
		return nil
	}
	exp := sub.CreatedAt.Add(trialWindow)
	return &exp
}

// IsActive сообщает, активна ли подписка на момент now.
func IsActive(sub *models.Subscription, now time.Time, trialWindow time.Duration) bool {
	if sub == nil {
		return false
	}
	switch strings.ToLower(sub.Plan) {
	case models.PlanPro:
		return IsActiveStatus(sub.Status)
	case models.PlanFree:
		exp := TrialExpiry(sub, trialWindow)
		return exp != nil && exp.After(now)
	}
	return false
}
