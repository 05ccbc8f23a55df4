// Package access пишет журнал доступа с определением местоположения по IP.
package access

import (
	"context"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/sacola-ideias/internal/geoip"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
	"github.com/magabrotheeeer/sacola-ideias/internal/models"
)

// Repository хранилище журнала доступа.
type Repository interface {
	InsertAccessLog(ctx context.Context, entry models.AccessLog) error
}

// Locator определяет местоположение IP-адреса.
type Locator interface {
	Lookup(ip string) (*geoip.Location, error)
}

// Service сервис журнала доступа.
type Service struct {
	repo    Repository
	locator Locator
	log     *slog.Logger
}

// New создает сервис. locator может быть nil, тогда геоданные не заполняются.
func New(repo Repository, locator Locator, log *slog.Logger) *Service {
	return &Service{repo: repo, locator: locator, log: log}
}

// Record сохраняет запись. Ошибки только логируются: журнал никогда не ломает запрос.
// clientIP подставляется, если в записи нет ip_address.
func (s *Service) Record(ctx context.Context, entry models.AccessLog, clientIP string) {
	const op = "access.Record"
	log := s.log.With(slog.String("op", op))

	if blank(entry.IPAddress) && clientIP != "" {
		ip := clientIP
		entry.IPAddress = &ip
	}
	if blank(entry.Country) || blank(entry.City) {
		s.enrich(log, &entry)
	}

	if err := s.repo.InsertAccessLog(ctx, entry); err != nil {
		log.Warn("failed to record access", sl.Err(err))
	}
}

// enrich заполняет только пустые поля местоположения.
func (s *Service) enrich(log *slog.Logger, entry *models.AccessLog) {
	if s.locator == nil || blank(entry.IPAddress) {
		return
	}
	loc, err := s.locator.Lookup(*entry.IPAddress)
	if err != nil {
		log.Debug("geoip lookup failed", sl.Err(err))
		return
	}

	fill(&entry.Country, loc.Country)
	fill(&entry.City, loc.City)
	fill(&entry.Region, loc.Region)
	fill(&entry.Timezone, loc.Timezone)
	if entry.Latitude == nil && entry.Longitude == nil && (loc.Latitude != 0 || loc.Longitude != 0) {
		lat, lon := loc.Latitude, loc.Longitude
		entry.Latitude = &lat
		entry.Longitude = &lon
	}
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func fill(dst **string, value string) {
	if blank(*dst) && value != "" {
		v := value
		*dst = &v
	}
}
