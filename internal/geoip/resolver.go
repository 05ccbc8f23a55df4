// Package geoip определяет местоположение по IP-адресу с помощью базы MaxMind GeoIP2/GeoLite2 City.
package geoip

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// ErrUnavailable резолвер не инициализирован.
var ErrUnavailable = errors.New("geoip resolver unavailable")

// Location результат поиска. Пустые поля означают отсутствие данных в базе.
type Location struct {
	Country   string
	City      string
	Region    string
	Timezone  string
	Latitude  float64
	Longitude float64
}

// Resolver поиск по базе MaxMind.
type Resolver struct {
	reader *geoip2.Reader
}

// NewResolver открывает базу по пути. Для пустого пути возвращает nil без ошибки.
func NewResolver(path string) (*Resolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &Resolver{reader: reader}, nil
}

// Lookup возвращает местоположение IP-адреса.
func (r *Resolver) Lookup(ip string) (*Location, error) {
	if r == nil || r.reader == nil {
		return nil, ErrUnavailable
	}
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return nil, fmt.Errorf("geoip: invalid ip %q", ip)
	}
	record, err := r.reader.City(parsed)
	if err != nil {
		return nil, fmt.Errorf("geoip: lookup city: %w", err)
	}

	loc := &Location{
		Country:   localizedName(record.Country.Names),
		City:      localizedName(record.City.Names),
		Timezone:  record.Location.TimeZone,
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
	}
	if len(record.Subdivisions) > 0 {
		loc.Region = localizedName(record.Subdivisions[0].Names)
	}
	return loc, nil
}

// Close закрывает базу.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}

func localizedName(names map[string]string) string {
	if n, ok := names["pt-BR"]; ok && n != "" {
		return n
	}
	return names["en"]
}
