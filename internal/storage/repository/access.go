package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/sacola-ideias/internal/models"
)

// InsertAccessLog добавляет запись в журнал доступа.
func (s *Storage) InsertAccessLog(ctx context.Context, entry models.AccessLog) error {
	const op = "storage.InsertAccessLog"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO acessos (usuario_id, ip_address, user_agent, pais, cidade, regiao, timezone,
		                     latitude, longitude, endpoint, metodo_http, status_code, tempo_resposta_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		entry.UserID, entry.IPAddress, entry.UserAgent, entry.Country, entry.City, entry.Region, entry.Timezone,
		entry.Latitude, entry.Longitude, entry.Endpoint, entry.Method, entry.StatusCode, entry.ResponseTimeMs)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
