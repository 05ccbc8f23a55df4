package models

// AccessLog запись таблицы acessos.
type AccessLog struct {
	UserID         *int     `json:"usuario_id,omitempty"`
	IPAddress      *string  `json:"ip_address,omitempty"`
	UserAgent      *string  `json:"user_agent,omitempty"`
	Country        *string  `json:"pais,omitempty"`
	City           *string  `json:"cidade,omitempty"`
	Region         *string  `json:"regiao,omitempty"`
	Timezone       *string  `json:"timezone,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Endpoint       string   `json:"endpoint" validate:"required"`
	Method         string   `json:"metodo_http" validate:"required"`
	StatusCode     int      `json:"status_code" validate:"required"`
	ResponseTimeMs *int     `json:"tempo_resposta_ms,omitempty"`
}
