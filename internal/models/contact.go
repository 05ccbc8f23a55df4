package models

import "time"

// Статусы сообщения обратной связи.
const (
	ContactPending = "pendente"
	ContactSent    = "enviado"
)

// ContactInput тело запроса POST /api/contato.
type ContactInput struct {
	Name        string  `json:"nome" validate:"required"`
	Email       string  `json:"email" validate:"required,email"`
	Subject     string  `json:"assunto" validate:"required"`
	Message     string  `json:"mensagem" validate:"required"`
	Destination *string `json:"email_destino,omitempty"`
}

// ContactMessage строка таблицы contato; также сообщение очереди уведомлений.
type ContactMessage struct {
	ID          int       `json:"id"`
	UserID      *int      `json:"usuario_id,omitempty"`
	Name        string    `json:"nome"`
	Email       string    `json:"email"`
	Subject     string    `json:"assunto"`
	Message     string    `json:"mensagem"`
	Destination string    `json:"email_destino"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"criado_em"`
}
