// Package reminder помогает вспомнить забытое: по описанию пользователя чат-модель
// предлагает короткие подсказки.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
)

// MaxSuggestions максимальное число предложений в ответе.
const MaxSuggestions = 5

const promptTemplate = `Você é um assistente de memória. A pessoa está tentando lembrar de algo e descreveu assim:

"%s"

Gere de 3 a 5 sugestões que ajudem a pessoa a lembrar. Cada sugestão deve:
- ter no máximo 10 palavras
- ser específica e concreta
- estar ligada ao contexto descrito
- ser uma pergunta ou afirmação curta, como "o nome daquele restaurante italiano?"

Responda apenas com as sugestões, uma por linha, sem numeração nem marcadores.`

// Chatter чат-модель.
type Chatter interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// Service генератор подсказок для припоминания.
type Service struct {
	chat Chatter
	log  *slog.Logger
}

// New создает сервис. chat может быть nil, тогда предложений нет.
func New(chat Chatter, log *slog.Logger) *Service {
	return &Service{chat: chat, log: log}
}

// Suggest возвращает до пяти предложений. Любая ошибка дает пустой список.
func (s *Service) Suggest(ctx context.Context, text string) []string {
	const op = "reminder.Suggest"

	text = strings.TrimSpace(text)
	if text == "" || s.chat == nil {
		return []string{}
	}

	reply, err := s.chat.Chat(ctx, fmt.Sprintf(promptTemplate, text))
	if err != nil {
		s.log.Warn("chat model failed", slog.String("op", op), sl.Err(err))
		return []string{}
	}
	return parseSuggestions(reply)
}

// parseSuggestions оставляет непустые строки без маркеров списка.
func parseSuggestions(reply string) []string {
	out := make([]string, 0, MaxSuggestions)
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isListMarked(line) {
			continue
		}
		out = append(out, line)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}

func isListMarked(line string) bool {
	for _, prefix := range []string{"1.", "2.", "3.", "4.", "5.", "-", "*", "•"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
