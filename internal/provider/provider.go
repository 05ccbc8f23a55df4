// Package provider предоставляет клиента OpenAI-совместимого API для эмбеддингов и чата.
//
// Init запоминает конфигурацию, клиент создается один раз на процесс при первом
// обращении к Default. Без API-ключа Default возвращает nil, а вызывающий код деградирует.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/magabrotheeeer/sacola-ideias/internal/config"
)

// ErrEmptyResponse провайдер вернул пустой ответ.
var ErrEmptyResponse = errors.New("empty response from provider")

// AI возможности провайдера.
type AI interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Chat(ctx context.Context, prompt string) (string, error)
}

// OpenAI реализация AI поверх go-openai.
type OpenAI struct {
	client         *openai.Client
	embeddingModel openai.EmbeddingModel
	chatModel      string
}

var (
	mu       sync.Mutex
	settings *config.AI
	once     sync.Once
	instance AI
)

// Init задает конфигурацию синглтона. Учитывается только первый вызов.
func Init(cfg config.AI) {
	mu.Lock()
	defer mu.Unlock()
	if settings == nil {
		settings = &cfg
	}
}

// Default возвращает процессный синглтон или nil, если провайдер не настроен.
// Вызов до Init приводит к панике.
func Default() AI {
	mu.Lock()
	cfg := settings
	mu.Unlock()
	if cfg == nil {
		panic("provider: Default called before Init")
	}

	once.Do(func() {
		if cfg.APIKey != "" {
			instance = New(*cfg)
		}
	})
	return instance
}

// New создает клиента без участия синглтона.
func New(cfg config.AI) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	embeddingModel := openai.EmbeddingModel(cfg.EmbeddingModel)
	if embeddingModel == "" {
		embeddingModel = openai.SmallEmbedding3
	}
	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	return &OpenAI{
		client:         openai.NewClientWithConfig(clientCfg),
		embeddingModel: embeddingModel,
		chatModel:      chatModel,
	}
}

// Embed возвращает эмбеддинг текста.
func (p *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	const op = "provider.Embed"

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: p.embeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}
	return resp.Data[0].Embedding, nil
}

// Chat отправляет одно пользовательское сообщение и возвращает ответ модели.
func (p *OpenAI) Chat(ctx context.Context, prompt string) (string, error) {
	const op = "provider.Chat"

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}
	return content, nil
}
