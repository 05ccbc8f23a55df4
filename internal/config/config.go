// Package config предоставялет структуры и функцию для парсинга и загрузки конфига.
//
// Конфиг читается из YAML-файла (CONFIG_PATH) либо из переменных окружения,
// у каждого параметра есть значение по умолчанию.
package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env            string `yaml:"env" env:"ENV" env-default:"local"`
	FrontendURL    string `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:5173"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	ContactEmail   string `yaml:"contact_email" env:"CONTATO_EMAIL" env-default:"contato@sacoladeideias.com"`
	GeoIPPath      string `yaml:"geoip_db_path" env:"GEOIP_DB_PATH"`
	HTTPServer     `yaml:"http_server"`
	Database       `yaml:"database"`
	JWTToken       `yaml:"jwttoken"`
	AI             `yaml:"ai"`
	Google         `yaml:"google"`
	Stripe         `yaml:"stripe"`
	Plans          `yaml:"plans"`
	Redis          `yaml:"redis"`
	RabbitMQ       `yaml:"rabbitmq"`
	SMTP           `yaml:"smtp"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	Host        string        `yaml:"host" env:"BACKEND_HOST" env-default:"0.0.0.0"`
	Port        int           `yaml:"port" env:"BACKEND_PORT" env-default:"8002"`
	TimeoutHTTP time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Address возвращает адрес для http.Server.
func (h HTTPServer) Address() string {
	return net.JoinHostPort(h.Host, strconv.Itoa(h.Port))
}

// Database параметры подключения к PostgreSQL
type Database struct {
	DBHost     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	DBPort     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	DBName     string `yaml:"name" env:"DB_NAME" env-default:"postgres"`
	DBUser     string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	DBPassword string `yaml:"password" env:"DB_PASSWORD" env-default:"senha123"`
	DBSSLMode  string `yaml:"sslmode" env:"DB_SSLMODE"`
}

// DSN собирает строку подключения в формате URL.
func (d Database) DSN() string {
	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s",
		d.DBUser, d.DBPassword, net.JoinHostPort(d.DBHost, strconv.Itoa(d.DBPort)), d.DBName)
	if d.DBSSLMode != "" {
		dsn += "?sslmode=" + d.DBSSLMode
	}
	return dsn
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET" env-default:"change-me"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"JWT_TTL" env-default:"168h"`
}

// AI настройки провайдера эмбеддингов и чата. Пустой ключ отключает провайдера.
type AI struct {
	APIKey         string `yaml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL        string `yaml:"base_url" env:"OPENAI_BASE_URL"`
	EmbeddingModel string `yaml:"embedding_model" env:"EMBEDDING_MODEL" env-default:"text-embedding-3-small"`
	ChatModel      string `yaml:"chat_model" env:"CHAT_MODEL" env-default:"gpt-4o-mini"`
}

// Google настройки OAuth
type Google struct {
	ClientID     string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	RedirectURI  string `yaml:"redirect_uri" env:"GOOGLE_REDIRECT_URI"`
}

// Stripe настройки биллинга
type Stripe struct {
	SecretKey     string `yaml:"secret_key" env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
	PriceID       string `yaml:"price_id" env:"STRIPE_PRICE_ID"`
	SuccessURL    string `yaml:"success_url" env:"STRIPE_SUCCESS_URL"`
	CancelURL     string `yaml:"cancel_url" env:"STRIPE_CANCEL_URL"`
}

// Plans лимиты тарифов и длительность пробного периода
type Plans struct {
	ProSearchLimit     int `yaml:"pro_search_limit" env:"PRO_LIMITE_BUSCAS" env-default:"1000"`
	ProEmbeddingLimit  int `yaml:"pro_embedding_limit" env:"PRO_LIMITE_EMBEDDINGS" env-default:"1000"`
	FreeSearchLimit    int `yaml:"free_search_limit" env:"FREE_LIMITE_BUSCAS" env-default:"10"`
	FreeEmbeddingLimit int `yaml:"free_embedding_limit" env:"FREE_LIMITE_EMBEDDINGS" env-default:"10"`
	TrialDays          int `yaml:"trial_days" env:"TRIAL_DIAS" env-default:"3"`
}

// TrialWindow длительность пробного периода.
func (p Plans) TrialWindow() time.Duration {
	return time.Duration(p.TrialDays) * 24 * time.Hour
}

// Redis структура для настройки подключения к redis. Пустой адрес отключает кэш.
type Redis struct {
	AddressRedis      string        `yaml:"address" env:"REDIS_ADDR"`
	RedisPassword     string        `yaml:"password" env:"REDIS_PASSWORD"`
	RedisDB           int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	MaxRetries        int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout       time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	TimeoutRedis      time.Duration `yaml:"timeout" env:"REDIS_TIMEOUT" env-default:"2s"`
	EmbeddingCacheTTL time.Duration `yaml:"embedding_cache_ttl" env:"EMBEDDING_CACHE_TTL" env-default:"24h"`
}

// RabbitMQ настройки брокера. Пустой URL отключает публикацию.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env:"RABBITMQ_MAX_RETRIES" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env:"RABBITMQ_RETRY_DELAY" env-default:"2s"`
}

// SMTP настройки почтового сервера
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"password" env:"SMTP_PASSWORD"`
	SMTPFrom string `yaml:"from" env:"SMTP_FROM"`
}

// MustLoad загружает конфиг и завершает процесс при ошибке.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает .env (если есть), затем YAML из CONFIG_PATH или переменные окружения.
func Load() (*Config, error) {
	const op = "config.Load"

	// .env не обязателен
	_ = godotenv.Load()

	var cfg Config
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cfg.applyDerivedDefaults()
	return &cfg, nil
}

// applyDerivedDefaults заполняет значения, зависящие от других параметров.
func (c *Config) applyDerivedDefaults() {
	if c.RedirectURI == "" {
		c.RedirectURI = fmt.Sprintf("http://localhost:%d/api/auth/google/callback", c.Port)
	}
	if c.SuccessURL == "" {
		c.SuccessURL = c.FrontendURL + "/app?checkout=success"
	}
	if c.CancelURL == "" {
		c.CancelURL = c.FrontendURL + "/app?checkout=cancel"
	}
	if c.SMTPFrom == "" {
		c.SMTPFrom = c.SMTPUser
	}
}

// GoogleEnabled сообщает, настроен ли вход через Google.
func (c *Config) GoogleEnabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer: %s (timeout %s, idle %s)\n"+
			"Database: %s:%d/%s (user %s)\n"+
			"FrontendURL: %s\n"+
			"AI: enabled=%t embedding=%s chat=%s\n"+
			"Google: enabled=%t redirect=%s\n"+
			"Stripe: enabled=%t\n"+
			"Redis: %s\n"+
			"RabbitMQ: enabled=%t\n"+
			"TrialDays: %d\n",
		c.Env,
		c.HTTPServer.Address(), c.TimeoutHTTP, c.IdleTimeout,
		c.DBHost, c.DBPort, c.DBName, c.DBUser,
		c.FrontendURL,
		c.APIKey != "", c.EmbeddingModel, c.ChatModel,
		c.GoogleEnabled(), c.RedirectURI,
		c.SecretKey != "",
		c.AddressRedis,
		c.RabbitMQURL != "",
		c.TrialDays,
	)
}
