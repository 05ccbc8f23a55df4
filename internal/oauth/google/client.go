// Package google реализует обмен кода авторизации Google на профиль пользователя.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/magabrotheeeer/sacola-ideias/internal/config"
	"github.com/magabrotheeeer/sacola-ideias/internal/models"
)

const defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// ErrIncompleteProfile в профиле нет id или email.
var ErrIncompleteProfile = errors.New("google profile without id or email")

// Client OAuth-клиент Google.
type Client struct {
	conf        oauth2.Config
	userInfoURL string
}

// Option настраивает Client.
type Option func(*Client)

// WithEndpoint подменяет адреса авторизации и обмена токена.
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(c *Client) { c.conf.Endpoint = endpoint }
}

// WithUserInfoURL подменяет адрес профиля.
func WithUserInfoURL(url string) Option {
	return func(c *Client) { c.userInfoURL = url }
}

// New создает клиента по настройкам Google.
func New(cfg config.Google, opts ...Option) *Client {
	c := &Client{
		conf: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     googleoauth.Endpoint,
		},
		userInfoURL: defaultUserInfoURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthURL адрес страницы согласия Google.
func (c *Client) AuthURL(state string) string {
	return c.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange меняет код на токен и загружает профиль пользователя.
// Пустой redirectURI означает адрес из конфигурации.
func (c *Client) Exchange(ctx context.Context, code, redirectURI string) (*models.GoogleIdentity, error) {
	const op = "google.Exchange"

	conf := c.conf
	if redirectURI != "" {
		conf.RedirectURL = redirectURI
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	resp, err := conf.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%s: userinfo status %d", op, resp.StatusCode)
	}

	var profile struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if profile.ID == "" || profile.Email == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrIncompleteProfile)
	}

	return &models.GoogleIdentity{
		ID:      profile.ID,
		Email:   profile.Email,
		Name:    profile.Name,
		Picture: profile.Picture,
	}, nil
}
