package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/magabrotheeeer/sacola-ideias/internal/config"
)

func newFakeGoogle(t *testing.T, profile map[string]string, wantRedirect string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		assert.Equal(t, wantRedirect, r.PostForm.Get("redirect_uri"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at", "token_type": "Bearer", "expires_in": 3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return New(config.Google{ClientID: "cid", ClientSecret: "secret", RedirectURI: "http://localhost/cb"},
		WithEndpoint(oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}),
		WithUserInfoURL(srv.URL+"/userinfo"))
}

func TestClient_AuthURL(t *testing.T) {
	c := New(config.Google{ClientID: "cid", RedirectURI: "http://localhost/cb"})

	u, err := url.Parse(c.AuthURL("state-1"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "http://localhost/cb", q.Get("redirect_uri"))
}

func TestClient_Exchange(t *testing.T) {
	tests := []struct {
		name        string
		code        string
		redirectURI string
		wantRedir   string
		profile     map[string]string
		wantErr     bool
	}{
		{
			name:      "default redirect",
			code:      "good",
			wantRedir: "http://localhost/cb",
			profile:   map[string]string{"id": "g1", "email": "a@x.com", "name": "A", "picture": "http://p"},
		},
		{
			name:        "caller redirect",
			code:        "good",
			redirectURI: "http://front/cb",
			wantRedir:   "http://front/cb",
			profile:     map[string]string{"id": "g1", "email": "a@x.com"},
		},
		{
			name:    "bad code",
			code:    "bad",
			wantErr: true,
		},
		{
			name:      "profile without email",
			code:      "good",
			wantRedir: "http://localhost/cb",
			profile:   map[string]string{"id": "g1"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFakeGoogle(t, tt.profile, tt.wantRedir)
			c := newTestClient(srv)

			identity, err := c.Exchange(context.Background(), tt.code, tt.redirectURI)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, identity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.profile["id"], identity.ID)
			assert.Equal(t, tt.profile["email"], identity.Email)
			assert.Equal(t, tt.profile["name"], identity.Name)
			assert.Equal(t, tt.profile["picture"], identity.Picture)
		})
	}
}
