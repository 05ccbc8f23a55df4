package geoip

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResolver_EmptyPath(t *testing.T) {
	r, err := NewResolver("  ")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestNewResolver_MissingFile(t *testing.T) {
	_, err := NewResolver(filepath.Join(t.TempDir(), "missing.mmdb"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geoip: open database")
}

func TestResolver_NilIsUnavailable(t *testing.T) {
	var r *Resolver
	_, err := r.Lookup("8.8.8.8")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, r.Close())
}

func TestLocalizedName(t *testing.T) {
	assert.Equal(t, "Brasil", localizedName(map[string]string{"en": "Brazil", "pt-BR": "Brasil"}))
	assert.Equal(t, "Germany", localizedName(map[string]string{"en": "Germany"}))
	assert.Empty(t, localizedName(nil))
}
