package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HOST", "PORT", "REQUEST_TIMEOUT", "MAX_REQUEST_BODY_SIZE",
		"CATALOG_SOURCE", "CATALOG_LOCATION", "CATALOG_FETCH_TIMEOUT",
		"AZURE_STORAGE_ACCOUNT", "AZURE_STORAGE_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "5001", cfg.Port)
	assert.Equal(t, "0.0.0.0:5001", cfg.ServerAddress())
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, int64(1024*1024), cfg.MaxRequestBodySize)
	assert.Equal(t, CatalogSourceBuiltin, cfg.CatalogSource)
	assert.Equal(t, 15*time.Second, cfg.CatalogFetchTimeout)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOST", " 127.0.0.1 ")
	t.Setenv("PORT", "8080")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("MAX_REQUEST_BODY_SIZE", "2048")
	t.Setenv("CATALOG_SOURCE", "FILE")
	t.Setenv("CATALOG_LOCATION", "/etc/covers/catalog.yaml")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.ServerAddress())
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, int64(2048), cfg.MaxRequestBodySize)
	assert.Equal(t, CatalogSourceFile, cfg.CatalogSource)
	assert.Equal(t, "/etc/covers/catalog.yaml", cfg.CatalogLocation)
}

func TestLoadFromEnv_InvalidDurationFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("REQUEST_TIMEOUT", "soon")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestLoadFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"non numeric port", map[string]string{"PORT": "http"}, "invalid PORT"},
		{"port out of range", map[string]string{"PORT": "70000"}, "invalid PORT"},
		{"non positive body size", map[string]string{"MAX_REQUEST_BODY_SIZE": "-1"}, "MAX_REQUEST_BODY_SIZE"},
		{"unknown catalog source", map[string]string{"CATALOG_SOURCE": "s3"}, "unsupported CATALOG_SOURCE"},
		{"file without location", map[string]string{"CATALOG_SOURCE": "file"}, "CATALOG_LOCATION is required"},
		{"azure without credentials", map[string]string{
			"CATALOG_SOURCE":   "azure",
			"CATALOG_LOCATION": "covers/catalog.yaml",
		}, "AZURE_STORAGE_ACCOUNT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadFromEnv()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
