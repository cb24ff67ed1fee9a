package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// CatalogSource names where the image catalog is read from at startup.
type CatalogSource string

const (
	CatalogSourceBuiltin CatalogSource = "builtin"
	CatalogSourceFile    CatalogSource = "file"
	CatalogSourceHTTP    CatalogSource = "http"
	CatalogSourceAzure   CatalogSource = "azure"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64

	CatalogSource       CatalogSource
	CatalogLocation     string
	CatalogFetchTimeout time.Duration

	AzureAccountName string
	AzureAccountKey  string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// LoadFromEnv reads the process environment. A .env file, if any, must
// already have been loaded by the caller.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "5001"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 1024*1024), // 1MB

		CatalogSource:       CatalogSource(strings.ToLower(getEnvOrDefault("CATALOG_SOURCE", string(CatalogSourceBuiltin)))),
		CatalogLocation:     strings.TrimSpace(os.Getenv("CATALOG_LOCATION")),
		CatalogFetchTimeout: parseDurationOrDefault("CATALOG_FETCH_TIMEOUT", 15*time.Second),

		AzureAccountName: strings.TrimSpace(os.Getenv("AZURE_STORAGE_ACCOUNT")),
		AzureAccountKey:  strings.TrimSpace(os.Getenv("AZURE_STORAGE_KEY")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants LoadFromEnv enforces. It is exported so
// command-line overrides can be re-checked.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.CatalogFetchTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, catalog_fetch=%s)",
			c.RequestTimeout, c.CatalogFetchTimeout)
	}

	switch c.CatalogSource {
	case CatalogSourceBuiltin:
	case CatalogSourceFile, CatalogSourceHTTP, CatalogSourceAzure:
		if c.CatalogLocation == "" {
			return fmt.Errorf("CATALOG_LOCATION is required for CATALOG_SOURCE=%s", c.CatalogSource)
		}
	default:
		return fmt.Errorf("unsupported CATALOG_SOURCE: %q", c.CatalogSource)
	}

	if c.CatalogSource == CatalogSourceAzure && (c.AzureAccountName == "" || c.AzureAccountKey == "") {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY are required for CATALOG_SOURCE=azure")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
