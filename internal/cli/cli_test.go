package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"go-cover-resolver/internal/catalog"
	"go-cover-resolver/internal/service"
	"go-cover-resolver/internal/transport"
	"go-cover-resolver/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const duneCover = "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=300&h=400&fit=crop"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CATALOG_SOURCE", "builtin")
	t.Setenv("PORT", "")

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestResolve_Local(t *testing.T) {
	out, err := run(t, "resolve", "Dune", "--description", "sci-fi")
	require.NoError(t, err)

	var resp models.CoverResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, models.CoverResponse{
		URL:         duneCover,
		Title:       "Dune",
		Description: "sci-fi",
		Status:      "success",
	}, resp)
	assert.Contains(t, out, "&fit=crop")
}

func TestResolve_RequiresTitle(t *testing.T) {
	_, err := run(t, "resolve")
	assert.Error(t, err)

	_, err = run(t, "resolve", "")
	assert.ErrorContains(t, err, "Title is required")
}

func TestResolve_Remote(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(transport.NewHandler(service.NewCoverService(catalog.Default(), nil), transport.Options{
		RequestTimeout:     time.Second,
		MaxRequestBodySize: 1024,
	}))
	defer srv.Close()

	out, err := run(t, "resolve", "Dune", "--server", srv.URL)
	require.NoError(t, err)

	var resp models.CoverResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, duneCover, resp.URL)
}

func TestCatalog_PrintsDocument(t *testing.T) {
	out, err := run(t, "catalog")
	require.NoError(t, err)

	c, err := catalog.Parse([]byte(out), nil)
	require.NoError(t, err)
	assert.Equal(t, catalog.Default().URLs(), c.URLs())
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "builtin")
	t.Setenv("PORT", "")

	cmd := newServeCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--port", "8081", "--host", "127.0.0.1"}))

	cfg, err := loadConfig(cmd, "127.0.0.1", "8081")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8081", cfg.ServerAddress())

	bad := newServeCmd()
	require.NoError(t, bad.ParseFlags([]string{"--port", "0"}))
	_, err = loadConfig(bad, "", "0")
	assert.ErrorContains(t, err, "invalid PORT")
}
