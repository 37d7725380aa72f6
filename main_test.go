package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"handyman/catalog"
	"handyman/config"
	"handyman/database"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	dir := t.TempDir()
	static := filepath.Join(dir, "public")
	require.NoError(t, os.MkdirAll(static, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>Handyman</h1>"), 0o644))

	cfg := &config.Config{
		StaticDir:   static,
		CORSOrigins: "*",
		DB: config.DBConfig{
			Driver:       config.DriverSQLite,
			DSN:          filepath.Join(dir, "app.db") + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate",
			MaxOpenConns: 2,
			MaxIdleConns: 2,
		},
	}
	db, err := database.ConnectDb(cfg.DB, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	cat, err := catalog.Default()
	require.NoError(t, err)
	_, err = database.SeedServices(context.Background(), db, cat)
	require.NoError(t, err)

	return newApp(cfg, db, cat, zap.NewNop())
}

func TestAppServesAPIAndStaticSite(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/services", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, err = uuid.Parse(resp.Header.Get(fiber.HeaderXRequestID))
	assert.NoError(t, err, "responses carry a uuid request id")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Handyman</h1>", string(body))
}

func TestAppCORSPreflight(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/reviews", nil)
	req.Header.Set(fiber.HeaderOrigin, "http://localhost:8080")
	req.Header.Set(fiber.HeaderAccessControlRequestMethod, http.MethodPost)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}

func TestAppUnknownAPIRoute(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/unknown", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
