package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"lelang/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(driver, dsn string) *config.Config {
	return &config.Config{
		App:      config.AppConfig{Port: ":0", CORSAllowedOrigins: "*", BodyLimit: 10 * 1024 * 1024},
		Database: config.DatabaseConfig{Driver: driver, DSN: dsn},
		Auth:     config.AuthConfig{JWTSecret: "test_jwt_secret", TokenTTL: time.Hour},
		Lock:     config.LockConfig{Driver: config.LockLocal, TTL: time.Second},
		Logging:  config.LoggingConfig{Level: "error", Format: "json"},
	}
}

func health(t *testing.T, app *App) map[string]any {
	t.Helper()
	resp, err := app.Fiber.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestNewApp_MemoryStore(t *testing.T) {
	app, err := NewApp(testConfig(config.DriverMemory, ""), zerolog.Nop())
	require.NoError(t, err)
	defer app.Close()

	body := health(t, app)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, config.DriverMemory, body["store"])
	assert.Equal(t, false, body["events"])
}

func TestNewApp_SQLiteStore(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "lelang.db")
	app, err := NewApp(testConfig(config.DriverSQLite, dsn), zerolog.Nop())
	require.NoError(t, err)

	body := health(t, app)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, config.DriverSQLite, body["store"])

	require.NoError(t, app.Close())
	assert.NoError(t, app.Close(), "second close is a no-op")
}

func TestNewApp_UnknownRoute(t *testing.T) {
	app, err := NewApp(testConfig(config.DriverMemory, ""), zerolog.Nop())
	require.NoError(t, err)
	defer app.Close()

	resp, err := app.Fiber.Test(httptest.NewRequest(fiber.MethodGet, "/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func preflight(t *testing.T, app *App, origin string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodOptions, "/api/v1/auctions", nil)
	req.Header.Set(fiber.HeaderOrigin, origin)
	req.Header.Set(fiber.HeaderAccessControlRequestMethod, fiber.MethodPost)
	req.Header.Set(fiber.HeaderAccessControlRequestHeaders, "Authorization, Content-Type")
	resp, err := app.Fiber.Test(req)
	require.NoError(t, err)
	return resp
}

func TestNewApp_CORSPreflight(t *testing.T) {
	app, err := NewApp(testConfig(config.DriverMemory, ""), zerolog.Nop())
	require.NoError(t, err)
	defer app.Close()

	resp := preflight(t, app, "https://front.example")
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Contains(t, resp.Header.Get(fiber.HeaderAccessControlAllowMethods), fiber.MethodPatch)
	assert.Contains(t, resp.Header.Get(fiber.HeaderAccessControlAllowHeaders), "Authorization")
}

func TestNewApp_CORSAllowedOrigins(t *testing.T) {
	cfg := testConfig(config.DriverMemory, "")
	cfg.App.CORSAllowedOrigins = "https://lelang.example"
	app, err := NewApp(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer app.Close()

	allowed := preflight(t, app, "https://lelang.example")
	defer allowed.Body.Close()
	assert.Equal(t, "https://lelang.example", allowed.Header.Get(fiber.HeaderAccessControlAllowOrigin))

	denied := preflight(t, app, "https://elsewhere.example")
	defer denied.Body.Close()
	assert.Empty(t, denied.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}
