package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
	database "github.com/FACorreiaa/tourism-dashboard/internal/db"
	"github.com/FACorreiaa/tourism-dashboard/internal/pkg/config"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Repositories: config.RepositoriesConfig{
			Driver:        config.DriverSQLite,
			SQLite:        config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "pariwisata.db")},
			RunMigrations: true,
		},
		Dashboard: config.DashboardConfig{
			JoinPolicy:    models.JoinPolicyDrop,
			CacheTTL:      time.Minute,
			SessionSecret: "router-test-secret-router-test-s",
		},
		ServerPort: "0",
	}
}

func newTestServer(t *testing.T, seed ...string) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	cfg := sqliteConfig(t)

	srv, err := New(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	if len(seed) > 0 {
		db, err := database.OpenSQLite(cfg.Repositories.SQLite.Path, logger)
		require.NoError(t, err)
		for _, stmt := range seed {
			_, err := db.Exec(stmt)
			require.NoError(t, err)
		}
		require.NoError(t, db.Close())
	}

	return SetupRouter(cfg, srv.Repository(), logger, nil)
}

func serve(r http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestRouter_SQLiteEndToEnd(t *testing.T) {
	r := newTestServer(t,
		`INSERT INTO cities (id_kota, nama_kota) VALUES (1, 'Jakarta')`,
		`INSERT INTO categories (id_kategori, nama_kategori) VALUES (10, 'Budaya')`,
		`INSERT INTO destinations (id_tempat, nama_tempat, id_kota, id_kategori, rating_rata2, harga_tiket)
		 VALUES (1, 'Monas', 1, 10, 4.6, 20000), (2, 'Kota Tua', 1, 10, 4.5, 0)`,
	)

	page := serve(r, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Monas")
	assert.Equal(t, "DENY", page.Header().Get("X-Frame-Options"))

	export := serve(r, http.MethodGet, "/export/destinations.csv")
	require.Equal(t, http.StatusOK, export.Code)
	assert.Equal(t, 3, strings.Count(export.Body.String(), "\n"))

	health := serve(r, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, health.Code)
	var body struct {
		Status string `json:"status"`
		Cache  struct {
			Sets int64 `json:"sets"`
		} `json:"cache"`
	}
	require.NoError(t, json.Unmarshal(health.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, int64(2), body.Cache.Sets, "each cookieless request is a new session")
}

func TestRouter_EmptyDatabaseIsUnavailable(t *testing.T) {
	r := newTestServer(t)

	w := serve(r, http.MethodGet, "/api/dashboard")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unavailable")
}

func TestRouter_PreflightAndUnknownRoute(t *testing.T) {
	r := newTestServer(t)

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodOptions, "/").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/missing").Code)
}
