package dataset

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
	database "github.com/FACorreiaa/tourism-dashboard/internal/db"
	"github.com/FACorreiaa/tourism-dashboard/internal/pkg/config"
)

func newSQLiteRepository(t *testing.T) (*sql.DB, *SQLiteRepository) {
	t.Helper()
	logger := zap.NewNop()
	path := filepath.Join(t.TempDir(), "pariwisata.db")

	require.NoError(t, database.RunMigrations(config.DriverSQLite, path, logger))
	db, err := database.OpenSQLite(path, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db, NewSQLiteRepository(db, logger)
}

func TestSQLiteRepository_RoundTrip(t *testing.T) {
	db, repo := newSQLiteRepository(t)
	ctx := context.Background()

	statements := []string{
		`INSERT INTO cities (id_kota, nama_kota) VALUES (2, 'Yogyakarta'), (1, 'Jakarta')`,
		`INSERT INTO categories (id_kategori, nama_kategori) VALUES (20, 'Budaya')`,
		`INSERT INTO destinations (id_tempat, nama_tempat, id_kota, id_kategori, rating_rata2, harga_tiket, lat, long)
		 VALUES (2, 'Keraton', 2, 20, 4.4, 15000, NULL, NULL), (1, 'Monas', 1, 20, 4.6, 20000, -6.1754, 106.8272)`,
		`INSERT INTO users (id_pengguna, umur, asal_kota) VALUES (1, 20, 'Jakarta'), (2, NULL, NULL)`,
		`INSERT INTO reviews (id_review, id_tempat, id_pengguna, rating) VALUES (1, 1, 1, 5), (2, 2, 2, 4)`,
	}
	for _, stmt := range statements {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	destinations, err := repo.ListDestinations(ctx)
	require.NoError(t, err)
	require.Len(t, destinations, 2)
	assert.Equal(t, "Monas", destinations[0].Name, "rows come back ordered by primary key")
	assert.Equal(t, 4.6, *destinations[0].Rating)
	assert.Nil(t, destinations[1].Latitude)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.User{{ID: 1, Age: iptr(20), HomeCity: "Jakarta"}, {ID: 2}}, users)

	reviews, err := repo.ListReviews(ctx)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)

	cities, err := repo.ListCities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.City{{ID: 1, Name: "Jakarta"}, {ID: 2, Name: "Yogyakarta"}}, cities)

	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Category{{ID: 20, Name: "Budaya"}}, categories)
}

func TestSQLiteRepository_EmptyTables(t *testing.T) {
	_, repo := newSQLiteRepository(t)

	destinations, err := repo.ListDestinations(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, destinations)
	assert.Empty(t, destinations)
}

func TestSQLiteRepository_ClosedDatabase(t *testing.T) {
	db, repo := newSQLiteRepository(t)
	require.NoError(t, db.Close())

	_, err := repo.ListCities(context.Background())

	assert.Error(t, err)
}
