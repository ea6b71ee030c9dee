// Package dataset is the data access layer of the dashboard: it reads the five source
// tables, validates them on ingestion and keeps one snapshot per session.
package dataset

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
)

// Repository reads the source tables. Implementations return typed rows ordered by
// primary key so every load yields the same row order.
type Repository interface {
	ListDestinations(ctx context.Context) ([]models.Destination, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListReviews(ctx context.Context) ([]models.Review, error)
	ListCities(ctx context.Context) ([]models.City, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// rowScanner is satisfied by pgx rows and *sql.Rows alike.
type rowScanner interface {
	Scan(dest ...any) error
}

func destinationsQuery() sq.SelectBuilder {
	return sq.Select("id_tempat", "nama_tempat", "id_kota", "id_kategori", "rating_rata2", "harga_tiket", "lat", "long").
		From("destinations").
		OrderBy("id_tempat")
}

func usersQuery() sq.SelectBuilder {
	return sq.Select("id_pengguna", "umur", "COALESCE(asal_kota, '') AS asal_kota").
		From("users").
		OrderBy("id_pengguna")
}

func reviewsQuery() sq.SelectBuilder {
	return sq.Select("id_review", "id_tempat", "id_pengguna", "rating").
		From("reviews").
		OrderBy("id_review")
}

func citiesQuery() sq.SelectBuilder {
	return sq.Select("id_kota", "nama_kota").
		From("cities").
		OrderBy("id_kota")
}

func categoriesQuery() sq.SelectBuilder {
	return sq.Select("id_kategori", "nama_kategori").
		From("categories").
		OrderBy("id_kategori")
}

func scanDestination(row rowScanner) (models.Destination, error) {
	var d models.Destination
	err := row.Scan(&d.ID, &d.Name, &d.CityID, &d.CategoryID, &d.Rating, &d.TicketPrice, &d.Latitude, &d.Longitude)
	return d, err
}

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Age, &u.HomeCity)
	return u, err
}

func scanReview(row rowScanner) (models.Review, error) {
	var r models.Review
	err := row.Scan(&r.ID, &r.DestinationID, &r.UserID, &r.Rating)
	return r, err
}

func scanCity(row rowScanner) (models.City, error) {
	var c models.City
	err := row.Scan(&c.ID, &c.Name)
	return c, err
}

func scanCategory(row rowScanner) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name)
	return c, err
}
