package dataset

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
)

var _ Repository = (*SQLiteRepository)(nil)

// SQLiteRepository reads a local copy of the dataset, e.g. an export for offline use.
type SQLiteRepository struct {
	logger *zap.Logger
	db     *sql.DB
}

func NewSQLiteRepository(db *sql.DB, logger *zap.Logger) *SQLiteRepository {
	return &SQLiteRepository{
		logger: logger,
		db:     db,
	}
}

func (r *SQLiteRepository) ListDestinations(ctx context.Context) ([]models.Destination, error) {
	return sqlQueryAll(ctx, r, "destinations", destinationsQuery(), scanDestination)
}

func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	return sqlQueryAll(ctx, r, "users", usersQuery(), scanUser)
}

func (r *SQLiteRepository) ListReviews(ctx context.Context) ([]models.Review, error) {
	return sqlQueryAll(ctx, r, "reviews", reviewsQuery(), scanReview)
}

func (r *SQLiteRepository) ListCities(ctx context.Context) ([]models.City, error) {
	return sqlQueryAll(ctx, r, "cities", citiesQuery(), scanCity)
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	return sqlQueryAll(ctx, r, "categories", categoriesQuery(), scanCategory)
}

func sqlQueryAll[T any](ctx context.Context, r *SQLiteRepository, table string, builder sq.SelectBuilder, scan func(rowScanner) (T, error)) ([]T, error) {
	query, args, err := builder.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", table, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query table", zap.String("table", table), zap.Error(err))
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			r.logger.Error("Failed to scan table", zap.String("table", table), zap.Error(err))
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		out = append(out, item)
	}
	if err = rows.Err(); err != nil {
		r.logger.Error("Error iterating rows", zap.String("table", table), zap.Error(err))
		return nil, fmt.Errorf("error iterating %s rows: %w", table, err)
	}
	return out, nil
}
