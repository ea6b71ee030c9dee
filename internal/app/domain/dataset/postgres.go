package dataset

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
)

// PgxPool is the part of *pgxpool.Pool the repository needs.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var _ Repository = (*PostgresRepository)(nil)

type PostgresRepository struct {
	logger *zap.Logger
	pgpool PgxPool
}

func NewPostgresRepository(pgpool PgxPool, logger *zap.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresRepository) ListDestinations(ctx context.Context) ([]models.Destination, error) {
	return pgQueryAll(ctx, r, "destinations", destinationsQuery(), scanDestination)
}

func (r *PostgresRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	return pgQueryAll(ctx, r, "users", usersQuery(), scanUser)
}

func (r *PostgresRepository) ListReviews(ctx context.Context) ([]models.Review, error) {
	return pgQueryAll(ctx, r, "reviews", reviewsQuery(), scanReview)
}

func (r *PostgresRepository) ListCities(ctx context.Context) ([]models.City, error) {
	return pgQueryAll(ctx, r, "cities", citiesQuery(), scanCity)
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	return pgQueryAll(ctx, r, "categories", categoriesQuery(), scanCategory)
}

func pgQueryAll[T any](ctx context.Context, r *PostgresRepository, table string, builder sq.SelectBuilder, scan func(rowScanner) (T, error)) ([]T, error) {
	ctx, span := otel.Tracer("DatasetRepository").Start(ctx, "List "+table)
	defer span.End()
	span.SetAttributes(attribute.String("db.system", "postgresql"), attribute.String("db.sql.table", table))

	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", table, err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query table", zap.String("table", table), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Query failed")
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		return scan(row)
	})
	if err != nil {
		r.logger.Error("Failed to scan table", zap.String("table", table), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Scan failed")
		return nil, fmt.Errorf("failed to scan %s: %w", table, err)
	}

	span.SetAttributes(attribute.Int("db.rows", len(out)))
	return out, nil
}
