package dataset

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
	"github.com/FACorreiaa/tourism-dashboard/internal/app/observability/metrics"
)

const (
	breakerName = "dataset-load"
	maxUserAge  = 130
)

// LoaderOptions tunes the circuit breaker that guards the repository.
type LoaderOptions struct {
	// ConsecutiveFailures opens the breaker. Zero means 3.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again. Zero means 30s.
	OpenTimeout time.Duration
}

// Loader reads all five tables as one snapshot.
type Loader struct {
	repo    Repository
	breaker *gobreaker.CircuitBreaker[*models.Tables]
	logger  *zap.Logger
	metrics *metrics.AppMetrics
	now     func() time.Time
}

func NewLoader(repo Repository, opts LoaderOptions, logger *zap.Logger, m *metrics.AppMetrics) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ConsecutiveFailures == 0 {
		opts.ConsecutiveFailures = 3
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}

	l := &Loader{
		repo:    repo,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
	l.breaker = gobreaker.NewCircuitBreaker[*models.Tables](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		IsSuccessful: func(err error) bool {
			// A caller that went away says nothing about the store; a timeout does.
			return err == nil || errors.Is(err, context.Canceled)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return l
}

// Load fetches every table concurrently. Any adapter failure, and an empty
// destinations, cities or categories table, is reported as models.ErrDataUnavailable.
func (l *Loader) Load(ctx context.Context) (*models.Tables, error) {
	ctx, span := otel.Tracer("DatasetLoader").Start(ctx, "Load")
	defer span.End()

	start := time.Now()
	tables, err := l.breaker.Execute(func() (*models.Tables, error) {
		return l.fetch(ctx)
	})
	l.metrics.RecordLoad(ctx, time.Since(start), err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %w", models.ErrDataUnavailable, err)
		}
		l.logger.Error("Failed to load dataset", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Load failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("dataset.version", tables.Version),
		attribute.Int("dataset.destinations", len(tables.Destinations)),
		attribute.Int("dataset.reviews", len(tables.Reviews)),
	)
	l.logger.Info("Dataset loaded",
		zap.String("version", tables.Version),
		zap.Int("destinations", len(tables.Destinations)),
		zap.Int("users", len(tables.Users)),
		zap.Int("reviews", len(tables.Reviews)),
		zap.Int("cities", len(tables.Cities)),
		zap.Int("categories", len(tables.Categories)),
		zap.Duration("elapsed", time.Since(start)))
	return tables, nil
}

func (l *Loader) fetch(ctx context.Context) (*models.Tables, error) {
	t := &models.Tables{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		t.Destinations, err = l.repo.ListDestinations(gctx)
		return wrapUnavailable("destinations", err)
	})
	g.Go(func() (err error) {
		t.Users, err = l.repo.ListUsers(gctx)
		return wrapUnavailable("users", err)
	})
	g.Go(func() (err error) {
		t.Reviews, err = l.repo.ListReviews(gctx)
		return wrapUnavailable("reviews", err)
	})
	g.Go(func() (err error) {
		t.Cities, err = l.repo.ListCities(gctx)
		return wrapUnavailable("cities", err)
	})
	g.Go(func() (err error) {
		t.Categories, err = l.repo.ListCategories(gctx)
		return wrapUnavailable("categories", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	switch {
	case len(t.Destinations) == 0:
		return nil, fmt.Errorf("%w: destinations table is empty", models.ErrDataUnavailable)
	case len(t.Cities) == 0:
		return nil, fmt.Errorf("%w: cities table is empty", models.ErrDataUnavailable)
	case len(t.Categories) == 0:
		return nil, fmt.Errorf("%w: categories table is empty", models.ErrDataUnavailable)
	}
	if t.Users == nil {
		t.Users = []models.User{}
	}
	if t.Reviews == nil {
		t.Reviews = []models.Review{}
	}

	if n := sanitizeDestinations(t.Destinations); n > 0 {
		l.logger.Warn("Cleared out-of-range destination fields", zap.Int("fields", n))
	}
	if n := sanitizeUsers(t.Users); n > 0 {
		l.logger.Warn("Cleared out-of-range user ages", zap.Int("users", n))
	}
	if n := countOffScale(t.Reviews, models.DefaultRatingScale); n > 0 {
		l.logger.Warn("Reviews with scores off the rating scale", zap.Int("reviews", n))
	}

	t.Version = uuid.NewString()
	t.LoadedAt = l.now().UTC()
	return t, nil
}

func wrapUnavailable(table string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", models.ErrDataUnavailable, table, err)
}

// sanitizeDestinations nulls values the store cannot legitimately hold and
// returns how many fields it cleared.
func sanitizeDestinations(rows []models.Destination) int {
	cleared := 0
	drop := func(v **float64, ok func(float64) bool) {
		if *v != nil && (math.IsNaN(**v) || !ok(**v)) {
			*v = nil
			cleared++
		}
	}
	for i := range rows {
		d := &rows[i]
		drop(&d.Rating, func(f float64) bool { return f >= 0 && f <= models.MaxDestinationRating })
		drop(&d.TicketPrice, func(f float64) bool { return f >= 0 })
		drop(&d.Latitude, func(f float64) bool { return f >= -90 && f <= 90 })
		drop(&d.Longitude, func(f float64) bool { return f >= -180 && f <= 180 })
	}
	return cleared
}

func sanitizeUsers(users []models.User) int {
	cleared := 0
	for i := range users {
		if a := users[i].Age; a != nil && (*a < 0 || *a > maxUserAge) {
			users[i].Age = nil
			cleared++
		}
	}
	return cleared
}

func countOffScale(reviews []models.Review, scale models.RatingScale) int {
	n := 0
	for _, r := range reviews {
		if !scale.Contains(r.Rating) {
			n++
		}
	}
	return n
}
