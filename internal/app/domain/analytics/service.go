package analytics

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
	"github.com/FACorreiaa/tourism-dashboard/internal/app/observability/metrics"
)

// TableSource hands out the table snapshot owned by a session.
type TableSource interface {
	Tables(ctx context.Context, session string) (*models.Tables, error)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Options(ctx context.Context, session string) (models.FilterOptions, error)
	Dashboard(ctx context.Context, session string, criteria models.FilterCriteria) (*models.Dashboard, error)
	ExportDestinations(ctx context.Context, session string, criteria models.FilterCriteria, w io.Writer) error
}

type ServiceImpl struct {
	source  TableSource
	policy  models.JoinPolicy
	logger  *zap.Logger
	metrics *metrics.AppMetrics
}

func NewService(source TableSource, policy models.JoinPolicy, logger *zap.Logger, m *metrics.AppMetrics) *ServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServiceImpl{
		source:  source,
		policy:  policy,
		logger:  logger,
		metrics: m,
	}
}

// Options returns the selectable cities and categories of the session's dataset.
func (s *ServiceImpl) Options(ctx context.Context, session string) (models.FilterOptions, error) {
	tables, err := s.source.Tables(ctx, session)
	if err != nil {
		return models.FilterOptions{}, err
	}
	return Options(tables, s.policy), nil
}

// Dashboard runs one full pass of join, filter, metrics and aggregation.
func (s *ServiceImpl) Dashboard(ctx context.Context, session string, criteria models.FilterCriteria) (*models.Dashboard, error) {
	ctx, span := otel.Tracer("AnalyticsService").Start(ctx, "Dashboard")
	defer span.End()

	l := s.logger.With(zap.String("method", "Dashboard"))

	if err := criteria.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid criteria")
		return nil, err
	}

	tables, err := s.source.Tables(ctx, session)
	if err != nil {
		l.Error("Failed to load tables", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Table load failed")
		return nil, fmt.Errorf("failed to build dashboard: %w", err)
	}

	start := time.Now()
	dashboard := BuildDashboard(tables, criteria, s.policy)
	s.metrics.RecordPipeline(ctx, time.Since(start), len(dashboard.Destinations))

	if dashboard.Unresolved > 0 {
		l.Warn("Destinations with unresolved city or category",
			zap.Error(fmt.Errorf("%w: %d destinations", models.ErrMissingJoinTarget, dashboard.Unresolved)),
			zap.Int("unresolved", dashboard.Unresolved),
			zap.String("policy", string(s.policy)))
	}
	l.Debug("Dashboard built",
		zap.Int("destinations", len(dashboard.Destinations)),
		zap.String("data_version", dashboard.DataVersion))

	span.SetAttributes(
		attribute.Int("dashboard.destinations", len(dashboard.Destinations)),
		attribute.Int("dashboard.unresolved", dashboard.Unresolved),
		attribute.String("dashboard.data_version", dashboard.DataVersion),
	)
	span.SetStatus(codes.Ok, "Dashboard built")
	return dashboard, nil
}

// ExportDestinations writes the displayed destination columns as CSV.
func (s *ServiceImpl) ExportDestinations(ctx context.Context, session string, criteria models.FilterCriteria, w io.Writer) error {
	ctx, span := otel.Tracer("AnalyticsService").Start(ctx, "ExportDestinations")
	defer span.End()

	if err := criteria.Validate(); err != nil {
		return err
	}
	tables, err := s.source.Tables(ctx, session)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Table load failed")
		return fmt.Errorf("failed to export destinations: %w", err)
	}

	filtered := Filter(tables.Destinations, tables.Cities, tables.Categories, criteria, s.policy)
	rows := ExportRows(DisplayDestinations(filtered))
	span.SetAttributes(attribute.Int("export.rows", len(rows)))
	return WriteDestinationsCSV(w, rows)
}

// BuildDashboard derives everything the rendering layer shows from one snapshot.
// It never mutates tables.
func BuildDashboard(tables *models.Tables, criteria models.FilterCriteria, policy models.JoinPolicy) *models.Dashboard {
	filtered := Filter(tables.Destinations, tables.Cities, tables.Categories, criteria, policy)
	enriched := Enrich(tables.Reviews, filtered)

	return &models.Dashboard{
		Criteria:     criteria,
		Options:      Options(tables, policy),
		Destinations: DisplayDestinations(filtered),
		Metrics:      ComputeMetrics(filtered, tables.Users, tables.Reviews),
		Aggregates:   Aggregate(filtered, tables.Users, tables.Reviews, enriched),
		Reviews:      DisplayReviews(enriched),
		Users:        DisplayUsers(tables.Users),
		MapPoints:    MapPoints(filtered),
		Unresolved:   filtered.Unresolved,
		DataVersion:  tables.Version,
	}
}
