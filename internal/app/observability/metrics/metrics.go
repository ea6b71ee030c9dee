package metrics

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// All Record methods are safe on a nil receiver so tests can pass nil.
type AppMetrics struct {
	HTTPRequestsTotal      metric.Int64Counter
	HTTPRequestDuration    metric.Float64Histogram
	DatasetLoadDuration    metric.Float64Histogram
	DatasetLoadErrorsTotal metric.Int64Counter
	TableCacheLookupsTotal metric.Int64Counter
	PipelineDuration       metric.Float64Histogram
	FilteredDestinations   metric.Int64Gauge
	TemplateRenderDuration metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("tourism-dashboard")
		var err error
		m := &AppMetrics{}

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_requests_total: %v", err)
		}

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_request_duration_seconds: %v", err)
		}

		m.DatasetLoadDuration, err = meter.Float64Histogram(
			"dataset_load_duration_seconds",
			metric.WithDescription("Duration of a full five-table load in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create dataset_load_duration_seconds: %v", err)
		}

		m.DatasetLoadErrorsTotal, err = meter.Int64Counter(
			"dataset_load_errors_total",
			metric.WithDescription("Total number of failed dataset loads"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create dataset_load_errors_total: %v", err)
		}

		m.TableCacheLookupsTotal, err = meter.Int64Counter(
			"table_cache_lookups_total",
			metric.WithDescription("Session table cache lookups by result"),
			metric.WithUnit("{lookup}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create table_cache_lookups_total: %v", err)
		}

		m.PipelineDuration, err = meter.Float64Histogram(
			"dashboard_pipeline_duration_seconds",
			metric.WithDescription("Duration of the join, filter and aggregation pass in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create dashboard_pipeline_duration_seconds: %v", err)
		}

		m.FilteredDestinations, err = meter.Int64Gauge(
			"dashboard_filtered_destinations",
			metric.WithDescription("Destinations in the last computed filtered set"),
			metric.WithUnit("{destination}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create dashboard_filtered_destinations: %v", err)
		}

		m.TemplateRenderDuration, err = meter.Float64Histogram(
			"template_render_duration_seconds",
			metric.WithDescription("Duration of template rendering in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create template_render_duration_seconds: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}

func (m *AppMetrics) RecordRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.String("http.status_code", strconv.Itoa(status)),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, d.Seconds(), attrs)
}

func (m *AppMetrics) RecordLoad(ctx context.Context, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.DatasetLoadDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("error", err != nil)))
	if err != nil {
		m.DatasetLoadErrorsTotal.Add(ctx, 1)
	}
}

func (m *AppMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.TableCacheLookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *AppMetrics) RecordPipeline(ctx context.Context, d time.Duration, rows int) {
	if m == nil {
		return
	}
	m.PipelineDuration.Record(ctx, d.Seconds())
	m.FilteredDestinations.Record(ctx, int64(rows))
}

func (m *AppMetrics) RecordRender(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.TemplateRenderDuration.Record(ctx, d.Seconds())
}
