package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/domain/analytics"
	"github.com/FACorreiaa/tourism-dashboard/internal/app/domain/dashboard"
	"github.com/FACorreiaa/tourism-dashboard/internal/app/domain/dataset"
	middleware2 "github.com/FACorreiaa/tourism-dashboard/internal/app/middleware"
	"github.com/FACorreiaa/tourism-dashboard/internal/app/observability/metrics"
	"github.com/FACorreiaa/tourism-dashboard/internal/app/renderer"
	"github.com/FACorreiaa/tourism-dashboard/internal/pkg/config"
)

const sessionCookie = "dashboard_session"

// SetupRouter configures and returns the Gin router with all middleware and routes
func SetupRouter(cfg *config.Config, repo dataset.Repository, logger *zap.Logger, m *metrics.AppMetrics) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(ginzap.GinzapWithConfig(logger, &ginzap.Config{
		UTC:        true,
		TimeFormat: time.RFC3339,
		Context:    zapContextFunc(),
		SkipPaths:  []string{"/healthz"},
	}))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(middleware2.OTELGinMiddleware(ServiceName))
	r.Use(middleware2.ObservabilityMiddleware(m))
	r.Use(middleware2.CORSMiddleware())
	r.Use(middleware2.SecurityMiddleware())
	r.Use(sessions.Sessions(sessionCookie, newSessionStore(cfg.Dashboard.SessionSecret)))

	r.HTMLRender = &renderer.HTMLTemplRenderer{FallbackHTMLRenderer: r.HTMLRender}

	loader := dataset.NewLoader(repo, dataset.LoaderOptions{}, logger, m)
	store := dataset.NewStore(loader, cfg.Dashboard.CacheTTL, logger, m)
	service := analytics.NewService(store, cfg.Dashboard.JoinPolicy, logger, m)
	handler := dashboard.NewHandler(service, store, logger, m)

	handler.RegisterRoutes(r)
	r.GET("/healthz", func(c *gin.Context) {
		stats := store.Stats()
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"cache": gin.H{
				"hits":   stats.Hits,
				"misses": stats.Misses,
				"sets":   stats.Sets,
			},
		})
	})

	return r
}

func newSessionStore(secret string) sessions.Store {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// zapContextFunc returns the Zap context function for logging
func zapContextFunc() ginzap.Fn {
	return func(c *gin.Context) []zapcore.Field {
		fields := []zapcore.Field{}

		if requestID := c.Writer.Header().Get("X-Request-Id"); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}

		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			fields = append(fields,
				zap.String("trace_id", span.SpanContext().TraceID().String()),
				zap.String("span_id", span.SpanContext().SpanID().String()),
			)
		}

		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}

		return fields
	}
}
