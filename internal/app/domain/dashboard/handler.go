// Package dashboard serves the dashboard page, its JSON form and the CSV export.
package dashboard

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/domain/analytics"
	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
	"github.com/FACorreiaa/tourism-dashboard/internal/app/observability/metrics"
)

const (
	pageTitle      = "Tourism Dashboard"
	sessionKey     = "sid"
	exportPath     = "/export/destinations.csv"
	exportName     = "destinations.csv"
	csvContentType = "text/csv; charset=utf-8"
)

// Invalidator drops a session's cached tables.
type Invalidator interface {
	Invalidate(session string)
}

type Handler struct {
	service analytics.Service
	store   Invalidator
	logger  *zap.Logger
	metrics *metrics.AppMetrics
}

func NewHandler(service analytics.Service, store Invalidator, logger *zap.Logger, m *metrics.AppMetrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service: service,
		store:   store,
		logger:  logger,
		metrics: m,
	}
}

// RegisterRoutes mounts the dashboard endpoints. The router must already carry the
// sessions middleware.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.ShowDashboard)
	r.GET("/api/dashboard", h.DashboardJSON)
	r.GET(exportPath, h.ExportCSV)
	r.POST("/api/refresh", h.Refresh)
}

// ShowDashboard renders the full page for the current criteria.
func (h *Handler) ShowDashboard(c *gin.Context) {
	session := SessionID(c, h.logger)

	dashboard, err := h.build(c, session)
	if err != nil {
		h.renderPage(c, StatusFor(err), ErrorBanner(errorMessage(err)))
		return
	}

	exportURL := exportPath
	if q := c.Request.URL.RawQuery; q != "" {
		exportURL += "?" + q
	}
	h.renderPage(c, http.StatusOK, DashboardPage(dashboard, exportURL))
}

// DashboardJSON returns the same dashboard as ShowDashboard as JSON.
func (h *Handler) DashboardJSON(c *gin.Context) {
	session := SessionID(c, h.logger)

	dashboard, err := h.build(c, session)
	if err != nil {
		c.JSON(StatusFor(err), gin.H{"error": errorMessage(err)})
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// ExportCSV downloads the filtered destination listing.
func (h *Handler) ExportCSV(c *gin.Context) {
	session := SessionID(c, h.logger)
	ctx := c.Request.Context()

	options, err := h.service.Options(ctx, session)
	if err != nil {
		h.fail(c, "Failed to load filter options", err)
		return
	}
	criteria, err := ParseCriteria(c, options)
	if err != nil {
		h.fail(c, "Invalid filter criteria", err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportDestinations(ctx, session, criteria, &buf); err != nil {
		h.fail(c, "Failed to export destinations", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+exportName+`"`)
	c.Data(http.StatusOK, csvContentType, buf.Bytes())
}

// Refresh forgets this session's tables; the next request reloads them.
func (h *Handler) Refresh(c *gin.Context) {
	session := SessionID(c, h.logger)
	h.store.Invalidate(session)
	h.logger.Info("Session refresh requested", zap.String("session", session))

	if c.GetHeader("HX-Request") == "true" {
		c.Header("HX-Refresh", "true")
	}
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}

func (h *Handler) build(c *gin.Context, session string) (*models.Dashboard, error) {
	ctx := c.Request.Context()

	options, err := h.service.Options(ctx, session)
	if err != nil {
		h.logger.Error("Failed to load filter options", zap.String("session", session), zap.Error(err))
		return nil, err
	}
	criteria, err := ParseCriteria(c, options)
	if err != nil {
		h.logger.Warn("Invalid filter criteria", zap.String("query", c.Request.URL.RawQuery), zap.Error(err))
		return nil, err
	}
	dashboard, err := h.service.Dashboard(ctx, session, criteria)
	if err != nil {
		h.logger.Error("Failed to build dashboard", zap.String("session", session), zap.Error(err))
		return nil, err
	}
	return dashboard, nil
}

func (h *Handler) renderPage(c *gin.Context, status int, content templ.Component) {
	start := time.Now()
	c.HTML(status, "", LayoutPage(models.LayoutTempl{
		Title:     pageTitle,
		Nav:       models.MainNav,
		ActiveNav: "Destinations",
		Content:   content,
	}))
	h.metrics.RecordRender(c.Request.Context(), time.Since(start))
}

func (h *Handler) fail(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	c.String(StatusFor(err), errorMessage(err))
}

// StatusFor maps pipeline errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidCriteria), errors.Is(err, models.ErrUnknownSession):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidCriteria):
		return err.Error()
	case errors.Is(err, models.ErrDataUnavailable):
		return "The tourism dataset is currently unavailable. Please try again later."
	default:
		return "Something went wrong while building the dashboard."
	}
}

// SessionID returns the dashboard session handle stored in the cookie session,
// issuing a new one on first visit.
func SessionID(c *gin.Context, logger *zap.Logger) string {
	session := sessions.Default(c)
	if id, ok := session.Get(sessionKey).(string); ok && id != "" {
		return id
	}

	id := uuid.NewString()
	session.Set(sessionKey, id)
	if err := session.Save(); err != nil {
		logger.Warn("Failed to persist session handle", zap.Error(err))
	}
	return id
}
