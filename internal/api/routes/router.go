package routes

import (
	"net/http"

	"github.com/fleetshare/coverage-engine/internal/api/handlers"
	"github.com/fleetshare/coverage-engine/internal/api/middleware"
	"github.com/fleetshare/coverage-engine/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	coverageHandler   *handlers.CoverageHandler
	gapReportHandler  *handlers.GapReportHandler
	tierToggleHandler *handlers.TierToggleHandler

	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	coverageHandler *handlers.CoverageHandler,
	gapReportHandler *handlers.GapReportHandler,
	tierToggleHandler *handlers.TierToggleHandler,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		coverageHandler:   coverageHandler,
		gapReportHandler:  gapReportHandler,
		tierToggleHandler: tierToggleHandler,
		allowedOrigins:    allowedOrigins,
		metrics:           metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Operator coverage endpoints
	r.mux.HandleFunc("GET /api/operators/{id}/coverage", r.coverageHandler.GetOperatorCoverage)
	r.mux.HandleFunc("GET /api/operators/{id}/coverage/preview", r.coverageHandler.PreviewProvider)
	r.mux.HandleFunc("POST /api/operators/{id}/coverage-tier", r.tierToggleHandler.ToggleTier)

	// Admin endpoints
	r.mux.HandleFunc("GET /api/admin/coverage-gaps", r.gapReportHandler.GetCoverageGaps)

	// last middleware applied is outermost
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
