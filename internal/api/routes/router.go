package routes

import (
	"net/http"

	"github.com/zatekoja/doctordirectory/backend/internal/api/handlers"
	"github.com/zatekoja/doctordirectory/backend/internal/api/middleware"
	"github.com/zatekoja/doctordirectory/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	doctorHandler *handlers.DoctorHandler
	reportHandler *handlers.ReportHandler
	sseHandler    *handlers.SSEHandler

	responseCache  *middleware.ResponseCache
	version        middleware.VersionFunc
	allowedOrigins []string
	metrics        *observability.Metrics
}

// Options carries the optional pieces of the middleware chain
type Options struct {
	// ResponseCache may be nil when Redis is disabled.
	ResponseCache  *middleware.ResponseCache
	Version        middleware.VersionFunc
	AllowedOrigins []string
	Metrics        *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	doctorHandler *handlers.DoctorHandler,
	reportHandler *handlers.ReportHandler,
	sseHandler *handlers.SSEHandler,
	opts Options,
) *Router {
	version := opts.Version
	if version == nil {
		version = func() string { return "" }
	}
	return &Router{
		mux:            http.NewServeMux(),
		doctorHandler:  doctorHandler,
		reportHandler:  reportHandler,
		sseHandler:     sseHandler,
		responseCache:  opts.ResponseCache,
		version:        version,
		allowedOrigins: opts.AllowedOrigins,
		metrics:        opts.Metrics,
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

	// Dataset reads; these change only when a new dataset is published
	r.mux.Handle("GET /api/doctors", r.cacheable(r.doctorHandler.ListDoctors))
	r.mux.Handle("GET /api/doctors/{fakeId}", r.cacheable(r.doctorHandler.GetDoctor))
	r.mux.Handle("GET /api/pages/{type}/{slugName}/{idInst}", r.cacheable(r.doctorHandler.GetPage))
	r.mux.Handle("GET /api/paths", r.cacheable(r.doctorHandler.ListPaths))
	r.mux.HandleFunc("GET /api/dataset", r.doctorHandler.GetDataset)

	r.mux.HandleFunc("POST /api/reports/validate", r.reportHandler.ValidateReport)

	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/stream/dataset", r.sseHandler.StreamDatasetUpdates)
	}

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}

// cacheable wraps a read handler with ETag, gzip and the response cache.
// The response cache stores uncompressed bodies.
func (r *Router) cacheable(h http.HandlerFunc) http.Handler {
	var handler http.Handler = h
	if r.responseCache != nil {
		handler = r.responseCache.Middleware(handler)
	}
	handler = middleware.Compression(handler)
	return middleware.DatasetETag(r.version)(handler)
}
