// Package api declares HTTP contracts and route registration helpers for
// the append store.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/internal/domain/types"
	"github.com/okian/roster/pkg/logger"
)

const (
	maxBodyBytes = 1 << 20
	corsMaxAge   = 300
)

// RootMessage is the body of GET /.
const RootMessage = "Registration handler is running!"

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Append stores one submission.
	Append(ctx context.Context, sub types.Submission) (model.Row, error)

	// Rows returns the header and all stored rows.
	Rows(ctx context.Context) (types.RowsResponse, error)
}

// Server wires HTTP routes for the append store.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	submissionsHandler *SubmissionsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		submissionsHandler: NewSubmissionsHandler(deps),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/", MetricsMiddleware(handleRoot, "root"))
	r.Post("/", MetricsMiddleware(s.submissionsHandler.HandleAppend, "submissions"))
	r.Post("/submissions", MetricsMiddleware(s.submissionsHandler.HandleAppend, "submissions"))
	r.Get("/submissions", MetricsMiddleware(s.submissionsHandler.HandleRows, "submissions_read"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
}

// NewRouter returns a chi router with request ids, panic recovery and a
// cross-origin policy allowing allowedOrigins.
func NewRouter(allowedOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         corsMaxAge,
	}))
	return r
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(RootMessage))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with the structured failure shape every client reads.
// Internal causes are logged, not sent.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := http.StatusText(status)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err),
		)
	} else if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, types.AppendResult{Success: false, Error: msg, Code: code})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, types.CodeBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, types.CodeDuplicate
	case errors.Is(err, ErrRefused):
		return http.StatusUnprocessableEntity, types.CodeRejected
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, types.CodeInternal
	default:
		return http.StatusInternalServerError, types.CodeInternal
	}
}
