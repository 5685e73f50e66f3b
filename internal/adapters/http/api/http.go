// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/okian/teamsplit/internal/adapters/history"
	"github.com/okian/teamsplit/internal/adapters/http/swagger"
	service "github.com/okian/teamsplit/internal/app"
	"github.com/okian/teamsplit/internal/domain/roster"
	"github.com/okian/teamsplit/internal/domain/search"
	"github.com/okian/teamsplit/internal/domain/tiebreak"
	"github.com/okian/teamsplit/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Propose(ctx context.Context, req service.Request) (service.Proposal, error)
	Players(ctx context.Context, online []string) ([]service.PlayerView, error)
}

// Server wires HTTP routes for the proposal API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	playersHandler   *PlayersHandler
	proposalsHandler *ProposalsHandler

	limiter *IPRateLimiter
	logger  logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit bounds POST /proposals per client IP.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 && burst > 0 {
			s.limiter = NewIPRateLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		playersHandler:   NewPlayersHandler(deps),
		proposalsHandler: NewProposalsHandler(deps),
		logger:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/players", MetricsMiddleware(s.playersHandler.HandleGetPlayers, "players"))
	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(RateLimitMiddleware(s.limiter, "proposals"))
		}
		r.Post("/proposals", MetricsMiddleware(s.proposalsHandler.HandlePostProposal, "proposals"))
	})
}

// Handler returns a router with the common middleware and every route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Use(s.logRequests)
	swagger.Register(r)
	s.Register(r)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug(r.Context(), "http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", ww.Status()),
			logger.String("requestID", middleware.GetReqID(r.Context())),
		)
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps service errors onto an HTTP status and error code.
func classify(err error) (int, string) {
	var (
		unknown  *roster.UnknownPlayerError
		dupName  *roster.DuplicateNameError
		badToken *history.InvalidResultTokenError
		dupCol   *history.DuplicateColumnError
	)
	switch {
	case errors.As(err, &unknown):
		return http.StatusNotFound, "unknown_player"
	case errors.As(err, &dupName):
		return http.StatusBadRequest, "duplicate_player"
	case errors.Is(err, service.ErrNoPlayers),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, search.ErrTooFewPlayers),
		errors.Is(err, search.ErrTooManyPlayers),
		errors.Is(err, tiebreak.ErrInvalidGameNumber):
		return http.StatusBadRequest, "bad_request"
	case errors.As(err, &badToken), errors.As(err, &dupCol),
		errors.Is(err, history.ErrEmptyHistory), errors.Is(err, history.ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity, "bad_history"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "canceled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
