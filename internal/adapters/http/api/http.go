// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/pacematch/internal/app"
	"github.com/okian/pacematch/internal/domain/dataset"
	"github.com/okian/pacematch/internal/domain/race"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	RunDependencies
	AverageDependencies
	RaceDependencies
}

// Server wires HTTP routes for the linkage API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	runsHandler    *RunsHandler
	racesHandler   *RacesHandler
	averageHandler *AverageHandler
	runLimiter     *rate.Limiter
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithRunRate limits POST /runs to perMinute requests with a burst of the same
// size. Zero or negative disables the limit.
func WithRunRate(perMinute int) ServerOption {
	return func(s *Server) {
		if perMinute > 0 {
			s.runLimiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		runsHandler:    NewRunsHandler(deps),
		racesHandler:   NewRacesHandler(deps),
		averageHandler: NewAverageHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	submit := http.HandlerFunc(s.runsHandler.HandlePostRun)
	if s.runLimiter != nil {
		submit = RateLimitMiddleware(submit, s.runLimiter, "runs")
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/runs", MetricsMiddleware(submit, "runs"))
	mux.HandleFunc("/runs/", MetricsMiddleware(s.runsHandler.HandleGetRun, "run"))
	mux.HandleFunc("/races", MetricsMiddleware(s.racesHandler.HandleGetRaces, "races"))
	mux.HandleFunc("/average", MetricsMiddleware(s.averageHandler.HandleGetAverage, "average"))
}

// Compile-time check that the service satisfies the handler contracts.
var _ Dependencies = (*app.Service)(nil)

// Dataset is the read handle queried by the average endpoint.
type Dataset = dataset.Dataset

// Catalog is the race catalog listed by the races endpoint.
type Catalog = race.Catalog

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
