// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/okian/tipoff/internal/app"
	"github.com/okian/tipoff/internal/config"
	"github.com/okian/tipoff/internal/domain/model"
	"github.com/okian/tipoff/pkg/logger"
)

// maxBodyBytes bounds a request body before decoding.
const maxBodyBytes = 32 << 20

// Server wires HTTP routes for the feature API. Every request runs its own
// pass with fresh engines, so handlers share nothing but the read-only
// configuration.
type Server struct {
	cfg      *config.Config
	validate *validator.Validate
	logger   logger.Logger

	healthHandler    *HealthHandler
	featuresHandler  *FeaturesHandler
	standingsHandler *StandingsHandler
	configHandler    *ConfigHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}

	s.healthHandler = NewHealthHandler()
	s.featuresHandler = &FeaturesHandler{server: s}
	s.standingsHandler = &StandingsHandler{server: s}
	s.configHandler = &ConfigHandler{cfg: cfg}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/features", MetricsMiddleware(s.featuresHandler.HandlePostFeatures, "features"))
	mux.HandleFunc("/standings", MetricsMiddleware(s.standingsHandler.HandlePostStandings, "standings"))
	mux.HandleFunc("/config", MetricsMiddleware(s.configHandler.HandleGetConfig, "config"))
}

// pass is one finished request pass.
type pass struct {
	assembler *app.Assembler
	stats     model.StatSet
	rows      []model.EnrichedGameRecord
}

// runPass decodes a pass request and folds its games through a fresh
// assembler.
func (s *Server) runPass(op string, w http.ResponseWriter, r *http.Request) (*pass, error) {
	req, err := s.decode(op, w, r)
	if err != nil {
		return nil, err
	}

	weights := s.cfg.RollingWeights
	if len(req.Weights) > 0 {
		weights = req.Weights
	}
	stats, err := req.statSet()
	if err != nil {
		return nil, WrapKind(op, ErrInvalidSetup, err)
	}
	games, err := req.records(stats)
	if err != nil {
		return nil, WrapKind(op, ErrBadRequest, err)
	}

	cutoff, err := s.cfg.Cutoff()
	if err != nil {
		return nil, WrapKind(op, ErrInvalidSetup, err)
	}
	a, err := app.New(
		app.WithWeights(weights),
		app.WithStats(stats),
		app.WithElo(s.cfg.EloOptions()...),
		app.WithCutoff(cutoff),
		app.WithSkipUnknownOutcomes(s.cfg.SkipUnknownOutcomes),
		app.WithLogger(s.logger.Named("assembler")),
	)
	if err != nil {
		return nil, WrapKind(op, ErrInvalidSetup, err)
	}

	rows, err := a.Run(r.Context(), games)
	if err != nil {
		return nil, passError(op, err)
	}
	return &pass{assembler: a, stats: stats, rows: rows}, nil
}

// passError classifies an assembler failure.
func passError(op string, err error) error {
	switch {
	case errors.Is(err, app.ErrOrderingViolation), errors.Is(err, app.ErrUnknownOutcome):
		return WrapKind(op, ErrUnprocessable, err)
	case errors.Is(err, app.ErrStatCount):
		return WrapKind(op, ErrBadRequest, err)
	default:
		return Wrap(op, err)
	}
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

// writeKindError maps an error's kind to a status code and response code.
func writeKindError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrInvalidSetup):
		writeError(w, http.StatusBadRequest, "invalid_config", err)
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, app.ErrOrderingViolation):
		writeError(w, http.StatusUnprocessableEntity, "ordering_violation", err)
	case errors.Is(err, app.ErrUnknownOutcome):
		writeError(w, http.StatusUnprocessableEntity, "unknown_outcome", err)
	case errors.Is(err, ErrUnprocessable):
		writeError(w, http.StatusUnprocessableEntity, "unprocessable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
