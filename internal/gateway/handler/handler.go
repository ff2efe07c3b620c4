// Package handler exposes the gateway's HTTP endpoints: login and the two
// transaction relays. Handlers stay thin; all business rules live in the
// contract and come back as error strings.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campusvote/internal/gateway"
	"campusvote/internal/gateway/lockout"
	"campusvote/internal/gateway/metrics"
	"campusvote/internal/gateway/middleware"
	"campusvote/internal/jwttoken"
)

// Handler handles the gateway endpoints.
type Handler struct {
	logger  *slog.Logger
	invoker gateway.Invoker
	tokens  *jwttoken.Service
	lockout *lockout.Policy
	metrics *metrics.Metrics
}

// New creates a new gateway Handler.
func New(
	invoker gateway.Invoker,
	tokens *jwttoken.Service,
	lockoutPolicy *lockout.Policy,
	logger *slog.Logger,
	m *metrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		invoker: invoker,
		tokens:  tokens,
		lockout: lockoutPolicy,
		metrics: m,
	}
}

// Router builds the full gateway router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.Logger(h.logger))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusForbidden, "You shall not pass!")
	})
	r.Handle("/metrics", promhttp.Handler())

	api := chi.NewRouter()
	api.Use(middleware.Authenticate(h.tokens, h.logger))
	api.Post("/authenticate", h.handleAuthenticate)
	api.Post("/tx/submit", h.handleSubmit)
	api.Post("/tx/evaluate", h.handleEvaluate)

	r.Mount("/api", api)
	return r
}

const invokeTimeout = 30 * time.Second

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
