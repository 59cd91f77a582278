// Package httptransport assembles the HTTP surface. Feature packages register
// their own routes; this package owns only the shared middleware chain and the
// operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"leadflow/internal/platform/middleware"
	"leadflow/pkg/platform/httputil"
)

// Registrar is implemented by feature handlers that mount their own routes.
type Registrar interface {
	Register(r chi.Router)
}

// Options carries the transport-level knobs.
type Options struct {
	AllowedOrigins []string
	// Gate handles websocket upgrades. Mounted outside the JSON middleware
	// chain so upgrade responses are not wrapped.
	Gate http.Handler
	// HealthChecks run on /readyz; a failing check flips the status.
	HealthChecks map[string]func() error
}

// NewRouter wires the middleware chain, operational endpoints, the websocket
// gate, and every feature registrar.
func NewRouter(logger *slog.Logger, opts Options, features ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(opts.HealthChecks))
	r.Handle("/metrics", promhttp.Handler())

	for _, f := range features {
		f.Register(r)
	}

	if opts.Gate != nil {
		r.Handle("/ws", opts.Gate)
	}

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReadyz(checks map[string]func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}
		httputil.WriteJSON(w, status, results)
	}
}
