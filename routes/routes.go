// Package routes contains handlers.
package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fieldopt/fieldopt-server/pkg/fieldopt"
	"github.com/fieldopt/fieldopt-server/internal/exportdiag"
)

func commonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

// Config wires the handlers to the engine, diagnostics ring, and auth
// secret.
type Config struct {
	Engine    *fieldopt.Engine
	Diag      *exportdiag.Ring
	APISecret string
}

// New builds the full handler tree (spec §6.1/§7): bearer-auth-wrapped
// solve/solve-stream endpoints, an unauthenticated diagnostics export, and a
// liveness probe.
func New(cfg Config) (http.Handler, error) {
	if cfg.Engine == nil {
		return nil, fieldoptConfigError("no engine specified")
	}

	mux := http.NewServeMux()

	inner := http.NewServeMux()
	inner.Handle("POST /v1/solve", &solveHandler{Engine: cfg.Engine, Diag: cfg.Diag})
	inner.Handle("POST /v1/solve/stream", &streamHandler{Engine: cfg.Engine, Diag: cfg.Diag})
	authed := &authMiddleware{Secret: cfg.APISecret, Next: inner}

	mux.Handle("/v1/solve", authed)
	mux.Handle("/v1/solve/stream", authed)
	mux.Handle("/v1/diagnostics/", &diagnosticsHandler{Base: "/v1/diagnostics/", Diag: cfg.Diag})
	mux.Handle("GET /healthz", &healthHandler{})

	return commonMiddleware(mux), nil
}

type fieldoptConfigError string

func (e fieldoptConfigError) Error() string { return string(e) }
