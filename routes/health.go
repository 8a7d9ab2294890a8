package routes

import "net/http"

// healthHandler serves GET /healthz: liveness only, no dependency checks,
// since this service has no external dependencies to check (spec §5).
type healthHandler struct{}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}
