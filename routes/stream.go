package routes

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fieldopt/fieldopt-server/internal/exportdiag"
	"github.com/fieldopt/fieldopt-server/pkg/fieldopt"
)

// streamHandler serves POST /v1/solve/stream (spec §4.9/§6.1): same request
// body as solveHandler, but replays the solve as "data: <json>\n\n" SSE
// frames.
type streamHandler struct {
	Engine *fieldopt.Engine
	Diag   *exportdiag.Ring
}

func (h *streamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(r)
	if err != nil {
		serveError(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		serveError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	id := newRequestID()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// nginx-specific, but harmless elsewhere; prevents proxy buffering from
	// delaying frames.
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("X-Request-Id", id)
	w.WriteHeader(http.StatusOK)

	bw := bufio.NewWriter(w)

	for ev := range h.Engine.SolveStream(r.Context(), payload) {
		b, err := json.Marshal(ev)
		if err != nil {
			slog.Error("solve stream: failed to marshal event", "error", err)
			return
		}
		bw.WriteString("data: ")
		bw.Write(b)
		bw.WriteString("\n\n")
		if err := bw.Flush(); err != nil {
			return // client disconnected
		}
		flusher.Flush()

		if ev.Type == "result" && h.Diag != nil && ev.Result != nil {
			h.Diag.Record(exportdiag.Report{
				RequestID:  id,
				Result:     string(ev.Result.Result),
				DurationMs: ev.Result.DurationMs,
				Iterations: ev.Result.Iterations,
			})
		}
	}
}
