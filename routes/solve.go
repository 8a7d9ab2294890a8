package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/fieldopt/fieldopt-server/internal/exportdiag"
	"github.com/fieldopt/fieldopt-server/internal/payloadschema"
	"github.com/fieldopt/fieldopt-server/pkg/fieldopt"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const maxPayloadBytes = 16 << 20 // 16MiB, generous for a weekly schedule request

// solveHandler serves POST /v1/solve (spec §4.9/§6.1): synchronous request,
// response body is the FieldOptimizerResult JSON.
type solveHandler struct {
	Engine *fieldopt.Engine
	Diag   *exportdiag.Ring
}

func (h *solveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(r)
	if err != nil {
		serveError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.Engine.Solve(r.Context(), payload)
	if err != nil {
		writeSolveError(w, err)
		return
	}

	id := newRequestID()
	if h.Diag != nil {
		h.Diag.Record(exportdiag.Report{
			RequestID:  id,
			Result:     string(res.Result),
			DurationMs: res.DurationMs,
			Iterations: res.Iterations,
		})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Request-Id", id)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("solve: failed to encode result", "error", err)
	}
}

// payloadSchema is compiled lazily, once, so a malformed schema panics on
// first use rather than at package init (same lazy-compile rationale as
// routes/data.go's dataExportSchemaJSON).
var payloadSchema = sync.OnceValue(func() *jsonschema.Schema {
	sch, err := payloadschema.Compile("https://fieldopt.example/schema/payload.json", payloadschema.PayloadSchema())
	if err != nil {
		panic(err)
	}
	return sch
})

func decodePayload(r *http.Request) (*fieldopt.FieldOptimizerPayload, error) {
	buf, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		return nil, errInvalidJSON
	}

	if err := payloadschema.Validate(payloadSchema(), buf); err != nil {
		return nil, fmt.Errorf("request body does not match schema: %w", err)
	}

	var payload fieldopt.FieldOptimizerPayload
	if err := json.Unmarshal(buf, &payload); err != nil {
		return nil, errInvalidJSON
	}
	return &payload, nil
}

var errInvalidJSON = errors.New("invalid request body: not valid json")

// writeSolveError maps the fieldopt error taxonomy (spec §7) to HTTP status.
// Engine.Solve only returns ReasonInvalidInput errors (400); failures are
// reported as result="failure" inside a normal 200 response, and any other
// error reaching this point is answered with 500.
func writeSolveError(w http.ResponseWriter, err error) {
	var fe *fieldopt.Error
	if errors.As(err, &fe) && fe.Reason == fieldopt.ReasonInvalidInput {
		serveError(w, fe.Error(), http.StatusBadRequest)
		return
	}
	slog.Error("solve: internal failure", "error", err)
	serveError(w, "internal server error: "+err.Error(), http.StatusInternalServerError)
}
