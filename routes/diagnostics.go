package routes

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/fieldopt/fieldopt-server/internal/exportdiag"
)

// diagnosticsHandler serves GET /v1/diagnostics/{id}.json and .csv, a
// supplemented feature (not in the distilled spec, see DESIGN.md) modelled
// on routes/data.go's dataExportHandler: gzip negotiation plus ETag, trimmed
// down from that handler's lazy weak-pointer cache to a lookup against the
// fixed-size in-process ring buffer.
type diagnosticsHandler struct {
	Base string
	Diag *exportdiag.Ring
}

func (h *diagnosticsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		serveError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.Diag == nil {
		serveError(w, "diagnostics not available", http.StatusNotFound)
		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, h.Base)
	if !ok || rest == "" {
		serveError(w, "not found", http.StatusNotFound)
		return
	}

	var id, format string
	if s, ok := strings.CutSuffix(rest, ".json"); ok {
		id, format = s, "json"
	} else if s, ok := strings.CutSuffix(rest, ".csv"); ok {
		id, format = s, "csv"
	} else {
		serveError(w, "unknown format, expected .json or .csv", http.StatusNotFound)
		return
	}

	report, ok := h.Diag.Get(id)
	if !ok {
		serveError(w, "no diagnostics found for "+strconv.Quote(id), http.StatusNotFound)
		return
	}

	var (
		buf         []byte
		contentType string
		err         error
	)
	switch format {
	case "json":
		buf, err = exportdiag.WriteJSON(report)
		contentType = "application/json; charset=utf-8"
	case "csv":
		buf, err = exportdiag.WriteCSV(report)
		contentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		serveError(w, "internal error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Add("Vary", "Accept-Encoding")
	w.Header().Set("Cache-Control", "private, no-cache")
	w.Header().Set("ETag", exportdiag.ETag(buf))

	if slices.Contains(r.Header.Values("If-None-Match"), exportdiag.ETag(buf)) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if acceptsGzip(r) {
		gz, err := exportdiag.Gzip(buf)
		if err != nil {
			serveError(w, "internal error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(gz)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			w.Write(gz)
		}
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		w.Write(buf)
	}
}

func acceptsGzip(r *http.Request) bool {
	for _, v := range r.Header.Values("Accept-Encoding") {
		if strings.Contains(v, "gzip") {
			return true
		}
	}
	return false
}
