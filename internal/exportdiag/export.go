package exportdiag

import (
	"bytes"
	"crypto/sha1"
	"encoding/base32"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/klauspost/compress/gzip"
)

// WriteJSON marshals r as a single JSON object.
func WriteJSON(r Report) ([]byte, error) {
	return json.Marshal(r)
}

// WriteCSV writes one row per iteration, matching the teacher's
// table-per-concern CSV shape (routes/data.go's export handler) at the
// smaller scale a single solve report needs: no reflection-driven table
// system, just named columns.
func WriteCSV(r Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"request_id", "iteration", "time_limit", "gap_limit", "elapsed_ms", "solve_result", "preference_score", "gap_percent", "abs_gap"}); err != nil {
		return nil, err
	}
	for _, it := range r.Iterations {
		score := ""
		if it.PreferenceScore != nil {
			score = strconv.FormatFloat(*it.PreferenceScore, 'f', -1, 64)
		}
		row := []string{
			r.RequestID,
			strconv.Itoa(it.Iteration),
			strconv.FormatFloat(it.TimeLimit, 'f', -1, 64),
			strconv.FormatFloat(it.GapLimit, 'f', -1, 64),
			strconv.FormatFloat(it.ElapsedMs, 'f', -1, 64),
			it.SolveResult,
			score,
			strconv.FormatFloat(it.GapPercent, 'f', -1, 64),
			strconv.FormatFloat(it.AbsGap, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Gzip compresses buf using klauspost/compress/gzip, matching the
// compression library the teacher already depends on for static assets.
func Gzip(buf []byte) ([]byte, error) {
	var out bytes.Buffer
	zw := gzip.NewWriter(&out)
	if _, err := zw.Write(buf); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// ETag returns a weak etag for buf, matching the `W/"<base32 sha1>"` shape
// routes/data.go uses for its own exports.
func ETag(buf []byte) string {
	sum := sha1.Sum(buf)
	return fmt.Sprintf(`W/"%s"`, base32.StdEncoding.EncodeToString(sum[:]))
}
