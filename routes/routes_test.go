package routes

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fieldopt/fieldopt-server/internal/exportdiag"
	"github.com/fieldopt/fieldopt-server/pkg/fieldopt"
	"github.com/fieldopt/fieldopt-server/pkg/solver/reference"
)

func testHandler(t *testing.T, secret string) http.Handler {
	t.Helper()
	h, err := New(Config{
		Engine:    fieldopt.NewEngine(reference.New()),
		Diag:      exportdiag.NewRing(),
		APISecret: secret,
	})
	if err != nil {
		t.Fatal(err)
	}
	return h
}

const validPayload = `{
	"start_time": "00:00", "end_time": "01:00",
	"stadiums": [{"id": "F1", "name": "Field 1", "size": 1}],
	"teams": [{
		"id": "T1", "name": "Team 1", "min_number_of_activities": 1, "max_number_of_activities": 1,
		"duration": 2, "size_required": 1, "priority": 1,
		"time_range": {"start_time": "00:00", "end_time": "01:00", "day_indexes": [0]}
	}]
}`

// P8: missing or wrong bearer token is rejected with 401.
func TestAuthMissingToken(t *testing.T) {
	h := testHandler(t, "secret123")
	req := httptest.NewRequest(http.MethodPost, "/v1/solve", bytes.NewBufferString(validPayload))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAuthWrongToken(t *testing.T) {
	h := testHandler(t, "secret123")
	req := httptest.NewRequest(http.MethodPost, "/v1/solve", bytes.NewBufferString(validPayload))
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

// P8: unconfigured secret rejects every request with 500, even a correct-
// looking token.
func TestAuthUnconfiguredSecret(t *testing.T) {
	h := testHandler(t, "")
	req := httptest.NewRequest(http.MethodPost, "/v1/solve", bytes.NewBufferString(validPayload))
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestSolveWithValidToken(t *testing.T) {
	h := testHandler(t, "secret123")
	req := httptest.NewRequest(http.MethodPost, "/v1/solve", bytes.NewBufferString(validPayload))
	req.Header.Set("Authorization", "Bearer secret123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	if id := rec.Header().Get("X-Request-Id"); id == "" {
		t.Fatal("expected X-Request-Id header")
	}
}

func TestHealthzUnauthenticated(t *testing.T) {
	h := testHandler(t, "secret123")
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestDiagnosticsRoundTrip(t *testing.T) {
	h := testHandler(t, "secret123")

	solveReq := httptest.NewRequest(http.MethodPost, "/v1/solve", bytes.NewBufferString(validPayload))
	solveReq.Header.Set("Authorization", "Bearer secret123")
	solveRec := httptest.NewRecorder()
	h.ServeHTTP(solveRec, solveReq)
	id := solveRec.Header().Get("X-Request-Id")
	if id == "" {
		t.Fatal("expected X-Request-Id on solve response")
	}

	diagReq := httptest.NewRequest(http.MethodGet, "/v1/diagnostics/"+id+".json", nil)
	diagRec := httptest.NewRecorder()
	h.ServeHTTP(diagRec, diagReq)
	if diagRec.Code != http.StatusOK {
		t.Fatalf("diagnostics status = %d, want 200, body=%s", diagRec.Code, diagRec.Body.String())
	}
}

func TestDiagnosticsUnknownID(t *testing.T) {
	h := testHandler(t, "secret123")
	req := httptest.NewRequest(http.MethodGet, "/v1/diagnostics/doesnotexist.json", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
