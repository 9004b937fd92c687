package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type pingStub struct {
	err error
}

func (p *pingStub) Ping(ctx context.Context) error { return p.err }

func newTestHealthServer(db DatabasePinger) *Server {
	return NewServer(Config{
		ServiceName: "collector-test",
		Version:     "test",
		Commit:      "abc1234",
		Port:        "0",
		DB:          db,
	})
}

func decodeReady(t *testing.T, rec *httptest.ResponseRecorder) ReadyResponse {
	t.Helper()
	var body ReadyResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding ready response: %v", err)
	}
	return body
}

func TestReadyStartsNotReady(t *testing.T) {
	s := newTestHealthServer(nil)

	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before SetReady, got %d", rec.Code)
	}
	body := decodeReady(t, rec)
	if body.Checks["service"] != "not_ready" {
		t.Errorf("service check = %q, want not_ready", body.Checks["service"])
	}
}

func TestReadyFlipsWithSetReady(t *testing.T) {
	s := newTestHealthServer(&pingStub{})
	s.SetReady(true)

	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 when ready, got %d", rec.Code)
	}
	body := decodeReady(t, rec)
	if body.Status != "ok" || body.Checks["database"] != "ok" {
		t.Errorf("unexpected ready body: %+v", body)
	}
}

func TestReadyReportsDatabaseFailure(t *testing.T) {
	s := newTestHealthServer(&pingStub{err: errors.New("connection refused")})
	s.SetReady(true)

	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 on db failure, got %d", rec.Code)
	}
	body := decodeReady(t, rec)
	if body.Checks["database"] == "ok" {
		t.Errorf("database check should report the ping error, got %+v", body.Checks)
	}
}

func TestReadyRunsRegisteredChecks(t *testing.T) {
	s := newTestHealthServer(nil)
	s.SetReady(true)
	s.RegisterCheck("scheduler", func(ctx context.Context) error {
		return errors.New("not running")
	})

	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 on failing check, got %d", rec.Code)
	}
	body := decodeReady(t, rec)
	if body.Checks["scheduler"] != "error: not running" {
		t.Errorf("scheduler check = %q", body.Checks["scheduler"])
	}

	// A replacement check with the same name takes over
	s.RegisterCheck("scheduler", func(ctx context.Context) error { return nil })
	rec = httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after check replaced, got %d", rec.Code)
	}
}

func TestHealthReportsBuildIdentity(t *testing.T) {
	s := newTestHealthServer(nil)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding health response: %v", err)
	}
	if body.Service != "collector-test" || body.Version != "test" || body.Commit != "abc1234" {
		t.Errorf("unexpected health body: %+v", body)
	}
}
