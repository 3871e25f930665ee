package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer() *Server {
	return NewServer(Config{ServiceName: "stock-screener", Version: "test", Port: "0"})
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer()
	recorder := httptest.NewRecorder()
	s.handleHealth(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Service != "stock-screener" {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleReadyNotReadyByDefault(t *testing.T) {
	s := newTestServer()
	recorder := httptest.NewRecorder()
	s.handleReady(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 before SetReady", recorder.Code)
	}
}

func TestHandleReadyRunsChecks(t *testing.T) {
	s := newTestServer()
	s.SetReady(true)
	s.AddCheck("market_data", func(ctx context.Context) error { return nil })

	recorder := httptest.NewRecorder()
	s.handleReady(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d with passing checks", recorder.Code)
	}

	var resp ReadyResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Checks["market_data"] != "ok" {
		t.Errorf("checks = %v", resp.Checks)
	}

	s.AddCheck("provider", func(ctx context.Context) error { return fmt.Errorf("unreachable") })
	recorder = httptest.NewRecorder()
	s.handleReady(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d with a failing check", recorder.Code)
	}
}
