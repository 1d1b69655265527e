package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

func serve(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealthAndReady(t *testing.T) {
	tests := []struct {
		name       string
		rpcUp      bool
		wantCode   int
		wantStatus string
	}{
		{"healthy", true, http.StatusOK, "ok"},
		{"degraded", false, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(0, "v1.2.3", &mockLogger{})
			s.RegisterCheck("rpc", func(ctx context.Context) (bool, string) {
				if tt.rpcUp {
					return true, "connected"
				}
				return false, "disconnected"
			})

			rec := serve(t, s, http.MethodGet, "/health")
			if rec.Code != tt.wantCode {
				t.Errorf("/health code = %d, want %d", rec.Code, tt.wantCode)
			}

			var status Status
			if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if status.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status.Status, tt.wantStatus)
			}
			if status.Version != "v1.2.3" {
				t.Errorf("version = %q, want v1.2.3", status.Version)
			}
			if status.Checks["rpc"].Healthy != tt.rpcUp {
				t.Errorf("checks[rpc].Healthy = %v, want %v", status.Checks["rpc"].Healthy, tt.rpcUp)
			}

			rec = serve(t, s, http.MethodGet, "/ready")
			if rec.Code != tt.wantCode {
				t.Errorf("/ready code = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestLive(t *testing.T) {
	s := NewServer(0, "", &mockLogger{})
	s.RegisterCheck("down", func(ctx context.Context) (bool, string) { return false, "" })

	if rec := serve(t, s, http.MethodGet, "/live"); rec.Code != http.StatusOK {
		t.Errorf("/live code = %d, want 200", rec.Code)
	}
}

func TestAction(t *testing.T) {
	calls := 0
	s := NewServer(0, "", &mockLogger{})
	s.RegisterAction("breaker/reset", func(ctx context.Context) (string, error) {
		calls++
		return "execution re-enabled", nil
	})
	s.RegisterAction("fail", func(ctx context.Context) (string, error) {
		return "", errors.New("boom")
	})

	tests := []struct {
		name      string
		method    string
		path      string
		wantCode  int
		wantOK    bool
		wantCalls int
	}{
		{"post resets", http.MethodPost, "/breaker/reset", http.StatusOK, true, 1},
		{"get rejected", http.MethodGet, "/breaker/reset", http.StatusMethodNotAllowed, false, 1},
		{"action error", http.MethodPost, "/fail", http.StatusInternalServerError, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, s, tt.method, tt.path)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}

			var res ActionResult
			if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if res.OK != tt.wantOK {
				t.Errorf("ok = %v, want %v", res.OK, tt.wantOK)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}
