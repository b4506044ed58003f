package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var resp Response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return w, resp
}

func TestHealth(t *testing.T) {
	s := New(":0")

	w, resp := get(t, s, "/health")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected status 'healthy', got %q", resp.Status)
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		checkers   map[string]Checker
		degraded   map[string]DegradedChecker
		wantCode   int
		wantStatus string
	}{
		{
			name:       "no checkers",
			wantCode:   http.StatusOK,
			wantStatus: StatusReady,
		},
		{
			name: "all healthy",
			checkers: map[string]Checker{
				"dns-server": func(context.Context) error { return nil },
				"docker":     func(context.Context) error { return nil },
			},
			wantCode:   http.StatusOK,
			wantStatus: StatusReady,
		},
		{
			name: "one unhealthy",
			checkers: map[string]Checker{
				"dns-server": func(context.Context) error { return errors.New("connection refused") },
				"docker":     func(context.Context) error { return nil },
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusNotReady,
		},
		{
			name: "degraded",
			checkers: map[string]Checker{
				"dns-server": func(context.Context) error { return nil },
			},
			degraded: map[string]DegradedChecker{
				"driver": func(context.Context) (bool, string) { return true, "driver disabled" },
			},
			wantCode:   http.StatusOK,
			wantStatus: StatusDegraded,
		},
		{
			name: "unhealthy wins over degraded",
			checkers: map[string]Checker{
				"dns-server": func(context.Context) error { return errors.New("timeout") },
			},
			degraded: map[string]DegradedChecker{
				"driver": func(context.Context) (bool, string) { return true, "driver disabled" },
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(":0")
			for name, c := range tt.checkers {
				s.RegisterChecker(name, c)
			}
			for name, c := range tt.degraded {
				s.RegisterDegradedChecker(name, c)
			}

			w, resp := get(t, s, "/ready")
			if w.Code != tt.wantCode {
				t.Errorf("status code = %d, want %d", w.Code, tt.wantCode)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", resp.Status, tt.wantStatus)
			}
			if len(resp.Components) != len(tt.checkers) {
				t.Errorf("components = %d, want %d", len(resp.Components), len(tt.checkers))
			}
		})
	}
}

func TestReadyComponentsSortedWithErrors(t *testing.T) {
	s := New(":0")
	s.RegisterChecker("zeta", func(context.Context) error { return nil })
	s.RegisterChecker("alpha", func(context.Context) error { return errors.New("connection refused") })

	_, resp := get(t, s, "/ready")
	if len(resp.Components) != 2 {
		t.Fatalf("components = %d, want 2", len(resp.Components))
	}
	if resp.Components[0].Name != "alpha" || resp.Components[0].Healthy {
		t.Errorf("first component = %+v, want unhealthy alpha", resp.Components[0])
	}
	if resp.Components[0].Error != "connection refused" {
		t.Errorf("error = %q", resp.Components[0].Error)
	}
}

func TestReadyTimeout(t *testing.T) {
	s := New(":0", WithTimeout(50*time.Millisecond))
	s.RegisterChecker("slow", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})

	w, resp := get(t, s, "/ready")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
	if resp.Status != StatusNotReady {
		t.Errorf("expected %q, got %q", StatusNotReady, resp.Status)
	}
}

func TestMetricsAndExtraHandlers(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "dyndns_updates_total 0\n")
	})
	s := New(":0", WithMetrics(metrics))
	s.Handle("GET /v1/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w, _ := get(t, s, "/metrics")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "dyndns_updates_total") {
		t.Errorf("/metrics = %d %q", w.Code, w.Body.String())
	}

	w, _ = get(t, s, "/v1/ping")
	if w.Code != http.StatusTeapot {
		t.Errorf("/v1/ping = %d, want 418", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /health = %d, want 405", rec.Code)
	}
}

func TestStartShutdown(t *testing.T) {
	s := New("127.0.0.1:0")
	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown before Start: %v", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}

	bad := New("not-an-address")
	if err := bad.Start(); err == nil {
		t.Error("expected listen error for bad address")
	}
}
