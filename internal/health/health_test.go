package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/laundry-pos/internal/gateway"
	"github.com/vladislavdragonenkov/laundry-pos/internal/storage/memory"
)

func ok(context.Context) error { return nil }

func TestHealthHandler(t *testing.T) {
	handler := NewHandler("v1.0.0")
	gw := gateway.New(memory.NewOrderStore())
	handler.RegisterChecker("order-store", NewPingChecker("order-store", gw.Ping))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var response Response
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Status != StatusHealthy {
		t.Errorf("expected status healthy, got %s", response.Status)
	}
	if response.Version != "v1.0.0" {
		t.Errorf("expected version v1.0.0, got %s", response.Version)
	}
	if !response.Checks["order-store"].Critical {
		t.Error("order-store check must be critical")
	}
	if gw.State() != gateway.StateReady {
		t.Errorf("ping must establish the session, state is %s", gw.State())
	}
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.RegisterChecker("order-store", NewPingChecker("order-store", func(context.Context) error {
		return errors.New("server selection timeout")
	}))
	handler.RegisterChecker("object-store", NewOptionalChecker("object-store", ok))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}

	var response Response
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != StatusUnhealthy {
		t.Errorf("expected status unhealthy, got %s", response.Status)
	}
	if response.Checks["order-store"].Message != "server selection timeout" {
		t.Errorf("unexpected message: %q", response.Checks["order-store"].Message)
	}
}

func TestHealthHandler_DegradedOnOptionalFailure(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.RegisterChecker("order-store", NewPingChecker("order-store", ok))
	handler.RegisterChecker("sequence-counter", NewOptionalChecker("sequence-counter", func(context.Context) error {
		return errors.New("dial tcp: connection refused")
	}))

	resp := handler.Run(context.Background())
	if resp.Status != StatusDegraded {
		t.Errorf("expected degraded, got %s", resp.Status)
	}

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	handler.ReadinessHandler(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("degraded service is still ready, got %d", w.Code)
	}
}

func TestLivenessHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	w := httptest.NewRecorder()

	LivenessHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Errorf("expected body 'ok', got %s", w.Body.String())
	}
}

func TestReadinessHandler_NotReady(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.RegisterChecker("order-store", NewPingChecker("order-store", func(context.Context) error {
		return errors.New("not ready")
	}))

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()

	handler.ReadinessHandler(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
	if w.Body.String() != "not ready" {
		t.Errorf("expected body 'not ready', got %s", w.Body.String())
	}
}

func TestPingChecker_Timeout(t *testing.T) {
	checker := NewPingChecker("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	checker.timeout = 20 * time.Millisecond

	check := checker.Check(context.Background())

	if check.Status != StatusUnhealthy {
		t.Errorf("expected status unhealthy, got %s", check.Status)
	}
	if check.DurationMs < 20 {
		t.Errorf("expected duration >= 20ms, got %d", check.DurationMs)
	}
}
