package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSetupDisabledReturnsPlainRecorder(t *testing.T) {
	rec, handler, shutdown, err := Setup(context.Background(), TelemetryConfig{Enabled: false})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if rec == nil {
		t.Fatal("nil recorder")
	}
	if handler != nil {
		t.Fatal("disabled setup returned a handler")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	rec.RecordAction("move", time.Millisecond, nil)
	if rec.ActionSnapshot("move").Accepted != 1 {
		t.Fatal("recorder not functional")
	}
}

func TestSetupEnabledExposesPrometheusMetrics(t *testing.T) {
	rec, handler, shutdown, err := Setup(context.Background(), TelemetryConfig{Enabled: true, ServiceName: "test-service"})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	}()
	if handler == nil {
		t.Fatal("nil prometheus handler")
	}

	rec.RecordAction("move", 2*time.Millisecond, nil)
	rec.RecordTicks(5)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	body, _ := io.ReadAll(w.Result().Body)
	text := string(body)
	if !strings.Contains(text, "sim_actions_total") {
		t.Fatalf("exposition missing action counter:\n%s", text)
	}
	if !strings.Contains(text, "sim_ticks_total") {
		t.Fatalf("exposition missing tick counter:\n%s", text)
	}
}
