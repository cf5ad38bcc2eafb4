package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSetMaxBodyBytes_DefaultWhenNonPositive(t *testing.T) {
	t.Cleanup(func() { SetMaxBodyBytes(0) })
	SetMaxBodyBytes(-1)
	if maxBodyBytes != defaultMaxBodyBytes {
		t.Fatalf("expected default, got %d", maxBodyBytes)
	}
	SetMaxBodyBytes(1234)
	if maxBodyBytes != 1234 {
		t.Fatalf("expected 1234, got %d", maxBodyBytes)
	}
}

func TestSetCallTimeout_NormalizesNegativeToZero(t *testing.T) {
	t.Cleanup(func() { SetCallTimeout(0) })
	SetCallTimeout(-time.Second)
	if callTimeout != 0 {
		t.Fatalf("expected 0, got %s", callTimeout)
	}
	SetCallTimeout(3 * time.Second)
	if callTimeout != 3*time.Second {
		t.Fatalf("expected 3s, got %s", callTimeout)
	}
}

func TestCORS_PreflightWhenEnabled(t *testing.T) {
	t.Cleanup(func() { SetCORSOptions(false, nil, nil, nil) })
	SetCORSOptions(true, []string{"https://app.example"}, nil, nil)
	h := NewMux(&mockService{})

	req := httptest.NewRequest(http.MethodOptions, "/call/load", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("allow-origin=%q status=%d", got, w.Code)
	}
}

func TestCORS_DisabledByDefault(t *testing.T) {
	h := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}
