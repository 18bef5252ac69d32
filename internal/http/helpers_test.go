package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain uses first hop", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:1234", "198.51.100.4"},
		{"remote addr without port", nil, "192.0.2.1:5555", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := clientIP(r); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := requestID(r); !strings.HasPrefix(id, "req_") {
		t.Errorf("generated id = %q", id)
	}

	r.Header.Set("X-Request-ID", "abc-123")
	if id := requestID(r); id != "abc-123" {
		t.Errorf("inbound id not reused: %q", id)
	}

	r.Header.Set("X-Request-ID", strings.Repeat("x", 100))
	if id := requestID(r); !strings.HasPrefix(id, "req_") {
		t.Errorf("oversized inbound id should be replaced, got %q", id)
	}
}

func TestRouteLabel(t *testing.T) {
	tests := map[string]string{
		"/":                "/",
		"/expenses":        "/expenses",
		"/static/app.js":   "/static/",
		"/api/summary":     "/api/summary",
		"/wp-login.php":    "other",
		"/expenses/../etc": "other",
	}
	for path, want := range tests {
		if got := routeLabel(path); got != want {
			t.Errorf("routeLabel(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestBarWidth(t *testing.T) {
	tests := []struct {
		v, limit string
		want     int
	}{
		{"50", "100", 50},
		{"0.1", "100", 2},
		{"0", "100", 0},
		{"10", "0", 0},
		{"150", "100", 100},
		{"1", "3", 33},
	}
	for _, tt := range tests {
		got := barWidth(decimal.RequireFromString(tt.v), decimal.RequireFromString(tt.limit))
		if got != tt.want {
			t.Errorf("barWidth(%s, %s) = %d, want %d", tt.v, tt.limit, got, tt.want)
		}
	}
}
