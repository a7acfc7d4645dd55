package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrSnakeDoc/wanderlust/internal/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host, pattern string
		want          bool
	}{
		{"wanderlust.example.com", "wanderlust.example.com", true},
		{"a.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
		{"evil.com", "example.com", false},
	}

	for _, tt := range tests {
		if got := matchHost(tt.host, tt.pattern); got != tt.want {
			t.Errorf("matchHost(%q, %q) = %v, want %v", tt.host, tt.pattern, got, tt.want)
		}
	}
}

func TestEnforceHost(t *testing.T) {
	log := logger.NewNop()

	tests := []struct {
		name    string
		allowed []string
		host    string
		want    int
	}{
		{"empty list passes through", nil, "anything", http.StatusOK},
		{"allowed host", []string{"listings.local"}, "listings.local", http.StatusOK},
		{"allowed host with port", []string{"listings.local"}, "listings.local:8080", http.StatusOK},
		{"case insensitive", []string{"Listings.Local"}, "LISTINGS.local", http.StatusOK},
		{"wildcard", []string{"*.example.com"}, "stay.example.com", http.StatusOK},
		{"rejected host", []string{"listings.local"}, "other.local", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/listings", nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()

			EnforceHost(tt.allowed, log)(okHandler).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	log := logger.NewNop()

	tests := []struct {
		name       string
		allowed    []string
		remote     string
		xff        string
		trustProxy bool
		want       int
	}{
		{"empty list passes through", nil, "203.0.113.9:1234", "", false, http.StatusOK},
		{"inside cidr", []string{"10.0.0.0/8"}, "10.1.2.3:1234", "", false, http.StatusOK},
		{"outside cidr", []string{"10.0.0.0/8"}, "203.0.113.9:1234", "", false, http.StatusForbidden},
		{"forwarded ip ignored without trust", []string{"10.0.0.0/8"}, "203.0.113.9:1234", "10.1.2.3", false, http.StatusForbidden},
		{"forwarded ip with trust", []string{"10.0.0.0/8"}, "127.0.0.1:1234", "10.1.2.3", true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			rec := httptest.NewRecorder()

			AllowOnlyCIDRS(tt.allowed, tt.trustProxy, log)(okHandler).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 2, RefillPerIPPerMin: 1})(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/listings", nil)
		req.RemoteAddr = "198.51.100.7:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)

		if i == 2 && rec.Header().Get("Retry-After") == "" {
			t.Error("limited response has no Retry-After header")
		}
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d status = %d, want %d", i, codes[i], want[i])
		}
	}

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/listings", nil)
	req.RemoteAddr = "198.51.100.8:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimit(RateLimitConfig{Burst: 0})(okHandler)

	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/listings", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, rec.Code)
		}
	}
}

func TestRateLimitRefillsAndReportsRemaining(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	h := RateLimit(RateLimitConfig{
		Burst:             2,
		RefillPerIPPerMin: 60,
		now:               func() time.Time { return clock },
	})(okHandler)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/listings/x", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	tests := []struct {
		name      string
		advance   time.Duration
		code      int
		remaining string
		retry     string
	}{
		{"first", 0, http.StatusOK, "1", ""},
		{"second", 0, http.StatusOK, "0", ""},
		{"exhausted", 0, http.StatusTooManyRequests, "0", "1"},
		{"half refilled", 500 * time.Millisecond, http.StatusTooManyRequests, "0", "1"},
		{"refilled", 500 * time.Millisecond, http.StatusOK, "0", ""},
	}

	for _, tt := range tests {
		clock = clock.Add(tt.advance)
		rec := send()
		if rec.Code != tt.code {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.code)
		}
		if got := rec.Header().Get("X-RateLimit-Remaining"); got != tt.remaining {
			t.Errorf("%s: X-RateLimit-Remaining = %q, want %q", tt.name, got, tt.remaining)
		}
		if got := rec.Header().Get("Retry-After"); got != tt.retry {
			t.Errorf("%s: Retry-After = %q, want %q", tt.name, got, tt.retry)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "2" {
			t.Errorf("%s: X-RateLimit-Limit = %q, want 2", tt.name, got)
		}
	}
}
