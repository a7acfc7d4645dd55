package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMethodOverride(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		header string
		want   string
	}{
		{"query put", http.MethodPost, "/listings/1?_method=PUT", "", http.MethodPut},
		{"query delete lower case", http.MethodPost, "/listings/1?_method=delete", "", http.MethodDelete},
		{"header", http.MethodPost, "/listings/1", "DELETE", http.MethodDelete},
		{"query wins over header", http.MethodPost, "/listings/1?_method=PUT", "DELETE", http.MethodPut},
		{"unsupported method ignored", http.MethodPost, "/listings/1?_method=CONNECT", "", http.MethodPost},
		{"only POST is rewritten", http.MethodGet, "/listings/1?_method=DELETE", "", http.MethodGet},
		{"no override", http.MethodPost, "/listings", "", http.MethodPost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := MethodOverride()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Method
			}))

			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.header != "" {
				req.Header.Set(MethodOverrideHeader, tt.header)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("method = %s, want %s", got, tt.want)
			}
		})
	}
}
