package mw

import (
	"net/http"
	"strings"
)

// MethodOverrideParam is the query parameter HTML forms use to tunnel a method.
const MethodOverrideParam = "_method"

// MethodOverrideHeader is the header alternative for non-browser clients.
const MethodOverrideHeader = "X-HTTP-Method-Override"

var overridableMethods = map[string]bool{
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// MethodOverride rewrites POST requests to the method named by ?_method= or
// X-HTTP-Method-Override. It must run before routing. The query parameter wins
// over the header; any other method is left untouched.
func MethodOverride() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				m := r.URL.Query().Get(MethodOverrideParam)
				if m == "" {
					m = r.Header.Get(MethodOverrideHeader)
				}
				m = strings.ToUpper(strings.TrimSpace(m))
				if overridableMethods[m] {
					r.Method = m
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
