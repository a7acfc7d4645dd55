package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/wanderlust/internal/httpserver/deps"
	"github.com/MrSnakeDoc/wanderlust/internal/logger"
)

const defaultPingTimeout = 2 * time.Second

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Store string `json:"store,omitempty"`
	Error string `json:"error,omitempty"`
}

// Readyz answers 200 only when the listing store responds to a ping.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		resp := readyzResponse{Ready: true, Store: backendName(d)}
		status := http.StatusOK

		if err := pingStore(r.Context(), d); err != nil {
			d.Logger.Warn("readiness check failed",
				logger.String("store", resp.Store),
				logger.Error(err))
			resp.Ready = false
			resp.Error = err.Error()
			status = http.StatusServiceUnavailable
		}

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func pingStore(ctx context.Context, d deps.Deps) error {
	if d.Store == nil {
		return errStoreNotInitialized
	}
	timeout := d.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return d.Store.Ping(ctx)
}

func backendName(d deps.Deps) string {
	if d.Store == nil {
		return ""
	}
	return d.Store.Backend()
}
