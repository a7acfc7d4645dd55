package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/wanderlust/internal/httpserver/deps"
)

var errStoreNotInitialized = errors.New("store not initialized")

type componentStatus struct {
	OK      bool   `json:"ok"`
	Backend string `json:"backend,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Impact  string `json:"impact,omitempty"`
	Error   string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of each component the listing pages depend on.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		components := map[string]componentStatus{
			"store":     checkStore(r, d),
			"templates": checkTemplates(d),
			"metrics":   checkMetrics(d),
		}

		response := infraResponse{
			Status:     determineStatus(components),
			Components: components,
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func determineStatus(components map[string]componentStatus) string {
	// Without the store or templates no listing page can be served
	for _, name := range []string{"store", "templates"} {
		if c, exists := components[name]; exists && !c.OK {
			return "critical"
		}
	}

	// Metrics off is non-critical
	if m, exists := components["metrics"]; exists && !m.OK {
		return "degraded"
	}

	return "operational"
}

func checkStore(r *http.Request, d deps.Deps) componentStatus {
	if err := pingStore(r.Context(), d); err != nil {
		return componentStatus{
			OK:      false,
			Backend: backendName(d),
			Impact:  "listings-unavailable",
			Error:   err.Error(),
		}
	}
	return componentStatus{
		OK:      true,
		Backend: d.Store.Backend(),
		Mode:    "optimal",
	}
}

func checkTemplates(d deps.Deps) componentStatus {
	if d.Renderer == nil {
		return componentStatus{OK: false, Impact: "pages-unavailable", Error: "renderer not initialized"}
	}
	return componentStatus{OK: true, Mode: "embedded"}
}

func checkMetrics(d deps.Deps) componentStatus {
	if d.Metrics == nil {
		return componentStatus{OK: false, Mode: "disabled", Impact: "no-prometheus-scrape"}
	}
	return componentStatus{OK: true, Mode: "prometheus"}
}
