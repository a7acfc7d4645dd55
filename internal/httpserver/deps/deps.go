package deps

import (
	"time"

	"github.com/MrSnakeDoc/wanderlust/internal/domain"
	"github.com/MrSnakeDoc/wanderlust/internal/logger"
	"github.com/MrSnakeDoc/wanderlust/internal/metrics"
	"github.com/MrSnakeDoc/wanderlust/internal/view"
)

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time    // for testing, defaults to time.Now
	AllowedHosts    []string            // Host headers allowed to reach the listing routes
	AllowedCIDRS    []string            // IPs allowed to access readyz/infra/metrics endpoints
	TrustProxy      bool                // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Store           domain.ListingStore // Listing persistence (mongo, redis or memory)
	Renderer        *view.Renderer      // HTML page renderer
	Metrics         *metrics.Manager    // Prometheus collectors, nil disables /metrics
	PingTimeout     time.Duration       // Bound for store pings from readyz/infra
	RateLimitBurst  int                 // Per-IP burst on mutating routes, 0 disables limiting
	RateLimitPerMin int                 // Per-IP refill rate on mutating routes
}
