package utils

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/wanderlust/internal/logger"
)

// ContextCloser is a resource released under a deadline (store connections).
type ContextCloser interface {
	Close(ctx context.Context) error
}

// CloseWithin closes c, giving it at most timeout, and logs the outcome.
// Use on shutdown paths where there is nothing left to do with the error.
func CloseWithin(c ContextCloser, timeout time.Duration, name string, log logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := c.Close(ctx); err != nil {
		log.Warn("failed to close "+name, logger.Error(err))
		return
	}
	log.Info("✅ " + name + " closed cleanly")
}
