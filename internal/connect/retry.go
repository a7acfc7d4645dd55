// Package connect waits for a backing service to answer a ping, retrying with
// capped exponential backoff.
package connect

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/wanderlust/internal/logger"
)

// Options defines retry behaviour for one backing service.
type Options struct {
	Name          string        // service name for logs and errors (ex: "redis")
	Addr          string        // address shown in logs; never contains credentials
	Timeout       time.Duration // total time allowed for attempts (ex: 30s)
	RetryInterval time.Duration // initial wait between retries, doubles each time
	MaxWait       time.Duration // cap on the wait between retries
	PingTimeout   time.Duration // timeout for each ping attempt
	WarnThreshold int           // warn for this many attempts, then log errors
}

// PingFunc performs one reachability check.
type PingFunc func(ctx context.Context) error

// Validate ensures all retry settings are usable.
func (o Options) Validate() error {
	if o.Timeout <= 0 {
		return fmt.Errorf("%s: connect timeout must be > 0, got %v", o.Name, o.Timeout)
	}
	if o.RetryInterval <= 0 {
		return fmt.Errorf("%s: retry interval must be > 0, got %v", o.Name, o.RetryInterval)
	}
	if o.MaxWait <= 0 {
		return fmt.Errorf("%s: max wait must be > 0, got %v", o.Name, o.MaxWait)
	}
	if o.PingTimeout <= 0 {
		return fmt.Errorf("%s: ping timeout must be > 0, got %v", o.Name, o.PingTimeout)
	}
	if o.WarnThreshold < 0 {
		return fmt.Errorf("%s: warn threshold must be >= 0, got %d", o.Name, o.WarnThreshold)
	}
	return nil
}

// connectionLogger handles all connection logging.
type connectionLogger struct {
	logger logger.Logger
	name   string
	addr   string
}

func (cl *connectionLogger) logStart(timeout time.Duration) {
	cl.logger.Info("connecting to "+cl.name,
		logger.String("addr", cl.addr),
		logger.Duration("timeout", timeout))
}

func (cl *connectionLogger) logSuccess(attempts int, elapsed time.Duration) {
	if attempts > 1 {
		cl.logger.Warn("connected to "+cl.name+" after retry",
			logger.String("addr", cl.addr),
			logger.Int("attempts", attempts),
			logger.Duration("elapsed", elapsed))
		return
	}
	cl.logger.Info("connected to "+cl.name, logger.String("addr", cl.addr))
}

func (cl *connectionLogger) logTimeout(attempts int, timeout time.Duration, err error) {
	cl.logger.Error(cl.name+" unavailable - failed to connect after timeout",
		logger.String("addr", cl.addr),
		logger.Int("attempts", attempts),
		logger.Duration("timeout", timeout),
		logger.Error(err))
}

func (cl *connectionLogger) logRetry(attempt int, remaining, nextRetry time.Duration, warnThreshold int, err error) {
	switch {
	case remaining < 10*time.Second:
		cl.logger.Error(cl.name+" still down - retrying but timeout approaching",
			logger.String("addr", cl.addr),
			logger.Int("attempt", attempt),
			logger.Duration("remaining", remaining),
			logger.Duration("next_retry_in", nextRetry),
			logger.Error(err))
	case attempt <= warnThreshold:
		cl.logger.Warn(cl.name+" connection failed, retrying",
			logger.String("addr", cl.addr),
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", nextRetry),
			logger.Error(err))
	default:
		cl.logger.Error(cl.name+" still unavailable - connection attempts failing",
			logger.String("addr", cl.addr),
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", nextRetry),
			logger.Error(err))
	}
}

// WithRetry calls ping until it succeeds or opts.Timeout elapses.
func WithRetry(ctx context.Context, opts Options, ping PingFunc, log logger.Logger) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	cl := &connectionLogger{logger: log, name: opts.Name, addr: opts.Addr}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	cl.logStart(opts.Timeout)
	started := time.Now()
	attempt := 0
	wait := opts.RetryInterval

	for {
		attempt++

		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		err := ping(pingCtx)
		pingCancel()

		if err == nil {
			cl.logSuccess(attempt, time.Since(started))
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			cl.logTimeout(attempt, opts.Timeout, err)
			return fmt.Errorf("%s unavailable at %s after %d attempts (timeout: %v): %w",
				opts.Name, opts.Addr, attempt, opts.Timeout, err)

		case <-timer.C:
			cl.logRetry(attempt, timeLeft(ctx), wait, opts.WarnThreshold, err)
			wait *= 2
			if wait > opts.MaxWait {
				wait = opts.MaxWait
			}
		}
	}
}

// timeLeft returns the remaining time before context deadline.
func timeLeft(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(deadline)
}
