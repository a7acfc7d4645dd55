package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/MrSnakeDoc/wanderlust/internal/connect"
	"github.com/MrSnakeDoc/wanderlust/internal/logger"
)

// ConnectOptions defines the MongoDB client and its connection retry behavior.
type ConnectOptions struct {
	URI            string        // ex: "mongodb://127.0.0.1:27017"
	Username       string        // Optional, overrides credentials in URI
	Password       string        // Optional
	MinPoolSize    uint64        // 0 = driver default
	MaxPoolSize    uint64        // 0 = driver default
	ConnectTimeout time.Duration // Total time allowed for connection attempts
	RetryInterval  time.Duration // Initial wait between retries
	MaxWait        time.Duration // max wait between retries
	PingTimeout    time.Duration // timeout for each ping attempt
	WarnThreshold  int           // warn after this many attempts
}

// New connects to MongoDB and waits until the primary answers a ping.
func New(ctx context.Context, opts ConnectOptions, log logger.Logger) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(opts.URI)
	if err := clientOptions.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mongo uri: %w", err)
	}

	if opts.Username != "" && opts.Password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: opts.Username,
			Password: opts.Password,
		})
	}
	if opts.MinPoolSize > 0 {
		clientOptions.SetMinPoolSize(opts.MinPoolSize)
	}
	if opts.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(opts.MaxPoolSize)
	}

	// Connect does not dial; the ping loop below does.
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	retry := connect.Options{
		Name:          "mongodb",
		Addr:          hosts(clientOptions),
		Timeout:       opts.ConnectTimeout,
		RetryInterval: opts.RetryInterval,
		MaxWait:       opts.MaxWait,
		PingTimeout:   opts.PingTimeout,
		WarnThreshold: opts.WarnThreshold,
	}
	ping := func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }

	if err := connect.WithRetry(ctx, retry, ping, log); err != nil {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if derr := client.Disconnect(disconnectCtx); derr != nil {
			log.Warn("failed to disconnect mongo client", logger.Error(derr))
		}
		return nil, err
	}
	return client, nil
}

// hosts returns the seed list without credentials, for logs.
func hosts(o *options.ClientOptions) string {
	if len(o.Hosts) == 0 {
		return "unknown"
	}
	out := o.Hosts[0]
	for _, h := range o.Hosts[1:] {
		out += "," + h
	}
	return out
}
