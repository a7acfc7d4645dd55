package app

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/wanderlust/internal/config"
	"github.com/MrSnakeDoc/wanderlust/internal/domain"
	"github.com/MrSnakeDoc/wanderlust/internal/logger"
	"github.com/MrSnakeDoc/wanderlust/internal/mongo"
	"github.com/MrSnakeDoc/wanderlust/internal/redis"
	"github.com/MrSnakeDoc/wanderlust/internal/store/memory"
	"github.com/MrSnakeDoc/wanderlust/internal/store/mongodb"
	redisstore "github.com/MrSnakeDoc/wanderlust/internal/store/redis"
)

// openStore connects the configured backend. Connection retries are bounded
// by the backend's connect timeout.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (domain.ListingStore, error) {
	switch cfg.Store {
	case config.StoreMongo:
		log.Info("Connecting to MongoDB",
			logger.String("db", cfg.MongoDB),
			logger.String("collection", cfg.MongoCollection))
		client, err := mongo.New(ctx, mongo.ConnectOptions{
			URI:            cfg.MongoURI,
			Username:       cfg.MongoUser,
			Password:       cfg.MongoPassword,
			MinPoolSize:    cfg.MongoMinPool,
			MaxPoolSize:    cfg.MongoMaxPool,
			ConnectTimeout: cfg.MongoConnectTimeout,
			RetryInterval:  cfg.MongoRetryInterval,
			MaxWait:        cfg.MongoMaxWait,
			PingTimeout:    cfg.MongoPingTimeout,
			WarnThreshold:  cfg.MongoWarnThreshold,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		coll := client.Database(cfg.MongoDB).Collection(cfg.MongoCollection)
		return mongodb.NewStore(client, coll), nil

	case config.StoreRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisstore.NewStore(client), nil

	case config.StoreMemory:
		log.Warn("using in-memory store, listings are lost on restart")
		return memory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}
