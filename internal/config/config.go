package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends accepted by WANDERLUST_STORE.
const (
	StoreMongo  = "mongo"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline (ex: 10s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Store string // "mongo" | "redis" | "memory"

	// MongoDB
	MongoURI            string        // ex: "mongodb://127.0.0.1:27017"
	MongoDB             string        // database name
	MongoCollection     string        // collection holding listings
	MongoUser           string        // optional
	MongoPassword       string        // optional
	MongoMinPool        uint64        // 0 = driver default
	MongoMaxPool        uint64        // 0 = driver default
	MongoConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	MongoRetryInterval  time.Duration // Initial wait between retries
	MongoMaxWait        time.Duration // max wait between retries
	MongoPingTimeout    time.Duration // timeout for each ping attempt
	MongoWarnThreshold  int           // warn after this many attempts

	// Redis
	RedisAddr             string        // ex: "localhost:6379", required when Store is redis
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	SeedFile       string // optional YAML of sample listings, loaded into an empty store
	PriceLocale    string // BCP 47 tag used to group prices (ex: "en-IN")
	CurrencySymbol string // prefix shown before prices (ex: "₹")
	MetricsEnabled bool   // expose /metrics

	AllowedHosts    []string // optional, restrict listing routes to specific Host headers
	AllowedCIDRS    []string // optional, restrict readyz/infra/metrics to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy      bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateLimitBurst  int      // per-IP burst on create/update/delete, 0 = off
	RateLimitPerMin int      // per-IP refill per minute
}

// Load reads the configuration from the environment. Variables from an
// optional .env file (WANDERLUST_ENV_FILE, default ".env") fill in whatever
// the environment does not already set.
func Load() *Config {
	loadDotEnv(getenv("WANDERLUST_ENV_FILE", ".env"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("WANDERLUST_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("WANDERLUST_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("WANDERLUST_REQUEST_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("WANDERLUST_LOG_LEVEL", "info"),
		PrettyLog: mustBool("WANDERLUST_PRETTY_LOG", true),

		Store: strings.ToLower(getenv("WANDERLUST_STORE", StoreMongo)),

		// MongoDB settings
		MongoURI:            getenv("WANDERLUST_MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:             getenv("WANDERLUST_MONGO_DB", "wanderlust"),
		MongoCollection:     getenv("WANDERLUST_MONGO_COLLECTION", "listings"),
		MongoUser:           getenv("WANDERLUST_MONGO_USERNAME", ""),
		MongoPassword:       getenv("WANDERLUST_MONGO_PASSWORD", ""),
		MongoMinPool:        getenvUint64("WANDERLUST_MONGO_MIN_POOL", 0),
		MongoMaxPool:        getenvUint64("WANDERLUST_MONGO_MAX_POOL", 100),
		MongoConnectTimeout: mustDuration("MONGO_CONNECT_TIMEOUT", 30*time.Second),
		MongoRetryInterval:  mustDuration("MONGO_RETRY_INTERVAL", 2*time.Second),
		MongoMaxWait:        mustDuration("MONGO_MAX_WAIT", 10*time.Second),
		MongoPingTimeout:    mustDuration("MONGO_PING_TIMEOUT", 5*time.Second),
		MongoWarnThreshold:  getenvInt("MONGO_WARN_THRESHOLD", 3),

		// Redis settings
		RedisAddr:             getenv("WANDERLUST_REDIS_ADDR", ""),
		RedisUser:             getenv("WANDERLUST_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("WANDERLUST_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("WANDERLUST_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("WANDERLUST_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Pages
		SeedFile:       getenv("WANDERLUST_SEED_FILE", ""),
		PriceLocale:    getenv("WANDERLUST_PRICE_LOCALE", "en-IN"),
		CurrencySymbol: getenv("WANDERLUST_CURRENCY_SYMBOL", "₹"),
		MetricsEnabled: mustBool("WANDERLUST_METRICS", true),

		// Access restrictions
		AllowedHosts:    splitAndTrim(getenv("WANDERLUST_ALLOWED_HOSTS", "")),
		AllowedCIDRS:    parseAllowedIPs(getenv("WANDERLUST_ALLOWED_CIDRS", "")),
		TrustProxy:      mustBool("WANDERLUST_TRUST_PROXY", false),
		RateLimitBurst:  getenvInt("WANDERLUST_RATE_LIMIT_BURST", 0),
		RateLimitPerMin: getenvInt("WANDERLUST_RATE_LIMIT_PER_MIN", 0),
	}

	switch cfg.Store {
	case StoreMongo, StoreMemory:
	case StoreRedis:
		cfg.RedisAddr = requireEnv("WANDERLUST_REDIS_ADDR")
		// Validate Redis password configuration
		if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
			panic("❌ FATAL: WANDERLUST_REDIS_PASSWORD is required when WANDERLUST_REDIS_PASSWORD_REQUIRED=true")
		}
	default:
		panic(fmt.Sprintf("❌ FATAL: WANDERLUST_STORE must be one of %s, %s, %s (got %q)",
			StoreMongo, StoreRedis, StoreMemory, cfg.Store))
	}

	if cfg.RateLimitBurst > 0 && cfg.RateLimitPerMin <= 0 {
		cfg.RateLimitPerMin = cfg.RateLimitBurst
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.MongoPassword != "" {
		cp.MongoPassword = "***REDACTED***"
	}
	cp.MongoURI = redactURI(cp.MongoURI)
	return cp
}

// redactURI hides the password embedded in a connection string.
func redactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "REDACTED")
	}
	return u.String()
}

// loadDotEnv loads path when it exists. A malformed file is fatal.
func loadDotEnv(path string) {
	if path == "" {
		return
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		panic(fmt.Sprintf("❌ FATAL: cannot load env file %s: %v", path, err))
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvUint64(key string, def uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			panic(fmt.Sprintf("❌ FATAL: Invalid non-negative integer for %s: %s", key, v))
		}
		return i
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
