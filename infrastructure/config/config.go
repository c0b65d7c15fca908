package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	domainconfig "tj-backend/domain/config"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress   string        `yaml:"server_address"`
	Environment     string        `yaml:"environment"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Store configuration. An empty DSN selects the in-memory store.
	MySQLDSN             string        `yaml:"mysql_dsn"`
	MySQLMaxOpenConns    int           `yaml:"mysql_max_open_conns"`
	MySQLMaxIdleConns    int           `yaml:"mysql_max_idle_conns"`
	MySQLConnMaxLifetime time.Duration `yaml:"mysql_conn_max_lifetime"`
	MigrateOnStart       bool          `yaml:"migrate_on_start"`

	// Cache configuration
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	CacheCapacity int           `yaml:"cache_capacity"`

	// CacheSweepInterval is how often expired entries are evicted
	CacheSweepInterval time.Duration `yaml:"cache_sweep_interval"`

	// Route optimizer
	DefaultMaxStops   int `yaml:"default_max_stops"`
	MaxStopsLimit     int `yaml:"max_stops_limit"`
	MaxExpandedStates int `yaml:"max_expanded_states"`

	// Ratings
	MinRating float64 `yaml:"min_rating"`
	MaxRating float64 `yaml:"max_rating"`

	// AWS configuration. An empty bus name logs events instead.
	AWSRegion    string `yaml:"aws_region"`
	EventBusName string `yaml:"event_bus_name"`

	// Lambda configuration
	IsLambda           bool   `yaml:"is_lambda"`
	LambdaFunctionName string `yaml:"-"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Authentication
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`

	// Rate limiting, per client and minute
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`

	// Feature flags
	EnableMetrics bool `yaml:"enable_metrics"`
	EnableTracing bool `yaml:"enable_tracing"`
	EnableCORS    bool `yaml:"enable_cors"`
	EnableAuth    bool `yaml:"enable_auth"`

	// Comma separated; empty allows any origin
	CORSOrigins string `yaml:"cors_origins"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		ServerAddress:   ":8080",
		Environment:     "development",
		ShutdownTimeout: 15 * time.Second,

		MySQLMaxOpenConns:    25,
		MySQLMaxIdleConns:    5,
		MySQLConnMaxLifetime: 5 * time.Minute,
		MigrateOnStart:       true,

		CacheTTL:           time.Hour,
		CacheCapacity:      10000,
		CacheSweepInterval: time.Minute,

		DefaultMaxStops:   5,
		MaxStopsLimit:     20,
		MaxExpandedStates: 100000,

		MinRating: 0,
		MaxRating: 5,

		AWSRegion: "us-west-2",

		LogLevel:  "info",
		JWTIssuer: "tj-backend",

		RateLimitPerMinute: 600,

		EnableCORS: true,
	}
}

// LoadConfig layers defaults, the YAML file named by CONFIG_FILE and
// environment variables, in increasing priority
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	c.MySQLDSN = getEnv("MYSQL_DSN", c.MySQLDSN)
	c.MySQLMaxOpenConns = getEnvInt("MYSQL_MAX_OPEN_CONNS", c.MySQLMaxOpenConns)
	c.MySQLMaxIdleConns = getEnvInt("MYSQL_MAX_IDLE_CONNS", c.MySQLMaxIdleConns)
	c.MySQLConnMaxLifetime = getEnvDuration("MYSQL_CONN_MAX_LIFETIME", c.MySQLConnMaxLifetime)
	c.MigrateOnStart = getEnvBool("MIGRATE_ON_START", c.MigrateOnStart)

	c.CacheTTL = getEnvDuration("CACHE_TTL", c.CacheTTL)
	c.CacheCapacity = getEnvInt("CACHE_CAPACITY", c.CacheCapacity)
	c.CacheSweepInterval = getEnvDuration("CACHE_SWEEP_INTERVAL", c.CacheSweepInterval)

	c.DefaultMaxStops = getEnvInt("DEFAULT_MAX_STOPS", c.DefaultMaxStops)
	c.MaxStopsLimit = getEnvInt("MAX_STOPS_LIMIT", c.MaxStopsLimit)
	c.MaxExpandedStates = getEnvInt("MAX_EXPANDED_STATES", c.MaxExpandedStates)

	c.MinRating = getEnvFloat("MIN_RATING", c.MinRating)
	c.MaxRating = getEnvFloat("MAX_RATING", c.MaxRating)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	c.IsLambda = getEnvBool("IS_LAMBDA", c.IsLambda)
	c.LambdaFunctionName = getEnv("AWS_LAMBDA_FUNCTION_NAME", c.LambdaFunctionName)
	if c.LambdaFunctionName != "" {
		c.IsLambda = true
	}

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)
	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)

	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
	c.EnableAuth = getEnvBool("ENABLE_AUTH", c.EnableAuth)
	c.CORSOrigins = getEnv("CORS_ORIGINS", c.CORSOrigins)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.MySQLDSN == "" {
			return fmt.Errorf("MYSQL_DSN is required in production")
		}
	}
	if c.EnableAuth && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when auth is enabled")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %s", c.CacheTTL)
	}
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("cache capacity must be positive, got %d", c.CacheCapacity)
	}
	if c.CacheSweepInterval <= 0 {
		return fmt.Errorf("cache sweep interval must be positive, got %s", c.CacheSweepInterval)
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("rate limit must not be negative, got %d", c.RateLimitPerMinute)
	}
	return c.Domain().Validate()
}

// Domain derives the domain limits for the current environment, with the
// configured overrides applied
func (c *Config) Domain() *domainconfig.DomainConfig {
	d := domainconfig.LoadDomainConfig(c.Environment)
	d.DefaultMaxStops = c.DefaultMaxStops
	d.MaxStopsLimit = c.MaxStopsLimit
	d.MaxExpandedStates = c.MaxExpandedStates
	d.MinRating = c.MinRating
	d.MaxRating = c.MaxRating
	d.CacheTTL = c.CacheTTL
	return d
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
