package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Rejoin policies decide what happens when a handle joins a session it is already in.
const (
	RejoinAppend  = "append"
	RejoinReplace = "replace"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Logging  LoggingConfig
	Riot     RiotConfig
	Realtime RealtimeConfig
	Store    StoreConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Sessions SessionsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string  // comma-separated, or "*" for all
	RateLimitRPS       float64 // per client IP on session create/join; 0 disables
	RateLimitBurst     int
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

// RiotConfig holds Riot Sign On (OAuth) and developer API settings.
type RiotConfig struct {
	ClientID        string
	ClientSecret    string
	RedirectURI     string
	AuthBaseURL     string
	GameAPIKey      string // empty disables identity validation
	AccountBaseURL  string
	SummonerBaseURL string
	DDragonVersion  string
	HTTPTimeout     time.Duration
}

// ValidationEnabled reports whether joins are verified against the Riot API.
func (c RiotConfig) ValidationEnabled() bool {
	return c.GameAPIKey != ""
}

// RealtimeConfig holds RealtimeKit credentials and the mock switch.
type RealtimeConfig struct {
	OrgID       string
	APIKey      string
	AppID       string
	BaseURL     string
	Preset      string
	UseMock     bool
	HTTPTimeout time.Duration
}

// StoreConfig selects the key-value backend for session state.
type StoreConfig struct {
	Driver string
	TTL    time.Duration
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	PurgeInterval   time.Duration // expired kv rows sweep; 0 disables
}

// SessionsConfig holds orchestrator behavior switches.
type SessionsConfig struct {
	RejoinPolicy string
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env

	httpTimeout, err := getEnvDuration("HTTP_CLIENT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	ttl, err := getEnvDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	purge, err := getEnvDuration("KV_PURGE_INTERVAL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	connLifetime, err := getEnvDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	useMock, err := getEnvBool("USE_MOCK_REALTIME", false)
	if err != nil {
		return nil, err
	}
	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RateLimitRPS:       rps,
			RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Riot: RiotConfig{
			ClientID:        os.Getenv("RIOT_CLIENT_ID"),
			ClientSecret:    os.Getenv("RIOT_CLIENT_SECRET"),
			RedirectURI:     getEnv("RIOT_REDIRECT_URI", "http://localhost:8080/api/auth/callback"),
			AuthBaseURL:     getEnv("RIOT_AUTH_BASE_URL", "https://auth.riotgames.com"),
			GameAPIKey:      os.Getenv("RIOT_GAME_API_KEY"),
			AccountBaseURL:  os.Getenv("RIOT_ACCOUNT_BASE_URL"),
			SummonerBaseURL: os.Getenv("RIOT_SUMMONER_BASE_URL"),
			DDragonVersion:  os.Getenv("RIOT_DDRAGON_VERSION"),
			HTTPTimeout:     httpTimeout,
		},
		Realtime: RealtimeConfig{
			OrgID:       os.Getenv("REALTIME_ORG_ID"),
			APIKey:      os.Getenv("REALTIME_API_KEY"),
			AppID:       os.Getenv("REALTIME_KIT_APP_ID"),
			BaseURL:     os.Getenv("REALTIME_BASE_URL"),
			Preset:      os.Getenv("REALTIME_PRESET"),
			UseMock:     useMock,
			HTTPTimeout: httpTimeout,
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", StoreRedis)),
			TTL:    ttl,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", "postgres://localhost:5432/riftvoice?sslmode=disable"),
			MaxConns:        int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns:        int32(getEnvInt("DB_MIN_CONNS", 0)),
			MaxConnLifetime: connLifetime,
			PurgeInterval:   purge,
		},
		Sessions: SessionsConfig{
			RejoinPolicy: strings.ToLower(getEnv("REJOIN_POLICY", RejoinAppend)),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if !c.Realtime.UseMock && (c.Realtime.OrgID == "" || c.Realtime.APIKey == "") {
		errs = append(errs, errors.New("REALTIME_ORG_ID and REALTIME_API_KEY are required unless USE_MOCK_REALTIME=true"))
	}
	switch c.Store.Driver {
	case StoreRedis, StorePostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}
	switch c.Sessions.RejoinPolicy {
	case RejoinAppend, RejoinReplace:
	default:
		errs = append(errs, fmt.Errorf("unknown REJOIN_POLICY %q", c.Sessions.RejoinPolicy))
	}
	if c.Database.MaxConns < 1 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns))
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS, got %d", c.Database.MinConns))
	}
	if c.Store.TTL < 0 {
		errs = append(errs, errors.New("SESSION_TTL must not be negative"))
	}
	return errors.Join(errs...)
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
