package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the risk service
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port        string
	Env         string // development, staging, production
	CORSOrigins []string

	// Storage
	Database DatabaseConfig
	Redis    RedisConfig

	// Upstream market data
	MarketData MarketDataConfig

	// Risk engine
	VaREngine  VaREngineConfig
	Simulation SimulationConfig

	// FactorModelPath points to an optional YAML override of the beta table and scenarios
	FactorModelPath string

	// Jobs
	WarmupSchedule string

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration.
// An empty URL disables the persistent price store.
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database URL is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// MarketDataConfig holds upstream price source configuration
type MarketDataConfig struct {
	YahooBaseURL string
	FREDBaseURL  string
	FREDAPIKey   string
	// MarketIndexAsset is the asset id whose returns drive beta-to-market
	MarketIndexAsset string
	HistoryStart     time.Time
	RequestsPerSec   float64
	CacheTTL         time.Duration
}

// VaREngineConfig selects and tunes the VaR/ES delegate
type VaREngineConfig struct {
	Mode        string // simulated, process, http, parametric
	Path        string // executable for process mode
	URL         string // endpoint for http mode
	Timeout     time.Duration
	Confidence  float64
	Simulations int
	Seed        int64
}

// SimulationConfig holds Monte Carlo scenario defaults
type SimulationConfig struct {
	Paths int
	Days  int
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	historyStart, err := time.Parse("2006-01-02", getEnv("HISTORY_START", "2000-01-01"))
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_START: %w", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8000"),
		Env:         getEnv("ENV", "development"),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		MarketData: MarketDataConfig{
			YahooBaseURL:     getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			FREDBaseURL:      getEnv("FRED_BASE_URL", "https://api.stlouisfed.org"),
			FREDAPIKey:       getEnv("FRED_API_KEY", ""),
			MarketIndexAsset: getEnv("MARKET_INDEX_ASSET", "SPY"),
			HistoryStart:     historyStart,
			RequestsPerSec:   getEnvAsFloat("MARKETDATA_RPS", 4),
			CacheTTL:         getEnvAsDuration("MARKETDATA_CACHE_TTL", "24h"),
		},

		VaREngine: VaREngineConfig{
			Mode:        strings.ToLower(getEnv("VAR_ENGINE_MODE", "simulated")),
			Path:        getEnv("VAR_ENGINE_PATH", "./var-engine"),
			URL:         getEnv("VAR_ENGINE_URL", ""),
			Timeout:     getEnvAsDuration("VAR_ENGINE_TIMEOUT", "5s"),
			Confidence:  getEnvAsFloat("VAR_CONFIDENCE", 0.99),
			Simulations: getEnvAsInt("VAR_SIMULATIONS", 50000),
			Seed:        int64(getEnvAsInt("VAR_SEED", 42)),
		},

		Simulation: SimulationConfig{
			Paths: getEnvAsInt("MC_PATHS", 5000),
			Days:  getEnvAsInt("MC_DAYS", 365),
		},

		FactorModelPath: getEnv("FACTOR_MODEL_PATH", ""),
		WarmupSchedule:  getEnv("WARMUP_SCHEDULE", "0 30 22 * * 1-5"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" && c.Env != "test" {
		return fmt.Errorf("ENV must be one of: development, staging, production, test")
	}

	switch c.VaREngine.Mode {
	case "simulated", "parametric":
	case "process":
		if c.VaREngine.Path == "" {
			return fmt.Errorf("VAR_ENGINE_PATH is required in process mode")
		}
	case "http":
		if c.VaREngine.URL == "" {
			return fmt.Errorf("VAR_ENGINE_URL is required in http mode")
		}
	default:
		return fmt.Errorf("VAR_ENGINE_MODE must be one of: simulated, process, http, parametric")
	}

	if c.VaREngine.Confidence <= 0 || c.VaREngine.Confidence >= 1 {
		return fmt.Errorf("VAR_CONFIDENCE must be between 0 and 1")
	}
	if c.VaREngine.Simulations <= 0 {
		return fmt.Errorf("VAR_SIMULATIONS must be > 0")
	}
	if c.VaREngine.Timeout <= 0 {
		return fmt.Errorf("VAR_ENGINE_TIMEOUT must be > 0")
	}

	if c.Simulation.Paths <= 0 || c.Simulation.Days <= 0 {
		return fmt.Errorf("MC_PATHS and MC_DAYS must be > 0")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
