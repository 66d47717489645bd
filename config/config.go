package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddress       = ":3000"
	defaultJWTTTL            = 7 * 24 * time.Hour
	defaultJWTIssuer         = "gamezone-api"
	defaultResetInterval     = 24 * time.Hour
	defaultResetRetryDelay   = time.Minute
	defaultAlarmBackend      = AlarmBackendTimer
	defaultEnvironment       = "development"
	defaultLogLevel          = "info"
	defaultLeaderboardChartN = 10
)

// Alarm backends for the leaderboard reset scheduler.
const (
	AlarmBackendTimer = "timer"
	AlarmBackendRiver = "river"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	HTTP          HTTPConfig          `yaml:"http"`
	JWT           JWTConfig           `yaml:"jwt"`
	Leaderboard   LeaderboardConfig   `yaml:"leaderboard"`
	NATS          NATSConfig          `yaml:"nats"`
	Observability ObservabilityConfig `yaml:"observability"`
	Admin         AdminConfig         `yaml:"admin"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// HTTPConfig holds the public API listener settings.
type HTTPConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	StaticDir      string   `yaml:"static_dir"`
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	Issuer     string        `yaml:"issuer"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// LeaderboardConfig controls the reset scheduler.
type LeaderboardConfig struct {
	ResetInterval   time.Duration `yaml:"reset_interval"`
	ResetRetryDelay time.Duration `yaml:"reset_retry_delay"`
	// AlarmBackend is "timer" (in-process) or "river" (durable job queue).
	AlarmBackend string `yaml:"alarm_backend"`
	ChartTopN    int    `yaml:"chart_top_n"`
}

// NATSConfig holds NATS configuration. An empty URL keeps events in-process.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// AdminConfig seeds an administrator account at startup when both fields are set.
type AdminConfig struct {
	UserID   string `yaml:"user_id"`
	Password string `yaml:"password"`
}

// Enabled reports whether an admin account should be seeded.
func (a AdminConfig) Enabled() bool {
	return a.UserID != "" && a.Password != ""
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
	MetricsAddress string `yaml:"metrics_address"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides overrides file values with environment variables if present.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("PORT"); v != "" && os.Getenv("HTTP_ADDRESS") == "" {
		cfg.HTTP.Address = ":" + v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		cfg.HTTP.StaticDir = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("ADMIN_USER_ID"); v != "" {
		cfg.Admin.UserID = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.Admin.Password = v
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		cfg.JWT.Issuer = v
	}
	if v := os.Getenv("JWT_DEFAULT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_DEFAULT_TTL value: %w", err)
		}
		cfg.JWT.DefaultTTL = d
	}
	if v := os.Getenv("LEADERBOARD_RESET_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid LEADERBOARD_RESET_INTERVAL value: %w", err)
		}
		cfg.Leaderboard.ResetInterval = d
	}
	if v := os.Getenv("LEADERBOARD_RESET_RETRY_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid LEADERBOARD_RESET_RETRY_DELAY value: %w", err)
		}
		cfg.Leaderboard.ResetRetryDelay = d
	}
	if v := os.Getenv("LEADERBOARD_ALARM_BACKEND"); v != "" {
		cfg.Leaderboard.AlarmBackend = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = defaultHTTPAddress
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = defaultJWTIssuer
	}
	if c.JWT.DefaultTTL == 0 {
		c.JWT.DefaultTTL = defaultJWTTTL
	}
	if c.Leaderboard.ResetInterval == 0 {
		c.Leaderboard.ResetInterval = defaultResetInterval
	}
	if c.Leaderboard.ResetRetryDelay == 0 {
		c.Leaderboard.ResetRetryDelay = defaultResetRetryDelay
	}
	if c.Leaderboard.AlarmBackend == "" {
		c.Leaderboard.AlarmBackend = defaultAlarmBackend
	}
	if c.Leaderboard.ChartTopN == 0 {
		c.Leaderboard.ChartTopN = defaultLeaderboardChartN
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = defaultEnvironment
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = defaultLogLevel
	}
}

// Validate reports configuration that the service cannot start with.
func (c *Config) Validate() error {
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if c.Leaderboard.ResetInterval <= 0 {
		return fmt.Errorf("leaderboard.reset_interval must be positive, got %s", c.Leaderboard.ResetInterval)
	}
	if c.Leaderboard.ResetRetryDelay <= 0 {
		return fmt.Errorf("leaderboard.reset_retry_delay must be positive, got %s", c.Leaderboard.ResetRetryDelay)
	}
	switch c.Leaderboard.AlarmBackend {
	case AlarmBackendTimer, AlarmBackendRiver:
	default:
		return fmt.Errorf("unknown leaderboard.alarm_backend %q", c.Leaderboard.AlarmBackend)
	}
	return nil
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Observability.Environment == defaultEnvironment
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
