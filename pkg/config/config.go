package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	Headless       bool   `mapstructure:"HEADLESS"`
	UserAgent      string `mapstructure:"USER_AGENT"`
	ChromePath     string `mapstructure:"CHROME_PATH"`
	UserDataDir    string `mapstructure:"USER_DATA_DIR"`
	NavTimeoutSec  int    `mapstructure:"NAV_TIMEOUT_SECONDS"`
	WaitTimeoutSec int    `mapstructure:"WAIT_TIMEOUT_SECONDS"`

	ScrollSettleMS      int `mapstructure:"SCROLL_SETTLE_MS"`
	ScrollMaxIterations int `mapstructure:"SCROLL_MAX_ITERATIONS"`
	ScrollMaxSeconds    int `mapstructure:"SCROLL_MAX_SECONDS"`
	ClickSettleMS       int `mapstructure:"CLICK_SETTLE_MS"`

	DetailRatePerSecond float64 `mapstructure:"DETAIL_RATE_PER_SECOND"`

	Gate         string `mapstructure:"GATE"`
	GateFile     string `mapstructure:"GATE_FILE"`
	RedisGateKey string `mapstructure:"REDIS_GATE_KEY"`

	Sinks       string `mapstructure:"SINKS"`
	OutputDir   string `mapstructure:"OUTPUT_DIR"`
	Output      string `mapstructure:"OUTPUT"`
	PostgresURL string `mapstructure:"POSTGRES_URL"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`

	StatusStore    string `mapstructure:"STATUS_STORE"`
	StatusTTLHours int    `mapstructure:"STATUS_TTL_HOURS"`
	ControlAddr    string `mapstructure:"CONTROL_ADDR"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
}

// Gate kinds.
const (
	GateStdin   = "stdin"
	GateFile    = "file"
	GateWebhook = "webhook"
	GateRedis   = "redis"
)

// Sink kinds.
const (
	SinkCSV      = "csv"
	SinkPostgres = "postgres"
	SinkSQLite   = "sqlite"
)

// Status store kinds.
const (
	StatusMemory = "memory"
	StatusRedis  = "redis"
)

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("HEADLESS", false)
	v.SetDefault("USER_AGENT", "")
	v.SetDefault("CHROME_PATH", "")
	v.SetDefault("USER_DATA_DIR", "")
	v.SetDefault("NAV_TIMEOUT_SECONDS", 60)
	v.SetDefault("WAIT_TIMEOUT_SECONDS", 30)
	v.SetDefault("SCROLL_SETTLE_MS", 2000)
	v.SetDefault("SCROLL_MAX_ITERATIONS", 500)
	v.SetDefault("SCROLL_MAX_SECONDS", 600)
	v.SetDefault("CLICK_SETTLE_MS", 1500)
	v.SetDefault("DETAIL_RATE_PER_SECOND", 1.0)
	v.SetDefault("GATE", GateStdin)
	v.SetDefault("GATE_FILE", "resume.flag")
	v.SetDefault("REDIS_GATE_KEY", "scraper:resume")
	v.SetDefault("SINKS", SinkCSV)
	v.SetDefault("OUTPUT_DIR", ".")
	v.SetDefault("OUTPUT", "")
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("SQLITE_PATH", "scraper.db")
	v.SetDefault("STATUS_STORE", StatusMemory)
	v.SetDefault("STATUS_TTL_HOURS", 48)
	v.SetDefault("CONTROL_ADDR", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
}

// Load reads configuration from an optional .env file and environment
// variables. Flags bound to v before calling Load take precedence.
func Load(v *viper.Viper) (*Config, error) {
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// The .env file is optional.
	_ = v.ReadInConfig()

	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// NavTimeout bounds a single page navigation.
func (c *Config) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSec) * time.Second
}

// WaitTimeout bounds waiting for a selector to become visible.
func (c *Config) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutSec) * time.Second
}

func (c *Config) ScrollSettle() time.Duration {
	return time.Duration(c.ScrollSettleMS) * time.Millisecond
}

func (c *Config) ScrollMaxDuration() time.Duration {
	return time.Duration(c.ScrollMaxSeconds) * time.Second
}

func (c *Config) ClickSettle() time.Duration {
	return time.Duration(c.ClickSettleMS) * time.Millisecond
}

func (c *Config) StatusTTL() time.Duration {
	return time.Duration(c.StatusTTLHours) * time.Hour
}

// SinkList returns the configured sinks, lower-cased and de-duplicated.
func (c *Config) SinkList() []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range strings.Split(c.Sinks, ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Validation collects config problems. Errors prevent a run; warnings are logged.
type Validation struct {
	Errors   []string
	Warnings []string
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}

func (v Validation) OK() bool { return len(v.Errors) == 0 }

// Err folds all validation errors into one error, or nil.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return fmt.Errorf("invalid config: %s", strings.Join(v.Errors, "; "))
}

// Validate checks c for values that would make a run impossible.
func (c *Config) Validate() Validation {
	var res Validation

	if c.NavTimeoutSec <= 0 {
		res.addErr("NAV_TIMEOUT_SECONDS must be > 0")
	}
	if c.WaitTimeoutSec <= 0 {
		res.addErr("WAIT_TIMEOUT_SECONDS must be > 0")
	}
	if c.ScrollSettleMS < 0 || c.ClickSettleMS < 0 {
		res.addErr("settle delays must be >= 0")
	}
	if c.ScrollMaxIterations <= 0 {
		res.addErr("SCROLL_MAX_ITERATIONS must be > 0")
	}
	if c.ScrollMaxSeconds <= 0 {
		res.addErr("SCROLL_MAX_SECONDS must be > 0")
	}
	if c.DetailRatePerSecond <= 0 {
		res.addErr("DETAIL_RATE_PER_SECOND must be > 0")
	} else if c.DetailRatePerSecond > 5 {
		res.addWarn("DETAIL_RATE_PER_SECOND is high (%.1f); the target site may block the session", c.DetailRatePerSecond)
	}

	switch c.Gate {
	case GateStdin, GateWebhook:
	case GateFile:
		if strings.TrimSpace(c.GateFile) == "" {
			res.addErr("GATE_FILE is required when GATE=file")
		}
	case GateRedis:
		if strings.TrimSpace(c.RedisGateKey) == "" {
			res.addErr("REDIS_GATE_KEY is required when GATE=redis")
		}
	default:
		res.addErr("unknown GATE %q", c.Gate)
	}
	if c.Gate == GateWebhook && c.ControlAddr == "" {
		res.addErr("GATE=webhook needs CONTROL_ADDR for the resume endpoint")
	}

	sinks := c.SinkList()
	if len(sinks) == 0 {
		res.addErr("SINKS must name at least one sink")
	}
	for _, s := range sinks {
		switch s {
		case SinkCSV:
		case SinkPostgres:
			if c.PostgresURL == "" {
				res.addErr("POSTGRES_URL is required when the postgres sink is enabled")
			}
		case SinkSQLite:
			if c.SQLitePath == "" {
				res.addErr("SQLITE_PATH is required when the sqlite sink is enabled")
			}
		default:
			res.addErr("unknown sink %q", s)
		}
	}

	switch c.StatusStore {
	case StatusMemory, StatusRedis:
	default:
		res.addErr("unknown STATUS_STORE %q", c.StatusStore)
	}
	if c.StatusStore == StatusRedis && c.StatusTTLHours <= 0 {
		res.addWarn("STATUS_TTL_HOURS <= 0; run snapshots in redis will not expire")
	}

	return res
}
