package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HotStreak HotStreakConfig `yaml:"hotstreak"`
	Decoder   DecoderConfig   `yaml:"decoder"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type HotStreakConfig struct {
	BaseURL     string            `yaml:"base_url"`
	AppURL      string            `yaml:"app_url"`      // web app origin, used for headers and browser auth
	Sport       string            `yaml:"sport"`        // sport gid for the search filter (e.g. football)
	Timeout     string            `yaml:"timeout"`      // e.g. "20s"
	UserAgent   string            `yaml:"user_agent"`
	Headers     map[string]string `yaml:"headers"`      // extra headers merged over the defaults
	PrivyToken  string            `yaml:"privy_token"`  // static auth token; prefer HOTSTREAK_PRIVY_TOKEN env
	BrowserAuth bool              `yaml:"browser_auth"` // refresh the token via headless browser when true
}

// RequestTimeout parses the timeout string; zero when unset or invalid so
// callers fall back to their own default.
func (c *HotStreakConfig) RequestTimeout() time.Duration {
	return parseDuration(c.Timeout)
}

// DecoderConfig mirrors decoder.Options. Zero values mean "use the decoder
// default"; KeepEmptyRecords is a pointer so an absent key and an explicit
// false stay distinguishable.
type DecoderConfig struct {
	TokenPattern     string  `yaml:"token_pattern"`
	ByteStride       int     `yaml:"byte_stride"`
	PlausibleMin     float64 `yaml:"plausible_min"`
	PlausibleMax     float64 `yaml:"plausible_max"`
	LookaheadWindow  int     `yaml:"lookahead_window"`
	KeepEmptyRecords *bool   `yaml:"keep_empty_records"`
	PriceScale       float64 `yaml:"price_scale"`
}

type PipelineConfig struct {
	Workers   int    `yaml:"workers"`    // concurrent payload decodes (default 8)
	OutputDir string `yaml:"output_dir"` // run artifacts root (default "data")
	WriteCSV  bool   `yaml:"write_csv"`
	WriteJSON bool   `yaml:"write_json"`
	Timeout   string `yaml:"timeout"` // whole-run limit, e.g. "2m"; empty = unlimited
}

// RunTimeout parses the whole-run limit; zero means unlimited.
func (c *PipelineConfig) RunTimeout() time.Duration {
	return parseDuration(c.Timeout)
}

func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"` // empty disables persistence
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default info)
	Format string `yaml:"format"` // "text" (default) or "json"
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Allow env overrides to avoid committing secrets into configs.
	if token := os.Getenv("HOTSTREAK_PRIVY_TOKEN"); token != "" {
		config.HotStreak.PrivyToken = token
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		config.Postgres.DSN = dsn
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		config.Telegram.BotToken = token
	}

	return &config, nil
}
