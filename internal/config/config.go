package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"RiskEngine/internal/calculator"
)

// Config holds all application configuration.
type Config struct {
	Tickers      []string         `yaml:"tickers"`
	Benchmark    string           `yaml:"benchmark"`
	TickerSuffix string           `yaml:"ticker_suffix"`
	Period       string           `yaml:"period"`
	Metrics      MetricsConfig    `yaml:"metrics"`
	DataSource   DataSourceConfig `yaml:"data_source"`
	Cache        CacheConfig      `yaml:"cache"`
	Database     DatabaseConfig   `yaml:"database"`
	Schedule     ScheduleConfig   `yaml:"schedule"`
	Telegram     TelegramConfig   `yaml:"telegram"`
	Log          LogConfig        `yaml:"log"`
	Proxy        string           `yaml:"proxy,omitempty"`
}

type MetricsConfig struct {
	Window        int     `yaml:"window"`
	Annualization float64 `yaml:"annualization"`
	RiskFreeRate  float64 `yaml:"risk_free_rate"`
	Workers       int     `yaml:"workers"`
}

// DataSourceConfig selects where closing prices come from.
type DataSourceConfig struct {
	Provider string `yaml:"provider"` // yahoo, rest, csv or mock
	BaseURL  string `yaml:"base_url,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	CSVPath  string `yaml:"csv_path,omitempty"`
}

// CacheConfig enables the Redis price cache when RedisAddr is set.
type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr,omitempty"`
	RedisPassword string        `yaml:"redis_password,omitempty"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl"`
}

type DatabaseConfig struct {
	Driver      string `yaml:"driver"` // sqlite, postgres or none
	SQLitePath  string `yaml:"sqlite_path,omitempty"`
	PostgresDSN string `yaml:"postgres_dsn,omitempty"`
}

type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token,omitempty"`
	ChatID   string `yaml:"chat_id,omitempty"`
}

// Enabled reports whether both the bot token and chat are configured.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

const (
	ProviderYahoo = "yahoo"
	ProviderREST  = "rest"
	ProviderCSV   = "csv"
	ProviderMock  = "mock"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// DefaultTickers is the B3 universe tracked out of the box.
var DefaultTickers = []string{"PETR4", "VALE3", "ITUB4", "BOVA11", "WEGE3", "AAPL34"}

// Default returns a configuration with every default filled in.
func Default() *Config {
	cfg := newConfig()
	cfg.applyDefaults()
	return cfg
}

// Load reads config from a YAML file, then a .env file next to the working
// directory, then applies environment variable overrides and defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := newConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

// newConfig presets fields whose zero value is meaningful, so a YAML or env
// value of 0 survives applyDefaults.
func newConfig() *Config {
	return &Config{Metrics: MetricsConfig{RiskFreeRate: calculator.DefaultRiskFreeRate}}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("RISKENGINE_TICKERS"); v != "" {
		c.Tickers = splitList(v)
	}
	if v := os.Getenv("RISKENGINE_BENCHMARK"); v != "" {
		c.Benchmark = strings.TrimSpace(v)
	}
	if v := os.Getenv("RISKENGINE_PERIOD"); v != "" {
		c.Period = v
	}
	if v := os.Getenv("RISK_FREE_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RISK_FREE_RATE: %w", err)
		}
		c.Metrics.RiskFreeRate = rate
	}
	if v := os.Getenv("ROLLING_WINDOW"); v != "" {
		w, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ROLLING_WINDOW: %w", err)
		}
		c.Metrics.Window = w
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Database.PostgresDSN = v
		if c.Database.Driver == "" {
			c.Database.Driver = DriverPostgres
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("CRON_SCHEDULE"); v != "" {
		c.Schedule.Cron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if len(c.Tickers) == 0 {
		c.Tickers = append([]string(nil), DefaultTickers...)
	}
	if c.Benchmark == "" {
		c.Benchmark = "BOVA11"
	}
	if c.Period == "" {
		c.Period = "2y"
	}
	if c.Metrics.Window == 0 {
		c.Metrics.Window = calculator.DefaultWindow
	}
	if c.Metrics.Annualization == 0 {
		c.Metrics.Annualization = calculator.DefaultAnnualization
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderYahoo
		if c.DataSource.BaseURL != "" {
			c.DataSource.Provider = ProviderREST
		}
	}
	if c.DataSource.Provider == ProviderYahoo && c.TickerSuffix == "" {
		c.TickerSuffix = ".SA"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 6 * time.Hour
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Driver == DriverSQLite && c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/risk_engine.db"
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 0 19 * * 1-5"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Params returns the metric parameters for the calculator.
func (c *Config) Params() calculator.Params {
	return calculator.Params{
		Window:        c.Metrics.Window,
		Annualization: c.Metrics.Annualization,
		RiskFreeRate:  c.Metrics.RiskFreeRate,
		Workers:       c.Metrics.Workers,
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if len(c.Tickers) == 0 {
		return fmt.Errorf("tickers must not be empty")
	}
	for _, t := range c.Tickers {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("tickers must not contain empty symbols")
		}
	}
	if c.Benchmark == "" {
		return fmt.Errorf("benchmark is required")
	}
	if c.Metrics.Window < 2 {
		return fmt.Errorf("metrics.window must be >= 2, got %d", c.Metrics.Window)
	}
	if c.Metrics.Annualization <= 0 {
		return fmt.Errorf("metrics.annualization must be positive")
	}
	if c.Metrics.Workers < 0 {
		return fmt.Errorf("metrics.workers must not be negative")
	}

	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	case ProviderREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for provider %q", ProviderREST)
		}
	case ProviderCSV:
		if c.DataSource.CSVPath == "" {
			return fmt.Errorf("data_source.csv_path is required for provider %q", ProviderCSV)
		}
	default:
		return fmt.Errorf("unknown data_source.provider %q", c.DataSource.Provider)
	}

	switch c.Database.Driver {
	case DriverNone:
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("database.sqlite_path is required for driver %q", DriverSQLite)
		}
	case DriverPostgres:
		if c.Database.PostgresDSN == "" {
			return fmt.Errorf("database.postgres_dsn is required for driver %q", DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}

	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Cache.RedisAddr != "" && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	return nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
