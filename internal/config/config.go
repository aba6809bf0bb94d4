// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot      BotConfig      `mapstructure:"bot"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Web      WebConfig      `mapstructure:"web"`
	Economy  EconomyConfig  `mapstructure:"economy"`
	Market   MarketConfig   `mapstructure:"market"`
}

// BotConfig holds Discord gateway configuration.
type BotConfig struct {
	Token   string   `mapstructure:"token"`
	GuildID string   `mapstructure:"guild_id"`
	Admins  []string `mapstructure:"admins"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// RedisConfig holds the activity-log Redis connection configuration.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WebConfig holds the liveness/metrics HTTP server configuration.
type WebConfig struct {
	Addr string `mapstructure:"addr"`
}

// EconomyConfig holds the economy policy table. Two incompatible
// legacy policy sets exist in the wild; making the whole table
// configuration keeps the engine neutral between them.
type EconomyConfig struct {
	SeedBalance int64          `mapstructure:"seed_balance"`
	Loan        LoanConfig     `mapstructure:"loan"`
	Activity    ActivityConfig `mapstructure:"activity"`
	Tiers       []TierConfig   `mapstructure:"tiers"`
}

// LoanConfig holds loan policy constants.
type LoanConfig struct {
	MaxMultiplier   int64 `mapstructure:"max_multiplier"`
	InterestPercent int64 `mapstructure:"interest_percent"`
	TermDays        int   `mapstructure:"term_days"`
}

// ActivityConfig holds passive-income policy for members below the
// first tier, plus the per-message cooldown. A zero cooldown disables
// the gate entirely.
type ActivityConfig struct {
	BasePayout      int64 `mapstructure:"base_payout"`
	BaseDailyLimit  int64 `mapstructure:"base_daily_limit"`
	CooldownSeconds int   `mapstructure:"cooldown_seconds"`
}

// TierConfig describes one rung of the role ladder.
type TierConfig struct {
	Name       string `mapstructure:"name"`
	RoleID     string `mapstructure:"role_id"`
	Price      int64  `mapstructure:"price"`
	Payout     int64  `mapstructure:"payout"`
	DailyLimit int64  `mapstructure:"daily_limit"`
}

// MarketConfig holds the stock list and price-walk cadence.
type MarketConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
	MaxStep      int64         `mapstructure:"max_step"`
	Stocks       []StockConfig `mapstructure:"stocks"`
}

// StockConfig seeds one tracked symbol with its initial price.
type StockConfig struct {
	Symbol string `mapstructure:"symbol"`
	Price  int64  `mapstructure:"price"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. BOT_TOKEN, DATABASE_HOST, REDIS_ADDR.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - env vars can provide all config
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "economybot")
	v.SetDefault("database.name", "economybot")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// Web defaults
	v.SetDefault("web.addr", ":8080")

	// Economy policy defaults
	v.SetDefault("economy.seed_balance", 1000)
	v.SetDefault("economy.loan.max_multiplier", 3)
	v.SetDefault("economy.loan.interest_percent", 10)
	v.SetDefault("economy.loan.term_days", 7)
	v.SetDefault("economy.activity.base_payout", 5)
	v.SetDefault("economy.activity.base_daily_limit", 20)
	v.SetDefault("economy.activity.cooldown_seconds", 60)

	// Market defaults
	v.SetDefault("market.tick_interval", "1h")
	v.SetDefault("market.max_step", 20)
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID string) bool {
	for _, id := range c.Bot.Admins {
		if id == userID {
			return true
		}
	}
	return false
}
