package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // timezone names resolve on minimal images

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Chatbot   ChatbotConfig   `mapstructure:"chatbot"`
	Household HouseholdConfig `mapstructure:"household"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
	RateLimitRPS   float64  `mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Path            string `mapstructure:"path"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	ConnectRetries  int    `mapstructure:"connect_retries"`
}

type ChatbotConfig struct {
	Token             string  `mapstructure:"token"`
	WebhookURL        string  `mapstructure:"webhook_url"`
	Timeout           int     `mapstructure:"timeout"`
	AdminIDs          []int64 `mapstructure:"admin_ids"`
	MessagesPerSecond float64 `mapstructure:"messages_per_second"`
	SessionTimeout    int     `mapstructure:"session_timeout"`
}

// IsAdmin reports whether the Telegram user id is on the admin allow-list
func (c ChatbotConfig) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type HouseholdConfig struct {
	AllowedChatIDs       []int64 `mapstructure:"allowed_chat_ids"`
	HistoryRetentionDays int     `mapstructure:"history_retention_days"`
	DigestDueSoonDays    int     `mapstructure:"digest_due_soon_days"`
	BotDueSoonDays       int     `mapstructure:"bot_due_soon_days"`
	SeedDefaultTasks     bool    `mapstructure:"seed_default_tasks"`
	Timezone             string  `mapstructure:"timezone"`
}

// IsAllowed reports whether the chat id may use the HTTP API
func (c HouseholdConfig) IsAllowed(chatID int64) bool {
	for _, id := range c.AllowedChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

// Location resolves the configured timezone, falling back to UTC
func (c HouseholdConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type SchedulerConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	PollInterval    int    `mapstructure:"poll_interval"`
	DailyTime       string `mapstructure:"daily_time"`
	WeeklyDay       string `mapstructure:"weekly_day"`
	WeeklyTime      string `mapstructure:"weekly_time"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values that viper cannot type-check on its own
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("invalid database.driver %q: must be %q or %q", c.Database.Driver, DriverPostgres, DriverSQLite)
	}
	if c.Household.HistoryRetentionDays <= 0 {
		return fmt.Errorf("household.history_retention_days must be greater than 0")
	}
	if c.Household.DigestDueSoonDays < 0 || c.Household.BotDueSoonDays < 0 {
		return fmt.Errorf("household due-soon thresholds must not be negative")
	}
	if c.Household.Timezone != "" {
		if _, err := time.LoadLocation(c.Household.Timezone); err != nil {
			return fmt.Errorf("invalid household.timezone %q: %w", c.Household.Timezone, err)
		}
	}
	if _, _, err := ParseClock(c.Scheduler.DailyTime); err != nil {
		return fmt.Errorf("invalid scheduler.daily_time: %w", err)
	}
	if _, _, err := ParseClock(c.Scheduler.WeeklyTime); err != nil {
		return fmt.Errorf("invalid scheduler.weekly_time: %w", err)
	}
	if _, err := ParseWeekday(c.Scheduler.WeeklyDay); err != nil {
		return fmt.Errorf("invalid scheduler.weekly_day: %w", err)
	}
	return nil
}

// ParseClock parses an "HH:MM" wall-clock time
func ParseClock(value string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, 0, fmt.Errorf("%q is not in HH:MM format", value)
	}
	return t.Hour(), t.Minute(), nil
}

// ParseWeekday parses an English weekday name such as "sunday"
func ParseWeekday(value string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(value))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", value)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 10.0)
	v.SetDefault("server.rate_limit_burst", 20)

	v.SetDefault("logging.level", "info")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "household.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "chorebot")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)
	v.SetDefault("database.connect_retries", 5)

	v.SetDefault("chatbot.token", "")
	v.SetDefault("chatbot.webhook_url", "")
	v.SetDefault("chatbot.timeout", 30)
	v.SetDefault("chatbot.admin_ids", []int64{})
	v.SetDefault("chatbot.messages_per_second", 20.0)
	v.SetDefault("chatbot.session_timeout", 600) // 10 minutes

	v.SetDefault("household.allowed_chat_ids", []int64{})
	v.SetDefault("household.history_retention_days", 90)
	v.SetDefault("household.digest_due_soon_days", 1)
	v.SetDefault("household.bot_due_soon_days", 2)
	v.SetDefault("household.seed_default_tasks", true)
	v.SetDefault("household.timezone", "")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.poll_interval", 30)
	v.SetDefault("scheduler.daily_time", "17:00")
	v.SetDefault("scheduler.weekly_day", "sunday")
	v.SetDefault("scheduler.weekly_time", "18:00")
	v.SetDefault("scheduler.shutdown_timeout", 30)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
