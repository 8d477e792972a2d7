package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir switches into dir for the duration of the test
func chdir(t *testing.T, dir string) {
	t.Helper()
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(originalWd)
	})
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "household.db", cfg.Database.Path)
	assert.Equal(t, 90, cfg.Household.HistoryRetentionDays)
	assert.Equal(t, 1, cfg.Household.DigestDueSoonDays)
	assert.Equal(t, 2, cfg.Household.BotDueSoonDays)
	assert.Equal(t, "17:00", cfg.Scheduler.DailyTime)
	assert.Equal(t, "sunday", cfg.Scheduler.WeeklyDay)
	assert.Equal(t, "18:00", cfg.Scheduler.WeeklyTime)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Empty(t, cfg.Household.AllowedChatIDs)
}

func TestLoad_ConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configContent := `
server:
  port: 9999
  environment: "test"

database:
  driver: postgres
  host: "test-db"
  port: 5433
  dbname: "test_chorebot"

chatbot:
  token: "test-token"
  admin_ids: [111, 222]

household:
  allowed_chat_ids: [111, 222, 333]
  history_retention_days: 30
  timezone: "Europe/Moscow"

scheduler:
  daily_time: "09:30"
  weekly_day: "monday"
`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(configContent), 0644))
	chdir(t, tempDir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "test-db", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "test-token", cfg.Chatbot.Token)
	assert.Equal(t, []int64{111, 222}, cfg.Chatbot.AdminIDs)
	assert.Equal(t, []int64{111, 222, 333}, cfg.Household.AllowedChatIDs)
	assert.Equal(t, 30, cfg.Household.HistoryRetentionDays)
	assert.Equal(t, "09:30", cfg.Scheduler.DailyTime)
	assert.Equal(t, "monday", cfg.Scheduler.WeeklyDay)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("CHATBOT_TOKEN", "env-token")
	t.Setenv("DATABASE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "env-token", cfg.Chatbot.Token)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
}

func TestLoad_MalformedYAML(t *testing.T) {
	tempDir := t.TempDir()
	malformedContent := `
server:
  port: 8080
invalid_yaml: [
  - missing_closing_bracket
`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(malformedContent), 0644))
	chdir(t, tempDir)

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database:  DatabaseConfig{Driver: DriverSQLite},
			Household: HouseholdConfig{HistoryRetentionDays: 90, DigestDueSoonDays: 1, BotDueSoonDays: 2},
			Scheduler: SchedulerConfig{DailyTime: "17:00", WeeklyDay: "sunday", WeeklyTime: "18:00"},
		}
	}

	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectedErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, expectedErr: "database.driver"},
		{name: "zero retention", mutate: func(c *Config) { c.Household.HistoryRetentionDays = 0 }, expectedErr: "history_retention_days"},
		{name: "bad daily time", mutate: func(c *Config) { c.Scheduler.DailyTime = "25:00" }, expectedErr: "daily_time"},
		{name: "bad weekly day", mutate: func(c *Config) { c.Scheduler.WeeklyDay = "someday" }, expectedErr: "weekly_day"},
		{name: "bad timezone", mutate: func(c *Config) { c.Household.Timezone = "Mars/Olympus" }, expectedErr: "timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.expectedErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}

func TestParseClock(t *testing.T) {
	hour, minute, err := ParseClock("07:05")
	require.NoError(t, err)
	assert.Equal(t, 7, hour)
	assert.Equal(t, 5, minute)

	_, _, err = ParseClock("7pm")
	assert.Error(t, err)
}

func TestParseWeekday(t *testing.T) {
	day, err := ParseWeekday("Sunday")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, day)

	day, err = ParseWeekday(" wednesday ")
	require.NoError(t, err)
	assert.Equal(t, time.Wednesday, day)
}

func TestAllowLists(t *testing.T) {
	household := HouseholdConfig{AllowedChatIDs: []int64{10, 20}}
	assert.True(t, household.IsAllowed(10))
	assert.False(t, household.IsAllowed(30))

	chatbot := ChatbotConfig{AdminIDs: []int64{10}}
	assert.True(t, chatbot.IsAdmin(10))
	assert.False(t, chatbot.IsAdmin(20))
}

func TestHouseholdConfig_Location(t *testing.T) {
	assert.Equal(t, time.UTC, HouseholdConfig{}.Location())
	assert.Equal(t, "Europe/Moscow", HouseholdConfig{Timezone: "Europe/Moscow"}.Location().String())
}
