package main

import (
	"context"
	"errors"
	"fmt"

	"chorebot-api/internal/chatbot"
	"chorebot-api/internal/chore"
	"chorebot-api/internal/common"
	"chorebot-api/internal/config"
	"chorebot-api/internal/database"
	"chorebot-api/internal/digest"
	"chorebot-api/internal/shopping"
	"chorebot-api/internal/user"
	"chorebot-api/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	kindDaily  = "daily"
	kindWeekly = "weekly"
)

var migrationSteps = []struct {
	module string
	run    func(*gorm.DB) error
}{
	{user.MigrationModule, user.RunMigrations},
	{chore.MigrationModule, chore.RunMigrations},
	{shopping.MigrationModule, shopping.RunMigrations},
}

type moduleVersion struct {
	module  string
	version int
}

// app is the store-backed environment a command runs in. Migrations are
// always applied on open.
type app struct {
	cfg    *config.Config
	db     *gorm.DB
	logger *zap.Logger
	Tasks  chore.Service
}

type appOption func(*chore.ServiceConfig)

// withSeeding enables SeedDefaults regardless of household.seed_default_tasks
func withSeeding() appOption {
	return func(c *chore.ServiceConfig) {
		c.SeedDefaults = true
	}
}

func openApp(ctx context.Context, opts ...appOption) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.NewWithLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	zapLogger := log.Zap()

	db, err := database.Connect(ctx, cfg.Database, zapLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	for _, step := range migrationSteps {
		if err := step.run(db); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("failed to migrate %s: %w", step.module, err)
		}
	}

	serviceConfig := chore.ServiceConfig{
		RetentionDays: cfg.Household.HistoryRetentionDays,
		Location:      cfg.Household.Location(),
		SeedDefaults:  cfg.Household.SeedDefaultTasks,
	}
	for _, opt := range opts {
		opt(&serviceConfig)
	}

	users := user.NewGormUserRepository(db, zapLogger)
	tasks := chore.NewTaskService(chore.NewGormTaskRepository(db, zapLogger), users, nil, common.NewRealClock(), serviceConfig, zapLogger)

	return &app{cfg: cfg, db: db, logger: zapLogger, Tasks: tasks}, nil
}

func (a *app) Close() {
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("Failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func (a *app) SchemaVersions() ([]moduleVersion, error) {
	versions := make([]moduleVersion, 0, len(migrationSteps))
	for _, step := range migrationSteps {
		v, err := database.SchemaVersion(a.db, step.module)
		if err != nil {
			return nil, err
		}
		versions = append(versions, moduleVersion{module: step.module, version: v})
	}
	return versions, nil
}

func (a *app) digestConfig() digest.Config {
	return digest.Config{
		Recipients:  a.cfg.Chatbot.AdminIDs,
		DueSoonDays: a.cfg.Household.DigestDueSoonDays,
	}
}

// Digest delivers through the Telegram bot configured for the server
func (a *app) Digest() (digest.Service, error) {
	if a.cfg.Chatbot.Token == "" {
		return nil, errors.New("chatbot.token is not set; use --dry-run to preview the digest")
	}
	if len(a.cfg.Chatbot.AdminIDs) == 0 {
		return nil, errors.New("chatbot.admin_ids is empty; nobody would receive the digest")
	}
	provider, err := chatbot.NewTelegramProvider(a.cfg.Chatbot, a.logger)
	if err != nil {
		return nil, err
	}
	return digest.NewDigestService(a.Tasks, chatbot.NewNotifier(provider), nil, a.digestConfig(), a.logger), nil
}

// previewDigest renders a digest without a bot
func (a *app) previewDigest(ctx context.Context, kind string) (string, error) {
	svc := digest.NewDigestService(a.Tasks, nil, nil, a.digestConfig(), a.logger)
	if kind == kindWeekly {
		return svc.WeeklyText(ctx)
	}

	cfg := a.digestConfig()
	text, ok, err := svc.DailyText(ctx, cfg.DueSoonDays)
	if err != nil {
		return "", err
	}
	if !ok {
		return "nothing is overdue or due soon; the daily digest would not be sent", nil
	}
	return text, nil
}
