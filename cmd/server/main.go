package main

import (
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically

	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"chorebot-api/api/routes"
	"chorebot-api/internal/chatbot"
	"chorebot-api/internal/chore"
	"chorebot-api/internal/common"
	"chorebot-api/internal/config"
	"chorebot-api/internal/database"
	"chorebot-api/internal/digest"
	"chorebot-api/internal/events"
	"chorebot-api/internal/scheduler"
	"chorebot-api/internal/shopping"
	"chorebot-api/internal/user"
	"chorebot-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logger.NewWithLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	zapLogger := logger.Zap()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.Database, zapLogger)
	if err != nil {
		logger.Fatalw("Failed to connect to database", "error", err)
	}
	defer database.Close(db)

	if err := runMigrations(db); err != nil {
		logger.Fatalw("Failed to run migrations", "error", err)
	}

	eventBus := events.NewEventBus(zapLogger)
	clock := common.NewRealClock()
	location := cfg.Household.Location()

	users := user.NewGormUserRepository(db, zapLogger)
	taskService := chore.NewTaskService(chore.NewGormTaskRepository(db, zapLogger), users, eventBus, clock, chore.ServiceConfig{
		RetentionDays: cfg.Household.HistoryRetentionDays,
		Location:      location,
		SeedDefaults:  cfg.Household.SeedDefaultTasks,
	}, zapLogger)
	shoppingService := shopping.NewShoppingService(shopping.NewGormShoppingRepository(db, zapLogger), eventBus, clock, zapLogger)

	if _, err := taskService.SeedDefaults(ctx); err != nil {
		logger.Errorw("Failed to seed default tasks", "error", err)
	}

	// The bot, the digests and the scheduler all need a Telegram token
	var chatbotService chatbot.ChatbotService
	var digestScheduler scheduler.Scheduler
	if cfg.Chatbot.Token == "" {
		logger.Warn("chatbot.token is not set; Telegram bot and scheduled digests are disabled")
	} else {
		provider, err := chatbot.NewTelegramProvider(cfg.Chatbot, zapLogger)
		if err != nil {
			logger.Fatalw("Failed to initialize Telegram provider", "error", err)
		}

		digestService := digest.NewDigestService(taskService, chatbot.NewNotifier(provider), eventBus, digest.Config{
			Recipients:  cfg.Chatbot.AdminIDs,
			DueSoonDays: cfg.Household.DigestDueSoonDays,
		}, zapLogger)

		chatbotService, err = chatbot.NewChatbotService(provider, chatbot.Dependencies{
			Tasks:    taskService,
			Shopping: shoppingService,
			Users:    users,
			Digest:   digestService,
		}, eventBus, clock, cfg.Chatbot, cfg.Household.BotDueSoonDays, zapLogger)
		if err != nil {
			logger.Fatalw("Failed to initialize chatbot service", "error", err)
		}
		if err := chatbotService.Start(ctx); err != nil {
			logger.Fatalw("Failed to start chatbot", "error", err)
		}

		if cfg.Scheduler.Enabled {
			jobs, err := scheduler.NewDigestJobs(cfg.Scheduler, location, digestService, zapLogger)
			if err != nil {
				logger.Fatalw("Failed to create digest jobs", "error", err)
			}
			digestScheduler, err = scheduler.NewScheduler(cfg.Scheduler, jobs, clock, zapLogger)
			if err != nil {
				logger.Fatalw("Failed to create scheduler", "error", err)
			}
			if err := digestScheduler.Start(ctx); err != nil {
				logger.Fatalw("Failed to start scheduler", "error", err)
			}
			logger.Infow("Digest scheduler started",
				"daily_time", cfg.Scheduler.DailyTime,
				"weekly_day", cfg.Scheduler.WeeklyDay,
				"weekly_time", cfg.Scheduler.WeeklyTime,
				"timezone", location.String())
		} else {
			logger.Info("Digest scheduler disabled")
		}
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	routes.SetupRoutes(router, routes.Dependencies{
		DB:       db,
		Tasks:    taskService,
		Shopping: shoppingService,
		Users:    users,
		Chatbot:  chatbotService,
	}, cfg, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Infow("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	if digestScheduler != nil {
		if err := digestScheduler.Stop(); err != nil {
			logger.Errorw("Failed to stop scheduler gracefully", "error", err)
		} else {
			logger.Info("Digest scheduler stopped")
		}
	}
	if chatbotService != nil {
		chatbotService.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("Server forced to shutdown", "error", err)
	}

	if err := eventBus.Close(); err != nil {
		logger.Errorw("Failed to close event bus", "error", err)
	}

	logger.Info("Server exited")
}

// runMigrations applies every module's schema steps in dependency order
func runMigrations(db *gorm.DB) error {
	for _, migrate := range []func(*gorm.DB) error{
		user.RunMigrations,
		chore.RunMigrations,
		shopping.RunMigrations,
	} {
		if err := migrate(db); err != nil {
			return err
		}
	}
	return nil
}
