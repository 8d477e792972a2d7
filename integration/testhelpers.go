//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"chorebot-api/internal/chore"
	"chorebot-api/internal/config"
	"chorebot-api/internal/database"
	"chorebot-api/internal/shopping"
	"chorebot-api/internal/user"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

// SetupTestDatabase starts postgres:15-alpine, connects through the
// production connection factory and applies every migration. The container
// is terminated on test cleanup.
func SetupTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("chorebot_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := database.Connect(ctx, config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		Host:            host,
		Port:            port.Int(),
		User:            "test_user",
		Password:        "test_password",
		DBName:          "chorebot_test",
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 300,
		ConnectRetries:  5,
	}, zaptest.NewLogger(t))
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, user.RunMigrations(db))
	require.NoError(t, chore.RunMigrations(db))
	require.NoError(t, shopping.RunMigrations(db))
	return db
}

// historyRows counts task_history rows for a task id
func historyRows(t *testing.T, db *gorm.DB, taskID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Table("task_history").Where("task_id = ?", taskID).Count(&count).Error)
	return count
}
