package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"chorebot-api/api/middleware"
	"chorebot-api/internal/chore"
	"chorebot-api/internal/common"
	"chorebot-api/internal/database"
	"chorebot-api/internal/events"
	"chorebot-api/internal/shopping"
	"chorebot-api/internal/user"
	"chorebot-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const (
	anyaID     = int64(42)
	outsiderID = int64(77)
)

var apiNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiFixture struct {
	db       *gorm.DB
	router   *gin.Engine
	tasks    chore.Service
	shopping shopping.Service
	users    user.Repository
	clock    *common.MockClock
}

func isHousehold(chatID int64) bool {
	return chatID == anyaID
}

func newAPIFixture(t *testing.T) apiFixture {
	t.Helper()
	db, err := database.NewSQLiteConnection(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, user.RunMigrations(db))
	require.NoError(t, chore.RunMigrations(db))
	require.NoError(t, shopping.RunMigrations(db))

	zl := zaptest.NewLogger(t)
	clock := common.NewMockClock(apiNow)
	users := user.NewGormUserRepository(db, zl)
	tasks := chore.NewTaskService(chore.NewGormTaskRepository(db, zl), users, nil, clock, chore.ServiceConfig{}, zl)
	items := shopping.NewShoppingService(shopping.NewGormShoppingRepository(db, zl), nil, clock, zl)

	_, err = users.Upsert(context.Background(), user.Profile{ChatID: anyaID, FirstName: "Аня"}, apiNow)
	require.NoError(t, err)
	_, err = users.Upsert(context.Background(), user.Profile{ChatID: outsiderID, FirstName: "Гость"}, apiNow)
	require.NoError(t, err)

	log := logger.New()
	taskHandler := NewTaskHandler(tasks, users, log)
	shoppingHandler := NewShoppingHandler(items, log)
	loginHandler := NewLoginHandler(users, isHousehold, log)

	router := gin.New()
	router.Use(middleware.RequestLogging(log))
	router.POST("/login", loginHandler.Login)

	api := router.Group("", middleware.ChatAuth(isHousehold))
	api.GET("/tasks", taskHandler.List)
	api.POST("/tasks", taskHandler.Create)
	api.PATCH("/tasks/:id", taskHandler.Update)
	api.DELETE("/tasks/:id", taskHandler.Delete)
	api.POST("/tasks/:id/done", taskHandler.Done)
	api.GET("/shopping", shoppingHandler.List)
	api.POST("/shopping", shoppingHandler.Create)
	api.GET("/shopping/stats", shoppingHandler.Stats)
	api.PATCH("/shopping/:id/toggle", shoppingHandler.Toggle)
	api.DELETE("/shopping/checked", shoppingHandler.ClearChecked)
	api.DELETE("/shopping/all", shoppingHandler.ClearAll)

	return apiFixture{db: db, router: router, tasks: tasks, shopping: items, users: users, clock: clock}
}

// do sends a request as the household chat
func (f apiFixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderChatID, strconv.FormatInt(anyaID, 10))

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

func idPath(prefix string, id uint, suffix string) string {
	return prefix + "/" + strconv.FormatUint(uint64(id), 10) + suffix
}

// addTask creates a task directly through the service
func (f apiFixture) addTask(t *testing.T, name string, interval int) *chore.Task {
	t.Helper()
	task, err := f.tasks.AddTask(context.Background(), name, interval, events.SourceCLI)
	require.NoError(t, err)
	return task
}

