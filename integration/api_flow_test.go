//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"chorebot-api/api/routes"
	"chorebot-api/internal/chatbot"
	"chorebot-api/internal/chore"
	"chorebot-api/internal/common"
	"chorebot-api/internal/config"
	"chorebot-api/internal/digest"
	"chorebot-api/internal/events"
	"chorebot-api/internal/mocks"
	"chorebot-api/internal/shopping"
	"chorebot-api/internal/user"
	"chorebot-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"
)

const (
	householdChat = int64(42)
	otherAdmin    = int64(300)
)

func TestAPIFlow_CompletionIsAnnounced(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := SetupTestDatabase(t)
	zl := zaptest.NewLogger(t)

	bus := events.NewEventBus(zl)
	t.Cleanup(func() { _ = bus.Close() })

	clock := common.NewRealClock()
	users := user.NewGormUserRepository(db, zl)
	tasks := chore.NewTaskService(chore.NewGormTaskRepository(db, zl), users, bus, clock, chore.ServiceConfig{}, zl)
	items := shopping.NewShoppingService(shopping.NewGormShoppingRepository(db, zl), bus, clock, zl)

	provider := mocks.NewMockTelegramProvider(gomock.NewController(t))
	announced := make(chan string, 1)
	provider.EXPECT().SendMessage(gomock.Any(), otherAdmin, gomock.Any(), gomock.Nil()).
		DoAndReturn(func(_ any, _ int64, text string, _ any) error {
			announced <- text
			return nil
		})

	bot, err := chatbot.NewChatbotService(provider, chatbot.Dependencies{
		Tasks:    tasks,
		Shopping: items,
		Users:    users,
		Digest:   digest.NewDigestService(tasks, nil, nil, digest.Config{}, zl),
	}, bus, clock, config.ChatbotConfig{AdminIDs: []int64{householdChat, otherAdmin}}, 2, zl)
	require.NoError(t, err)

	cfg := &config.Config{
		Household: config.HouseholdConfig{AllowedChatIDs: []int64{householdChat}},
		Metrics:   config.MetricsConfig{Path: "/metrics"},
	}
	router := gin.New()
	routes.SetupRoutes(router, routes.Dependencies{
		DB:       db,
		Tasks:    tasks,
		Shopping: items,
		Users:    users,
		Chatbot:  bot,
	}, cfg, logger.New())

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Chat-ID", strconv.FormatInt(householdChat, 10))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/api/v1/tasks", `{"name": "Помыть полы", "interval_days": 7}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created chore.TaskView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(http.MethodPost, "/api/v1/tasks/"+strconv.FormatUint(uint64(created.ID), 10)+"/done", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var done chore.TaskView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &done))
	assert.False(t, done.IsOverdue)
	assert.Equal(t, 7, done.DaysUntilDue)

	select {
	case text := <-announced:
		assert.Contains(t, text, "Помыть полы")
	case <-time.After(5 * time.Second):
		t.Fatal("completion was not announced")
	}

	w = do(http.MethodPost, "/api/v1/tasks", `{"name": "помыть ПОЛЫ", "interval_days": 3}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}
