package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"chorebot-api/internal/chore"
	"chorebot-api/internal/common"
	"chorebot-api/internal/config"
	"chorebot-api/internal/database"
	"chorebot-api/internal/digest"
	"chorebot-api/internal/events"
	"chorebot-api/internal/mocks"
	"chorebot-api/internal/shopping"
	"chorebot-api/internal/user"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"
)

const (
	adminID  = int64(100)
	admin2ID = int64(300)
	guestID  = int64(200)
)

var botNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type botFixture struct {
	provider *mocks.MockTelegramProvider
	tasks    chore.Service
	shopping shopping.Service
	clock    *common.MockClock
	service  ChatbotService
}

func newBotFixture(t *testing.T) botFixture {
	t.Helper()
	db, err := database.NewSQLiteConnection(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, user.RunMigrations(db))
	require.NoError(t, chore.RunMigrations(db))
	require.NoError(t, shopping.RunMigrations(db))

	logger := zaptest.NewLogger(t)
	clock := common.NewMockClock(botNow)
	users := user.NewGormUserRepository(db, logger)
	tasks := chore.NewTaskService(chore.NewGormTaskRepository(db, logger), users, nil, clock, chore.ServiceConfig{}, logger)
	items := shopping.NewShoppingService(shopping.NewGormShoppingRepository(db, logger), nil, clock, logger)

	provider := mocks.NewMockTelegramProvider(gomock.NewController(t))
	digests := digest.NewDigestService(tasks, NewNotifier(provider), nil, digest.Config{Recipients: []int64{adminID}}, logger)

	cfg := config.ChatbotConfig{AdminIDs: []int64{adminID, admin2ID}}
	service, err := NewChatbotService(provider, Dependencies{
		Tasks:    tasks,
		Shopping: items,
		Users:    users,
		Digest:   digests,
	}, nil, clock, cfg, 2, logger)
	require.NoError(t, err)

	return botFixture{provider: provider, tasks: tasks, shopping: items, clock: clock, service: service}
}

// expectSend captures the text of the next message sent to chatID
func (f botFixture) expectSend(chatID int64) *string {
	var text string
	f.provider.EXPECT().SendMessage(gomock.Any(), chatID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, sent string, _ any) error {
			text = sent
			return nil
		})
	return &text
}

// expectEdit captures the text of the next edit of the callback message
func (f botFixture) expectEdit(chatID int64) *string {
	var text string
	f.provider.EXPECT().EditMessage(gomock.Any(), chatID, 20, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, _ int, sent string, _ *tgbotapi.InlineKeyboardMarkup) error {
			text = sent
			return nil
		})
	return &text
}

func commandUpdate(from int64, text string) tgbotapi.Update {
	length := len(text)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		length = i
	}
	return tgbotapi.Update{UpdateID: 1, Message: commandMessage(from, text, length)}
}

func textUpdate(from int64, text string) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: 2, Message: &tgbotapi.Message{
		MessageID: 11,
		From:      &tgbotapi.User{ID: from, FirstName: "Аня"},
		Chat:      &tgbotapi.Chat{ID: from},
		Text:      text,
	}}
}

func callbackUpdate(from int64, data string) tgbotapi.Update {
	return tgbotapi.Update{UpdateID: 3, CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: from, FirstName: "Аня"},
		Message: &tgbotapi.Message{MessageID: 20, Chat: &tgbotapi.Chat{ID: from}},
		Data:    data,
	}}
}

func TestDoneCommand_MarksTaskDone(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()
	task, err := f.tasks.AddTask(ctx, "Помыть полы", 7, events.SourceAPI)
	require.NoError(t, err)

	sent := f.expectSend(guestID)
	require.NoError(t, f.service.HandleUpdate(ctx, commandUpdate(guestID, "/done полы")))

	assert.Equal(t, "✅ Отлично! Аня выполнил(а) задачу: Помыть полы\nСледующее выполнение через 7 дней.", *sent)
	stored, err := f.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastDoneBy)
	assert.Equal(t, guestID, *stored.LastDoneBy)
}

func TestDoneCommand_Replies(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "no argument", text: "/done", want: doneUsageText},
		{name: "not found", text: "/done окна", want: "❌ Задача 'окна' не найдена.\nПосмотреть все задачи: /tasks"},
		{name: "ambiguous", text: "/done помыть", want: "🤔 Под 'помыть' подходит несколько задач"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBotFixture(t)
			ctx := context.Background()
			_, err := f.tasks.AddTask(ctx, "Помыть полы", 7, events.SourceAPI)
			require.NoError(t, err)
			_, err = f.tasks.AddTask(ctx, "Помыть ванну", 21, events.SourceAPI)
			require.NoError(t, err)

			sent := f.expectSend(guestID)
			require.NoError(t, f.service.HandleUpdate(ctx, commandUpdate(guestID, tt.text)))
			assert.True(t, strings.HasPrefix(*sent, tt.want), *sent)
		})
	}
}

func TestAdminCommand_DeniedForGuest(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()

	sent := f.expectSend(guestID)
	require.NoError(t, f.service.HandleUpdate(ctx, commandUpdate(guestID, "/add_task Полить цветы | 3")))

	assert.Equal(t, adminOnlyText, *sent)
	tasks, err := f.tasks.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestAddTaskCommand(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()

	sent := f.expectSend(adminID)
	require.NoError(t, f.service.HandleUpdate(ctx, commandUpdate(adminID, "/add_task Полить цветы | 3")))
	assert.Equal(t, "✅ Задача добавлена:\nНазвание: Полить цветы\nИнтервал: 3 дней", *sent)

	sent = f.expectSend(adminID)
	require.NoError(t, f.service.HandleUpdate(ctx, commandUpdate(adminID, "/add_task полить ЦВЕТЫ | 5")))
	assert.Equal(t, "❌ Задача с названием 'полить ЦВЕТЫ' уже существует.", *sent)

	sent = f.expectSend(adminID)
	require.NoError(t, f.service.HandleUpdate(ctx, commandUpdate(adminID, "/add_task")))
	assert.Equal(t, addTaskUsageText, *sent)
}

func TestEditTaskCommand(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()
	task, err := f.tasks.AddTask(ctx, "Помыть полы", 7, events.SourceAPI)
	require.NoError(t, err)

	sent := f.expectSend(adminID)
	require.NoError(t, f.service.HandleUpdate(ctx, commandUpdate(adminID, "/edit_task "+itoa(task.ID)+" 10")))
	assert.Equal(t, "✅ Интервал задачи «Помыть полы» изменён: 10 дней", *sent)

	sent = f.expectSend(adminID)
	require.NoError(t, f.service.HandleUpdate(ctx, commandUpdate(adminID, "/edit_task 999 10")))
	assert.Equal(t, "❌ Запись не найдена, обновите список", *sent)
}

func TestCallbackDone_EditsTaskList(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()
	task, err := f.tasks.AddTask(ctx, "Помыть полы", 7, events.SourceAPI)
	require.NoError(t, err)

	edited := f.expectEdit(adminID)
	f.provider.EXPECT().AnswerCallback(gomock.Any(), "cb1", "✅ Помыть полы").Return(nil)

	require.NoError(t, f.service.HandleUpdate(ctx, callbackUpdate(adminID, EncodeCallbackID(CallbackDone, task.ID))))
	assert.Contains(t, *edited, "Аня выполнил(а) задачу: Помыть полы")

	stored, err := f.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastDone)
}

func TestCallback_DeniedForGuest(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()
	task, err := f.tasks.AddTask(ctx, "Помыть полы", 7, events.SourceAPI)
	require.NoError(t, err)

	f.provider.EXPECT().AnswerCallback(gomock.Any(), "cb1", adminCallbackText).Return(nil)
	require.NoError(t, f.service.HandleUpdate(ctx, callbackUpdate(guestID, EncodeCallbackID(CallbackDone, task.ID))))

	stored, err := f.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastDone)
}

func TestCallback_UnknownAction(t *testing.T) {
	f := newBotFixture(t)

	f.provider.EXPECT().AnswerCallback(gomock.Any(), "cb1", unknownCallbackText).Return(nil)
	require.NoError(t, f.service.HandleUpdate(context.Background(), callbackUpdate(adminID, "launch_rocket")))
}

func TestRenameConversation(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()
	task, err := f.tasks.AddTask(ctx, "Помыть полы", 7, events.SourceAPI)
	require.NoError(t, err)

	prompt := f.expectEdit(adminID)
	f.provider.EXPECT().AnswerCallback(gomock.Any(), "cb1", "").Return(nil)
	require.NoError(t, f.service.HandleUpdate(ctx, callbackUpdate(adminID, EncodeCallbackID(CallbackRenameTask, task.ID))))
	assert.Contains(t, *prompt, "Введите новое название")

	sent := f.expectSend(adminID)
	require.NoError(t, f.service.HandleUpdate(ctx, textUpdate(adminID, "Мыть пол")))
	assert.Equal(t, "✅ Задача переименована: Мыть пол", *sent)

	stored, err := f.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Мыть пол", stored.Name)

	// the conversation step is consumed
	sent = f.expectSend(adminID)
	require.NoError(t, f.service.HandleUpdate(ctx, textUpdate(adminID, "Ещё имя")))
	assert.Equal(t, unknownInputText, *sent)
}

func TestCommandAbandonsConversation(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()

	f.expectEdit(adminID)
	f.provider.EXPECT().AnswerCallback(gomock.Any(), "cb1", "").Return(nil)
	require.NoError(t, f.service.HandleUpdate(ctx, callbackUpdate(adminID, CallbackAddTask)))

	f.expectSend(adminID)
	require.NoError(t, f.service.HandleUpdate(ctx, commandUpdate(adminID, "/help")))

	sent := f.expectSend(adminID)
	require.NoError(t, f.service.HandleUpdate(ctx, textUpdate(adminID, "Полить цветы | 3")))
	assert.Equal(t, unknownInputText, *sent)
}

func TestBuyAndToggle(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()

	sent := f.expectSend(guestID)
	require.NoError(t, f.service.HandleUpdate(ctx, commandUpdate(guestID, "/buy молоко #Молочка")))
	assert.Equal(t, "✅ Добавлено в список: молоко (молочка)", *sent)

	sent = f.expectSend(guestID)
	require.NoError(t, f.service.HandleUpdate(ctx, commandUpdate(guestID, "/buy Молоко")))
	assert.Equal(t, "ℹ️ «Молоко» уже есть в списке", *sent)

	items, err := f.shopping.ListItems(ctx, shopping.Filter{ShowChecked: true})
	require.NoError(t, err)
	require.Len(t, items, 1)

	edited := f.expectEdit(adminID)
	f.provider.EXPECT().AnswerCallback(gomock.Any(), "cb1", "✅ молоко").Return(nil)
	require.NoError(t, f.service.HandleUpdate(ctx, callbackUpdate(adminID, EncodeCallbackID(CallbackShopToggle, items[0].ID))))
	assert.Contains(t, *edited, "Всё куплено")

	counts, err := f.shopping.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Checked)
}

func TestBuyWithoutText_AwaitsItem(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()

	sent := f.expectSend(guestID)
	require.NoError(t, f.service.HandleUpdate(ctx, commandUpdate(guestID, "/buy")))
	assert.Equal(t, buyUsageText, *sent)

	sent = f.expectSend(guestID)
	require.NoError(t, f.service.HandleUpdate(ctx, textUpdate(guestID, "хлеб")))
	assert.Equal(t, "✅ Добавлено в список: хлеб (supermarket)", *sent)
}

func TestShoppingClearChecked(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()
	item, err := f.shopping.AddItem(ctx, "хлеб", "", events.SourceAPI)
	require.NoError(t, err)
	_, err = f.shopping.ToggleItem(ctx, item.ID)
	require.NoError(t, err)
	_, err = f.shopping.AddItem(ctx, "сыр", "", events.SourceAPI)
	require.NoError(t, err)

	f.expectEdit(adminID)
	f.provider.EXPECT().AnswerCallback(gomock.Any(), "cb1", "🧹 Удалено: 1").Return(nil)
	require.NoError(t, f.service.HandleUpdate(ctx, callbackUpdate(adminID, CallbackShopConfirmClear)))

	counts, err := f.shopping.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, shopping.Counts{Total: 1, Unchecked: 1}, counts)
}

func TestMenuButtons(t *testing.T) {
	tests := []struct {
		name   string
		sender int64
		text   string
		want   string
	}{
		{name: "next without tasks", sender: guestID, text: ButtonNext, want: noTasksText},
		{name: "stats", sender: guestID, text: ButtonStats, want: "📊 Статистика выполнения:"},
		{name: "manage denied", sender: guestID, text: ButtonManage, want: adminOnlyText},
		{name: "manage", sender: adminID, text: ButtonManage, want: manageMenuText},
		{name: "shopping", sender: guestID, text: ButtonShopping, want: "🛒 Список покупок пуст"},
		{name: "free text", sender: guestID, text: "привет", want: unknownInputText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBotFixture(t)
			sent := f.expectSend(tt.sender)
			require.NoError(t, f.service.HandleUpdate(context.Background(), textUpdate(tt.sender, tt.text)))
			assert.True(t, strings.HasPrefix(*sent, tt.want), *sent)
		})
	}
}

func TestTestReminders(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()

	sent := f.expectSend(adminID)
	require.NoError(t, f.service.HandleUpdate(ctx, commandUpdate(adminID, "/test_reminders")))
	assert.Equal(t, noRemindersText, *sent)

	_, err := f.tasks.AddTask(ctx, "Помыть ванну", 21, events.SourceAPI)
	require.NoError(t, err)

	sent = f.expectSend(adminID)
	require.NoError(t, f.service.HandleUpdate(ctx, commandUpdate(adminID, "/test_reminders")))
	assert.Contains(t, *sent, "🔴 Помыть ванну - никогда не выполнялось")
}

func TestBackupSendsDocument(t *testing.T) {
	f := newBotFixture(t)
	ctx := context.Background()
	_, err := f.tasks.AddTask(ctx, "Помыть полы", 7, events.SourceAPI)
	require.NoError(t, err)
	_, err = f.shopping.AddItem(ctx, "молоко", "", events.SourceAPI)
	require.NoError(t, err)

	var data []byte
	f.provider.EXPECT().
		SendDocument(gomock.Any(), adminID, "household_backup_20240310_120000.json", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, _ string, payload []byte, _ string) error {
			data = payload
			return nil
		})

	require.NoError(t, f.service.HandleUpdate(ctx, commandUpdate(adminID, "/backup")))

	var doc struct {
		Tasks         []map[string]any `json:"tasks"`
		ShoppingItems []map[string]any `json:"shopping_items"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Tasks, 1)
	assert.Len(t, doc.ShoppingItems, 1)
}

func TestHandleWebhook_InvalidPayload(t *testing.T) {
	f := newBotFixture(t)

	err := f.service.HandleWebhook(context.Background(), []byte("{"))
	require.Error(t, err)
	assert.True(t, IsWebhookParsingError(err))
}

func TestHandleUpdate_SendFailureIsReturned(t *testing.T) {
	f := newBotFixture(t)

	sendErr := TelegramAPIError{Operation: "send_message", StatusCode: 403, Description: "Forbidden: bot was blocked by the user"}
	f.provider.EXPECT().SendMessage(gomock.Any(), guestID, gomock.Any(), gomock.Any()).Return(sendErr)

	err := f.service.HandleUpdate(context.Background(), commandUpdate(guestID, "/help"))
	assert.True(t, errors.Is(err, sendErr))
	assert.False(t, IsTemporaryError(err))
}

func TestTaskCompletedAnnouncement(t *testing.T) {
	f := newBotFixture(t)
	svc := f.service.(*chatbotService)

	sent := f.expectSend(admin2ID)
	svc.handleTaskCompleted(events.TaskCompleted{
		Event:        events.NewEvent(),
		TaskID:       1,
		TaskName:     "Помыть полы",
		IntervalDays: 7,
		ChatID:       adminID,
		CompletedBy:  "Аня",
		Source:       events.SourceAPI,
	})
	assert.Equal(t, "📣 Аня выполнил(а) задачу: Помыть полы\nСледующее выполнение через 7 дней.", *sent)

	// completions made in the chat are already visible there
	svc.handleTaskCompleted(events.TaskCompleted{Event: events.NewEvent(), ChatID: adminID, Source: events.SourceBot})
}

func TestStartStop_Polling(t *testing.T) {
	f := newBotFixture(t)
	updates := make(chan tgbotapi.Update)

	f.provider.EXPECT().DeleteWebhook().Return(nil)
	f.provider.EXPECT().GetUpdatesChan(defaultPollingTimeout).Return(tgbotapi.UpdatesChannel(updates))
	f.provider.EXPECT().StopUpdates()

	require.NoError(t, f.service.Start(context.Background()))
	assert.Error(t, f.service.Start(context.Background()))

	sent := f.expectSend(guestID)
	updates <- commandUpdate(guestID, "/help")
	f.service.Stop()
	assert.Equal(t, helpText, *sent)
}

func TestStart_Webhook(t *testing.T) {
	f := newBotFixture(t)
	svc := f.service.(*chatbotService)
	svc.config.WebhookURL = "https://example.com/api/v1/telegram/webhook"

	f.provider.EXPECT().SetWebhook(svc.config.WebhookURL).Return(nil)
	require.NoError(t, f.service.Start(context.Background()))
	f.service.Stop()
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
