package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"chorebot-api/internal/chore"
	"chorebot-api/internal/common"
	"chorebot-api/internal/config"
	"chorebot-api/internal/digest"
	"chorebot-api/internal/events"
	"chorebot-api/internal/shopping"
	"chorebot-api/internal/user"

	"go.uber.org/zap"
)

// Request is one update addressed to the processor
type Request struct {
	Sender    Sender
	ChatID    int64
	Responder Responder
}

func (r Request) profile() user.Profile {
	return user.Profile{ChatID: r.Sender.ID, Username: r.Sender.Username, FirstName: r.Sender.FirstName}
}

// Dependencies groups the services the processor drives
type Dependencies struct {
	Tasks    chore.Service
	Shopping shopping.Service
	Users    user.Repository
	Digest   digest.Service
}

// CommandProcessor handles commands, menu buttons, conversation input and
// inline callbacks
type CommandProcessor struct {
	deps        Dependencies
	provider    TelegramProvider
	sessions    *SessionManager
	keyboards   *KeyboardBuilder
	config      config.ChatbotConfig
	dueSoonDays int
	logger      *zap.Logger
}

// NewCommandProcessor creates a new CommandProcessor instance. dueSoonDays
// is the horizon of the urgent task view and /test_reminders.
func NewCommandProcessor(deps Dependencies, provider TelegramProvider, sessions *SessionManager, cfg config.ChatbotConfig, dueSoonDays int, logger *zap.Logger) *CommandProcessor {
	return &CommandProcessor{
		deps:        deps,
		provider:    provider,
		sessions:    sessions,
		keyboards:   NewKeyboardBuilder(dueSoonDays),
		config:      cfg,
		dueSoonDays: dueSoonDays,
		logger:      logger,
	}
}

// HandleCommand runs a slash command. Any pending conversation step is
// abandoned.
func (cp *CommandProcessor) HandleCommand(ctx context.Context, req Request, command Command, args string) error {
	cp.logger.Info("Processing command",
		zap.String("command", string(command)),
		zap.Int64("user_id", req.Sender.ID),
		zap.Int64("chat_id", req.ChatID))

	cp.sessions.Reset(req.Sender.ID)

	if command.RequiresAdmin() && !cp.config.IsAdmin(req.Sender.ID) {
		cp.logger.Warn("Admin command denied",
			zap.String("command", string(command)),
			zap.Int64("user_id", req.Sender.ID))
		return req.Responder.Respond(ctx, adminOnlyText, nil)
	}

	switch command {
	case CommandStart:
		return cp.processStart(ctx, req)
	case CommandHelp:
		return req.Responder.Respond(ctx, helpText, nil)
	case CommandTasks:
		return cp.showTasks(ctx, req, false)
	case CommandDone:
		return cp.processDone(ctx, req, args)
	case CommandStats:
		return cp.showProgress(ctx, req)
	case CommandNext:
		return cp.showNext(ctx, req)
	case CommandTestReminders:
		return cp.testReminders(ctx, req, nil)
	case CommandTestWeekly:
		return cp.testWeekly(ctx, req, nil)
	case CommandManage:
		return req.Responder.Respond(ctx, manageMenuText, cp.keyboards.ManagementKeyboard())
	case CommandAddTask:
		return cp.processAddTask(ctx, req, args)
	case CommandDeleteTask:
		return cp.processDeleteTask(ctx, req, args)
	case CommandEditTask:
		return cp.processEditTask(ctx, req, args)
	case CommandRenameTask:
		return cp.processRenameTask(ctx, req, args)
	case CommandBackup:
		return cp.processBackup(ctx, req)
	case CommandAchievements:
		return cp.showAchievements(ctx, req)
	case CommandShopping:
		return cp.showShopping(ctx, req)
	case CommandBuy:
		return cp.processBuy(ctx, req, args)
	default:
		return req.Responder.Respond(ctx, unknownInputText, nil)
	}
}

// HandleText routes menu buttons first, then answers a pending conversation
// step
func (cp *CommandProcessor) HandleText(ctx context.Context, req Request, text string) error {
	text = strings.TrimSpace(text)

	if handled, err := cp.handleButton(ctx, req, text); handled {
		return err
	}

	session, ok := cp.sessions.Get(req.Sender.ID)
	if !ok || session.State == SessionStateIdle {
		return req.Responder.Respond(ctx, unknownInputText, cp.keyboards.MainKeyboard())
	}

	cp.logger.Debug("Processing conversation input",
		zap.Int64("user_id", req.Sender.ID),
		zap.String("state", string(session.State)))

	switch session.State {
	case SessionStateAwaitingNewTask:
		return cp.inputNewTask(ctx, req, text)
	case SessionStateAwaitingInterval:
		return cp.inputInterval(ctx, req, session.TaskID, text)
	case SessionStateAwaitingRename:
		return cp.inputRename(ctx, req, session.TaskID, text)
	case SessionStateAwaitingShoppingItem:
		cp.sessions.Reset(req.Sender.ID)
		return cp.addShoppingItem(ctx, req, text)
	default:
		cp.sessions.Reset(req.Sender.ID)
		return req.Responder.Respond(ctx, unknownInputText, nil)
	}
}

func (cp *CommandProcessor) handleButton(ctx context.Context, req Request, text string) (bool, error) {
	var run func() error
	admin := false

	switch text {
	case ButtonTasks:
		run = func() error { return cp.showTasks(ctx, req, false) }
	case ButtonNext:
		run = func() error { return cp.showNext(ctx, req) }
	case ButtonStats:
		run = func() error { return cp.showProgress(ctx, req) }
	case ButtonDone:
		run = func() error { return cp.showTasks(ctx, req, true) }
	case ButtonShopping:
		run = func() error { return cp.showShopping(ctx, req) }
	case ButtonManage:
		admin = true
		run = func() error { return req.Responder.Respond(ctx, manageMenuText, cp.keyboards.ManagementKeyboard()) }
	case ButtonReminders:
		admin = true
		run = func() error { return req.Responder.Respond(ctx, remindersMenuText, cp.keyboards.RemindersKeyboard()) }
	default:
		return false, nil
	}

	cp.sessions.Reset(req.Sender.ID)
	if admin && !cp.config.IsAdmin(req.Sender.ID) {
		return true, req.Responder.Respond(ctx, adminOnlyText, nil)
	}
	return true, run()
}

// HandleCallback runs an inline button action. The returned notice is shown
// to the presser as a toast.
func (cp *CommandProcessor) HandleCallback(ctx context.Context, req Request, data string) (string, error) {
	if !cp.config.IsAdmin(req.Sender.ID) {
		cp.logger.Warn("Callback denied",
			zap.String("data", data),
			zap.Int64("user_id", req.Sender.ID))
		return adminCallbackText, nil
	}

	cb, err := ParseCallback(data)
	if err != nil {
		cp.logger.Warn("Invalid callback data", zap.String("data", data), zap.Error(err))
		return unknownCallbackText, nil
	}

	cp.logger.Info("Processing callback",
		zap.String("action", cb.Action),
		zap.Uint("id", cb.ID),
		zap.Int64("user_id", req.Sender.ID))

	switch cb.Action {
	case CallbackDone:
		if !cb.HasID {
			return unknownCallbackText, nil
		}
		return cp.completeByID(ctx, req, cb.ID)
	case CallbackShowAll:
		return "", cp.showTasks(ctx, req, true)
	case CallbackShowUrgent, CallbackRefresh:
		return "", cp.showTasks(ctx, req, false)
	case CallbackStats:
		return "", cp.showStatistics(ctx, req)
	case CallbackManage, CallbackBackManage:
		cp.sessions.Reset(req.Sender.ID)
		return "", req.Responder.Respond(ctx, manageMenuText, cp.keyboards.ManagementKeyboard())
	case CallbackAddTask:
		cp.sessions.Await(req.Sender.ID, req.ChatID, SessionStateAwaitingNewTask, 0)
		return "", req.Responder.Respond(ctx, addTaskPromptText, cp.keyboards.CancelKeyboard())
	case CallbackEditInterval:
		return "", cp.selectOrPrompt(ctx, req, cb, selectIntervalText, SessionStateAwaitingInterval, formatIntervalPrompt)
	case CallbackRenameTask:
		return "", cp.selectOrPrompt(ctx, req, cb, selectRenameText, SessionStateAwaitingRename, formatRenamePrompt)
	case CallbackDeleteTask:
		if !cb.HasID {
			return "", cp.showSelection(ctx, req, CallbackDeleteTask, selectDeleteText)
		}
		return "", cp.confirmDelete(ctx, req, cb.ID)
	case CallbackConfirmDelete:
		if !cb.HasID {
			return unknownCallbackText, nil
		}
		return cp.deleteTask(ctx, req, cb.ID)
	case CallbackTestReminders:
		return "", cp.testReminders(ctx, req, cp.keyboards.BackKeyboard())
	case CallbackTestWeekly:
		return "", cp.testWeekly(ctx, req, cp.keyboards.BackKeyboard())
	case CallbackCancel:
		cp.sessions.Reset(req.Sender.ID)
		return "", req.Responder.Respond(ctx, cancelledText, nil)
	case CallbackBackMain:
		cp.sessions.Reset(req.Sender.ID)
		return "", req.Responder.Respond(ctx, mainMenuText, cp.keyboards.MainKeyboard())
	case CallbackShopShow:
		cp.sessions.Reset(req.Sender.ID)
		return "", cp.showShopping(ctx, req)
	case CallbackShopToggleView:
		cp.sessions.ToggleShowChecked(req.Sender.ID, req.ChatID)
		return "", cp.showShopping(ctx, req)
	case CallbackShopAdd:
		cp.sessions.Await(req.Sender.ID, req.ChatID, SessionStateAwaitingShoppingItem, 0)
		return "", req.Responder.Respond(ctx, shoppingPromptText, cp.keyboards.CancelKeyboard())
	case CallbackShopToggle:
		if !cb.HasID {
			return unknownCallbackText, nil
		}
		return cp.toggleItem(ctx, req, cb.ID)
	case CallbackShopClearChecked:
		return "", req.Responder.Respond(ctx, clearCheckedAskText,
			cp.keyboards.ConfirmationKeyboard(CallbackShopConfirmClear, CallbackShopShow))
	case CallbackShopConfirmClear:
		return cp.clearShopping(ctx, req, false)
	case CallbackShopClearAll:
		return "", req.Responder.Respond(ctx, clearAllAskText,
			cp.keyboards.ConfirmationKeyboard(CallbackShopConfirmAll, CallbackShopShow))
	case CallbackShopConfirmAll:
		return cp.clearShopping(ctx, req, true)
	case CallbackNoop:
		return "", nil
	default:
		cp.logger.Warn("Unknown callback action", zap.String("action", cb.Action))
		return unknownCallbackText, nil
	}
}

// respondError turns a domain error into a reply. Only unexpected errors
// are logged as failures.
func (cp *CommandProcessor) respondError(ctx context.Context, req Request, err error, markup interface{}) error {
	var (
		validation common.ValidationError
		ambiguous  chore.AmbiguousNameError
		text       string
	)
	switch {
	case errors.As(err, &validation):
		text = "❌ " + escape(validation.Message())
	case errors.As(err, &ambiguous):
		text = formatAmbiguous(ambiguous)
	case common.IsNotFound(err):
		text = "❌ Запись не найдена, обновите список"
	case common.IsConflict(err):
		text = "❌ Такая запись уже существует"
	default:
		cp.logger.Error("Bot request failed",
			zap.Int64("user_id", req.Sender.ID),
			zap.Error(err))
		text = internalErrorText
	}
	return req.Responder.Respond(ctx, text, markup)
}

func (cp *CommandProcessor) processStart(ctx context.Context, req Request) error {
	if _, err := cp.deps.Users.Upsert(ctx, req.profile(), cp.deps.Tasks.Now()); err != nil {
		cp.logger.Error("Failed to register user", zap.Int64("user_id", req.Sender.ID), zap.Error(err))
	}
	return req.Responder.Respond(ctx, welcomeText, cp.keyboards.MainKeyboard())
}

func (cp *CommandProcessor) completerNames(ctx context.Context, tasks []chore.Task) map[int64]string {
	var ids []int64
	for _, t := range tasks {
		if t.LastDoneBy != nil {
			ids = append(ids, *t.LastDoneBy)
		}
	}
	if len(ids) == 0 {
		return map[int64]string{}
	}
	return cp.deps.Users.DisplayNames(ctx, ids)
}

func (cp *CommandProcessor) showTasks(ctx context.Context, req Request, showAll bool) error {
	tasks, err := cp.deps.Tasks.ListTasks(ctx)
	if err != nil {
		return cp.respondError(ctx, req, err, nil)
	}
	now := cp.deps.Tasks.Now()
	text := FormatTaskList(tasks, now, cp.completerNames(ctx, tasks))
	return req.Responder.Respond(ctx, text, cp.keyboards.TasksKeyboard(tasks, now, showAll))
}

func (cp *CommandProcessor) processDone(ctx context.Context, req Request, query string) error {
	if query == "" {
		return req.Responder.Respond(ctx, doneUsageText, nil)
	}

	task, err := cp.deps.Tasks.FindTask(ctx, query)
	if err != nil {
		if common.IsNotFound(err) {
			return req.Responder.Respond(ctx, formatTaskNotFound(query), nil)
		}
		return cp.respondError(ctx, req, err, nil)
	}

	task, err = cp.deps.Tasks.MarkDone(ctx, task.ID, req.profile(), events.SourceBot)
	if err != nil {
		return cp.respondError(ctx, req, err, nil)
	}
	return req.Responder.Respond(ctx, FormatDone(req.Sender.Name(), task), nil)
}

func (cp *CommandProcessor) completeByID(ctx context.Context, req Request, id uint) (string, error) {
	task, err := cp.deps.Tasks.MarkDone(ctx, id, req.profile(), events.SourceBot)
	if err != nil {
		if common.IsNotFound(err) {
			return "❌ Задача не найдена", cp.showTasks(ctx, req, false)
		}
		return "", cp.respondError(ctx, req, err, nil)
	}

	tasks, err := cp.deps.Tasks.ListTasks(ctx)
	if err != nil {
		return "", cp.respondError(ctx, req, err, nil)
	}
	text := FormatDone(req.Sender.Name(), task)
	return "✅ " + task.Name, req.Responder.Respond(ctx, text, cp.keyboards.TasksKeyboard(tasks, cp.deps.Tasks.Now(), false))
}

func (cp *CommandProcessor) showProgress(ctx context.Context, req Request) error {
	progress, err := cp.deps.Tasks.Progress(ctx)
	if err != nil {
		return cp.respondError(ctx, req, err, nil)
	}
	return req.Responder.Respond(ctx, FormatProgress(progress), nil)
}

func (cp *CommandProcessor) showStatistics(ctx context.Context, req Request) error {
	stats, err := cp.deps.Tasks.Statistics(ctx, digest.AchievementWindowDays)
	if err != nil {
		return cp.respondError(ctx, req, err, nil)
	}
	return req.Responder.Respond(ctx, FormatStatistics(stats), cp.keyboards.BackKeyboard())
}

func (cp *CommandProcessor) showAchievements(ctx context.Context, req Request) error {
	stats, err := cp.deps.Tasks.Statistics(ctx, digest.AchievementWindowDays)
	if err != nil {
		return cp.respondError(ctx, req, err, nil)
	}
	return req.Responder.Respond(ctx, digest.FormatAchievements(stats), nil)
}

func (cp *CommandProcessor) showNext(ctx context.Context, req Request) error {
	tasks, err := cp.deps.Tasks.NextTasks(ctx)
	if err != nil {
		return cp.respondError(ctx, req, err, nil)
	}
	return req.Responder.Respond(ctx, FormatNext(tasks, cp.deps.Tasks.Now()), nil)
}

func (cp *CommandProcessor) testReminders(ctx context.Context, req Request, markup interface{}) error {
	text, ok, err := cp.deps.Digest.DailyText(ctx, cp.dueSoonDays)
	if err != nil {
		return cp.respondError(ctx, req, err, markup)
	}
	if !ok {
		text = noRemindersText
	}
	return req.Responder.Respond(ctx, text, markup)
}

func (cp *CommandProcessor) testWeekly(ctx context.Context, req Request, markup interface{}) error {
	text, err := cp.deps.Digest.WeeklyText(ctx)
	if err != nil {
		return cp.respondError(ctx, req, err, markup)
	}
	return req.Responder.Respond(ctx, text, markup)
}

func (cp *CommandProcessor) processAddTask(ctx context.Context, req Request, args string) error {
	name, days, ok := parseTaskInput(args)
	if !ok {
		return req.Responder.Respond(ctx, addTaskUsageText, nil)
	}
	return cp.addTask(ctx, req, name, days)
}

func (cp *CommandProcessor) addTask(ctx context.Context, req Request, name string, days int) error {
	task, err := cp.deps.Tasks.AddTask(ctx, name, days, events.SourceBot)
	if err != nil {
		if common.IsConflict(err) {
			return req.Responder.Respond(ctx, formatTaskExists(name), nil)
		}
		return cp.respondError(ctx, req, err, nil)
	}
	return req.Responder.Respond(ctx, formatTaskAdded(task), cp.keyboards.ManagementKeyboard())
}

func (cp *CommandProcessor) showSelection(ctx context.Context, req Request, action, prompt string) error {
	tasks, err := cp.deps.Tasks.ListTasks(ctx)
	if err != nil {
		return cp.respondError(ctx, req, err, nil)
	}
	if len(tasks) == 0 {
		return req.Responder.Respond(ctx, noTasksText, cp.keyboards.ManagementKeyboard())
	}
	return req.Responder.Respond(ctx, prompt, cp.keyboards.TaskSelectionKeyboard(action, tasks))
}

// selectOrPrompt shows the task picker for a bare action, or starts the
// input step for the chosen task
func (cp *CommandProcessor) selectOrPrompt(ctx context.Context, req Request, cb CallbackData, selectText string, state SessionState, prompt func(*chore.Task) string) error {
	if !cb.HasID {
		return cp.showSelection(ctx, req, cb.Action, selectText)
	}
	return cp.startInput(ctx, req, cb.ID, state, prompt)
}

func (cp *CommandProcessor) startInput(ctx context.Context, req Request, id uint, state SessionState, prompt func(*chore.Task) string) error {
	task, err := cp.deps.Tasks.GetTask(ctx, id)
	if err != nil {
		return cp.respondError(ctx, req, err, nil)
	}
	cp.sessions.Await(req.Sender.ID, req.ChatID, state, task.ID)
	return req.Responder.Respond(ctx, prompt(task), cp.keyboards.CancelKeyboard())
}

func (cp *CommandProcessor) confirmDelete(ctx context.Context, req Request, id uint) error {
	task, err := cp.deps.Tasks.GetTask(ctx, id)
	if err != nil {
		return cp.respondError(ctx, req, err, nil)
	}
	return req.Responder.Respond(ctx, formatDeleteConfirm(task),
		cp.keyboards.ConfirmationKeyboard(EncodeCallbackID(CallbackConfirmDelete, task.ID), CallbackBackManage))
}

func (cp *CommandProcessor) deleteTask(ctx context.Context, req Request, id uint) (string, error) {
	task, err := cp.deps.Tasks.DeleteTask(ctx, id, events.SourceBot)
	if err != nil {
		return "", cp.respondError(ctx, req, err, cp.keyboards.ManagementKeyboard())
	}
	return "🗑️ Удалено", req.Responder.Respond(ctx, formatDeleted(task), cp.keyboards.ManagementKeyboard())
}

// processDeleteTask asks for confirmation; /delete_task without an id shows
// the picker
func (cp *CommandProcessor) processDeleteTask(ctx context.Context, req Request, args string) error {
	if args == "" {
		return cp.showSelection(ctx, req, CallbackDeleteTask, selectDeleteText)
	}
	id, ok := parseID(args)
	if !ok {
		return req.Responder.Respond(ctx, "❌ Формат: /delete_task id", nil)
	}
	return cp.confirmDelete(ctx, req, id)
}

// processEditTask accepts "id days", or "id" to ask for the interval
func (cp *CommandProcessor) processEditTask(ctx context.Context, req Request, args string) error {
	if args == "" {
		return cp.showSelection(ctx, req, CallbackEditInterval, selectIntervalText)
	}

	fields := strings.Fields(args)
	id, ok := parseID(fields[0])
	if !ok || len(fields) > 2 {
		return req.Responder.Respond(ctx, "❌ Формат: /edit_task id дни", nil)
	}
	if len(fields) == 1 {
		return cp.startInput(ctx, req, id, SessionStateAwaitingInterval, formatIntervalPrompt)
	}

	days, ok := parseDays(fields[1])
	if !ok {
		return req.Responder.Respond(ctx, "❌ Интервал должен быть целым числом дней больше нуля", nil)
	}
	task, err := cp.deps.Tasks.UpdateInterval(ctx, id, days)
	if err != nil {
		return cp.respondError(ctx, req, err, nil)
	}
	return req.Responder.Respond(ctx, formatIntervalUpdated(task), nil)
}

// processRenameTask accepts "id | name", or "id" to ask for the name
func (cp *CommandProcessor) processRenameTask(ctx context.Context, req Request, args string) error {
	if args == "" {
		return cp.showSelection(ctx, req, CallbackRenameTask, selectRenameText)
	}

	rawID, name, hasName := strings.Cut(args, "|")
	id, ok := parseID(rawID)
	if !ok {
		return req.Responder.Respond(ctx, "❌ Формат: /rename_task id | Новое название", nil)
	}
	if !hasName {
		return cp.startInput(ctx, req, id, SessionStateAwaitingRename, formatRenamePrompt)
	}
	return cp.rename(ctx, req, id, strings.TrimSpace(name))
}

func (cp *CommandProcessor) rename(ctx context.Context, req Request, id uint, name string) error {
	task, err := cp.deps.Tasks.RenameTask(ctx, id, name)
	if err != nil {
		if common.IsConflict(err) {
			return req.Responder.Respond(ctx, formatTaskExists(name), nil)
		}
		return cp.respondError(ctx, req, err, nil)
	}
	return req.Responder.Respond(ctx, formatRenamed(task), nil)
}

func (cp *CommandProcessor) inputNewTask(ctx context.Context, req Request, text string) error {
	name, days, ok := parseTaskInput(text)
	if !ok {
		return req.Responder.Respond(ctx, addTaskPromptText, cp.keyboards.CancelKeyboard())
	}
	cp.sessions.Reset(req.Sender.ID)
	return cp.addTask(ctx, req, name, days)
}

func (cp *CommandProcessor) inputInterval(ctx context.Context, req Request, taskID uint, text string) error {
	days, ok := parseDays(text)
	if !ok {
		return req.Responder.Respond(ctx, "❌ Введите целое число дней больше нуля", cp.keyboards.CancelKeyboard())
	}
	cp.sessions.Reset(req.Sender.ID)

	task, err := cp.deps.Tasks.UpdateInterval(ctx, taskID, days)
	if err != nil {
		return cp.respondError(ctx, req, err, nil)
	}
	return req.Responder.Respond(ctx, formatIntervalUpdated(task), cp.keyboards.ManagementKeyboard())
}

func (cp *CommandProcessor) inputRename(ctx context.Context, req Request, taskID uint, text string) error {
	if text == "" {
		return req.Responder.Respond(ctx, "❌ Название не может быть пустым", cp.keyboards.CancelKeyboard())
	}
	cp.sessions.Reset(req.Sender.ID)
	return cp.rename(ctx, req, taskID, text)
}

type backupDocument struct {
	ExportedAt    time.Time       `json:"exported_at"`
	Tasks         []chore.Task    `json:"tasks"`
	ShoppingItems []shopping.Item `json:"shopping_items"`
	Users         []user.User     `json:"users"`
}

// processBackup sends a JSON export of tasks, the shopping list and users
func (cp *CommandProcessor) processBackup(ctx context.Context, req Request) error {
	tasks, err := cp.deps.Tasks.ListTasks(ctx)
	if err != nil {
		return cp.respondError(ctx, req, err, nil)
	}
	items, err := cp.deps.Shopping.ListItems(ctx, shopping.Filter{ShowChecked: true, Category: shopping.CategoryAll})
	if err != nil {
		return cp.respondError(ctx, req, err, nil)
	}
	users, err := cp.deps.Users.List(ctx)
	if err != nil {
		return cp.respondError(ctx, req, err, nil)
	}

	now := cp.deps.Tasks.Now()
	data, err := json.MarshalIndent(backupDocument{
		ExportedAt:    now,
		Tasks:         tasks,
		ShoppingItems: items,
		Users:         users,
	}, "", "  ")
	if err != nil {
		return cp.respondError(ctx, req, err, nil)
	}

	name := fmt.Sprintf("household_backup_%s.json", now.In(cp.deps.Tasks.Location()).Format("20060102_150405"))
	caption := fmt.Sprintf("💾 Резервная копия: задач %d, покупок %d, пользователей %d", len(tasks), len(items), len(users))
	if err := cp.provider.SendDocument(ctx, req.ChatID, name, data, caption); err != nil {
		return req.Responder.Respond(ctx, "❌ Не удалось отправить резервную копию", nil)
	}

	cp.logger.Info("Backup sent",
		zap.Int64("chat_id", req.ChatID),
		zap.Int("size_bytes", len(data)))
	return nil
}

func (cp *CommandProcessor) showShopping(ctx context.Context, req Request) error {
	showChecked := cp.sessions.ShowChecked(req.Sender.ID)
	items, err := cp.deps.Shopping.ListItems(ctx, shopping.Filter{ShowChecked: showChecked, Category: shopping.CategoryAll})
	if err != nil {
		return cp.respondError(ctx, req, err, nil)
	}
	counts, err := cp.deps.Shopping.Counts(ctx)
	if err != nil {
		return cp.respondError(ctx, req, err, nil)
	}
	return req.Responder.Respond(ctx, FormatShoppingList(items, counts, showChecked),
		cp.keyboards.ShoppingKeyboard(items, showChecked))
}

// processBuy adds the item, or asks for it when no text was given
func (cp *CommandProcessor) processBuy(ctx context.Context, req Request, args string) error {
	if args == "" {
		cp.sessions.Await(req.Sender.ID, req.ChatID, SessionStateAwaitingShoppingItem, 0)
		return req.Responder.Respond(ctx, buyUsageText, nil)
	}
	return cp.addShoppingItem(ctx, req, args)
}

func (cp *CommandProcessor) addShoppingItem(ctx context.Context, req Request, input string) error {
	text, category := parseShoppingInput(input)
	item, err := cp.deps.Shopping.AddItem(ctx, text, category, events.SourceBot)
	if err != nil {
		if common.IsConflict(err) {
			return req.Responder.Respond(ctx, formatItemExists(text), nil)
		}
		return cp.respondError(ctx, req, err, nil)
	}
	return req.Responder.Respond(ctx, formatItemAdded(item), nil)
}

func (cp *CommandProcessor) toggleItem(ctx context.Context, req Request, id uint) (string, error) {
	item, err := cp.deps.Shopping.ToggleItem(ctx, id)
	if err != nil {
		if common.IsNotFound(err) {
			return "❌ Товар не найден", cp.showShopping(ctx, req)
		}
		return "", cp.respondError(ctx, req, err, nil)
	}

	notice := "⬜ " + item.ItemText
	if item.IsChecked {
		notice = "✅ " + item.ItemText
	}
	return notice, cp.showShopping(ctx, req)
}

func (cp *CommandProcessor) clearShopping(ctx context.Context, req Request, all bool) (string, error) {
	var (
		removed int64
		err     error
	)
	if all {
		removed, err = cp.deps.Shopping.ClearAll(ctx)
	} else {
		removed, err = cp.deps.Shopping.ClearChecked(ctx)
	}
	if err != nil {
		return "", cp.respondError(ctx, req, err, nil)
	}
	return fmt.Sprintf("🧹 Удалено: %d", removed), cp.showShopping(ctx, req)
}

func parseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func parseDays(s string) (int, bool) {
	days, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || days <= 0 {
		return 0, false
	}
	return days, true
}
