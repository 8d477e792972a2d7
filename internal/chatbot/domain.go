package chatbot

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Command represents supported bot commands, without the leading slash
type Command string

const (
	CommandStart         Command = "start"
	CommandHelp          Command = "help"
	CommandTasks         Command = "tasks"
	CommandDone          Command = "done"
	CommandStats         Command = "stats"
	CommandNext          Command = "next"
	CommandTestReminders Command = "test_reminders"
	CommandTestWeekly    Command = "test_weekly"
	CommandManage        Command = "manage"
	CommandAddTask       Command = "add_task"
	CommandDeleteTask    Command = "delete_task"
	CommandEditTask      Command = "edit_task"
	CommandRenameTask    Command = "rename_task"
	CommandBackup        Command = "backup"
	CommandAchievements  Command = "achievements"
	CommandShopping      Command = "shopping"
	CommandBuy           Command = "buy"
)

var adminCommands = map[Command]bool{
	CommandTestReminders: true,
	CommandTestWeekly:    true,
	CommandManage:        true,
	CommandAddTask:       true,
	CommandDeleteTask:    true,
	CommandEditTask:      true,
	CommandRenameTask:    true,
	CommandBackup:        true,
}

// IsValid checks if the command is known
func (c Command) IsValid() bool {
	switch c {
	case CommandStart, CommandHelp, CommandTasks, CommandDone, CommandStats,
		CommandNext, CommandTestReminders, CommandTestWeekly, CommandManage,
		CommandAddTask, CommandDeleteTask, CommandEditTask, CommandRenameTask,
		CommandBackup, CommandAchievements, CommandShopping, CommandBuy:
		return true
	default:
		return false
	}
}

// RequiresAdmin reports whether only chatbot.admin_ids may run the command
func (c Command) RequiresAdmin() bool {
	return adminCommands[c]
}

// Main reply keyboard buttons
const (
	ButtonTasks     = "📋 Список задач"
	ButtonNext      = "⏰ Ближайшие"
	ButtonStats     = "📊 Статистика"
	ButtonDone      = "✅ Выполнить"
	ButtonManage    = "🛠️ Управление"
	ButtonReminders = "🔔 Напоминания"
	ButtonShopping  = "🛒 Покупки"
)

// CallbackAction constants for inline button presses
const (
	CallbackDone             = "done"
	CallbackShowAll          = "tasks_all"
	CallbackShowUrgent       = "tasks_urgent"
	CallbackRefresh          = "tasks_refresh"
	CallbackStats            = "stats"
	CallbackManage           = "manage"
	CallbackAddTask          = "add_task"
	CallbackEditInterval     = "edit_interval"
	CallbackRenameTask       = "rename_task"
	CallbackDeleteTask       = "delete_task"
	CallbackConfirmDelete    = "confirm_delete"
	CallbackTestReminders    = "test_reminders"
	CallbackTestWeekly       = "test_weekly"
	CallbackCancel           = "cancel"
	CallbackBackMain         = "back_main"
	CallbackBackManage       = "back_manage"
	CallbackShopShow         = "shop_show"
	CallbackShopToggleView   = "shop_view"
	CallbackShopAdd          = "shop_add"
	CallbackShopToggle       = "shop_toggle"
	CallbackShopClearChecked = "shop_clear_checked"
	CallbackShopConfirmClear = "shop_confirm_checked"
	CallbackShopClearAll     = "shop_clear_all"
	CallbackShopConfirmAll   = "shop_confirm_all"
	CallbackNoop             = "noop"
)

// CallbackData is a parsed inline button payload of the form "action" or
// "action:id". Telegram limits the payload to 64 bytes.
type CallbackData struct {
	Action string
	ID     uint
	HasID  bool
}

// EncodeCallbackID builds the payload for an action on one task or item
func EncodeCallbackID(action string, id uint) string {
	return fmt.Sprintf("%s:%d", action, id)
}

// ParseCallback decodes a bare action or a payload built by EncodeCallbackID
func ParseCallback(data string) (CallbackData, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return CallbackData{}, fmt.Errorf("empty callback data")
	}

	action, rawID, found := strings.Cut(data, ":")
	if !found {
		return CallbackData{Action: action}, nil
	}
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		return CallbackData{}, fmt.Errorf("invalid id in callback data %q", data)
	}
	return CallbackData{Action: action, ID: uint(id), HasID: true}, nil
}

// SessionState represents the pending input of a multi-step conversation
type SessionState string

const (
	SessionStateIdle                 SessionState = "idle"
	SessionStateAwaitingNewTask      SessionState = "awaiting_new_task"
	SessionStateAwaitingInterval     SessionState = "awaiting_interval"
	SessionStateAwaitingRename       SessionState = "awaiting_rename"
	SessionStateAwaitingShoppingItem SessionState = "awaiting_shopping_item"
)

// IsValid checks if the session state is valid
func (ss SessionState) IsValid() bool {
	switch ss {
	case SessionStateIdle, SessionStateAwaitingNewTask, SessionStateAwaitingInterval,
		SessionStateAwaitingRename, SessionStateAwaitingShoppingItem:
		return true
	default:
		return false
	}
}

// ChatSession is the conversation state of one Telegram user
type ChatSession struct {
	UserID int64
	ChatID int64
	State  SessionState
	// TaskID is the task an awaited interval or name applies to
	TaskID uint
	// ShowChecked toggles checked items in the shopping view
	ShowChecked  bool
	LastActivity time.Time
}

// Sender is the Telegram user behind an update
type Sender struct {
	ID        int64
	Username  string
	FirstName string
}

// Name returns the first name, then the username, then a neutral fallback
func (s Sender) Name() string {
	if s.FirstName != "" {
		return s.FirstName
	}
	if s.Username != "" {
		return s.Username
	}
	return "Аноним"
}
