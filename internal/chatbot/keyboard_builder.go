package chatbot

import (
	"fmt"
	"time"

	"chorebot-api/internal/chore"
	"chorebot-api/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const maxButtonText = 30

// KeyboardBuilder creates the reply and inline keyboards of the bot
type KeyboardBuilder struct {
	// urgentDays is the due-soon horizon of the "urgent only" task view
	urgentDays int
}

func NewKeyboardBuilder(urgentDays int) *KeyboardBuilder {
	return &KeyboardBuilder{urgentDays: urgentDays}
}

// MainKeyboard is the persistent reply keyboard shown by /start
func (kb *KeyboardBuilder) MainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonTasks),
			tgbotapi.NewKeyboardButton(ButtonNext),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonStats),
			tgbotapi.NewKeyboardButton(ButtonDone),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonManage),
			tgbotapi.NewKeyboardButton(ButtonReminders),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonShopping),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// UrgentTasks keeps overdue tasks and tasks due within the urgent horizon
func (kb *KeyboardBuilder) UrgentTasks(tasks []chore.Task, now time.Time) []chore.Task {
	var urgent []chore.Task
	for _, t := range tasks {
		if t.IsOverdue(now) || t.DaysUntilDue(now) <= kb.urgentDays {
			urgent = append(urgent, t)
		}
	}
	return urgent
}

// TasksKeyboard lists tasks as completion buttons, two per row
func (kb *KeyboardBuilder) TasksKeyboard(tasks []chore.Task, now time.Time, showAll bool) tgbotapi.InlineKeyboardMarkup {
	if len(tasks) == 0 {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📝 Нет задач - добавьте первую!", CallbackAddTask),
			),
		)
	}

	shown := tasks
	if !showAll {
		shown = kb.UrgentTasks(tasks, now)
	}
	if len(shown) == 0 {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🎉 Все задачи выполнены!", CallbackRefresh),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📋 Показать все задачи", CallbackShowAll),
			),
		)
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(shown); i += 2 {
		var row []tgbotapi.InlineKeyboardButton
		for _, t := range shown[i:min(i+2, len(shown))] {
			label := fmt.Sprintf("%s %s", urgencyEmoji(t, now), truncateText(t.Name, maxButtonText))
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, EncodeCallbackID(CallbackDone, t.ID)))
		}
		rows = append(rows, row)
	}

	if !showAll && len(shown) < len(tasks) {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Показать все задачи", CallbackShowAll),
		))
	} else {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Только срочные", CallbackShowUrgent),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔄 Обновить", CallbackRefresh),
		tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", CallbackStats),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func urgencyEmoji(t chore.Task, now time.Time) string {
	switch {
	case t.IsOverdue(now):
		return "🔴"
	case t.DaysUntilDue(now) <= 1:
		return "🟡"
	default:
		return "✅"
	}
}

func (kb *KeyboardBuilder) ManagementKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📝 Добавить задачу", CallbackAddTask)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("⚙️ Редактировать интервал", CallbackEditInterval)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✏️ Переименовать задачу", CallbackRenameTask)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🗑️ Удалить задачу", CallbackDeleteTask)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Список задач", CallbackShowAll),
			tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", CallbackBackMain),
		),
	)
}

func (kb *KeyboardBuilder) RemindersKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔔 Тест напоминаний", CallbackTestReminders)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📈 Тест недельной статистики", CallbackTestWeekly)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", CallbackBackMain)),
	)
}

// TaskSelectionKeyboard lists every task with its interval; a press sends
// action:id
func (kb *KeyboardBuilder) TaskSelectionKeyboard(action string, tasks []chore.Task) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tasks)+1)
	for _, t := range tasks {
		label := fmt.Sprintf("%s (%d дн.)", truncateText(t.Name, maxButtonText), t.IntervalDays)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, EncodeCallbackID(action, t.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", CallbackBackManage),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ConfirmationKeyboard asks Yes/No before a destructive action
func (kb *KeyboardBuilder) ConfirmationKeyboard(confirmData, cancelData string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да", confirmData),
			tgbotapi.NewInlineKeyboardButtonData("❌ Нет", cancelData),
		),
	)
}

func (kb *KeyboardBuilder) CancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", CallbackCancel)),
	)
}

func (kb *KeyboardBuilder) BackKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", CallbackBackMain)),
	)
}

// ShoppingKeyboard shows one toggle button per item followed by list actions
func (kb *KeyboardBuilder) ShoppingKeyboard(items []shopping.Item, showChecked bool) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(items)+3)
	for _, item := range items {
		mark := "⬜"
		if item.IsChecked {
			mark = "✅"
		}
		label := fmt.Sprintf("%s %s", mark, truncateText(item.ItemText, maxButtonText))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, EncodeCallbackID(CallbackShopToggle, item.ID)),
		))
	}

	viewLabel := "👁 Показать купленные"
	if showChecked {
		viewLabel = "🙈 Скрыть купленные"
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Добавить", CallbackShopAdd),
			tgbotapi.NewInlineKeyboardButtonData(viewLabel, CallbackShopToggleView),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧹 Убрать купленные", CallbackShopClearChecked),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Очистить всё", CallbackShopClearAll),
		),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// truncateText shortens text to maxRunes runes with an ellipsis
func truncateText(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	if maxRunes <= 1 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-1]) + "…"
}
