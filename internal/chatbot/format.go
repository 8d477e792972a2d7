package chatbot

import (
	"fmt"
	"strings"
	"time"

	"chorebot-api/internal/chore"
	"chorebot-api/internal/shopping"
	"chorebot-api/internal/user"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	welcomeText = "👋 Привет! Я бот для учёта домашних дел.\n\n" +
		"Отмечайте выполненные задачи, смотрите, что пора сделать, и ведите общий список покупок.\n" +
		"Используйте кнопки внизу или /help."
	mainMenuText = "👋 Главное меню\n\nВыберите раздел:"
	helpText     = "📖 Команды:\n" +
		"/tasks - список задач\n" +
		"/done задача - отметить выполнение\n" +
		"/next - ближайшие задачи\n" +
		"/stats - прогресс\n" +
		"/achievements - достижения\n" +
		"/shopping - список покупок\n" +
		"/buy товар #категория - добавить покупку\n\n" +
		"Для администраторов:\n" +
		"/manage - управление задачами\n" +
		"/add_task Название | дни\n" +
		"/edit_task id дни\n" +
		"/rename_task id | Название\n" +
		"/delete_task id\n" +
		"/test_reminders, /test_weekly - проверить напоминания\n" +
		"/backup - резервная копия"

	doneUsageText       = "❌ Укажите задачу. Например: /done полы\nПосмотреть все задачи: /tasks"
	addTaskUsageText    = "📝 Добавление новой задачи:\n\nФормат: /add_task Название | интервал_в_днях\nПример: /add_task Полить цветы | 3"
	addTaskPromptText   = "📝 Введите новую задачу в формате:\nНазвание | интервал_в_днях\n\nПример: Полить цветы | 3"
	buyUsageText        = "🛒 Укажите товар. Например: /buy молоко\nКатегорию можно добавить через #: /buy лампочки #хозтовары"
	shoppingPromptText  = "🛒 Введите название товара (категорию можно указать через #)"
	adminOnlyText       = "❌ Эта команда только для администраторов"
	adminCallbackText   = "❌ У вас нет прав для выполнения этого действия"
	unknownCallbackText = "❌ Неизвестное действие"
	unknownInputText    = "🤔 Не понимаю. Используйте кнопки меню или /help"
	cancelledText       = "❌ Действие отменено"
	internalErrorText   = "⚠️ Что-то пошло не так, попробуйте позже"
	noTasksText         = "📝 Задачи еще не настроены."
	noRemindersText     = "🎉 Все задачи в порядке, напоминать нечего!"
	remindersMenuText   = "🔔 Напоминания\n\nПроверьте, как будут выглядеть ежедневное напоминание и недельная статистика."
	manageMenuText      = "🛠️ Управление задачами\n\nВыберите действие:"
	selectIntervalText  = "⚙️ Выберите задачу для изменения интервала:"
	selectRenameText    = "✏️ Выберите задачу для переименования:"
	selectDeleteText    = "🗑️ Выберите задачу для удаления:"
	clearCheckedAskText = "🧹 Убрать все купленные товары из списка?"
	clearAllAskText     = "🗑 Очистить весь список покупок?"
)

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}

func nameOf(names map[int64]string, id *int64) string {
	if id == nil {
		return user.UnknownUserName
	}
	if name, ok := names[*id]; ok {
		return name
	}
	return user.UnknownUserName
}

// formatTaskStatus renders one task line of the task list
func formatTaskStatus(t chore.Task, now time.Time, names map[int64]string) string {
	status := t.Classify(now)
	name := escape(t.Name)
	switch status.State {
	case chore.StateNeverDone:
		return fmt.Sprintf("🔔 %s - никогда не выполнялось", name)
	case chore.StateOverdue:
		return fmt.Sprintf("🔔 %s - просрочено на %d дн. (последний раз: %s)",
			name, status.OverdueDays, escape(nameOf(names, t.LastDoneBy)))
	default:
		return fmt.Sprintf("⏳ %s - %d дн. назад (осталось %d дн., выполнял: %s)",
			name, status.DaysSinceDone, status.DaysLeft, escape(nameOf(names, t.LastDoneBy)))
	}
}

// FormatTaskList renders every task with its status and the overdue total
func FormatTaskList(tasks []chore.Task, now time.Time, names map[int64]string) string {
	if len(tasks) == 0 {
		return noTasksText
	}

	lines := []string{"📋 Список домашних задач:\n"}
	overdue := 0
	for _, t := range tasks {
		if t.IsOverdue(now) {
			overdue++
		}
		lines = append(lines, formatTaskStatus(t, now, names))
	}
	if overdue > 0 {
		lines = append(lines, fmt.Sprintf("\n⚠️  Всего просрочено задач: %d", overdue))
	}
	lines = append(lines, "\n💡 Нажмите на кнопку с задачей, чтобы отметить её выполненной")
	return strings.Join(lines, "\n")
}

func FormatProgress(p chore.Progress) string {
	return fmt.Sprintf("📊 Статистика выполнения:\n✅ Выполнено вовремя: %d/%d\n🔔 Просрочено: %d/%d\n📈 Прогресс: %d%%",
		p.OnTime, p.Total, p.Overdue, p.Total, p.Percent)
}

// FormatNext renders the tasks returned by NextTasks
func FormatNext(tasks []chore.Task, now time.Time) string {
	if len(tasks) == 0 {
		return noTasksText
	}

	lines := []string{"⏰ Ближайшие задачи:\n"}
	for _, t := range tasks {
		status := t.Classify(now)
		switch status.State {
		case chore.StateNeverDone:
			lines = append(lines, fmt.Sprintf("🔔 %s - никогда не выполнялось", escape(t.Name)))
		case chore.StateOverdue:
			lines = append(lines, fmt.Sprintf("🔔 %s - просрочено на %d дн.", escape(t.Name), status.OverdueDays))
		default:
			lines = append(lines, fmt.Sprintf("⏳ %s - через %d дн.", escape(t.Name), status.DaysLeft))
		}
	}
	return strings.Join(lines, "\n")
}

// FormatStatistics renders the per-user breakdown behind the stats button
func FormatStatistics(stats chore.Statistics) string {
	lines := []string{fmt.Sprintf("📊 Статистика за %d дней:\n", stats.PeriodDays)}
	if stats.Total == 0 {
		lines = append(lines, "😴 Задачи не выполнялись")
		return strings.Join(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf("Всего выполнено: %d", stats.Total))
	for _, u := range stats.Users {
		lines = append(lines, fmt.Sprintf("👤 %s: %d (%.0f%%)", escape(u.Name), u.Count, stats.Share(u.Count)))
	}
	if len(stats.TopTasks) > 0 {
		lines = append(lines, "", "🏆 Чаще всего:")
		for _, t := range stats.TopTasks {
			lines = append(lines, fmt.Sprintf("   %s: %d", escape(t.Name), t.Count))
		}
	}
	return strings.Join(lines, "\n")
}

// FormatDone is the reply to a successful completion
func FormatDone(who string, t *chore.Task) string {
	return fmt.Sprintf("✅ Отлично! %s выполнил(а) задачу: %s\nСледующее выполнение через %d дней.",
		escape(who), escape(t.Name), t.IntervalDays)
}

// FormatCompletionAnnouncement tells the household about a completion made
// outside the chat
func FormatCompletionAnnouncement(who, taskName string, intervalDays int) string {
	return fmt.Sprintf("📣 %s выполнил(а) задачу: %s\nСледующее выполнение через %d дней.",
		escape(who), escape(taskName), intervalDays)
}

func formatTaskAdded(t *chore.Task) string {
	return fmt.Sprintf("✅ Задача добавлена:\nНазвание: %s\nИнтервал: %d дней", escape(t.Name), t.IntervalDays)
}

func formatTaskNotFound(query string) string {
	return fmt.Sprintf("❌ Задача '%s' не найдена.\nПосмотреть все задачи: /tasks", escape(query))
}

func formatTaskExists(name string) string {
	return fmt.Sprintf("❌ Задача с названием '%s' уже существует.", escape(name))
}

func formatAmbiguous(err chore.AmbiguousNameError) string {
	candidates := make([]string, len(err.Candidates))
	for i, c := range err.Candidates {
		candidates[i] = "• " + escape(c)
	}
	return fmt.Sprintf("🤔 Под '%s' подходит несколько задач:\n%s\nУточните название.",
		escape(err.Query), strings.Join(candidates, "\n"))
}

func formatIntervalPrompt(t *chore.Task) string {
	return fmt.Sprintf("⚙️ Задача: %s\nТекущий интервал: %d дней\n\nВведите новый интервал в днях:", escape(t.Name), t.IntervalDays)
}

func formatRenamePrompt(t *chore.Task) string {
	return fmt.Sprintf("✏️ Задача: %s\n\nВведите новое название:", escape(t.Name))
}

func formatDeleteConfirm(t *chore.Task) string {
	return fmt.Sprintf("🗑️ Удалить задачу «%s» вместе с историей выполнения?", escape(t.Name))
}

func formatIntervalUpdated(t *chore.Task) string {
	return fmt.Sprintf("✅ Интервал задачи «%s» изменён: %d дней", escape(t.Name), t.IntervalDays)
}

func formatRenamed(t *chore.Task) string {
	return fmt.Sprintf("✅ Задача переименована: %s", escape(t.Name))
}

func formatDeleted(t *chore.Task) string {
	return fmt.Sprintf("🗑️ Задача «%s» удалена", escape(t.Name))
}

// FormatShoppingList renders the shopping list grouped by category in the
// order items were added
func FormatShoppingList(items []shopping.Item, counts shopping.Counts, showChecked bool) string {
	if len(items) == 0 {
		if counts.Checked > 0 && !showChecked {
			return fmt.Sprintf("🛒 Всё куплено! Купленных товаров: %d", counts.Checked)
		}
		return "🛒 Список покупок пуст"
	}

	var order []string
	byCategory := make(map[string][]shopping.Item)
	for _, item := range items {
		if _, ok := byCategory[item.Category]; !ok {
			order = append(order, item.Category)
		}
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}

	lines := []string{fmt.Sprintf("🛒 Список покупок (%d из %d не куплено):", counts.Unchecked, counts.Total)}
	for _, category := range order {
		lines = append(lines, "", fmt.Sprintf("<b>%s</b>", escape(category)))
		for _, item := range byCategory[category] {
			if item.IsChecked {
				lines = append(lines, fmt.Sprintf("✅ <s>%s</s>", escape(item.ItemText)))
				continue
			}
			lines = append(lines, "⬜ "+escape(item.ItemText))
		}
	}
	return strings.Join(lines, "\n")
}

func formatItemAdded(item *shopping.Item) string {
	return fmt.Sprintf("✅ Добавлено в список: %s (%s)", escape(item.ItemText), escape(item.Category))
}

func formatItemExists(text string) string {
	return fmt.Sprintf("ℹ️ «%s» уже есть в списке", escape(text))
}

// parseTaskInput splits "Name | days"
func parseTaskInput(input string) (string, int, bool) {
	name, rawDays, found := strings.Cut(input, "|")
	if !found {
		return "", 0, false
	}
	name = strings.TrimSpace(name)
	days, ok := parseDays(rawDays)
	if name == "" || !ok {
		return "", 0, false
	}
	return name, days, true
}

// parseShoppingInput splits "text #category"; the category is optional
func parseShoppingInput(input string) (string, string) {
	text, category, found := strings.Cut(input, "#")
	text = strings.TrimSpace(text)
	if !found {
		return text, ""
	}
	return text, strings.TrimSpace(category)
}
