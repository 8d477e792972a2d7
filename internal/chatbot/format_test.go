package chatbot

import (
	"testing"

	"chorebot-api/internal/chore"
	"chorebot-api/internal/shopping"

	"github.com/stretchr/testify/assert"
)

func TestFormatTaskStatus(t *testing.T) {
	anya := int64(100)
	stranger := int64(300)
	names := map[int64]string{anya: "Аня"}

	tests := []struct {
		name string
		task chore.Task
		want string
	}{
		{
			name: "never done",
			task: chore.Task{Name: "Помыть ванну", IntervalDays: 21},
			want: "🔔 Помыть ванну - никогда не выполнялось",
		},
		{
			name: "overdue by unknown user",
			task: chore.Task{Name: "Помыть полы", IntervalDays: 7, LastDone: doneDaysAgo(9), LastDoneBy: &stranger},
			want: "🔔 Помыть полы - просрочено на 2 дн. (последний раз: Неизвестный пользователь)",
		},
		{
			name: "upcoming",
			task: chore.Task{Name: "Помыть полы", IntervalDays: 7, LastDone: doneDaysAgo(3), LastDoneBy: &anya},
			want: "⏳ Помыть полы - 3 дн. назад (осталось 4 дн., выполнял: Аня)",
		},
		{
			name: "name is escaped",
			task: chore.Task{Name: "<b>x</b>", IntervalDays: 1},
			want: "🔔 &lt;b&gt;x&lt;/b&gt; - никогда не выполнялось",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatTaskStatus(tt.task, kbNow, names))
		})
	}
}

func TestFormatTaskList(t *testing.T) {
	assert.Equal(t, noTasksText, FormatTaskList(nil, kbNow, nil))

	text := FormatTaskList(keyboardTasks(), kbNow, map[int64]string{})
	assert.Contains(t, text, "📋 Список домашних задач:")
	assert.Contains(t, text, "⚠️  Всего просрочено задач: 1")
	assert.Contains(t, text, "💡 Нажмите на кнопку с задачей")
}

func TestFormatNext(t *testing.T) {
	text := FormatNext(keyboardTasks(), kbNow)
	assert.Contains(t, text, "⏰ Ближайшие задачи:")
	assert.Contains(t, text, "⏳ Помыть полы - через 1 дн.")
	assert.Contains(t, text, "🔔 Помыть ванну - никогда не выполнялось")
}

func TestFormatProgress(t *testing.T) {
	text := FormatProgress(chore.Progress{Total: 4, OnTime: 3, Overdue: 1, Percent: 75})
	assert.Equal(t, "📊 Статистика выполнения:\n✅ Выполнено вовремя: 3/4\n🔔 Просрочено: 1/4\n📈 Прогресс: 75%", text)
}

func TestFormatShoppingList(t *testing.T) {
	items := []shopping.Item{
		{ID: 1, ItemText: "молоко", Category: "supermarket"},
		{ID: 2, ItemText: "лампочки", Category: "хозтовары"},
		{ID: 3, ItemText: "хлеб", Category: "supermarket", IsChecked: true},
	}
	text := FormatShoppingList(items, shopping.Counts{Total: 3, Unchecked: 2, Checked: 1}, true)

	assert.Contains(t, text, "(2 из 3 не куплено)")
	assert.Contains(t, text, "<b>supermarket</b>\n⬜ молоко\n✅ <s>хлеб</s>")
	assert.Contains(t, text, "<b>хозтовары</b>\n⬜ лампочки")

	assert.Equal(t, "🛒 Список покупок пуст", FormatShoppingList(nil, shopping.Counts{}, false))
	assert.Contains(t, FormatShoppingList(nil, shopping.Counts{Total: 2, Checked: 2}, false), "Всё куплено")
}

func TestParseTaskInput(t *testing.T) {
	tests := []struct {
		input string
		name  string
		days  int
		ok    bool
	}{
		{"Полить цветы | 3", "Полить цветы", 3, true},
		{"  Кот |14 ", "Кот", 14, true},
		{"Полить цветы", "", 0, false},
		{" | 3", "", 0, false},
		{"Кот | 0", "", 0, false},
		{"Кот | неделя", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, days, ok := parseTaskInput(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.days, days)
		})
	}
}

func TestParseShoppingInput(t *testing.T) {
	text, category := parseShoppingInput("лампочки #хозтовары")
	assert.Equal(t, "лампочки", text)
	assert.Equal(t, "хозтовары", category)

	text, category = parseShoppingInput(" молоко ")
	assert.Equal(t, "молоко", text)
	assert.Empty(t, category)
}
