package digest

import (
	"strings"
	"testing"
	"time"

	"chorebot-api/internal/chore"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 6, 10, 17, 0, 0, 0, time.UTC)

func ago(days int) *time.Time {
	t := now.AddDate(0, 0, -days)
	return &t
}

func TestFormatDaily(t *testing.T) {
	overdue := []chore.Task{
		{Name: "Помыть полы", IntervalDays: 7, LastDone: ago(10)},
		{Name: "Новая <задача>", IntervalDays: 3},
	}
	dueSoon := []chore.Task{
		{Name: "Приготовить еду", IntervalDays: 3, LastDone: ago(2)},
	}

	text := FormatDaily(overdue, dueSoon, now)

	assert.True(t, strings.HasPrefix(text, "🔔 Ежедневное напоминание о задачах:\n\n📛 ПРОСРОЧЕННЫЕ ЗАДАЧИ:\n"))
	assert.Contains(t, text, "🔴 Помыть полы - просрочено на 3 дней\n")
	assert.Contains(t, text, "🔴 Новая &lt;задача&gt; - никогда не выполнялось\n")
	assert.Contains(t, text, "⏰ СКОРО НУЖНО ВЫПОЛНИТЬ:\n🟡 Приготовить еду - осталось 1 дней\n")
	assert.True(t, strings.HasSuffix(text, "Используйте /done [задача] чтобы отметить выполнение"))
}

func TestFormatDaily_OnlyDueSoon(t *testing.T) {
	text := FormatDaily(nil, []chore.Task{{Name: "Пропылесосить", IntervalDays: 7, LastDone: ago(6)}}, now)

	assert.NotContains(t, text, "ПРОСРОЧЕННЫЕ")
	assert.Contains(t, text, "🟡 Пропылесосить - осталось 1 дней")
}

func TestFormatWeekly(t *testing.T) {
	tests := []struct {
		name     string
		stats    chore.Statistics
		contains []string
		excludes []string
	}{
		{
			name:     "empty week",
			stats:    chore.Statistics{PeriodDays: 7},
			contains: []string{"📊 Недельная статистика:\n", "😴 На этой неделе задачи не выполнялись"},
			excludes: []string{"👥", "🏆", "📅"},
		},
		{
			name: "busy week",
			stats: chore.Statistics{
				PeriodDays: 7,
				Total:      3,
				Users: []chore.UserStats{
					{ChatID: 1, Name: "Анна", Count: 2},
					{ChatID: 2, Name: "Олег", Count: 1},
				},
				TopTasks: []chore.TaskCount{{Name: "Полы", Count: 2}, {Name: "Еда", Count: 1}},
				Weekdays: [7]int{time.Sunday: 1, time.Monday: 2},
			},
			contains: []string{
				"👥 Выполнено задач за неделю:\n   Анна: 2 задач (66.7%)\n   Олег: 1 задач (33.3%)",
				"🏆 Самые частые задачи:\n   Полы: 2 раз\n   Еда: 1 раз",
				"📅 По дням недели:\n   Понедельник: 2\n   Воскресенье: 1",
			},
			excludes: []string{"😴", "Вторник"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := FormatWeekly(tt.stats)
			for _, s := range tt.contains {
				assert.Contains(t, text, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, text, s)
			}
		})
	}
}

func TestAchievements(t *testing.T) {
	tests := []struct {
		name  string
		stats chore.Statistics
		want  []string
	}{
		{name: "nothing yet", stats: chore.Statistics{Total: 9}, want: nil},
		{name: "bronze", stats: chore.Statistics{Total: 10}, want: []string{"👍 Начинающий (10+ задач за месяц)"}},
		{name: "silver", stats: chore.Statistics{Total: 25}, want: []string{"⭐ Активный помощник (25+ задач за месяц)"}},
		{
			name: "gold with users",
			stats: chore.Statistics{
				Total: 50,
				Users: []chore.UserStats{
					{Name: "Анна", Count: 30},
					{Name: "Олег", Count: 15},
					{Name: "Мария", Count: 5},
				},
			},
			want: []string{
				"🏆 Трудолюбивая пчела (50+ задач за месяц)",
				"👑 Анна - Супермен (30+ задач)",
				"💪 Олег - Старатель (15+ задач)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Achievements(tt.stats))
		})
	}
}

func TestFormatAchievements(t *testing.T) {
	assert.Equal(t, "🏅 Ваши достижения:\n\n• 🎯 Выполняйте задачи, чтобы получать достижения!",
		FormatAchievements(chore.Statistics{}))

	text := FormatAchievements(chore.Statistics{Total: 10, Users: []chore.UserStats{{Name: "Анна", Count: 15}}})
	assert.Equal(t, "🏅 Ваши достижения:\n\n• 👍 Начинающий (10+ задач за месяц)\n• 💪 Анна - Старатель (15+ задач)", text)
}

func TestWeekdayName(t *testing.T) {
	assert.Equal(t, "Понедельник", WeekdayName(time.Monday))
	assert.Equal(t, "Воскресенье", WeekdayName(time.Sunday))
	assert.Equal(t, "Неизвестно", WeekdayName(time.Weekday(9)))
}
