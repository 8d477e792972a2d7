package digest

import (
	"fmt"
	"strings"
	"time"

	"chorebot-api/internal/chore"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Achievement tiers over a 30-day window
const (
	AchievementWindowDays = 30

	householdGold   = 50
	householdSilver = 25
	householdBronze = 10
	userGold        = 30
	userSilver      = 15
)

var weekdayNames = [7]string{
	time.Sunday:    "Воскресенье",
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
}

// weekOrder lists weekdays Monday first
var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// WeekdayName returns the Russian name of d
func WeekdayName(d time.Weekday) string {
	if d < time.Sunday || d > time.Saturday {
		return "Неизвестно"
	}
	return weekdayNames[d]
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}

// FormatDaily renders the daily reminder. Never-done tasks are listed with
// the overdue ones.
func FormatDaily(overdue, dueSoon []chore.Task, now time.Time) string {
	var b strings.Builder
	b.WriteString("🔔 Ежедневное напоминание о задачах:\n\n")

	if len(overdue) > 0 {
		b.WriteString("📛 ПРОСРОЧЕННЫЕ ЗАДАЧИ:\n")
		for _, t := range overdue {
			status := t.Classify(now)
			if status.State == chore.StateNeverDone {
				fmt.Fprintf(&b, "🔴 %s - никогда не выполнялось\n", escape(t.Name))
				continue
			}
			fmt.Fprintf(&b, "🔴 %s - просрочено на %d дней\n", escape(t.Name), status.OverdueDays)
		}
		b.WriteString("\n")
	}

	if len(dueSoon) > 0 {
		b.WriteString("⏰ СКОРО НУЖНО ВЫПОЛНИТЬ:\n")
		for _, t := range dueSoon {
			fmt.Fprintf(&b, "🟡 %s - осталось %d дней\n", escape(t.Name), t.DaysUntilDue(now))
		}
		b.WriteString("\n")
	}

	b.WriteString("Используйте /done [задача] чтобы отметить выполнение")
	return b.String()
}

// FormatWeekly renders the weekly summary
func FormatWeekly(stats chore.Statistics) string {
	lines := []string{"📊 Недельная статистика:\n"}

	if len(stats.Users) > 0 {
		lines = append(lines, "👥 Выполнено задач за неделю:")
		for _, u := range stats.Users {
			lines = append(lines, fmt.Sprintf("   %s: %d задач (%.1f%%)", escape(u.Name), u.Count, stats.Share(u.Count)))
		}
	} else {
		lines = append(lines, "😴 На этой неделе задачи не выполнялись")
	}
	lines = append(lines, "")

	if len(stats.TopTasks) > 0 {
		lines = append(lines, "🏆 Самые частые задачи:")
		for _, t := range stats.TopTasks {
			lines = append(lines, fmt.Sprintf("   %s: %d раз", escape(t.Name), t.Count))
		}
		lines = append(lines, "")
	}

	if stats.Total > 0 {
		lines = append(lines, "📅 По дням недели:")
		for _, d := range weekOrder {
			if n := stats.Weekdays[d]; n > 0 {
				lines = append(lines, fmt.Sprintf("   %s: %d", WeekdayName(d), n))
			}
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// Achievements derives the household and per-user achievements from a
// 30-day statistics window.
func Achievements(stats chore.Statistics) []string {
	var out []string
	switch {
	case stats.Total >= householdGold:
		out = append(out, "🏆 Трудолюбивая пчела (50+ задач за месяц)")
	case stats.Total >= householdSilver:
		out = append(out, "⭐ Активный помощник (25+ задач за месяц)")
	case stats.Total >= householdBronze:
		out = append(out, "👍 Начинающий (10+ задач за месяц)")
	}

	for _, u := range stats.Users {
		switch {
		case u.Count >= userGold:
			out = append(out, fmt.Sprintf("👑 %s - Супермен (30+ задач)", escape(u.Name)))
		case u.Count >= userSilver:
			out = append(out, fmt.Sprintf("💪 %s - Старатель (15+ задач)", escape(u.Name)))
		}
	}
	return out
}

// FormatAchievements renders Achievements with a hint when there are none
func FormatAchievements(stats chore.Statistics) string {
	achievements := Achievements(stats)
	if len(achievements) == 0 {
		achievements = []string{"🎯 Выполняйте задачи, чтобы получать достижения!"}
	}

	var b strings.Builder
	b.WriteString("🏅 Ваши достижения:\n\n")
	for i, a := range achievements {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• " + a)
	}
	return b.String()
}
