package chore

// DefaultTask is a starter chore for an empty household
type DefaultTask struct {
	Name         string
	IntervalDays int
}

// DefaultTasks are seeded into an empty store when seeding is enabled
var DefaultTasks = []DefaultTask{
	{Name: "Помыть полы", IntervalDays: 7},
	{Name: "Пропылесосить", IntervalDays: 7},
	{Name: "Помыть ванну", IntervalDays: 21},
	{Name: "Приготовить еду", IntervalDays: 3},
	{Name: "Поменять постельное", IntervalDays: 7},
}
