package models

// Kind names one synced data type. A kind maps to one local table and one
// remote row per user. The string values double as local table names and
// remote data_type keys, so they must remain stable.
type Kind string

const (
	KindHabits            Kind = "habits"
	KindHabitLogs         Kind = "habit_logs"
	KindPrayers           Kind = "prayers"
	KindSleepLogs         Kind = "sleep_logs"
	KindMealLogs          Kind = "meal_logs"
	KindWaterLogs         Kind = "water_logs"
	KindTasks             Kind = "tasks"
	KindProjects          Kind = "projects"
	KindPomodoroSessions  Kind = "pomodoro_sessions"
	KindJournalEntries    Kind = "journal_entries"
	KindVaultItems        Kind = "vault_items"
	KindExpenses          Kind = "expenses"
	KindBudgets           Kind = "budgets"
	KindSubscriptions     Kind = "subscriptions"
	KindFitnessEntries    Kind = "fitness_entries"
)

// indexFields declares the secondary indexes each table carries. The
// migrations create a json_extract expression index per listed field, and
// WhereEquals/WhereBetween only accept fields listed here.
var indexFields = map[Kind][]string{
	KindHabits:           {"category"},
	KindHabitLogs:        {"date", "habitId"},
	KindPrayers:          {"date"},
	KindSleepLogs:        {"date"},
	KindMealLogs:         {"date"},
	KindWaterLogs:        {"date"},
	KindTasks:            {"status", "projectId", "dueDate"},
	KindProjects:         {"status"},
	KindPomodoroSessions: {"date", "taskId"},
	KindJournalEntries:   {"date"},
	KindVaultItems:       {"category"},
	KindExpenses:         {"date", "category"},
	KindBudgets:          {"month"},
	KindSubscriptions:    {"status"},
	KindFitnessEntries:   {"date"},
}

// AllKinds returns every known data type in stable order. PullAll and
// PushAll sweep across exactly this set.
func AllKinds() []Kind {
	return []Kind{
		KindHabits, KindHabitLogs, KindPrayers, KindSleepLogs,
		KindMealLogs, KindWaterLogs, KindTasks, KindProjects,
		KindPomodoroSessions, KindJournalEntries, KindVaultItems,
		KindExpenses, KindBudgets, KindSubscriptions, KindFitnessEntries,
	}
}

// Valid reports whether k is a known data type.
func (k Kind) Valid() bool {
	_, ok := indexFields[k]
	return ok
}

// IndexFields returns the declared secondary-index fields for k.
func (k Kind) IndexFields() []string {
	return indexFields[k]
}

// Indexed reports whether field is a declared secondary index on k.
func (k Kind) Indexed(field string) bool {
	for _, f := range indexFields[k] {
		if f == field {
			return true
		}
	}
	return false
}
