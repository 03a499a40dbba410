package models

// The domain entities below are deliberately thin: the core layers treat
// them as opaque JSON documents keyed by id, and only the declared index
// fields are ever queried server-side-style. Dates are YYYY-MM-DD strings
// (see common.Today), money amounts are in the user's minor currency unit.

// Habit is a recurring practice the user tracks.
type Habit struct {
	Base
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Icon      string `json:"icon,omitempty"`
	Frequency string `json:"frequency,omitempty"`
	Archived  bool   `json:"archived,omitempty"`
}

// HabitLog is one completion mark for a habit on a given date.
type HabitLog struct {
	Base
	HabitID   string `json:"habitId"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
	Note      string `json:"note,omitempty"`
}

// Prayer records the five daily prayers for one date.
type Prayer struct {
	Base
	Date    string `json:"date"`
	Name    string `json:"name"`
	Prayed  bool   `json:"prayed"`
	OnTime  bool   `json:"onTime,omitempty"`
	InGroup bool   `json:"inGroup,omitempty"`
}

// SleepLog captures one night of sleep.
type SleepLog struct {
	Base
	Date      string `json:"date"`
	BedTime   string `json:"bedTime,omitempty"`
	WakeTime  string `json:"wakeTime,omitempty"`
	Duration  int    `json:"durationMinutes,omitempty"`
	Quality   int    `json:"quality,omitempty"`
	Note      string `json:"note,omitempty"`
}

// MealLog captures one meal.
type MealLog struct {
	Base
	Date     string `json:"date"`
	MealType string `json:"mealType,omitempty"`
	Name     string `json:"name"`
	Calories int    `json:"calories,omitempty"`
}

// WaterLog captures water intake for a date.
type WaterLog struct {
	Base
	Date   string `json:"date"`
	Amount int    `json:"amountMl"`
}

// Task is a to-do item, optionally attached to a project.
type Task struct {
	Base
	Title     string `json:"title"`
	Notes     string `json:"notes,omitempty"`
	Status    string `json:"status"`
	Priority  string `json:"priority,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
	DueDate   string `json:"dueDate,omitempty"`
}

// Project groups tasks.
type Project struct {
	Base
	Name   string `json:"name"`
	Color  string `json:"color,omitempty"`
	Status string `json:"status"`
}

// PomodoroSession records one focus session.
type PomodoroSession struct {
	Base
	Date     string `json:"date"`
	TaskID   string `json:"taskId,omitempty"`
	Duration int    `json:"durationMinutes"`
	Breaks   int    `json:"breaks,omitempty"`
}

// JournalEntry is one dated free-form entry.
type JournalEntry struct {
	Base
	Date    string   `json:"date"`
	Title   string   `json:"title,omitempty"`
	Content string   `json:"content"`
	Mood    string   `json:"mood,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// VaultItem is a note stored in the PIN-locked vault. The PIN itself is
// stored as a bcrypt hash in a reserved item (see cryptox).
type VaultItem struct {
	Base
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
	Category string `json:"category,omitempty"`
}

// Expense is one spend entry.
type Expense struct {
	Base
	Date     string `json:"date"`
	Amount   int64  `json:"amount"`
	Category string `json:"category,omitempty"`
	Note     string `json:"note,omitempty"`
}

// Budget is a monthly limit per category.
type Budget struct {
	Base
	Month    string `json:"month"`
	Category string `json:"category,omitempty"`
	Limit    int64  `json:"limit"`
}

// Subscription is a recurring payment.
type Subscription struct {
	Base
	Name      string `json:"name"`
	Amount    int64  `json:"amount"`
	Cycle     string `json:"cycle,omitempty"`
	NextDue   string `json:"nextDue,omitempty"`
	Status    string `json:"status"`
}
