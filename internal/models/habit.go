package models

import "time"

// Habit represents a recurring practice to track
type Habit struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Icon            string    `json:"icon,omitempty"`
	Color           string    `json:"color,omitempty"`
	ReminderTime    string    `json:"reminder_time,omitempty"` // HH:MM format
	ReminderEnabled bool      `json:"reminder_enabled"`
	IsActive        bool      `json:"is_active"`
	StreakCount     int       `json:"streak_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Completion records that a habit was performed on a given occasion.
// Completions are immutable once created; multiple completions may land
// on the same calendar day and streak math treats them as one.
type Completion struct {
	ID          string    `json:"id"`
	HabitID     string    `json:"habit_id"`
	CompletedAt time.Time `json:"completed_at"`
	Notes       string    `json:"notes,omitempty"`
}

// Statistics is derived on demand from a habit's completion log; it is
// never persisted.
type Statistics struct {
	HabitID          string               `json:"habit_id"`
	CurrentStreak    int                  `json:"current_streak"`
	LongestStreak    int                  `json:"longest_streak"`
	TotalCompletions int                  `json:"total_completions"`
	WeeklyData       []WeeklyCompletions  `json:"weekly_data"`
	MonthlyData      []MonthlyCompletions `json:"monthly_data"`
}

// WeeklyCompletions aggregates completions for one ISO 8601 week.
type WeeklyCompletions struct {
	Week        string   `json:"week"` // e.g. "2024-W23"
	Completions int      `json:"completions"`
	Days        []string `json:"days"` // YYYY-MM-DD, ascending
}

// MonthlyCompletions aggregates completions for one calendar month.
type MonthlyCompletions struct {
	Month          string `json:"month"` // YYYY-MM
	Completions    int    `json:"completions"`
	CompletionRate int    `json:"completion_rate"` // percent of days in month
}

// Settings is the application preference bag.
type Settings struct {
	DarkMode             bool       `json:"dark_mode"`
	NotificationsEnabled bool       `json:"notifications_enabled"`
	ReminderTime         string     `json:"reminder_time,omitempty"` // HH:MM default
	LastSyncTime         *time.Time `json:"last_sync_time,omitempty"`
}

// TodayHabit joins a habit against today's completions.
type TodayHabit struct {
	Habit
	CompletedToday bool `json:"completed_today"`
}
