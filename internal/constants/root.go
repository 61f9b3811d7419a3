package constants

const (
	AppName = "habitkit"
	Version = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// MonthFormat identifies a calendar month (YYYY-MM)
	MonthFormat = "2006-01"

	// Storage keys for the three local blobs
	HabitsKey      = "habits"
	CompletionsKey = "habit_completions"
	SettingsKey    = "app_settings"

	// Aggregate windows for derived statistics
	WeeklyWindow  = 12
	MonthlyWindow = 6

	// MaxBackups is the number of store backups kept before rotation
	MaxBackups = 14

	// Notify constants
	NotifierLockfileName   = "habitkit-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "dev.habitkit.tray"

	// Default app settings
	DefaultNotificationsEnabled = true
	DefaultDarkMode             = false
	DefaultReminderTime         = "09:00"
)
