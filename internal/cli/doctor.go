package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/habitkit/habitkit/internal/config"
	"github.com/habitkit/habitkit/internal/constants"
	"github.com/habitkit/habitkit/internal/keyring"
	"github.com/habitkit/habitkit/internal/reminder"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(appCtx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	ctx := context.Background()
	hasError := false

	// Check 1: local store readable
	if err := checkStore(ctx, appCtx); err != nil {
		fmt.Printf("❌ Local store: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Local store: OK\n")
	}

	// Check 2: remote connectivity (informational when no remote configured)
	if appCtx.Config.RemoteKind == config.RemoteNone {
		fmt.Printf("⊘ Remote sync: SKIPPED (no remote configured)\n")
	} else if appCtx.Oracle.Online(ctx) {
		fmt.Printf("✓ Remote sync: OK (online)\n")
	} else {
		fmt.Printf("⚠ Remote sync: WARNING\n")
		fmt.Printf("   Remote is unreachable, changes will stay local until reconnect\n")
	}

	// Check 3: OS keyring (only matters when a remote needs credentials)
	if appCtx.Config.RemoteKind == config.RemoteNone {
		fmt.Printf("⊘ OS keyring: SKIPPED (no remote configured)\n")
	} else if keyring.IsAvailable() {
		fmt.Printf("✓ OS keyring: OK\n")
	} else {
		fmt.Printf("❌ OS keyring: FAIL\n")
		fmt.Printf("   Error: keyring is not available, remote credentials cannot be read\n")
		hasError = true
	}

	// Check 4: notification tray
	if reminder.NewNotifier().TrayRunning() {
		fmt.Printf("✓ Notification tray: OK\n")
	} else {
		fmt.Printf("⚠ Notification tray: WARNING\n")
		fmt.Printf("   Tray app is not running, reminders will not be delivered\n")
	}

	// Check 5: backups present (warning only)
	if err := checkBackups(appCtx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	// Check 6: reminder time sanity
	if err := checkReminderTimes(ctx, appCtx); err != nil {
		fmt.Printf("❌ Reminder times: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Reminder times: OK\n")
	}

	// Check 7: completion integrity
	if err := checkCompletionIntegrity(ctx, appCtx); err != nil {
		fmt.Printf("⚠ Completion integrity: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Completion integrity: OK\n")
	}

	fmt.Println()
	if hasError {
		return fmt.Errorf("diagnostics found problems")
	}
	fmt.Println("All checks passed.")
	return nil
}

func checkStore(ctx context.Context, appCtx *Context) error {
	// The blob accessors swallow read errors, so probe the KV directly
	return appCtx.Store.Ping(ctx)
}

func checkBackups(appCtx *Context) error {
	backups, err := appCtx.Backup.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups yet, run 'habitkit backup create'")
	}
	if age := time.Since(backups[0].Timestamp); age > 7*24*time.Hour {
		return fmt.Errorf("newest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func checkReminderTimes(ctx context.Context, appCtx *Context) error {
	for _, h := range appCtx.Store.Habits(ctx) {
		if h.ReminderTime == "" {
			continue
		}
		if _, err := time.Parse(constants.TimeFormat, h.ReminderTime); err != nil {
			return fmt.Errorf("habit %q has malformed reminder time %q", h.Title, h.ReminderTime)
		}
	}
	return nil
}

func checkCompletionIntegrity(ctx context.Context, appCtx *Context) error {
	known := make(map[string]bool)
	for _, h := range appCtx.Store.Habits(ctx) {
		known[h.ID] = true
	}
	orphans := 0
	for _, c := range appCtx.Store.AllCompletions(ctx) {
		if !known[c.HabitID] {
			orphans++
		}
	}
	if orphans > 0 {
		return fmt.Errorf("%d completions reference deleted habits", orphans)
	}
	return nil
}
