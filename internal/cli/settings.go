package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/habitkit/habitkit/internal/constants"
)

type SettingsCmd struct {
	Get SettingsGetCmd `cmd:"" help:"Show application settings." default:"1"`
	Set SettingsSetCmd `cmd:"" help:"Change an application setting."`
}

type SettingsGetCmd struct {
	Key string `arg:"" optional:"" help:"Setting key. Omit to show all."`
}

func (c *SettingsGetCmd) Run(appCtx *Context) error {
	ctx := context.Background()
	settings := appCtx.Store.Settings(ctx)

	all := map[string]string{
		"dark_mode":             strconv.FormatBool(settings.DarkMode),
		"notifications_enabled": strconv.FormatBool(settings.NotificationsEnabled),
		"reminder_time":         settings.ReminderTime,
	}

	if c.Key != "" {
		value, ok := all[c.Key]
		if !ok {
			return fmt.Errorf("unknown setting %q", c.Key)
		}
		fmt.Println(value)
		return nil
	}

	fmt.Printf("dark_mode:             %s\n", all["dark_mode"])
	fmt.Printf("notifications_enabled: %s\n", all["notifications_enabled"])
	fmt.Printf("reminder_time:         %s\n", all["reminder_time"])
	return nil
}

type SettingsSetCmd struct {
	Key   string `arg:"" help:"Setting key (dark_mode, notifications_enabled, reminder_time)."`
	Value string `arg:"" help:"New value."`
}

func (c *SettingsSetCmd) Run(appCtx *Context) error {
	ctx := context.Background()
	settings := appCtx.Store.Settings(ctx)

	switch c.Key {
	case "dark_mode":
		v, err := strconv.ParseBool(c.Value)
		if err != nil {
			return fmt.Errorf("dark_mode expects true or false: %w", err)
		}
		settings.DarkMode = v
	case "notifications_enabled":
		v, err := strconv.ParseBool(c.Value)
		if err != nil {
			return fmt.Errorf("notifications_enabled expects true or false: %w", err)
		}
		settings.NotificationsEnabled = v
	case "reminder_time":
		if _, err := time.Parse(constants.TimeFormat, c.Value); err != nil {
			return fmt.Errorf("reminder_time expects HH:MM: %w", err)
		}
		settings.ReminderTime = c.Value
	default:
		return fmt.Errorf("unknown setting %q", c.Key)
	}

	if err := appCtx.Store.SaveSettings(ctx, settings); err != nil {
		return err
	}
	fmt.Printf("Set %s to %s\n", c.Key, c.Value)
	return nil
}
