package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/habitkit/habitkit/internal/models"
)

var (
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	streakStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits."`
	Update HabitUpdateCmd `cmd:"" help:"Update an existing habit."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and its history."`
	Done   HabitDoneCmd   `cmd:"" help:"Record a completion for today."`
	Today  HabitTodayCmd  `cmd:"" help:"Show today's habit status."`
	Stats  HabitStatsCmd  `cmd:"" help:"Show streaks and completion statistics."`
}

type HabitAddCmd struct {
	Title       string `arg:"" optional:"" help:"Habit title. Omit for an interactive form."`
	Description string `help:"Optional description." default:""`
	Icon        string `help:"Display icon." default:""`
	Color       string `help:"Display color." default:""`
	Remind      string `help:"Daily reminder time (HH:MM). Enables reminders." default:""`
}

func (c *HabitAddCmd) Run(appCtx *Context) error {
	ctx := context.Background()
	appCtx.Bootstrap(ctx)

	habit := models.Habit{
		Title:       c.Title,
		Description: c.Description,
		Icon:        c.Icon,
		Color:       c.Color,
		IsActive:    true,
	}
	if c.Remind != "" {
		habit.ReminderTime = c.Remind
		habit.ReminderEnabled = true
	}

	if habit.Title == "" {
		remind := habit.ReminderEnabled
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Title").Value(&habit.Title),
			huh.NewInput().Title("Description").Value(&habit.Description),
			huh.NewConfirm().Title("Daily reminder?").Value(&remind),
			huh.NewInput().Title("Reminder time (HH:MM)").Value(&habit.ReminderTime),
		))
		if err := form.Run(); err != nil {
			return err
		}
		habit.ReminderEnabled = remind && habit.ReminderTime != ""
	}

	if err := habit.Validate(); err != nil {
		return err
	}

	created, err := appCtx.Manager.CreateHabit(ctx, habit)
	if err != nil {
		return err
	}
	appCtx.PerformAutomaticBackup(ctx)

	fmt.Printf("Added habit: %s (%s)\n", created.Title, created.ID)
	return nil
}

type HabitListCmd struct {
	All bool `help:"Include paused habits."`
}

func (c *HabitListCmd) Run(appCtx *Context) error {
	ctx := context.Background()
	appCtx.Bootstrap(ctx)

	habits := appCtx.Manager.Habits()
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	for _, h := range habits {
		if !h.IsActive && !c.All {
			continue
		}
		line := titleStyle.Render(h.Title)
		if h.StreakCount > 0 {
			line += " " + streakStyle.Render(fmt.Sprintf("🔥 %d", h.StreakCount))
		}
		if h.ReminderEnabled {
			line += " " + faintStyle.Render("⏰ "+h.ReminderTime)
		}
		if !h.IsActive {
			line += " " + faintStyle.Render("[paused]")
		}
		fmt.Println(line)
		if h.Description != "" {
			fmt.Println("  " + faintStyle.Render(h.Description))
		}
	}
	return nil
}

type HabitUpdateCmd struct {
	Ref         string  `arg:"" help:"Habit id or title."`
	Title       *string `help:"New title."`
	Description *string `help:"New description."`
	Remind      *string `help:"Daily reminder time (HH:MM). Enables reminders."`
	NoRemind    bool    `help:"Disable reminders."`
	Pause       bool    `help:"Pause the habit."`
	Resume      bool    `help:"Resume a paused habit."`
}

func (c *HabitUpdateCmd) Run(appCtx *Context) error {
	ctx := context.Background()
	appCtx.Bootstrap(ctx)

	habit, err := appCtx.ResolveHabit(c.Ref)
	if err != nil {
		return err
	}

	if c.Title != nil {
		habit.Title = *c.Title
	}
	if c.Description != nil {
		habit.Description = *c.Description
	}
	if c.Remind != nil {
		habit.ReminderTime = *c.Remind
		habit.ReminderEnabled = true
	}
	if c.NoRemind {
		habit.ReminderEnabled = false
	}
	if c.Pause {
		habit.IsActive = false
	}
	if c.Resume {
		habit.IsActive = true
	}

	if err := habit.Validate(); err != nil {
		return err
	}

	updated, err := appCtx.Manager.UpdateHabit(ctx, habit)
	if err != nil {
		return err
	}
	fmt.Printf("Updated habit: %s\n", updated.Title)
	return nil
}

type HabitDeleteCmd struct {
	Ref string `arg:"" help:"Habit id or title."`
	Yes bool   `help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(appCtx *Context) error {
	ctx := context.Background()
	appCtx.Bootstrap(ctx)

	habit, err := appCtx.ResolveHabit(c.Ref)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		prompt := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q and all of its history?", habit.Title)).
			Value(&confirmed)
		if err := prompt.Run(); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Aborted.")
			return nil
		}
	}

	appCtx.PerformAutomaticBackup(ctx)
	if err := appCtx.Manager.DeleteHabit(ctx, habit.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted habit: %s\n", habit.Title)
	return nil
}

type HabitDoneCmd struct {
	Ref   string `arg:"" help:"Habit id or title."`
	Notes string `help:"Optional note for this completion." default:""`
}

func (c *HabitDoneCmd) Run(appCtx *Context) error {
	ctx := context.Background()
	appCtx.Bootstrap(ctx)

	habit, err := appCtx.ResolveHabit(c.Ref)
	if err != nil {
		return err
	}

	if _, err := appCtx.Manager.CompleteHabit(ctx, habit.ID, c.Notes); err != nil {
		return err
	}

	updated, _ := appCtx.ResolveHabit(habit.ID)
	fmt.Printf("Completed %s. Current streak: %d\n", habit.Title, updated.StreakCount)
	return nil
}

type HabitTodayCmd struct{}

func (c *HabitTodayCmd) Run(appCtx *Context) error {
	ctx := context.Background()
	appCtx.Bootstrap(ctx)

	today := appCtx.Manager.TodayHabits(ctx)
	if len(today) == 0 {
		fmt.Println("No active habits.")
		return nil
	}

	done := 0
	for _, h := range today {
		if h.CompletedToday {
			fmt.Println(doneStyle.Render("✓ " + h.Title))
			done++
		} else {
			fmt.Println(pendingStyle.Render("○ " + h.Title))
		}
	}
	fmt.Printf("\n%d of %d completed today\n", done, len(today))
	return nil
}

type HabitStatsCmd struct {
	Ref string `arg:"" help:"Habit id or title."`
}

func (c *HabitStatsCmd) Run(appCtx *Context) error {
	ctx := context.Background()
	appCtx.Bootstrap(ctx)

	habit, err := appCtx.ResolveHabit(c.Ref)
	if err != nil {
		return err
	}

	s := appCtx.Manager.Statistics(ctx, habit.ID)

	fmt.Println(titleStyle.Render(habit.Title))
	fmt.Printf("Current streak:    %s\n", streakStyle.Render(fmt.Sprintf("%d", s.CurrentStreak)))
	fmt.Printf("Longest streak:    %d\n", s.LongestStreak)
	fmt.Printf("Total completions: %d\n", s.TotalCompletions)

	if len(s.WeeklyData) > 0 {
		fmt.Println("\nRecent weeks:")
		for _, w := range s.WeeklyData {
			fmt.Printf("  %s  %s\n", w.Week, bar(w.Completions, 7))
		}
	}
	if len(s.MonthlyData) > 0 {
		fmt.Println("\nRecent months:")
		for _, m := range s.MonthlyData {
			fmt.Printf("  %s  %3d%%  (%d completions)\n", m.Month, m.CompletionRate, m.Completions)
		}
	}
	return nil
}

// bar renders count as filled blocks against a scale.
func bar(count, scale int) string {
	if count > scale {
		count = scale
	}
	out := ""
	for i := 0; i < count; i++ {
		out += doneStyle.Render("█")
	}
	for i := count; i < scale; i++ {
		out += pendingStyle.Render("░")
	}
	return fmt.Sprintf("%s %d", out, count)
}
