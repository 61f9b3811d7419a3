// Package stats computes derived temporal aggregates from a habit's
// raw completion log. All functions are pure: they take a completion
// slice and perform no I/O, so duplicate same-day completions and
// unsorted input are handled here rather than at the storage layer.
package stats

import (
	"sort"
	"time"

	"github.com/habitkit/habitkit/internal/constants"
	"github.com/habitkit/habitkit/internal/models"
	"github.com/habitkit/habitkit/internal/utils"
)

// Calculate assembles the full statistics view for one habit.
func Calculate(habitID string, completions []models.Completion, today time.Time) models.Statistics {
	return models.Statistics{
		HabitID:          habitID,
		CurrentStreak:    CurrentStreak(completions, today),
		LongestStreak:    LongestStreak(completions),
		TotalCompletions: len(completions),
		WeeklyData:       WeeklyData(completions),
		MonthlyData:      MonthlyData(completions),
	}
}

// CurrentStreak counts consecutive calendar days with at least one
// completion, walking backward from today. Day comparison is by local
// date string, so several completions on one day count once.
func CurrentStreak(completions []models.Completion, today time.Time) int {
	if len(completions) == 0 {
		return 0
	}

	days := make(map[string]struct{}, len(completions))
	for _, c := range completions {
		days[utils.DayString(c.CompletedAt)] = struct{}{}
	}

	streak := 0
	cursor := today
	for {
		if _, ok := days[utils.DayString(cursor)]; !ok {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

// LongestStreak scans sorted distinct completion dates for the longest
// run of exactly-consecutive calendar days.
func LongestStreak(completions []models.Completion) int {
	days := distinctDays(completions)
	if len(days) == 0 {
		return 0
	}

	longest := 1
	current := 1
	for i := 1; i < len(days); i++ {
		if utils.DayString(days[i-1].AddDate(0, 0, 1)) == utils.DayString(days[i]) {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
		}
	}
	return longest
}

// WeeklyData groups completions by ISO 8601 week, most recent first,
// capped to the last 12 weeks with any activity.
func WeeklyData(completions []models.Completion) []models.WeeklyCompletions {
	type week struct {
		count int
		days  map[string]struct{}
	}
	weeks := make(map[string]*week)
	for _, c := range completions {
		label := utils.ISOWeekLabel(c.CompletedAt)
		w, ok := weeks[label]
		if !ok {
			w = &week{days: make(map[string]struct{})}
			weeks[label] = w
		}
		w.count++
		w.days[utils.DayString(c.CompletedAt)] = struct{}{}
	}

	out := make([]models.WeeklyCompletions, 0, len(weeks))
	for label, w := range weeks {
		days := make([]string, 0, len(w.days))
		for d := range w.days {
			days = append(days, d)
		}
		sort.Strings(days)
		out = append(out, models.WeeklyCompletions{
			Week:        label,
			Completions: w.count,
			Days:        days,
		})
	}

	// The zero-padded label sorts lexicographically in week order.
	sort.Slice(out, func(i, j int) bool { return out[i].Week > out[j].Week })
	if len(out) > constants.WeeklyWindow {
		out = out[:constants.WeeklyWindow]
	}
	return out
}

// MonthlyData groups completions by calendar month, most recent first,
// capped to the last 6 months with any activity. The completion rate is
// the percentage of days in the month with the count of completions,
// rounded to the nearest integer.
func MonthlyData(completions []models.Completion) []models.MonthlyCompletions {
	months := make(map[string]int)
	for _, c := range completions {
		months[utils.MonthLabel(c.CompletedAt)]++
	}

	out := make([]models.MonthlyCompletions, 0, len(months))
	for label, count := range months {
		rate := 0
		if days := utils.DaysInMonth(label); days > 0 {
			rate = (count*100 + days/2) / days
		}
		out = append(out, models.MonthlyCompletions{
			Month:          label,
			Completions:    count,
			CompletionRate: rate,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	if len(out) > constants.MonthlyWindow {
		out = out[:constants.MonthlyWindow]
	}
	return out
}

// distinctDays returns the habit's completion dates as local midnights,
// ascending, with same-day duplicates removed.
func distinctDays(completions []models.Completion) []time.Time {
	seen := make(map[string]struct{}, len(completions))
	days := make([]time.Time, 0, len(completions))
	for _, c := range completions {
		key := utils.DayString(c.CompletedAt)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		day, err := utils.ParseDay(key)
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
