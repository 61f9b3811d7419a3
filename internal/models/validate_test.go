package models

import (
	"testing"
	"time"
)

func TestHabitValidate(t *testing.T) {
	tests := []struct {
		name    string
		habit   Habit
		wantErr bool
	}{
		{"minimal valid", Habit{Title: "Read"}, false},
		{"empty title", Habit{}, true},
		{"reminder enabled with time", Habit{Title: "Read", ReminderEnabled: true, ReminderTime: "20:00"}, false},
		{"reminder enabled without time", Habit{Title: "Read", ReminderEnabled: true}, true},
		{"reminder enabled bad time", Habit{Title: "Read", ReminderEnabled: true, ReminderTime: "8pm"}, true},
		{"reminder disabled bad time", Habit{Title: "Read", ReminderTime: "25:61"}, true},
		{"reminder disabled valid time", Habit{Title: "Read", ReminderTime: "09:30"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.habit.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompletionValidate(t *testing.T) {
	valid := Completion{HabitID: "h1", CompletedAt: time.Now()}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	missing := Completion{CompletedAt: time.Now()}
	if err := missing.Validate(); err == nil {
		t.Error("expected error for missing habit reference")
	}

	zero := Completion{HabitID: "h1"}
	if err := zero.Validate(); err == nil {
		t.Error("expected error for zero timestamp")
	}
}
