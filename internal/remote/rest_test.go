package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/habitkit/habitkit/internal/models"
)

func TestRESTInsertHabitReturnsServerRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/habits" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", got)
		}

		var habit models.Habit
		if err := json.NewDecoder(r.Body).Decode(&habit); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		// Server normalizes: assigns its own id
		habit.ID = "server-id"
		json.NewEncoder(w).Encode(habit)
	}))
	defer srv.Close()

	backend := NewRESTBackend(srv.URL, "tok")
	got, err := backend.InsertHabit(context.Background(), models.Habit{
		ID:        "client-id",
		Title:     "Read",
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "server-id" {
		t.Errorf("expected server-assigned id, got %q", got.ID)
	}
	if got.Title != "Read" {
		t.Errorf("expected title preserved, got %q", got.Title)
	}
}

func TestRESTServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	backend := NewRESTBackend(srv.URL, "")
	if _, err := backend.SelectActiveHabits(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestRESTTransportErrorIsUnavailable(t *testing.T) {
	// Nothing listens here
	backend := NewRESTBackend("http://127.0.0.1:1", "")
	if _, err := backend.InsertCompletion(context.Background(), models.Completion{
		ID: "c1", HabitID: "h1", CompletedAt: time.Now(),
	}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestRESTSelectActiveHabits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/habits" || r.URL.Query().Get("is_active") != "true" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		json.NewEncoder(w).Encode([]models.Habit{
			{ID: "h1", Title: "Read", IsActive: true},
			{ID: "h2", Title: "Run", IsActive: true},
		})
	}))
	defer srv.Close()

	backend := NewRESTBackend(srv.URL, "")
	habits, err := backend.SelectActiveHabits(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(habits) != 2 {
		t.Fatalf("expected 2 habits, got %d", len(habits))
	}
}

func TestRESTDeleteCompletionsQuery(t *testing.T) {
	var gotHabitID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/completions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotHabitID = r.URL.Query().Get("habit_id")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	backend := NewRESTBackend(srv.URL, "")
	if err := backend.DeleteCompletions(context.Background(), "h1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotHabitID != "h1" {
		t.Errorf("expected habit_id=h1, got %q", gotHabitID)
	}
}
