package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/habitkit/habitkit/internal/models"
)

const defaultTimeout = 10 * time.Second

// RESTBackend talks JSON over HTTP to a habit sync service exposing
// /habits and /completions collections.
type RESTBackend struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRESTBackend creates a client for the service at baseURL. The token
// is sent as a bearer credential when non-empty.
func NewRESTBackend(baseURL, token string) *RESTBackend {
	return &RESTBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

func (b *RESTBackend) InsertHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	var out models.Habit
	if err := b.do(ctx, http.MethodPost, "/habits", habit, &out); err != nil {
		return models.Habit{}, err
	}
	return out, nil
}

func (b *RESTBackend) UpdateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	var out models.Habit
	path := "/habits/" + url.PathEscape(habit.ID)
	if err := b.do(ctx, http.MethodPut, path, habit, &out); err != nil {
		return models.Habit{}, err
	}
	return out, nil
}

func (b *RESTBackend) DeleteHabit(ctx context.Context, id string) error {
	return b.do(ctx, http.MethodDelete, "/habits/"+url.PathEscape(id), nil, nil)
}

func (b *RESTBackend) SelectActiveHabits(ctx context.Context) ([]models.Habit, error) {
	var out []models.Habit
	if err := b.do(ctx, http.MethodGet, "/habits?is_active=true", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *RESTBackend) InsertCompletion(ctx context.Context, completion models.Completion) (models.Completion, error) {
	var out models.Completion
	if err := b.do(ctx, http.MethodPost, "/completions", completion, &out); err != nil {
		return models.Completion{}, err
	}
	return out, nil
}

func (b *RESTBackend) DeleteCompletions(ctx context.Context, habitID string) error {
	return b.do(ctx, http.MethodDelete, "/completions?habit_id="+url.QueryEscape(habitID), nil, nil)
}

// ProbeURL returns an endpoint suitable for connectivity checks.
func (b *RESTBackend) ProbeURL() string {
	return b.baseURL + "/health"
}

func (b *RESTBackend) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrUnavailable, method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
		}
	}
	return nil
}
