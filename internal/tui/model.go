// Package tui is the interactive today view: the active habits, their
// completion state for the day, and the keys to work through them.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/habitkit/habitkit/internal/habit"
	"github.com/habitkit/habitkit/internal/models"
	"github.com/habitkit/habitkit/internal/network"
)

type state int

const (
	stateList state = iota
	stateAdd
	stateConfirmDelete
)

type habitsMsg []models.Habit

type connectivityMsg bool

type errMsg struct{ err error }

// Item wraps a habit with its completion state for the list widget.
type Item struct {
	Habit models.TodayHabit
}

func (i Item) Title() string {
	if !i.Habit.IsActive {
		return "[paused] " + i.Habit.Habit.Title
	}
	if i.Habit.CompletedToday {
		return "✓ " + i.Habit.Habit.Title
	}
	return "○ " + i.Habit.Habit.Title
}

func (i Item) Description() string {
	desc := "not completed today"
	if i.Habit.CompletedToday {
		desc = "completed today"
	}
	if i.Habit.StreakCount > 0 {
		desc += fmt.Sprintf(" · 🔥 %d", i.Habit.StreakCount)
	}
	if i.Habit.ReminderEnabled {
		desc += " · ⏰ " + i.Habit.ReminderTime
	}
	return desc
}

func (i Item) FilterValue() string { return i.Habit.Habit.Title }

type KeyMap struct {
	Done   key.Binding
	Add    key.Binding
	Delete key.Binding
	Sync   key.Binding
	Quit   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Done: key.NewBinding(
			key.WithKeys(" ", "m"),
			key.WithHelp("space", "mark done"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Sync: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "sync"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

type addForm struct {
	title        string
	description  string
	remind       bool
	reminderTime string
}

type Model struct {
	manager *habit.Manager
	oracle  network.Oracle

	state      state
	list       list.Model
	keys       KeyMap
	form       *huh.Form
	formData   *addForm
	toDeleteID string
	online     bool
	err        error

	updates <-chan []models.Habit
	connCh  <-chan bool
	cancel  func()
}

func New(manager *habit.Manager, oracle network.Oracle) Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Today"
	l.SetShowTitle(false)
	l.SetShowHelp(true)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Done, keys.Add, keys.Delete, keys.Sync}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	updates, cancel := manager.Subscribe()

	return Model{
		manager: manager,
		oracle:  oracle,
		state:   stateList,
		list:    l,
		keys:    keys,
		online:  oracle.Online(context.Background()),
		updates: updates,
		connCh:  oracle.Watch(context.Background()),
		cancel:  cancel,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForUpdate(), m.watchConnectivity())
}

// waitForUpdate turns the manager's subscription channel into messages.
func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		habits, ok := <-m.updates
		if !ok {
			return nil
		}
		return habitsMsg(habits)
	}
}

func (m Model) watchConnectivity() tea.Cmd {
	ch := m.connCh
	return func() tea.Msg {
		online, ok := <-ch
		if !ok {
			return nil
		}
		return connectivityMsg(online)
	}
}

func (m *Model) refreshItems() {
	today := m.manager.TodayHabits(context.Background())
	items := make([]list.Item, len(today))
	for i, h := range today {
		items[i] = Item{Habit: h}
	}
	m.list.SetItems(items)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-1)
		return m, nil

	case habitsMsg:
		m.refreshItems()
		return m, m.waitForUpdate()

	case connectivityMsg:
		m.online = bool(msg)
		return m, m.watchConnectivity()

	case errMsg:
		m.err = msg.err
		return m, nil
	}

	switch m.state {
	case stateAdd:
		return m.updateAddForm(msg)
	case stateConfirmDelete:
		return m.updateConfirmDelete(msg)
	default:
		return m.updateList(msg)
	}
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancel()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Done):
			if i, ok := m.list.SelectedItem().(Item); ok && !i.Habit.CompletedToday {
				id := i.Habit.ID
				return m, func() tea.Msg {
					if _, err := m.manager.CompleteHabit(context.Background(), id, ""); err != nil {
						return errMsg{err}
					}
					return habitsMsg(m.manager.Habits())
				}
			}

		case key.Matches(msg, m.keys.Add):
			m.formData = &addForm{}
			m.form = huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Title").Value(&m.formData.title),
				huh.NewInput().Title("Description").Value(&m.formData.description),
				huh.NewConfirm().Title("Daily reminder?").Value(&m.formData.remind),
				huh.NewInput().Title("Reminder time (HH:MM)").Value(&m.formData.reminderTime),
			))
			m.state = stateAdd
			return m, m.form.Init()

		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				m.toDeleteID = i.Habit.ID
				m.state = stateConfirmDelete
			}
			return m, nil

		case key.Matches(msg, m.keys.Sync):
			return m, func() tea.Msg {
				m.manager.Bootstrap(context.Background())
				return habitsMsg(m.manager.Habits())
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAddForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = stateList
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		data := *m.formData
		m.state = stateList
		if data.title == "" {
			return m, cmd
		}
		newHabit := models.Habit{
			Title:           data.title,
			Description:     data.description,
			ReminderEnabled: data.remind && data.reminderTime != "",
			ReminderTime:    data.reminderTime,
			IsActive:        true,
		}
		return m, tea.Batch(cmd, func() tea.Msg {
			if err := newHabit.Validate(); err != nil {
				return errMsg{err}
			}
			if _, err := m.manager.CreateHabit(context.Background(), newHabit); err != nil {
				return errMsg{err}
			}
			return habitsMsg(m.manager.Habits())
		})
	case huh.StateAborted:
		m.state = stateList
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "y", "Y":
			id := m.toDeleteID
			m.toDeleteID = ""
			m.state = stateList
			return m, func() tea.Msg {
				if err := m.manager.DeleteHabit(context.Background(), id); err != nil {
					return errMsg{err}
				}
				return habitsMsg(m.manager.Habits())
			}
		case "n", "N", "esc":
			m.toDeleteID = ""
			m.state = stateList
		}
	}
	return m, nil
}

func (m Model) View() string {
	header := titleStyle.Render("habitkit")
	if m.online {
		header += statusStyle.Render("online")
	} else {
		header += offlineStyle.Render("offline")
	}
	if m.err != nil {
		header += "  " + dangerStyle.Render(m.err.Error())
	}

	switch m.state {
	case stateAdd:
		return docStyle.Render(header + "\n\n" + m.form.View())
	case stateConfirmDelete:
		prompt := dangerStyle.Render("Delete this habit and all of its history? (y/n)")
		return docStyle.Render(header + "\n\n" + prompt)
	default:
		return docStyle.Render(header + "\n" + m.list.View())
	}
}
