package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	rev "github.com/abhisek/bonk/internal/review"
	"github.com/abhisek/bonk/internal/router"
	"github.com/abhisek/bonk/internal/screen"
	"github.com/abhisek/bonk/internal/screens/history"
	reviewscreen "github.com/abhisek/bonk/internal/screens/review"
	"github.com/abhisek/bonk/internal/store"
	"github.com/abhisek/bonk/internal/ui/components"
	"github.com/abhisek/bonk/internal/ui/theme"
)

// dueListLimit caps how many skills one sitting pulls off the queue.
const dueListLimit = 20

// dueLoadedMsg delivers the due queue after the async load.
type dueLoadedMsg struct {
	Due []store.DueSkill
	Err error
}

// HomeScreen is the entry screen: the due queue plus the main menu.
type HomeScreen struct {
	coord  *rev.Coordinator
	st     *store.Store
	due    []store.DueSkill
	menu   components.Menu
	loaded bool
	errMsg string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen.
func New(coord *rev.Coordinator, st *store.Store) *HomeScreen {
	h := &HomeScreen{coord: coord, st: st}
	h.menu = components.NewMenu(h.menuItems())
	return h
}

func (h *HomeScreen) menuItems() []components.MenuItem {
	return []components.MenuItem{
		{Label: "START REVIEWS", Action: func() tea.Cmd {
			if len(h.due) == 0 {
				return nil
			}
			due := h.due
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: reviewscreen.New(h.coord, due)}
			}
		}},
		{Label: "HISTORY", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(h.st)}
			}
		}},
		{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadDue()
}

// loadDue seeds the catalog on first run and fetches the due queue.
func (h *HomeScreen) loadDue() tea.Cmd {
	return func() tea.Msg {
		due, err := h.coord.ListDueSkills(context.Background(), dueListLimit)
		return dueLoadedMsg{Due: due, Err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case dueLoadedMsg:
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
		} else {
			h.due = msg.Due
		}
		h.loaded = true
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// DueCount returns how many skills are queued, for the header.
func (h *HomeScreen) DueCount() int {
	return len(h.due)
}

func (h *HomeScreen) View(width, height int) string {
	if h.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", h.errMsg))
	}
	if !h.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading...")
	}

	var sections []string

	sections = append(sections, theme.Title.Width(width).Render("b o n k"))
	sections = append(sections, theme.Subtitle.Width(width).
		Render("algorithmic patterns, spaced so you keep them"))

	sections = append(sections, h.renderDueList(width))

	sections = append(sections, lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View()))

	return "\n" + strings.Join(sections, "\n\n")
}

func (h *HomeScreen) renderDueList(width int) string {
	if len(h.due) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("Nothing due. Nice.")
	}

	now := time.Now().UTC()
	var b strings.Builder
	for _, d := range h.due {
		overdue := now.Sub(d.DueAt)
		var when string
		switch {
		case overdue < time.Hour:
			when = "due now"
		case overdue < 24*time.Hour:
			when = fmt.Sprintf("%dh overdue", int(overdue.Hours()))
		default:
			when = fmt.Sprintf("%dd overdue", int(overdue.Hours()/24))
		}

		line := fmt.Sprintf("%-44s %-10s %s",
			d.Skill.Title, d.Skill.Pattern, when)
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Render(line))
		b.WriteString("\n")
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.TrimRight(b.String(), "\n"))
}

func (h *HomeScreen) Title() string {
	return "Home"
}
