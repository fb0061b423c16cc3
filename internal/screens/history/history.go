package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/bonk/internal/router"
	"github.com/abhisek/bonk/internal/screen"
	"github.com/abhisek/bonk/internal/store"
	"github.com/abhisek/bonk/internal/ui/layout"
	"github.com/abhisek/bonk/internal/ui/theme"
)

type historyLoadedMsg struct {
	Reviews []store.Review
	Titles  map[string]string // skill ID → title
	Err     error
}

// HistoryScreen lists past reviews, newest first, with expandable detail.
type HistoryScreen struct {
	st       *store.Store
	reviews  []store.Review
	titles   map[string]string
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(st *store.Store) *HistoryScreen {
	return &HistoryScreen{
		st:       st,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		reviews, err := s.st.ListReviews(ctx, 50)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		titles := make(map[string]string)
		if all, err := s.st.ListSkills(ctx, ""); err == nil {
			for _, sk := range all {
				titles[sk.ID] = sk.Title
			}
		}

		return historyLoadedMsg{Reviews: reviews, Titles: titles}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.reviews = msg.Reviews
			s.titles = msg.Titles
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.reviews)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.reviews) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No reviews yet. Start your first one!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, r := range s.reviews {
		title := s.titles[r.SkillID]
		if title == "" {
			title = r.SkillID
		}

		outcome := "abandoned"
		if r.Finished() && r.Rating != nil {
			outcome = r.Rating.String()
		}
		if r.KeyPropertyRevealed != nil {
			outcome += "  (key revealed)"
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %-44s %s",
			prefix, r.StartedAt.Format("Jan 02 15:04"), title, outcome)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(renderDetail(r, width))
		}
	}

	return b.String()
}

func renderDetail(r store.Review, width int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var lines []string
	lines = append(lines, "    Prompt: "+r.Prompt)
	if r.Answer1 != nil {
		lines = append(lines, "    Answer: "+*r.Answer1)
	}
	if r.FollowupAsked != nil {
		lines = append(lines, "    Follow-up: "+*r.FollowupAsked)
	}
	if r.Answer2 != nil {
		lines = append(lines, "    Follow-up answer: "+*r.Answer2)
	}
	if r.FailureMode != nil {
		lines = append(lines, "    Failure mode: "+*r.FailureMode)
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render(l)))
		b.WriteString("\n")
	}
	return b.String()
}
