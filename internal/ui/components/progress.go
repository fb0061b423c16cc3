package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/bonk/internal/ui/theme"
)

// ProgressBar shows position within the review queue.
type ProgressBar struct {
	Done  int
	Total int
	Width int
}

// View renders the bar with a done/total counter.
func (p ProgressBar) View() string {
	counter := fmt.Sprintf(" %d/%d", p.Done, p.Total)

	barWidth := p.Width - lipgloss.Width(counter)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := 0
	if p.Total > 0 {
		filled = barWidth * p.Done / p.Total
	}
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	bar := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().
			Foreground(theme.Border).
			Render(strings.Repeat("░", empty))

	return bar + lipgloss.NewStyle().Foreground(theme.TextDim).Render(counter)
}
