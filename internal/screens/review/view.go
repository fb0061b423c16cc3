package review

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	rev "github.com/abhisek/bonk/internal/review"
	"github.com/abhisek/bonk/internal/ui/components"
	"github.com/abhisek/bonk/internal/ui/theme"
)

func (s *ReviewScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, s.errMsg)
	}

	switch s.stage {
	case stageLoading:
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  Loading review...")
	case stageAllDone:
		return renderAllDone(width)
	case stageDone:
		return s.renderDone(width)
	case stageRating:
		return s.renderRating(width)
	default:
		return s.renderQuestion(width)
	}
}

// renderQuestion covers the answering, reveal, and follow-up stages,
// which all show the prompt with different input areas below it.
func (s *ReviewScreen) renderQuestion(width int) string {
	var b strings.Builder

	// Info line: skill on the left, queue position and elapsed on the right.
	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s  (%s)", s.session.Skill.Title, s.session.Skill.Pattern))

	bar := components.ProgressBar{Done: s.index, Total: len(s.queue), Width: 16}
	timer := fmt.Sprintf("%d:%02d", int(s.elapsed.Minutes()), int(s.elapsed.Seconds())%60)
	infoRight := bar.View() + "  " +
		lipgloss.NewStyle().Foreground(theme.Accent).Render(timer)

	infoLine := infoLeft
	rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4
	if rightPad > 0 {
		infoLine += strings.Repeat(" ", rightPad) + infoRight
	}

	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	// The prompt being reviewed.
	promptStyle := lipgloss.NewStyle().
		Width(min(width-8, 70)).
		Foreground(theme.Text).
		Bold(true)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, promptStyle.Render(s.session.Review.Prompt)))
	b.WriteString("\n\n")

	switch s.stage {
	case stageReveal:
		b.WriteString(s.renderReveal(width))
	case stageFollowup:
		b.WriteString(s.renderFollowup(width))
	default:
		if s.elapsed > rev.RevealTimeout {
			b.WriteString(lipgloss.NewStyle().
				Width(width).
				Align(lipgloss.Center).
				Foreground(theme.TextDim).
				Italic(true).
				Render("Stuck? Submit what you have for a hint."))
			b.WriteString("\n\n")
		}
		answerLine := lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Render("Answer: " + s.input.View())
		b.WriteString(answerLine)
	}

	return b.String()
}

func (s *ReviewScreen) renderReveal(width int) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Accent).
		Bold(true).
		Render("Key property"))
	b.WriteString("\n")

	revealStyle := lipgloss.NewStyle().
		Width(min(width-8, 70)).
		Foreground(theme.Text)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, revealStyle.Render(s.reveal)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Press Enter to answer again."))

	return b.String()
}

func (s *ReviewScreen) renderFollowup(width int) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("Follow-up"))
	b.WriteString("\n")

	followupStyle := lipgloss.NewStyle().
		Width(min(width-8, 70)).
		Foreground(theme.Text)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, followupStyle.Render(s.followup)))
	b.WriteString("\n\n")

	answerLine := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render("Answer: " + s.input.View())
	b.WriteString(answerLine)

	return b.String()
}

func (s *ReviewScreen) renderRating(width int) string {
	var b strings.Builder
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("How was your recall?"))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.rating.View()))

	return b.String()
}

func (s *ReviewScreen) renderDone(width int) string {
	var b strings.Builder
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Bold(true).
		Render("Review done"))
	b.WriteString("\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%q comes back %s", s.session.Skill.Title, s.nextDue.Format("Jan 02 15:04"))))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Press Enter for the next review."))

	return b.String()
}

func renderAllDone(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Bold(true).
		Render("Queue cleared!"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Nothing else is due right now. Come back later."))

	return b.String()
}

func renderError(width int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
