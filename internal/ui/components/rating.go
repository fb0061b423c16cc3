package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/bonk/internal/scheduler"
	"github.com/abhisek/bonk/internal/ui/theme"
)

// ratingHints describe each grade in the learner's terms.
var ratingHints = map[scheduler.Rating]string{
	scheduler.RatingAgain: "blanked on it, re-test soon",
	scheduler.RatingHard:  "got there, but it was a grind",
	scheduler.RatingGood:  "solid recall",
	scheduler.RatingEasy:  "instant, no hesitation",
}

// RatingPicker selects one of the four recall grades.
type RatingPicker struct {
	Selected  scheduler.Rating
	Submitted bool
}

// NewRatingPicker creates a picker with Good preselected.
func NewRatingPicker() RatingPicker {
	return RatingPicker{Selected: scheduler.RatingGood}
}

// Update handles keyboard input. Number keys submit directly, arrows
// move the selection and enter submits it.
func (p RatingPicker) Update(msg tea.Msg) (RatingPicker, tea.Cmd) {
	if p.Submitted {
		return p, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch kmsg.String() {
	case "1", "2", "3", "4":
		p.Selected = scheduler.Rating(kmsg.String()[0] - '0')
		p.Submitted = true
	case "up", "k":
		if p.Selected > scheduler.RatingAgain {
			p.Selected--
		}
	case "down", "j":
		if p.Selected < scheduler.RatingEasy {
			p.Selected++
		}
	case "enter":
		p.Submitted = true
	}

	return p, nil
}

// View renders the four grades.
func (p RatingPicker) View() string {
	var s string
	for r := scheduler.RatingAgain; r <= scheduler.RatingEasy; r++ {
		prefix := "  "
		if r == p.Selected {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%d) %-5s  %s", prefix, int(r), r.String(), ratingHints[r])

		if r == p.Selected {
			s += theme.Selected.Render(line) + "\n"
		} else {
			s += lipgloss.NewStyle().Foreground(theme.Text).Render(line) + "\n"
		}
	}
	return s
}
