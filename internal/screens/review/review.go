package review

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	rev "github.com/abhisek/bonk/internal/review"
	"github.com/abhisek/bonk/internal/router"
	"github.com/abhisek/bonk/internal/scheduler"
	"github.com/abhisek/bonk/internal/screen"
	"github.com/abhisek/bonk/internal/store"
	"github.com/abhisek/bonk/internal/ui/components"
	"github.com/abhisek/bonk/internal/ui/layout"
)

// stage tracks where the learner is inside one review.
type stage int

const (
	stageLoading stage = iota
	stageAnswering
	stageReveal
	stageFollowup
	stageRating
	stageDone
	stageAllDone
)

// ReviewScreen walks the learner through the due queue one review at a
// time: prompt, free-text answer, a possible key-property reveal, the
// follow-up question, then a recall grade.
type ReviewScreen struct {
	coord *rev.Coordinator
	queue []store.DueSkill
	index int

	stage    stage
	session  rev.Session
	followup string
	reveal   string
	answer2  string
	nextDue  time.Time

	startedAt time.Time
	elapsed   time.Duration

	input  components.TextInput
	rating components.RatingPicker
	errMsg string
}

var _ screen.Screen = (*ReviewScreen)(nil)
var _ screen.KeyHintProvider = (*ReviewScreen)(nil)

// New creates a review screen over the given due queue.
func New(coord *rev.Coordinator, queue []store.DueSkill) *ReviewScreen {
	return &ReviewScreen{
		coord: coord,
		queue: queue,
		input: components.NewTextInput("Type your approach..."),
	}
}

func (s *ReviewScreen) Init() tea.Cmd {
	if len(s.queue) == 0 {
		s.stage = stageAllDone
		return nil
	}
	return tea.Batch(s.startCurrent(), s.input.Init(), tickCmd())
}

func (s *ReviewScreen) Title() string {
	return "Review"
}

func (s *ReviewScreen) KeyHints() []layout.KeyHint {
	switch s.stage {
	case stageAnswering, stageFollowup:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Abandon"},
		}
	case stageReveal:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Answer again"},
			{Key: "Esc", Description: "Abandon"},
		}
	case stageRating:
		return []layout.KeyHint{
			{Key: "1-4", Description: "Grade"},
			{Key: "Enter", Description: "Confirm"},
		}
	case stageDone, stageAllDone:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Continue"},
		}
	}
	return nil
}

func (s *ReviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		return s.handleStarted(msg)

	case answerMsg:
		return s.handleAnswer(msg)

	case finishedMsg:
		return s.handleFinished(msg)

	case tickMsg:
		if s.stage == stageAnswering || s.stage == stageReveal {
			s.elapsed = time.Since(s.startedAt)
			return s, tickCmd()
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.stage == stageAnswering || s.stage == stageFollowup {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	return s, nil
}

func (s *ReviewScreen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.session = msg.Session
	s.followup = ""
	s.reveal = ""
	s.answer2 = ""
	s.stage = stageAnswering
	s.startedAt = time.Now()
	s.elapsed = 0
	s.input = components.NewTextInput("Type your approach...")
	return s, tea.Batch(s.input.Init(), tickCmd())
}

func (s *ReviewScreen) handleAnswer(msg answerMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}

	if msg.Result.Revealed() {
		s.reveal = msg.Result.KeyPropertyReveal
		s.stage = stageReveal
		return s, nil
	}

	s.followup = msg.Result.FollowupQuestion
	s.stage = stageFollowup
	s.input = components.NewTextInput("Answer the follow-up...")
	return s, s.input.Init()
}

func (s *ReviewScreen) handleFinished(msg finishedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.nextDue = msg.DueAt
	s.stage = stageDone
	return s, nil
}

func (s *ReviewScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	// Error state — any key goes back.
	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	switch s.stage {
	case stageAnswering:
		switch key {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "enter":
			answer := s.input.Value()
			if strings.TrimSpace(answer) == "" {
				return s, nil
			}
			return s, s.submitAnswer(answer)
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	case stageReveal:
		switch key {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "enter":
			s.stage = stageAnswering
			s.input = components.NewTextInput("Try again with the key property in mind...")
			return s, s.input.Init()
		}
		return s, nil

	case stageFollowup:
		switch key {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "enter":
			answer := s.input.Value()
			if strings.TrimSpace(answer) == "" {
				return s, nil
			}
			s.answer2 = answer
			s.stage = stageRating
			s.rating = components.NewRatingPicker()
			return s, nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	case stageRating:
		var cmd tea.Cmd
		s.rating, cmd = s.rating.Update(msg)
		if s.rating.Submitted {
			return s, s.finishCurrent(s.rating.Selected)
		}
		return s, cmd

	case stageDone:
		s.index++
		if s.index >= len(s.queue) {
			s.stage = stageAllDone
			return s, nil
		}
		s.stage = stageLoading
		return s, s.startCurrent()

	case stageAllDone:
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	return s, nil
}

// startCurrent opens a review for the skill at the queue cursor.
func (s *ReviewScreen) startCurrent() tea.Cmd {
	skillID := s.queue[s.index].Skill.ID
	return func() tea.Msg {
		session, err := s.coord.StartReview(context.Background(), skillID)
		return startedMsg{Session: session, Err: err}
	}
}

// submitAnswer sends the first answer with the wall-clock elapsed time.
func (s *ReviewScreen) submitAnswer(answer string) tea.Cmd {
	reviewID := s.session.Review.ID
	elapsed := time.Since(s.startedAt)
	return func() tea.Msg {
		result, err := s.coord.SubmitAnswer(context.Background(), reviewID, answer, elapsed)
		return answerMsg{Result: result, Err: err}
	}
}

// finishCurrent seals the review with the chosen grade.
func (s *ReviewScreen) finishCurrent(rating scheduler.Rating) tea.Cmd {
	reviewID := s.session.Review.ID
	answer2 := s.answer2
	return func() tea.Msg {
		dueAt, err := s.coord.FinishReview(context.Background(), reviewID, rating, answer2)
		return finishedMsg{DueAt: dueAt, Err: err}
	}
}

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
