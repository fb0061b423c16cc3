package review

import (
	"time"

	rev "github.com/abhisek/bonk/internal/review"
)

// startedMsg is sent when a review has been opened for the current skill.
type startedMsg struct {
	Session rev.Session
	Err     error
}

// answerMsg carries the outcome of a first-answer submission: either a
// key-property reveal or the follow-up question.
type answerMsg struct {
	Result rev.AnswerResult
	Err    error
}

// finishedMsg is sent when the review has been sealed and rescheduled.
type finishedMsg struct {
	DueAt time.Time
	Err   error
}

// tickMsg updates the elapsed-time display once a second.
type tickMsg time.Time
