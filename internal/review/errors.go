package review

import (
	"errors"
	"fmt"
)

// ErrSkillNotFound is returned when a review is started for an unknown
// skill id.
var ErrSkillNotFound = errors.New("skill not found")

// ErrReviewNotFound is returned when a session id is unknown or the
// session has already been sealed.
var ErrReviewNotFound = errors.New("review not found")

// ValidationError reports caller input the coordinator refuses to act
// on, such as a blank answer or an out-of-range rating.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Msg
}

func validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
