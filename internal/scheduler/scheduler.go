// Package scheduler implements the spaced-repetition scheduling formula.
// It is pure: given the current schedule state, a rating, and a clock
// reading it returns the updated state and the next due time, with no
// side effects.
package scheduler

import "time"

// Rating grades a finished review. Encoded 1-4 on the wire and in the
// reviews table.
type Rating int

const (
	RatingAgain Rating = iota + 1 // failed recall, re-test very soon
	RatingHard
	RatingGood
	RatingEasy
)

// Valid reports whether r is one of the four accepted ratings.
func (r Rating) Valid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

func (r Rating) String() string {
	switch r {
	case RatingAgain:
		return "again"
	case RatingHard:
		return "hard"
	case RatingGood:
		return "good"
	case RatingEasy:
		return "easy"
	default:
		return "invalid"
	}
}

// Bounds for the schedule state and the computed interval.
const (
	MinStability = 0.2 // days
	MaxStability = 365.0

	MinDifficulty = 1.0
	MaxDifficulty = 10.0

	MinIntervalDays = 0.2
	MaxIntervalDays = 180.0
)

// AgainRequeue is the fixed delay before a lapsed skill is re-tested.
// A lapse always requeues at this latency no matter how much stability
// the skill had accumulated.
const AgainRequeue = 20 * time.Minute

// State is the per-skill schedule state.
//
// Stability is the estimated retention span in days; it grows
// multiplicatively on success and halves on a lapse. Difficulty is a
// slow-moving friction scalar in [1, 10] that dampens the interval as
// it rises. Lapses counts reviews rated Again.
type State struct {
	Stability  float64
	Difficulty float64
	Lapses     int
}

// DefaultState is the schedule state every skill starts with at seed time.
func DefaultState() State {
	return State{Stability: 1.0, Difficulty: 5.0}
}

// NextDue applies rating to state at time now and returns the next due
// time plus the updated state. It is total: any Rating value outside
// 1-4 leaves stability and difficulty untouched and schedules with the
// unchanged state, matching the interval formula path.
func NextDue(now time.Time, state State, rating Rating) (time.Time, State) {
	s := state

	if rating == RatingAgain {
		s.Lapses++
		s.Stability = clamp(s.Stability*0.5, MinStability, MaxStability)
		s.Difficulty = clamp(s.Difficulty+0.6, MinDifficulty, MaxDifficulty)
		return now.Add(AgainRequeue), s
	}

	switch rating {
	case RatingHard:
		s.Stability = clamp(s.Stability*1.15, MinStability, MaxStability)
		s.Difficulty = clamp(s.Difficulty+0.15, MinDifficulty, MaxDifficulty)
	case RatingGood:
		s.Stability = clamp(s.Stability*1.35, MinStability, MaxStability)
		s.Difficulty = clamp(s.Difficulty-0.1, MinDifficulty, MaxDifficulty)
	case RatingEasy:
		s.Stability = clamp(s.Stability*1.6, MinStability, MaxStability)
		s.Difficulty = clamp(s.Difficulty-0.25, MinDifficulty, MaxDifficulty)
	}

	return now.Add(daysToDuration(IntervalDays(s))), s
}

// IntervalDays returns the review interval the updated state maps to:
// stability scaled by (11 - difficulty)/10, clamped to
// [MinIntervalDays, MaxIntervalDays].
func IntervalDays(s State) float64 {
	return clamp(s.Stability*(11-s.Difficulty)/10, MinIntervalDays, MaxIntervalDays)
}

func daysToDuration(days float64) time.Duration {
	return time.Duration(days * 24 * float64(time.Hour))
}

func clamp(x, lo, hi float64) float64 {
	return max(lo, min(hi, x))
}
