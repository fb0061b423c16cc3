// Package review orchestrates a single review's lifecycle: it loads the
// skill and its schedule from the store, drives the follow-up selector
// on answer submission, and seals the review together with the new
// schedule in one atomic write on finish.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/bonk/internal/coach"
	"github.com/abhisek/bonk/internal/scheduler"
	"github.com/abhisek/bonk/internal/skills"
	"github.com/abhisek/bonk/internal/store"
)

// RevealTimeout is how long a learner may sit on the prompt before a
// submission triggers the key-property reveal instead of a follow-up.
// The timer is cooperative: elapsed time is checked only when an
// answer is submitted, never by a background clock.
const RevealTimeout = 60 * time.Second

// PromptSource produces the prompt text shown for a skill. A source
// that fails or returns empty text is ignored and the skill's
// description is used instead, so prompt generation never blocks a
// review from starting.
type PromptSource interface {
	Prompt(ctx context.Context, skill skills.Skill) (string, error)
}

// Coordinator drives review sessions against a single store handle.
type Coordinator struct {
	store   *store.Store
	prompts PromptSource
	now     func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPromptSource sets an optional generator for prompt variants.
func WithPromptSource(p PromptSource) Option {
	return func(c *Coordinator) { c.prompts = p }
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New creates a Coordinator backed by st.
func New(st *store.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		store: st,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session is a started review handed to the presentation layer. The
// key property is carried for the timeout-reveal path; it is not shown
// to the learner until that path fires.
type Session struct {
	Review      store.Review
	Skill       skills.Skill
	KeyProperty string
}

// StartReview creates and persists a new review session for skillID.
func (c *Coordinator) StartReview(ctx context.Context, skillID string) (Session, error) {
	skill, err := c.store.GetSkill(ctx, skillID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, fmt.Errorf("start review for %s: %w", skillID, ErrSkillNotFound)
		}
		return Session{}, fmt.Errorf("start review for %s: %w", skillID, err)
	}

	prompt := skill.Description
	if c.prompts != nil {
		if p, perr := c.prompts.Prompt(ctx, skill); perr == nil && strings.TrimSpace(p) != "" {
			prompt = p
		}
	}

	r := store.Review{
		ID:        uuid.NewString(),
		SkillID:   skill.ID,
		StartedAt: c.now(),
		Prompt:    prompt,
	}
	if err := c.store.InsertReview(ctx, r); err != nil {
		return Session{}, fmt.Errorf("start review for %s: %w", skillID, err)
	}

	return Session{Review: r, Skill: skill, KeyProperty: skill.Rubric.KeyProperty}, nil
}

// AnswerResult is the outcome of a single answer submission. Exactly
// one of the two shapes applies: a reveal (KeyPropertyReveal non-empty,
// the learner should retry) or a normal follow-up selection (where
// FollowupQuestion may still be empty when the skill defines none).
type AnswerResult struct {
	FollowupQuestion  string
	FailureMode       string
	KeyPropertyReveal string
}

// Revealed reports whether this submission fired the timeout reveal.
func (r AnswerResult) Revealed() bool {
	return r.KeyPropertyReveal != ""
}

// SubmitAnswer records the learner's answer on the session. When the
// submission arrives more than RevealTimeout after the session started
// and the key property has not yet been revealed, the reveal fires
// instead of follow-up selection; this happens at most once per
// session, so a second late submission selects a follow-up as usual.
func (c *Coordinator) SubmitAnswer(ctx context.Context, reviewID, answer string, elapsed time.Duration) (AnswerResult, error) {
	if strings.TrimSpace(answer) == "" {
		return AnswerResult{}, validationf("answer must not be empty")
	}

	r, err := c.store.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AnswerResult{}, fmt.Errorf("submit answer: %w", ErrReviewNotFound)
		}
		return AnswerResult{}, fmt.Errorf("submit answer: %w", err)
	}
	if r.Finished() {
		return AnswerResult{}, fmt.Errorf("submit answer: %w", ErrReviewNotFound)
	}

	skill, err := c.store.GetSkill(ctx, r.SkillID)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("submit answer: load skill %s: %w", r.SkillID, err)
	}

	if elapsed > RevealTimeout && r.KeyPropertyRevealed == nil {
		if err := c.store.RecordKeyReveal(ctx, reviewID, answer, skill.Rubric.KeyProperty); err != nil {
			return AnswerResult{}, fmt.Errorf("submit answer: %w", translateNotFound(err))
		}
		return AnswerResult{KeyPropertyReveal: skill.Rubric.KeyProperty}, nil
	}

	question, failureMode := coach.Pick(skill, answer)
	if err := c.store.RecordAnswer(ctx, reviewID, answer, optStr(question), optStr(failureMode)); err != nil {
		return AnswerResult{}, fmt.Errorf("submit answer: %w", translateNotFound(err))
	}
	return AnswerResult{FollowupQuestion: question, FailureMode: failureMode}, nil
}

// FinishReview seals the session with the learner's rating, advances
// the skill's schedule through the scheduling formula, and commits
// both writes atomically. answer2 may be empty when no follow-up was
// answered. Returns the skill's next due time.
func (c *Coordinator) FinishReview(ctx context.Context, reviewID string, rating scheduler.Rating, answer2 string) (time.Time, error) {
	if !rating.Valid() {
		return time.Time{}, validationf("rating must be 1-4, got %d", int(rating))
	}

	r, err := c.store.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return time.Time{}, fmt.Errorf("finish review: %w", ErrReviewNotFound)
		}
		return time.Time{}, fmt.Errorf("finish review: %w", err)
	}
	if r.Finished() {
		return time.Time{}, fmt.Errorf("finish review: %w", ErrReviewNotFound)
	}

	sched, err := c.store.GetSchedule(ctx, r.SkillID)
	if err != nil {
		return time.Time{}, fmt.Errorf("finish review: load schedule for %s: %w", r.SkillID, err)
	}

	now := c.now()
	dueAt, state := scheduler.NextDue(now, sched.State, rating)

	sched.DueAt = dueAt
	sched.State = state
	sched.LastRating = &rating
	sched.LastReviewedAt = &now

	seal := store.ReviewSeal{
		FinishedAt:          now,
		Rating:              rating,
		Answer2:             optStr(answer2),
		KeyPropertyRevealed: r.KeyPropertyRevealed,
	}
	if err := c.store.FinishReview(ctx, reviewID, seal, sched); err != nil {
		return time.Time{}, fmt.Errorf("finish review: %w", translateNotFound(err))
	}
	return dueAt, nil
}

// ListDueSkills returns skills due at or before now, ascending by due
// time, capped at limit (0 = no cap). On an empty skill table it first
// seeds the baseline catalog; seeding is idempotent and never resets
// existing schedule state.
func (c *Coordinator) ListDueSkills(ctx context.Context, limit int) ([]store.DueSkill, error) {
	n, err := c.store.CountSkills(ctx)
	if err != nil {
		return nil, fmt.Errorf("list due: %w", err)
	}
	if n == 0 {
		if err := c.seedCatalog(ctx); err != nil {
			return nil, fmt.Errorf("list due: %w", err)
		}
	}
	due, err := c.store.ListDue(ctx, c.now(), limit)
	if err != nil {
		return nil, fmt.Errorf("list due: %w", err)
	}
	return due, nil
}

func (c *Coordinator) seedCatalog(ctx context.Context) error {
	catalog, err := skills.Catalog()
	if err != nil {
		return fmt.Errorf("load seed catalog: %w", err)
	}
	now := c.now()
	for _, sk := range catalog {
		if err := c.store.UpsertSkill(ctx, sk, now); err != nil {
			return fmt.Errorf("seed skill %s: %w", sk.ID, err)
		}
	}
	return nil
}

func translateNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrReviewNotFound
	}
	return err
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
