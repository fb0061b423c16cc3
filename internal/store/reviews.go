package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/bonk/internal/scheduler"
)

// Review is the persisted record of one review attempt. Nil pointer
// fields map to NULL columns. Once FinishedAt is set the row is sealed
// and never written again.
type Review struct {
	ID                  string
	SkillID             string
	StartedAt           time.Time
	FinishedAt          *time.Time
	Prompt              string
	Answer1             *string
	FollowupAsked       *string
	Answer2             *string
	KeyPropertyRevealed *string
	Rating              *scheduler.Rating
	FailureMode         *string
}

// Finished reports whether the review has been sealed.
func (r Review) Finished() bool {
	return r.FinishedAt != nil
}

// InsertReview persists a freshly started review.
func (s *Store) InsertReview(ctx context.Context, r Review) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, skill_id, started_at, prompt)
		VALUES (?, ?, ?, ?)`,
		r.ID, r.SkillID, fmtTime(r.StartedAt), r.Prompt,
	)
	if err != nil {
		return fmt.Errorf("insert review %s: %w", r.ID, err)
	}
	return nil
}

// GetReview loads one review by id. Returns ErrNotFound when absent.
func (s *Store) GetReview(ctx context.Context, id string) (Review, error) {
	var (
		r                 Review
		startedAt         string
		finishedAt        sql.NullString
		answer1, followup sql.NullString
		answer2, keyProp  sql.NullString
		rating            sql.NullInt64
		failureMode       sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, skill_id, started_at, finished_at, prompt, answer1,
		       followup_asked, answer2, key_property_revealed, rating, failure_mode
		FROM reviews WHERE id = ?`, id).
		Scan(&r.ID, &r.SkillID, &startedAt, &finishedAt, &r.Prompt, &answer1,
			&followup, &answer2, &keyProp, &rating, &failureMode)
	if errors.Is(err, sql.ErrNoRows) {
		return Review{}, ErrNotFound
	}
	if err != nil {
		return Review{}, fmt.Errorf("get review %s: %w", id, err)
	}

	if r.StartedAt, err = parseTime(startedAt); err != nil {
		return Review{}, err
	}
	if finishedAt.Valid {
		t, err := parseTime(finishedAt.String)
		if err != nil {
			return Review{}, err
		}
		r.FinishedAt = &t
	}
	r.Answer1 = nullStr(answer1)
	r.FollowupAsked = nullStr(followup)
	r.Answer2 = nullStr(answer2)
	r.KeyPropertyRevealed = nullStr(keyProp)
	r.FailureMode = nullStr(failureMode)
	if rating.Valid {
		rt := scheduler.Rating(rating.Int64)
		r.Rating = &rt
	}
	return r, nil
}

// RecordAnswer writes the learner's first answer and the chosen
// follow-up onto an unfinished review. followup and failureMode may be
// nil when the skill had no applicable follow-up.
func (s *Store) RecordAnswer(ctx context.Context, id, answer1 string, followup, failureMode *string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reviews SET answer1 = ?, followup_asked = ?, failure_mode = ?
		WHERE id = ? AND finished_at IS NULL`,
		answer1, followup, failureMode, id,
	)
	if err != nil {
		return fmt.Errorf("record answer for review %s: %w", id, err)
	}
	return requireOneRow(res, id)
}

// RecordKeyReveal stores the first answer and the revealed key property
// on an unfinished review. Called at most once per review.
func (s *Store) RecordKeyReveal(ctx context.Context, id, answer1, keyProperty string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reviews SET answer1 = ?, key_property_revealed = ?
		WHERE id = ? AND finished_at IS NULL`,
		answer1, keyProperty, id,
	)
	if err != nil {
		return fmt.Errorf("record key reveal for review %s: %w", id, err)
	}
	return requireOneRow(res, id)
}

// ReviewSeal carries the terminal fields written when a review is sealed.
type ReviewSeal struct {
	FinishedAt          time.Time
	Rating              scheduler.Rating
	Answer2             *string
	KeyPropertyRevealed *string
}

// FinishReview seals the review and overwrites the skill's schedule in
// one transaction. Either both writes commit or neither does: the
// schedule update is rolled back when the review row is missing or
// already sealed, and the seal is rolled back on any schedule failure.
func (s *Store) FinishReview(ctx context.Context, id string, seal ReviewSeal, sched Schedule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin finish review: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE scheduling
		SET due_at = ?, stability = ?, difficulty = ?, lapses = ?,
		    last_rating = ?, last_reviewed_at = ?
		WHERE skill_id = ?`,
		fmtTime(sched.DueAt), sched.State.Stability, sched.State.Difficulty,
		sched.State.Lapses, int(seal.Rating), fmtTimePtr(sched.LastReviewedAt),
		sched.SkillID,
	)
	if err != nil {
		return fmt.Errorf("update schedule for %s: %w", sched.SkillID, err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE reviews
		SET finished_at = ?, rating = ?, answer2 = ?, key_property_revealed = ?
		WHERE id = ? AND finished_at IS NULL`,
		fmtTime(seal.FinishedAt), int(seal.Rating), seal.Answer2,
		seal.KeyPropertyRevealed, id,
	)
	if err != nil {
		return fmt.Errorf("seal review %s: %w", id, err)
	}
	if err := requireOneRow(res, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit finish review: %w", err)
	}
	return nil
}

// ListReviews returns the most recent reviews, newest first, capped at
// limit (0 means no cap).
func (s *Store) ListReviews(ctx context.Context, limit int) ([]Review, error) {
	query := `
		SELECT id FROM reviews ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan review id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Review, 0, len(ids))
	for _, id := range ids {
		r, err := s.GetReview(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ResetLearnerData wipes review history and restores every schedule row
// to the seed-time default, leaving the skill catalog intact.
func (s *Store) ResetLearnerData(ctx context.Context, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		`DELETE FROM reviews`,
		`DELETE FROM llm_requests`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}

	def := scheduler.DefaultState()
	_, err = tx.ExecContext(ctx, `
		UPDATE scheduling
		SET due_at = ?, stability = ?, difficulty = ?, lapses = 0,
		    last_rating = NULL, last_reviewed_at = NULL`,
		fmtTime(now), def.Stability, def.Difficulty,
	)
	if err != nil {
		return fmt.Errorf("reset schedules: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// requireOneRow maps a zero-row UPDATE to ErrNotFound. Sealed reviews
// are excluded by the WHERE clause, so they surface the same way as
// missing ones.
func requireOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for review %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
