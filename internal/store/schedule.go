package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/bonk/internal/scheduler"
	"github.com/abhisek/bonk/internal/skills"
)

// Schedule is the persisted schedule row for one skill.
type Schedule struct {
	SkillID        string
	DueAt          time.Time
	State          scheduler.State
	LastRating     *scheduler.Rating
	LastReviewedAt *time.Time
}

// DueSkill pairs a skill with its due time for the review queue.
type DueSkill struct {
	Skill skills.Skill
	DueAt time.Time
}

// GetSchedule loads the schedule row for a skill. Every seeded skill has
// exactly one; ErrNotFound here means the skill itself is unknown.
func (s *Store) GetSchedule(ctx context.Context, skillID string) (Schedule, error) {
	var (
		sched  Schedule
		dueAt  string
		rating sql.NullInt64
		last   sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT skill_id, due_at, stability, difficulty, lapses, last_rating, last_reviewed_at
		FROM scheduling WHERE skill_id = ?`, skillID).
		Scan(&sched.SkillID, &dueAt, &sched.State.Stability, &sched.State.Difficulty,
			&sched.State.Lapses, &rating, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return Schedule{}, ErrNotFound
	}
	if err != nil {
		return Schedule{}, fmt.Errorf("get schedule for %s: %w", skillID, err)
	}

	if sched.DueAt, err = parseTime(dueAt); err != nil {
		return Schedule{}, err
	}
	if rating.Valid {
		r := scheduler.Rating(rating.Int64)
		sched.LastRating = &r
	}
	if last.Valid {
		t, err := parseTime(last.String)
		if err != nil {
			return Schedule{}, err
		}
		sched.LastReviewedAt = &t
	}
	return sched, nil
}

// ListDue returns skills whose due time is at or before now, ascending
// by due time, capped at limit (0 means no cap).
func (s *Store) ListDue(ctx context.Context, now time.Time, limit int) ([]DueSkill, error) {
	query := `
		SELECT s.id, s.title, s.pattern, s.description, s.rubric, s.followups, s.generator,
		       sch.due_at
		FROM skills s
		JOIN scheduling sch ON sch.skill_id = s.id
		WHERE sch.due_at <= ?
		ORDER BY sch.due_at ASC`
	args := []any{fmtTime(now)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list due skills: %w", err)
	}
	defer rows.Close()

	var out []DueSkill
	for rows.Next() {
		var ds DueSkill
		var rubric, followups, generator, dueAt string
		if err := rows.Scan(&ds.Skill.ID, &ds.Skill.Title, &ds.Skill.Pattern,
			&ds.Skill.Description, &rubric, &followups, &generator, &dueAt); err != nil {
			return nil, fmt.Errorf("scan due skill: %w", err)
		}
		if err := decodeSkillJSON(&ds.Skill, rubric, followups, generator); err != nil {
			return nil, err
		}
		if ds.DueAt, err = parseTime(dueAt); err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, rows.Err()
}

func decodeSkillJSON(skill *skills.Skill, rubric, followups, generator string) error {
	if err := json.Unmarshal([]byte(rubric), &skill.Rubric); err != nil {
		return fmt.Errorf("decode rubric for %s: %w", skill.ID, err)
	}
	if err := json.Unmarshal([]byte(followups), &skill.Followups); err != nil {
		return fmt.Errorf("decode followups for %s: %w", skill.ID, err)
	}
	if err := json.Unmarshal([]byte(generator), &skill.Generator); err != nil {
		return fmt.Errorf("decode generator for %s: %w", skill.ID, err)
	}
	return nil
}
