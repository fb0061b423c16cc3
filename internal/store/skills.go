package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/bonk/internal/skills"
)

// UpsertSkill writes a catalog skill, refreshing content on conflict,
// and ensures a schedule row exists (due immediately, default state).
// Existing schedule state is never touched, so re-seeding is idempotent.
func (s *Store) UpsertSkill(ctx context.Context, skill skills.Skill, now time.Time) error {
	rubric, err := json.Marshal(skill.Rubric)
	if err != nil {
		return fmt.Errorf("marshal rubric: %w", err)
	}
	followups, err := json.Marshal(skill.Followups)
	if err != nil {
		return fmt.Errorf("marshal followups: %w", err)
	}
	generator, err := json.Marshal(skill.Generator)
	if err != nil {
		return fmt.Errorf("marshal generator: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO skills (id, title, pattern, description, rubric, followups, generator, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  title = excluded.title,
		  pattern = excluded.pattern,
		  description = excluded.description,
		  rubric = excluded.rubric,
		  followups = excluded.followups,
		  generator = excluded.generator`,
		skill.ID, skill.Title, skill.Pattern, skill.Description,
		string(rubric), string(followups), string(generator), fmtTime(now),
	)
	if err != nil {
		return fmt.Errorf("upsert skill %s: %w", skill.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scheduling (skill_id, due_at)
		VALUES (?, ?)
		ON CONFLICT(skill_id) DO NOTHING`,
		skill.ID, fmtTime(now),
	)
	if err != nil {
		return fmt.Errorf("init schedule for %s: %w", skill.ID, err)
	}
	return nil
}

// GetSkill loads one skill by id. Returns ErrNotFound when absent.
func (s *Store) GetSkill(ctx context.Context, id string) (skills.Skill, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, pattern, description, rubric, followups, generator
		FROM skills WHERE id = ?`, id)

	skill, err := scanSkill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return skills.Skill{}, ErrNotFound
	}
	return skill, err
}

// ListSkills returns the catalog, optionally filtered by pattern tag,
// ordered by pattern then id.
func (s *Store) ListSkills(ctx context.Context, pattern string) ([]skills.Skill, error) {
	query := `
		SELECT id, title, pattern, description, rubric, followups, generator
		FROM skills`
	args := []any{}
	if pattern != "" {
		query += ` WHERE pattern = ?`
		args = append(args, pattern)
	}
	query += ` ORDER BY pattern, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	var out []skills.Skill
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, skill)
	}
	return out, rows.Err()
}

// CountSkills returns the number of skills in the catalog.
func (s *Store) CountSkills(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM skills`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count skills: %w", err)
	}
	return n, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSkill(r rowScanner) (skills.Skill, error) {
	var skill skills.Skill
	var rubric, followups, generator string

	if err := r.Scan(&skill.ID, &skill.Title, &skill.Pattern, &skill.Description,
		&rubric, &followups, &generator); err != nil {
		return skills.Skill{}, err
	}

	if err := decodeSkillJSON(&skill, rubric, followups, generator); err != nil {
		return skills.Skill{}, err
	}
	return skill, nil
}
