package store

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/bonk/internal/scheduler"
)

// Stats aggregates learner history for the stats command.
type Stats struct {
	Skills           int
	DueNow           int
	ReviewsFinished  int
	ReviewsAbandoned int
	RatingCounts     map[scheduler.Rating]int
	TotalLapses      int
	MissedKeyConcept int
	Patterns         []PatternStats
}

// PatternStats is keyword-hit accuracy for one pattern. A review counts
// as answered once a first answer is recorded; it counts as a hit when
// that answer mentioned a rubric keyword (no failure mode set).
type PatternStats struct {
	Pattern  string
	Answered int
	Hits     int
}

// HitRate returns hits over answered, or 0 with nothing answered.
func (p PatternStats) HitRate() float64 {
	if p.Answered == 0 {
		return 0
	}
	return float64(p.Hits) / float64(p.Answered)
}

// Stats computes aggregate counts across the catalog and review history.
func (s *Store) Stats(ctx context.Context, now time.Time) (Stats, error) {
	st := Stats{RatingCounts: make(map[scheduler.Rating]int)}

	simple := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&st.Skills, `SELECT COUNT(*) FROM skills`, nil},
		{&st.DueNow, `SELECT COUNT(*) FROM scheduling WHERE due_at <= ?`, []any{fmtTime(now)}},
		{&st.ReviewsFinished, `SELECT COUNT(*) FROM reviews WHERE finished_at IS NOT NULL`, nil},
		{&st.ReviewsAbandoned, `SELECT COUNT(*) FROM reviews WHERE finished_at IS NULL`, nil},
		{&st.TotalLapses, `SELECT COALESCE(SUM(lapses), 0) FROM scheduling`, nil},
		{&st.MissedKeyConcept, `SELECT COUNT(*) FROM reviews WHERE failure_mode = 'missing_key_concept'`, nil},
	}
	for _, q := range simple {
		if err := s.db.QueryRowContext(ctx, q.query, q.args...).Scan(q.dest); err != nil {
			return Stats{}, fmt.Errorf("stats query: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rating, COUNT(*) FROM reviews
		WHERE rating IS NOT NULL GROUP BY rating`)
	if err != nil {
		return Stats{}, fmt.Errorf("stats rating counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return Stats{}, fmt.Errorf("scan rating count: %w", err)
		}
		st.RatingCounts[scheduler.Rating(rating)] = count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	prows, err := s.db.QueryContext(ctx, `
		SELECT sk.pattern,
		       COUNT(*),
		       SUM(CASE WHEN r.failure_mode IS NULL THEN 1 ELSE 0 END)
		FROM reviews r
		JOIN skills sk ON sk.id = r.skill_id
		WHERE r.answer1 IS NOT NULL
		GROUP BY sk.pattern
		ORDER BY sk.pattern`)
	if err != nil {
		return Stats{}, fmt.Errorf("stats pattern accuracy: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var p PatternStats
		if err := prows.Scan(&p.Pattern, &p.Answered, &p.Hits); err != nil {
			return Stats{}, fmt.Errorf("scan pattern stats: %w", err)
		}
		st.Patterns = append(st.Patterns, p)
	}
	return st, prows.Err()
}
