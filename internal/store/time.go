package store

import (
	"fmt"
	"time"
)

// Timestamps are stored as RFC 3339 UTC strings. The fixed-width "Z"
// form makes SQL string comparison agree with chronological order,
// which the due-listing query relies on.
func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := fmtTime(*t)
	return &s
}
