package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// LLMRequestData captures one LLM API call for the local request log.
type LLMRequestData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequest is a logged LLM API call as read back from the store.
type LLMRequest struct {
	ID        int64
	CreatedAt time.Time
	LLMRequestData
}

// LLMUsage aggregates token usage for one purpose or model.
type LLMUsage struct {
	Key          string // purpose or model, depending on the query
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// AppendLLMRequest records an LLM API call.
func (s *Store) AppendLLMRequest(ctx context.Context, data LLMRequestData) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO llm_requests
		  (created_at, provider, model, purpose, input_tokens, output_tokens,
		   latency_ms, success, error_message, request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fmtTime(time.Now()), data.Provider, data.Model, data.Purpose,
		data.InputTokens, data.OutputTokens, data.LatencyMs,
		boolToInt(data.Success), data.ErrorMessage,
		data.RequestBody, data.ResponseBody,
	)
	if err != nil {
		return fmt.Errorf("append llm request: %w", err)
	}
	return nil
}

// ListLLMRequests returns the most recent logged calls, newest first,
// capped at limit (0 = no cap). Bodies are omitted; use GetLLMRequest
// for the full record.
func (s *Store) ListLLMRequests(ctx context.Context, limit int) ([]LLMRequest, error) {
	q := `
		SELECT id, created_at, provider, model, purpose, input_tokens,
		       output_tokens, latency_ms, success, error_message
		FROM llm_requests ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list llm requests: %w", err)
	}
	defer rows.Close()

	var out []LLMRequest
	for rows.Next() {
		r, err := scanLLMRequest(rows, false)
		if err != nil {
			return nil, fmt.Errorf("list llm requests: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetLLMRequest returns one logged call including request and response
// bodies. Returns ErrNotFound when the id is unknown.
func (s *Store) GetLLMRequest(ctx context.Context, id int64) (LLMRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, provider, model, purpose, input_tokens,
		       output_tokens, latency_ms, success, error_message,
		       request_body, response_body
		FROM llm_requests WHERE id = ?`, id)

	r, err := scanLLMRequest(row, true)
	if err == sql.ErrNoRows {
		return LLMRequest{}, fmt.Errorf("llm request %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return LLMRequest{}, fmt.Errorf("get llm request %d: %w", id, err)
	}
	return r, nil
}

// LLMUsageByPurpose aggregates logged calls per purpose label.
func (s *Store) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	return s.llmUsage(ctx, "purpose")
}

// LLMUsageByModel aggregates logged calls per model.
func (s *Store) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return s.llmUsage(ctx, "model")
}

func (s *Store) llmUsage(ctx context.Context, column string) ([]LLMUsage, error) {
	// column is one of the fixed literals above, never user input.
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+column+`, COUNT(*), COALESCE(SUM(input_tokens), 0),
		       COALESCE(SUM(output_tokens), 0), COALESCE(AVG(latency_ms), 0)
		FROM llm_requests GROUP BY `+column+` ORDER BY `+column)
	if err != nil {
		return nil, fmt.Errorf("llm usage by %s: %w", column, err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var u LLMUsage
		var avg float64
		if err := rows.Scan(&u.Key, &u.Calls, &u.InputTokens, &u.OutputTokens, &avg); err != nil {
			return nil, fmt.Errorf("llm usage by %s: %w", column, err)
		}
		u.AvgLatencyMs = int64(avg)
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanLLMRequest(row rowScanner, withBodies bool) (LLMRequest, error) {
	var r LLMRequest
	var createdAt string
	var success int
	var errMsg sql.NullString

	dest := []any{
		&r.ID, &createdAt, &r.Provider, &r.Model, &r.Purpose,
		&r.InputTokens, &r.OutputTokens, &r.LatencyMs, &success, &errMsg,
	}
	var reqBody, respBody sql.NullString
	if withBodies {
		dest = append(dest, &reqBody, &respBody)
	}
	if err := row.Scan(dest...); err != nil {
		return LLMRequest{}, err
	}

	t, err := parseTime(createdAt)
	if err != nil {
		return LLMRequest{}, err
	}
	r.CreatedAt = t
	r.Success = success != 0
	r.ErrorMessage = errMsg.String
	r.RequestBody = reqBody.String
	r.ResponseBody = respBody.String
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
