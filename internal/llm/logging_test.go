package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/abhisek/bonk/internal/store"
)

// captureLog records appended requests for inspection.
type captureLog struct {
	entries []store.LLMRequestData
}

func (c *captureLog) AppendLLMRequest(_ context.Context, data store.LLMRequestData) error {
	c.entries = append(c.entries, data)
	return nil
}

func TestLogging_RecordsProviderNameNotModelID(t *testing.T) {
	log := &captureLog{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"ok":true}`),
	})

	p := WithLogging(mock, log, "anthropic")
	if _, err := p.Generate(context.Background(), Request{Prompt: "hi"}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(log.entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(log.entries))
	}
	e := log.entries[0]
	if e.Provider != "anthropic" {
		t.Errorf("provider column = %q, want the configured provider name", e.Provider)
	}
	if e.Model != "mock" {
		t.Errorf("model column = %q, want the response model", e.Model)
	}
	if !e.Success {
		t.Error("expected a successful entry")
	}
}
