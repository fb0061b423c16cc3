// Package promptgen produces varied review prompts for a skill so the
// learner does not memorize one fixed phrasing. Variants come from an
// LLM when one is configured; otherwise, and whenever generation
// fails, a deterministic static variant is used. Prompt generation
// never blocks a review from starting.
package promptgen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/bonk/internal/llm"
	"github.com/abhisek/bonk/internal/skills"
)

// maxVariantLen rejects runaway LLM output; the static fallback is
// used instead.
const maxVariantLen = 600

// Config holds generation limits.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the standard limits for prompt variants.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   512,
		Temperature: 0.7,
	}
}

// Generator produces prompt variants. It satisfies the review
// coordinator's PromptSource.
type Generator struct {
	provider llm.Provider
	config   Config
}

// New creates a Generator. provider may be nil, in which case every
// variant is static.
func New(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, config: cfg}
}

// variantOutput is the raw LLM response before validation.
type variantOutput struct {
	Prompt string `json:"prompt"`
}

// Prompt returns a review prompt for the skill. It falls back to the
// deterministic static variant on any generation failure, so the
// returned error is always nil today; the signature leaves room for
// callers that want to distinguish fallback from failure later.
func (g *Generator) Prompt(ctx context.Context, skill skills.Skill) (string, error) {
	if g.provider == nil || len(skill.Generator.Families) == 0 {
		return Static(skill), nil
	}

	ctx = llm.WithPurpose(ctx, "prompt-variant")

	req := llm.Request{
		System:      systemPrompt,
		Prompt:      buildUserMessage(skill),
		Schema:      VariantSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return Static(skill), nil
	}

	var raw variantOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return Static(skill), nil
	}
	if raw.Prompt == "" || len(raw.Prompt) > maxVariantLen {
		return Static(skill), nil
	}

	return raw.Prompt, nil
}

// VariantSchema defines the JSON schema for prompt-variant responses.
var VariantSchema = &llm.Schema{
	Name:        "prompt-variant",
	Description: "A rephrased review prompt for an algorithmic pattern skill",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "The rephrased prompt shown to the learner, in plain ASCII text",
			},
		},
		"required":             []any{"prompt"},
		"additionalProperties": false,
	},
}

const systemPrompt = `You are an algorithms coach preparing a spaced-repetition review prompt.

Rules:
- Rephrase the skill's prompt into one fresh question exercising the same pattern.
- Keep the question answerable in two or three sentences of prose; no code required.
- Stay within the given problem family. Do not change what insight the question tests.
- Use plain ASCII text. No markdown, no LaTeX.
- Do not include the answer, the key property, or any hints in the question.`

// buildUserMessage constructs the user message for a variant request.
func buildUserMessage(skill skills.Skill) string {
	return fmt.Sprintf("Skill: %s\nPattern: %s\nOriginal prompt: %s\nProblem family: %s\n",
		skill.Title, skill.Pattern, skill.Description, pickFamily(skill))
}
