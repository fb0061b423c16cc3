package skills

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed seed.json
var seedJSON []byte

// catalogSchema validates the embedded seed catalog at load time so a
// malformed entry fails loudly instead of seeding a half-usable skill.
var catalogSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":          map[string]any{"type": "string", "minLength": 1},
			"title":       map[string]any{"type": "string", "minLength": 1},
			"pattern":     map[string]any{"type": "string", "minLength": 1},
			"description": map[string]any{"type": "string", "minLength": 1},
			"rubric": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"mustMentionAny": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"keyProperty": map[string]any{"type": "string"},
				},
				"required":             []any{"mustMentionAny", "keyProperty"},
				"additionalProperties": false,
			},
			"followups": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"kind": map[string]any{"type": "string", "minLength": 1},
						"q":    map[string]any{"type": "string", "minLength": 1},
					},
					"required":             []any{"kind", "q"},
					"additionalProperties": false,
				},
			},
			"generator": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"families": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
				"additionalProperties": false,
			},
		},
		"required":             []any{"id", "title", "pattern", "description", "rubric", "followups"},
		"additionalProperties": false,
	},
}

var (
	loadOnce    sync.Once
	loadedSkill []Skill
	loadErr     error
)

// Catalog returns the embedded baseline skill catalog, validated and
// parsed once per process. The returned slice is shared; callers must
// not mutate it.
func Catalog() ([]Skill, error) {
	loadOnce.Do(func() {
		loadedSkill, loadErr = parseCatalog(seedJSON)
	})
	return loadedSkill, loadErr
}

// parseCatalog validates raw JSON against the catalog schema and decodes
// it into skill records.
func parseCatalog(raw []byte) ([]Skill, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse skill catalog: %w", err)
	}

	compiled, err := compileCatalogSchema()
	if err != nil {
		return nil, err
	}
	if err := compiled.Validate(parsed); err != nil {
		return nil, fmt.Errorf("skill catalog failed schema validation: %w", err)
	}

	var out []Skill
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode skill catalog: %w", err)
	}

	seen := make(map[string]bool, len(out))
	for _, s := range out {
		if seen[s.ID] {
			return nil, fmt.Errorf("skill catalog: duplicate id %q", s.ID)
		}
		seen[s.ID] = true
	}

	return out, nil
}

func compileCatalogSchema() (*jsonschema.Schema, error) {
	// The compiler wants a parsed JSON value; round-trip the Go map to
	// normalize it.
	defBytes, err := json.Marshal(catalogSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal catalog schema: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse catalog schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	const url = "schema://skill-catalog.json"
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add catalog schema resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}
	return compiled, nil
}

// Patterns returns the distinct pattern tags in the catalog, sorted.
func Patterns() ([]string, error) {
	catalog, err := Catalog()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	for _, s := range catalog {
		set[s.Pattern] = true
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}
