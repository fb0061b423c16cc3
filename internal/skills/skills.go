// Package skills defines the reviewable skill catalog: the skill record,
// its grading rubric, and the coach follow-up questions, plus the
// embedded baseline catalog used to seed a fresh database.
package skills

// FollowupKind tags a follow-up question by pedagogical intent.
type FollowupKind string

const (
	KindReframe    FollowupKind = "reframe"    // redirect a wrong framing
	KindProperty   FollowupKind = "property"   // ask for the property being checked
	KindMechanics  FollowupKind = "mechanics"  // ask how the technique operates
	KindEdge       FollowupKind = "edge"       // probe an edge case
	KindInvariant  FollowupKind = "invariant"  // ask for the loop/window invariant
	KindState      FollowupKind = "state"      // ask for the DP state definition
	KindTransition FollowupKind = "transition" // ask for the DP transition
)

// knownKinds is the closed set of recognized follow-up kinds. A kind
// outside this set is kept as-is and only ever matched by the
// stored-order fallback.
var knownKinds = map[FollowupKind]bool{
	KindReframe:    true,
	KindProperty:   true,
	KindMechanics:  true,
	KindEdge:       true,
	KindInvariant:  true,
	KindState:      true,
	KindTransition: true,
}

// Known reports whether k is a recognized follow-up kind.
func (k FollowupKind) Known() bool {
	return knownKinds[k]
}

// Followup is a single coach probing question.
type Followup struct {
	Kind     FollowupKind `json:"kind"`
	Question string       `json:"q"`
}

// Rubric grades a learner's free-text answer.
type Rubric struct {
	// MustMentionAny holds lowercase keywords; an answer counts as a hit
	// when any of them occurs as a substring of the lowercased answer.
	MustMentionAny []string `json:"mustMentionAny"`

	// KeyProperty is the canonical one-sentence insight, revealed only
	// after the Socratic timeout fires during a review.
	KeyProperty string `json:"keyProperty"`
}

// Generator describes how fresh prompt variants can be produced for a
// skill. Families are short problem framings an LLM can dress the core
// pattern in.
type Generator struct {
	Families []string `json:"families"`
}

// Skill is one reviewable unit. Immutable after seeding.
type Skill struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Pattern     string     `json:"pattern"`
	Description string     `json:"description"`
	Rubric      Rubric     `json:"rubric"`
	Followups   []Followup `json:"followups"`
	Generator   Generator  `json:"generator"`
}

// PatternAliases maps CLI short names to canonical pattern tags.
var PatternAliases = map[string]string{
	"graphs":         "graphs",
	"graph":          "graphs",
	"intervals":      "intervals",
	"interval":       "intervals",
	"sliding-window": "sliding-window",
	"window":         "sliding-window",
	"sw":             "sliding-window",
	"trees":          "trees",
	"tree":           "trees",
	"binary-search":  "binary-search",
	"bs":             "binary-search",
	"dp":             "dp",
}

// ResolvePattern maps a user-supplied pattern name or alias to its
// canonical tag. Returns "" when the name is unknown.
func ResolvePattern(name string) string {
	return PatternAliases[name]
}
