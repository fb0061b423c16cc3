package coach

import (
	"testing"

	"github.com/abhisek/bonk/internal/skills"
)

func cycleSkill() skills.Skill {
	return skills.Skill{
		ID: "graphs-directed-cycle",
		Rubric: skills.Rubric{
			MustMentionAny: []string{"cycle", "dag"},
			KeyProperty:    "Finishable iff the graph is acyclic.",
		},
		Followups: []skills.Followup{
			{Kind: skills.KindReframe, Question: "Q1"},
			{Kind: skills.KindProperty, Question: "Q2"},
			{Kind: skills.KindMechanics, Question: "Q3"},
		},
	}
}

func TestPick_MissSelectsReframe(t *testing.T) {
	q, failure := Pick(cycleSkill(), "I'd use BFS")

	if q != "Q1" {
		t.Errorf("question = %q, want Q1", q)
	}
	if failure != FailureMissingKeyConcept {
		t.Errorf("failureMode = %q, want %q", failure, FailureMissingKeyConcept)
	}
}

func TestPick_MissFallsBackToProperty(t *testing.T) {
	s := cycleSkill()
	s.Followups = []skills.Followup{
		{Kind: skills.KindMechanics, Question: "Qm"},
		{Kind: skills.KindProperty, Question: "Qp"},
	}

	q, failure := Pick(s, "no keywords here")
	if q != "Qp" {
		t.Errorf("question = %q, want Qp", q)
	}
	if failure != FailureMissingKeyConcept {
		t.Errorf("failureMode = %q, want %q", failure, FailureMissingKeyConcept)
	}
}

func TestPick_MissWithNeitherPriorityKindUsesStoredOrder(t *testing.T) {
	s := cycleSkill()
	s.Followups = []skills.Followup{
		{Kind: skills.KindEdge, Question: "Qe"},
		{Kind: skills.KindMechanics, Question: "Qm"},
	}

	q, failure := Pick(s, "nothing relevant")
	if q != "Qe" {
		t.Errorf("question = %q, want Qe", q)
	}
	if failure != FailureMissingKeyConcept {
		t.Errorf("failureMode = %q, want %q", failure, FailureMissingKeyConcept)
	}
}

func TestPick_HitSelectsPriorityKind(t *testing.T) {
	q, failure := Pick(cycleSkill(), "check for a cycle in the dag using dfs")

	// No edge/invariant/state/transition follow-up exists; mechanics wins.
	if q != "Q3" {
		t.Errorf("question = %q, want Q3", q)
	}
	if failure != "" {
		t.Errorf("failureMode = %q, want empty", failure)
	}
}

func TestPick_HitCaseInsensitive(t *testing.T) {
	q, failure := Pick(cycleSkill(), "It's a DAG check")
	if q != "Q3" || failure != "" {
		t.Errorf("got (%q, %q), want (Q3, \"\")", q, failure)
	}
}

func TestPick_HitWithNoPriorityKindFallsBackToStoredOrder(t *testing.T) {
	s := cycleSkill()
	s.Followups = []skills.Followup{
		{Kind: skills.KindReframe, Question: "Qa"},
		{Kind: skills.KindProperty, Question: "Qb"},
	}

	q, failure := Pick(s, "there is a cycle")
	if q != "Qa" {
		t.Errorf("question = %q, want Qa", q)
	}
	if failure != "" {
		t.Errorf("failureMode = %q, want empty", failure)
	}
}

func TestPick_PriorityBeatsStoredOrderAcrossKinds(t *testing.T) {
	s := cycleSkill()
	s.Followups = []skills.Followup{
		{Kind: skills.KindInvariant, Question: "Qi"},
		{Kind: skills.KindEdge, Question: "Qe"},
		{Kind: skills.KindMechanics, Question: "Qm"},
	}

	// mechanics outranks edge and invariant even though it is stored last.
	q, _ := Pick(s, "cycle")
	if q != "Qm" {
		t.Errorf("question = %q, want Qm", q)
	}
}

func TestPick_WithinKindStoredOrderWins(t *testing.T) {
	s := cycleSkill()
	s.Followups = []skills.Followup{
		{Kind: skills.KindMechanics, Question: "first"},
		{Kind: skills.KindMechanics, Question: "second"},
	}

	q, _ := Pick(s, "cycle")
	if q != "first" {
		t.Errorf("question = %q, want first", q)
	}
}

func TestPick_EmptyFollowupList(t *testing.T) {
	s := cycleSkill()
	s.Followups = nil

	q, failure := Pick(s, "no keywords")
	if q != "" || failure != FailureMissingKeyConcept {
		t.Errorf("miss: got (%q, %q), want (\"\", %q)", q, failure, FailureMissingKeyConcept)
	}

	q, failure = Pick(s, "cycle")
	if q != "" || failure != "" {
		t.Errorf("hit: got (%q, %q), want (\"\", \"\")", q, failure)
	}
}

func TestPick_UnknownKindOnlyMatchedByFallback(t *testing.T) {
	s := cycleSkill()
	s.Followups = []skills.Followup{
		{Kind: skills.FollowupKind("koan"), Question: "Qk"},
		{Kind: skills.KindMechanics, Question: "Qm"},
	}

	// Hit: mechanics outranks the unrecognized kind.
	if q, _ := Pick(s, "cycle"); q != "Qm" {
		t.Errorf("hit question = %q, want Qm", q)
	}

	// Miss with no reframe/property: stored-order fallback picks the
	// unknown-kind entry.
	if q, _ := Pick(s, "nope"); q != "Qk" {
		t.Errorf("miss question = %q, want Qk", q)
	}
}
