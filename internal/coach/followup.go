// Package coach picks the Socratic follow-up question for a learner's
// answer. Selection is deterministic: keyword coverage decides whether
// the answer hit the rubric, and a fixed kind-priority list decides
// which stored follow-up to ask.
package coach

import (
	"strings"

	"github.com/abhisek/bonk/internal/skills"
)

// FailureMissingKeyConcept tags an answer that mentioned none of the
// rubric keywords.
const FailureMissingKeyConcept = "missing_key_concept"

// missPriority is scanned when the answer missed every rubric keyword:
// redirect the framing first, then ask for the property.
var missPriority = []skills.FollowupKind{skills.KindReframe, skills.KindProperty}

// hitPriority is scanned when the answer covered the rubric: drill into
// mechanics before edge cases and the more specialized kinds.
var hitPriority = []skills.FollowupKind{
	skills.KindMechanics,
	skills.KindEdge,
	skills.KindInvariant,
	skills.KindState,
	skills.KindTransition,
}

// Pick returns the follow-up question to ask and the failure mode tag.
// Either return value may be empty: question is empty when the skill has
// no follow-ups, failureMode is empty when the answer hit the rubric.
//
// Priority order beats stored order across kinds; within a kind, stored
// order wins. When no prioritized kind is present the first stored
// follow-up is used regardless of kind (this is also the path taken by
// follow-ups with unrecognized kind tags).
func Pick(skill skills.Skill, answer string) (question, failureMode string) {
	if rubricHit(skill.Rubric, answer) {
		return pickByKind(skill.Followups, hitPriority), ""
	}
	return pickByKind(skill.Followups, missPriority), FailureMissingKeyConcept
}

// rubricHit reports whether any rubric keyword occurs in the answer,
// case-insensitively, as a substring.
func rubricHit(r skills.Rubric, answer string) bool {
	a := strings.ToLower(answer)
	for _, kw := range r.MustMentionAny {
		if kw == "" {
			continue
		}
		if strings.Contains(a, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// pickByKind returns the question of the first follow-up (stored order)
// whose kind matches the first priority kind present, falling back to
// the first stored follow-up, or "" when there are none.
func pickByKind(followups []skills.Followup, priority []skills.FollowupKind) string {
	for _, kind := range priority {
		for _, f := range followups {
			if f.Kind == kind {
				return f.Question
			}
		}
	}
	if len(followups) > 0 {
		return followups[0].Question
	}
	return ""
}
