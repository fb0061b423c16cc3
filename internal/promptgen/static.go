package promptgen

import (
	"hash/fnv"

	"github.com/abhisek/bonk/internal/skills"
)

// Static returns the deterministic variant for a skill: the stored
// description, angled toward one of the skill's problem families. The
// family choice is keyed on the skill id, so the same skill always
// gets the same static prompt.
func Static(skill skills.Skill) string {
	if len(skill.Generator.Families) == 0 {
		return skill.Description
	}
	return skill.Description + " Frame your answer around: " + pickFamily(skill) + "."
}

// pickFamily selects a problem family for the skill, stable per skill id.
func pickFamily(skill skills.Skill) string {
	families := skill.Generator.Families
	if len(families) == 0 {
		return ""
	}
	h := fnv.New32a()
	h.Write([]byte(skill.ID))
	return families[h.Sum32()%uint32(len(families))]
}
