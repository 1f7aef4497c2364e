// Package types provides type definitions for structured data used throughout the student-assessment system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// VariantType names the kind of perturbation applied to a profile.
type VariantType string

const (
	VariantOriginal  VariantType = "original"
	VariantInjection VariantType = "injection"
	VariantRemoval   VariantType = "removal"
	VariantRephrased VariantType = "rephrased"
)

// AllVariantTypes lists variant types in generation and reporting order.
var AllVariantTypes = []VariantType{VariantOriginal, VariantInjection, VariantRemoval, VariantRephrased}

// EvidenceType classifies an evidence snippet by the profile field it belongs to.
type EvidenceType string

const (
	EvidenceExperience  EvidenceType = "experience"
	EvidenceAchievement EvidenceType = "achievement"
	EvidenceGoal        EvidenceType = "goal"
)

// EvidenceItem is a unit of evidence added to or removed from a profile.
type EvidenceItem struct {
	Type          EvidenceType `json:"type"`
	Content       string       `json:"content"`
	RelatedSkills []Skill      `json:"related_skills"`
}

// ProfileVariant is a perturbed (or unmodified) copy of a student profile.
type ProfileVariant struct {
	ID              string          `json:"id"`
	ProfileID       string          `json:"profile_id"`
	ProfileName     string          `json:"profile_name"`
	VariantType     VariantType     `json:"variant_type"`
	Profile         *StudentProfile `json:"profile"`
	Description     string          `json:"description"`
	AddedEvidence   []EvidenceItem  `json:"added_evidence,omitempty"`
	RemovedEvidence []EvidenceItem  `json:"removed_evidence,omitempty"`
	RephrasedFields []string        `json:"rephrased_fields,omitempty"`
}

// RelatedSkills returns the union of related skills over the evidence the
// variant added or removed, in first-seen order.
func (v *ProfileVariant) RelatedSkills() []Skill {
	var items []EvidenceItem
	switch v.VariantType {
	case VariantInjection:
		items = v.AddedEvidence
	case VariantRemoval:
		items = v.RemovedEvidence
	}
	seen := make(map[Skill]bool)
	var skills []Skill
	for _, item := range items {
		for _, s := range item.RelatedSkills {
			if !seen[s] {
				seen[s] = true
				skills = append(skills, s)
			}
		}
	}
	return skills
}

// Validate checks that only the evidence field matching the variant type is populated.
func (v *ProfileVariant) Validate() error {
	if v.Profile == nil {
		return fmt.Errorf("variant %s has no profile", v.ID)
	}
	added, removed, rephrased := len(v.AddedEvidence) > 0, len(v.RemovedEvidence) > 0, len(v.RephrasedFields) > 0
	switch v.VariantType {
	case VariantOriginal:
		if added || removed || rephrased {
			return fmt.Errorf("original variant %s must not carry evidence changes", v.ID)
		}
	case VariantInjection:
		if removed || rephrased {
			return fmt.Errorf("injection variant %s may only carry added evidence", v.ID)
		}
	case VariantRemoval:
		if added || rephrased {
			return fmt.Errorf("removal variant %s may only carry removed evidence", v.ID)
		}
	case VariantRephrased:
		if added || removed {
			return fmt.Errorf("rephrased variant %s may only carry rephrased fields", v.ID)
		}
	default:
		return fmt.Errorf("unknown variant type %q", v.VariantType)
	}
	return nil
}
