// Package types provides type definitions for structured data used throughout the student-assessment system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"maps"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Skill identifies one of the six fixed competencies assessed by the pipeline.
type Skill string

const (
	SkillProblemSolving Skill = "problem_solving"
	SkillCommunication  Skill = "communication"
	SkillTechnical      Skill = "technical_skills"
	SkillCreativity     Skill = "creativity"
	SkillLeadership     Skill = "leadership"
	SkillSelfManagement Skill = "self_management"
)

// AllSkills lists the fixed skills in reporting order.
var AllSkills = []Skill{
	SkillProblemSolving,
	SkillCommunication,
	SkillTechnical,
	SkillCreativity,
	SkillLeadership,
	SkillSelfManagement,
}

// IsKnownSkill reports whether s is one of the six fixed skills.
func IsKnownSkill(s Skill) bool {
	return slices.Contains(AllSkills, s)
}

// StudentProfile is the self-assessment input submitted by a student.
// It is treated as immutable: generators work on a Clone.
type StudentProfile struct {
	Interests           []string       `json:"interests,omitempty"`
	InterestsFreeText   string         `json:"interests_free_text,omitempty"`
	Goals               []string       `json:"goals,omitempty"`
	GoalsFreeText       string         `json:"goals_free_text,omitempty"`
	TimeAvailability    string         `json:"time_availability,omitempty"`
	LearningPreferences []string       `json:"learning_preferences,omitempty"`
	PastActivities      string         `json:"past_activities,omitempty"`
	PastAchievements    string         `json:"past_achievements,omitempty"`
	Challenges          string         `json:"challenges,omitempty"`
	SelfRatedSkills     map[string]int `json:"self_rated_skills,omitempty" validate:"omitempty,dive,keys,required,endkeys,min=1,max=5"`
}

// Clone returns a deep copy of the profile.
func (p *StudentProfile) Clone() *StudentProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.Interests = slices.Clone(p.Interests)
	c.Goals = slices.Clone(p.Goals)
	c.LearningPreferences = slices.Clone(p.LearningPreferences)
	c.SelfRatedSkills = maps.Clone(p.SelfRatedSkills)
	return &c
}

// Validate validates the StudentProfile using the validator.
func (p *StudentProfile) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}

// TextFields returns every free-text and categorical value of the profile,
// in a stable order. Self ratings contribute their skill names.
func (p *StudentProfile) TextFields() []string {
	if p == nil {
		return nil
	}
	fields := []string{
		strings.Join(p.Interests, " "),
		p.InterestsFreeText,
		strings.Join(p.Goals, " "),
		p.GoalsFreeText,
		p.TimeAvailability,
		strings.Join(p.LearningPreferences, " "),
		p.PastActivities,
		p.PastAchievements,
		p.Challenges,
	}
	keys := slices.Sorted(maps.Keys(p.SelfRatedSkills))
	fields = append(fields, strings.Join(keys, " "))
	return fields
}

// ProfileEntry is a named profile selectable for a perturbation batch.
type ProfileEntry struct {
	ID      string          `json:"id" validate:"required"`
	Name    string          `json:"name" validate:"required"`
	Profile *StudentProfile `json:"profile" validate:"required"`
}
