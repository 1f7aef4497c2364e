// Package types provides type definitions for structured data used throughout the student-assessment system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfile() *StudentProfile {
	return &StudentProfile{
		Interests:           []string{"robotics", "music"},
		InterestsFreeText:   "I like building robots.",
		Goals:               []string{"get_into_college"},
		GoalsFreeText:       "Study engineering.",
		TimeAvailability:    "5-10 hours",
		LearningPreferences: []string{"hands_on"},
		PastActivities:      "I led the robotics club.",
		PastAchievements:    "Won a regional award.",
		Challenges:          "Time management.",
		SelfRatedSkills:     map[string]int{"leadership": 4, "communication": 3},
	}
}

func TestStudentProfile_CloneIsDeep(t *testing.T) {
	original := sampleProfile()
	clone := original.Clone()

	clone.Interests[0] = "art"
	clone.Goals = append(clone.Goals, "career_exploration")
	clone.SelfRatedSkills["leadership"] = 1
	clone.PastActivities = "changed"

	assert.Equal(t, "robotics", original.Interests[0])
	assert.Len(t, original.Goals, 1)
	assert.Equal(t, 4, original.SelfRatedSkills["leadership"])
	assert.Equal(t, "I led the robotics club.", original.PastActivities)
}

func TestStudentProfile_CloneNil(t *testing.T) {
	var p *StudentProfile
	assert.Nil(t, p.Clone())
}

func TestStudentProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ratings map[string]int
		wantErr bool
	}{
		{"no ratings", nil, false},
		{"valid ratings", map[string]int{"leadership": 1, "creativity": 5}, false},
		{"rating too high", map[string]int{"leadership": 6}, true},
		{"rating too low", map[string]int{"leadership": 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := sampleProfile()
			p.SelfRatedSkills = tt.ratings
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStudentProfile_TextFields(t *testing.T) {
	fields := sampleProfile().TextFields()
	require.Len(t, fields, 10)
	assert.Equal(t, "robotics music", fields[0])
	assert.Equal(t, "I led the robotics club.", fields[6])
	assert.Equal(t, "communication leadership", fields[9])
}

func TestIsKnownSkill(t *testing.T) {
	assert.True(t, IsKnownSkill(SkillLeadership))
	assert.False(t, IsKnownSkill(Skill("juggling")))
}

func TestTestInput_Validate(t *testing.T) {
	in := &TestInput{}
	assert.Error(t, in.Validate(), "at least one profile is required")

	in.Profiles = []ProfileEntry{{ID: "p1", Name: "Alex", Profile: sampleProfile()}}
	assert.NoError(t, in.Validate())

	in.Profiles = append(in.Profiles, ProfileEntry{ID: "", Name: "Nameless", Profile: sampleProfile()})
	assert.Error(t, in.Validate())
}
