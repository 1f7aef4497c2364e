// Package rules holds the data tables that drive profile perturbation:
// evidence templates, goal-to-skill mappings, rephrasing pairs, removal
// indicators and comparator thresholds. Tables are loaded from YAML and
// compiled into an explicit RuleSet that callers pass to each component.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/student-assessment/internal/types"
)

//go:embed default_rules.yaml
var defaultRulesYAML []byte

// EvidenceTemplate is an injectable evidence snippet for one skill.
type EvidenceTemplate struct {
	Type types.EvidenceType `yaml:"type"`
	Text string             `yaml:"text"`
}

// RephraseRule substitutes every match of Pattern with one of Replacements.
type RephraseRule struct {
	Pattern      *regexp.Regexp
	Replacements []string
}

// Indicator finds the first sentence that evidences Skill.
type Indicator struct {
	Skill    types.Skill
	Sentence *regexp.Regexp
}

// SkillBucket tags an achievement sentence with Skills when Pattern matches it.
type SkillBucket struct {
	Pattern *regexp.Regexp
	Skills  []types.Skill
}

// RemovalRules drive the removal generator. Indicators are scanned in order.
type RemovalRules struct {
	Indicators          []Indicator
	AchievementSentence *regexp.Regexp
	AchievementBuckets  []SkillBucket
	DefaultSkill        types.Skill
}

// RuleSet is the compiled, immutable rule configuration.
type RuleSet struct {
	DefaultSkills     []types.Skill
	GoalSkills        map[string][]types.Skill
	EvidenceTemplates map[types.Skill][]EvidenceTemplate
	Rephrasings       []RephraseRule
	Removal           RemovalRules
	Thresholds        Thresholds
}

type fileRules struct {
	DefaultSkills     []types.Skill                      `yaml:"default_skills"`
	GoalSkills        map[string][]types.Skill           `yaml:"goal_skills"`
	EvidenceTemplates map[types.Skill][]EvidenceTemplate `yaml:"evidence_templates"`
	Rephrasings       []struct {
		Pattern      string   `yaml:"pattern"`
		Replacements []string `yaml:"replacements"`
	} `yaml:"rephrasings"`
	Removal struct {
		Indicators []struct {
			Skill    types.Skill `yaml:"skill"`
			Keywords string      `yaml:"keywords"`
		} `yaml:"indicators"`
		AchievementKeywords string `yaml:"achievement_keywords"`
		AchievementBuckets  []struct {
			Keywords string        `yaml:"keywords"`
			Skills   []types.Skill `yaml:"skills"`
		} `yaml:"achievement_buckets"`
		DefaultSkill types.Skill `yaml:"default_skill"`
	} `yaml:"removal"`
	Thresholds Thresholds `yaml:"thresholds"`
}

// Default compiles the embedded default rule file.
func Default() (*RuleSet, error) {
	return parse("", defaultRulesYAML)
}

// MustDefault compiles the embedded rules, panicking on error.
// The embedded file is covered by tests, so this only fails on a broken build.
func MustDefault() *RuleSet {
	rs, err := Default()
	if err != nil {
		panic(fmt.Sprintf("failed to load default rules: %v", err))
	}
	return rs
}

// LoadFile reads and compiles a YAML rule file.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to read file", Cause: err}
	}
	return parse(path, data)
}

// Parse compiles YAML rule content.
func Parse(data []byte) (*RuleSet, error) {
	return parse("", data)
}

func parse(path string, data []byte) (*RuleSet, error) {
	// Thresholds absent from the file keep their defaults.
	raw := fileRules{Thresholds: DefaultThresholds()}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &LoadError{Path: path, Message: "invalid YAML", Cause: err}
	}

	rs := &RuleSet{
		DefaultSkills:     raw.DefaultSkills,
		GoalSkills:        raw.GoalSkills,
		EvidenceTemplates: raw.EvidenceTemplates,
		Thresholds:        raw.Thresholds,
	}
	if err := rs.Thresholds.Validate(); err != nil {
		return nil, &LoadError{Path: path, Message: "invalid thresholds", Cause: err}
	}

	if len(rs.DefaultSkills) == 0 {
		rs.DefaultSkills = []types.Skill{types.SkillProblemSolving, types.SkillCommunication}
	}
	if err := checkSkills(rs.DefaultSkills); err != nil {
		return nil, &LoadError{Path: path, Message: "default_skills", Cause: err}
	}
	for goal, skills := range rs.GoalSkills {
		if err := checkSkills(skills); err != nil {
			return nil, &LoadError{Path: path, Message: "goal_skills." + goal, Cause: err}
		}
	}
	for skill, templates := range rs.EvidenceTemplates {
		if err := checkSkills([]types.Skill{skill}); err != nil {
			return nil, &LoadError{Path: path, Message: "evidence_templates", Cause: err}
		}
		for _, tmpl := range templates {
			switch tmpl.Type {
			case types.EvidenceExperience, types.EvidenceAchievement, types.EvidenceGoal:
			default:
				return nil, &LoadError{Path: path, Message: fmt.Sprintf("evidence template for %s has unknown type %q", skill, tmpl.Type)}
			}
		}
	}

	for i, r := range raw.Rephrasings {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, &LoadError{Path: path, Message: fmt.Sprintf("rephrasings[%d] pattern", i), Cause: err}
		}
		if len(r.Replacements) == 0 {
			return nil, &LoadError{Path: path, Message: fmt.Sprintf("rephrasings[%d] has no replacements", i)}
		}
		rs.Rephrasings = append(rs.Rephrasings, RephraseRule{Pattern: re, Replacements: r.Replacements})
	}

	for i, ind := range raw.Removal.Indicators {
		if err := checkSkills([]types.Skill{ind.Skill}); err != nil {
			return nil, &LoadError{Path: path, Message: fmt.Sprintf("removal.indicators[%d]", i), Cause: err}
		}
		re, err := SentencePattern(ind.Keywords)
		if err != nil {
			return nil, &LoadError{Path: path, Message: fmt.Sprintf("removal.indicators[%d] keywords", i), Cause: err}
		}
		rs.Removal.Indicators = append(rs.Removal.Indicators, Indicator{Skill: ind.Skill, Sentence: re})
	}
	if raw.Removal.AchievementKeywords != "" {
		re, err := SentencePattern(raw.Removal.AchievementKeywords)
		if err != nil {
			return nil, &LoadError{Path: path, Message: "removal.achievement_keywords", Cause: err}
		}
		rs.Removal.AchievementSentence = re
	}
	for i, b := range raw.Removal.AchievementBuckets {
		re, err := regexp.Compile("(?i)" + b.Keywords)
		if err != nil {
			return nil, &LoadError{Path: path, Message: fmt.Sprintf("removal.achievement_buckets[%d] keywords", i), Cause: err}
		}
		if err := checkSkills(b.Skills); err != nil {
			return nil, &LoadError{Path: path, Message: fmt.Sprintf("removal.achievement_buckets[%d]", i), Cause: err}
		}
		rs.Removal.AchievementBuckets = append(rs.Removal.AchievementBuckets, SkillBucket{Pattern: re, Skills: b.Skills})
	}
	rs.Removal.DefaultSkill = raw.Removal.DefaultSkill
	if rs.Removal.DefaultSkill == "" {
		rs.Removal.DefaultSkill = types.SkillProblemSolving
	}
	if err := checkSkills([]types.Skill{rs.Removal.DefaultSkill}); err != nil {
		return nil, &LoadError{Path: path, Message: "removal.default_skill", Cause: err}
	}

	return rs, nil
}

// SentencePattern builds a case-insensitive regex matching one whole sentence,
// bounded by sentence punctuation, that contains a keyword match.
func SentencePattern(keywords string) (*regexp.Regexp, error) {
	if _, err := regexp.Compile(keywords); err != nil {
		return nil, err
	}
	return regexp.Compile(`(?i)[^.!?]*(?:` + keywords + `)[^.!?]*[.!?]?`)
}

// SkillsForGoals maps selected goals to relevant skills, deduplicated in goal
// order. Falls back to DefaultSkills when no goal maps to anything.
func (rs *RuleSet) SkillsForGoals(goals []string) []types.Skill {
	seen := make(map[types.Skill]bool)
	var skills []types.Skill
	for _, goal := range goals {
		for _, s := range rs.GoalSkills[goal] {
			if !seen[s] {
				seen[s] = true
				skills = append(skills, s)
			}
		}
	}
	if len(skills) == 0 {
		return append([]types.Skill(nil), rs.DefaultSkills...)
	}
	return skills
}

// WithThresholds returns a shallow copy of the rule set using t.
func (rs *RuleSet) WithThresholds(t Thresholds) *RuleSet {
	c := *rs
	c.Thresholds = t
	return &c
}

func checkSkills(skills []types.Skill) error {
	for _, s := range skills {
		if !types.IsKnownSkill(s) {
			return fmt.Errorf("unknown skill %q", s)
		}
	}
	return nil
}
