package pipeline

import (
	"encoding/json"

	"github.com/jonathan/student-assessment/internal/llm"
	"github.com/jonathan/student-assessment/internal/schemas"
	"github.com/jonathan/student-assessment/internal/types"
)

// Stage names.
const (
	StageIntake          = "intake_analysis"
	StageSkillGaps       = "skill_gap_analysis"
	StageRecommendations = "recommendations"
	StageActionPlan      = "action_plan"
)

// StageDefinition describes one pipeline stage.
type StageDefinition struct {
	Name         string
	PromptKey    string
	Schema       string
	Tier         llm.ModelTier
	Dependencies []string
	// OutputKey is the prompt placeholder later stages use for this output.
	OutputKey string

	assign func(raw []byte, r *types.PipelineResults) error
}

// promptFile holds every stage prompt.
const promptFile = "analysis.json"

// Stages lists the pipeline stages in execution order.
var Stages = []StageDefinition{
	{
		Name:      StageIntake,
		PromptKey: "intake-analysis",
		Schema:    schemas.IntakeAnalysis,
		Tier:      llm.TierLite,
		OutputKey: "IntakeAnalysis",
		assign: func(raw []byte, r *types.PipelineResults) (err error) {
			r.IntakeAnalysis, err = Decode[types.IntakeAnalysis](StageIntake, schemas.IntakeAnalysis, raw)
			return err
		},
	},
	{
		Name:         StageSkillGaps,
		PromptKey:    "skill-gap-analysis",
		Schema:       schemas.SkillGapAnalysis,
		Tier:         llm.TierStandard,
		Dependencies: []string{StageIntake},
		OutputKey:    "SkillGaps",
		assign: func(raw []byte, r *types.PipelineResults) (err error) {
			r.SkillGapAnalysis, err = Decode[types.SkillGapAnalysis](StageSkillGaps, schemas.SkillGapAnalysis, raw)
			return err
		},
	},
	{
		Name:         StageRecommendations,
		PromptKey:    "recommendations",
		Schema:       schemas.Recommendations,
		Tier:         llm.TierStandard,
		Dependencies: []string{StageSkillGaps},
		OutputKey:    "Recommendations",
		assign: func(raw []byte, r *types.PipelineResults) (err error) {
			r.Recommendations, err = Decode[types.RecommendationSet](StageRecommendations, schemas.Recommendations, raw)
			return err
		},
	},
	{
		Name:         StageActionPlan,
		PromptKey:    "action-plan",
		Schema:       schemas.ActionPlan,
		Tier:         llm.TierAdvanced,
		Dependencies: []string{StageSkillGaps, StageRecommendations},
		OutputKey:    "ActionPlan",
		assign: func(raw []byte, r *types.PipelineResults) (err error) {
			r.ActionPlan, err = Decode[types.ActionPlan](StageActionPlan, schemas.ActionPlan, raw)
			return err
		},
	},
}

// Decode checks raw stage output against its schema before unmarshalling it.
func Decode[T any](stage, schema string, raw []byte) (*T, error) {
	if err := schemas.Validate(schema, raw); err != nil {
		return nil, &ContractError{Stage: stage, Schema: schema, Cause: err}
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &ContractError{Stage: stage, Schema: schema, Cause: err}
	}
	return &v, nil
}

func missingDependencies(def StageDefinition, done map[string]bool) []string {
	var missing []string
	for _, dep := range def.Dependencies {
		if !done[dep] {
			missing = append(missing, dep)
		}
	}
	return missing
}
