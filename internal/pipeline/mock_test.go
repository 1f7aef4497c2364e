package pipeline

import (
	"context"
	"strings"
	"sync"

	"github.com/jonathan/student-assessment/internal/llm"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	GenerateJSONFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)

	mu      sync.Mutex
	prompts []string
}

func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return m.GenerateJSON(ctx, prompt, tier)
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return stageResponses[stageOf(prompt)], nil
}

func (m *MockLLMClient) GetModel(tier llm.ModelTier) string {
	return "mock-" + string(tier)
}

func (m *MockLLMClient) Close() error {
	return nil
}

func (m *MockLLMClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// stageOf identifies the stage from a marker unique to each prompt template.
func stageOf(prompt string) string {
	switch {
	case strings.Contains(prompt, `"estimated_hours": number`):
		return StageActionPlan
	case strings.Contains(prompt, `"category": "course|project|competition"`):
		return StageRecommendations
	case strings.Contains(prompt, `"priority": "high|medium|low"`):
		return StageSkillGaps
	case strings.Contains(prompt, `"confidence": number`):
		return StageIntake
	}
	return ""
}

var stageResponses = map[string]string{
	StageIntake: `{"skill_signals": {
		"technical_skills": {"evidence_found": true, "evidence_phrases": ["built a robot"], "evidence_sources": ["past_activities"], "confidence": 0.8, "reasoning": "robot"},
		"leadership": {"evidence_found": false, "evidence_phrases": [], "evidence_sources": [], "confidence": 0.1, "reasoning": "none"}
	}, "summary": "Hands-on builder"}`,
	StageSkillGaps:       `{"gaps": [{"name": "Public speaking", "skill": "communication", "priority": "high"}], "strengths": ["building"]}`,
	StageRecommendations: `{"recommendations": [{"id": "r1", "title": "Intro to Python", "category": "course", "reasoning": "Based on the student's robot.", "skill_alignment": ["technical_skills"], "priority": 1}]}`,
	StageActionPlan:      "```json\n" + `{"goal": "Ship a project", "tasks": [{"week": 1, "title": "Start course", "related_skill": "technical_skills", "evidence_source": "Intro to Python", "estimated_hours": 3}]}` + "\n```",
}
