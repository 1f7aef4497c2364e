package main

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTestFile writes content to name inside a fresh temp dir.
func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

const sampleInput = `{
  "profiles": [
    {
      "id": "alex",
      "name": "Alex",
      "profile": {
        "interests": ["robotics"],
        "goals": ["build_skills"],
        "past_activities": "I led the debate team to states. I also enjoy reading.",
        "past_achievements": "I won first place at a coding hackathon."
      }
    },
    {
      "id": "blair",
      "name": "Blair",
      "profile": {
        "interests": ["art"],
        "goals_free_text": "I want to build a portfolio.",
        "past_activities": "I built a website for my school. I painted a mural."
      }
    }
  ],
  "config": {"run_injection": true, "run_removal": false, "run_rephrasing": true}
}`
