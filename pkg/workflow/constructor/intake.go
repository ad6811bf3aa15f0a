package constructor

import (
	"context"
	"strings"

	"ai-coursebuilder-be/pkg/llm"
	"ai-coursebuilder-be/pkg/workflow"
	"ai-coursebuilder-be/pkg/workflow/state"
)

// courseInfoContract is the fenced-JSON shape the intake call asks
// for. Absent fields come back empty and leave existing values alone.
type courseInfoContract struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Difficulty  string   `json:"difficulty"`
	Tags        []string `json:"tags"`
}

const intakePrompt = `Extract course details from the creator's message.
Respond with a JSON object only:
{"title": "", "description": "", "difficulty": "", "tags": []}
Leave a field empty when the message does not mention it.
Difficulty must be one of: beginner, intermediate, advanced.

Message: `

// intake updates course-info fields when the incoming message carries
// them. Extraction failures are ignored; the rule table will simply
// keep asking.
func (c *Coordinator) intake(ctx context.Context, st *state.ConstructorState) *state.CourseInfo {
	if st.Phase != state.PhaseWelcome && st.Phase != state.PhaseInfoGathering {
		return nil
	}
	message := state.LastUserContent(st.Messages)
	if strings.TrimSpace(message) == "" {
		return nil
	}

	var extracted courseInfoContract
	if err := workflow.CallJSON(ctx, c.provider, intakePrompt+message, &extracted, llm.WithTemperature(0.1)); err != nil {
		c.logf("[INTAKE] extraction failed: %v", err)
		return nil
	}

	info := st.Info
	changed := false
	if v := strings.TrimSpace(extracted.Title); v != "" && info.Title == "" {
		info.Title = v
		changed = true
	}
	if v := strings.TrimSpace(extracted.Description); v != "" && info.Description == "" {
		info.Description = v
		changed = true
	}
	if v := strings.ToLower(strings.TrimSpace(extracted.Difficulty)); isDifficulty(v) && info.Difficulty == "" {
		info.Difficulty = v
		changed = true
	}
	if len(extracted.Tags) > 0 && len(info.Tags) == 0 {
		info.Tags = extracted.Tags
		changed = true
	}
	if !changed {
		return nil
	}
	c.logf("[INTAKE] course info updated: title=%q difficulty=%q", info.Title, info.Difficulty)
	return &info
}

func isDifficulty(v string) bool {
	return v == "beginner" || v == "intermediate" || v == "advanced"
}
