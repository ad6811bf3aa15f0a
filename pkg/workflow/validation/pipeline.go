// Package validation scores course readiness across content,
// structure, and quiz dimensions. Every dimension consults the
// reasoning service first and falls back to a deterministic rule when
// the call fails; validation itself is never skipped.
package validation

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-coursebuilder-be/pkg/llm"
	"ai-coursebuilder-be/pkg/workflow"
	"ai-coursebuilder-be/pkg/workflow/events"
	"ai-coursebuilder-be/pkg/workflow/state"
)

// DefaultThreshold is the readiness score a course must reach, with
// zero unresolved errors, before it can be finalized.
const DefaultThreshold = 0.8

// Pipeline implements the validation sub-workflow: validate_content →
// validate_structure → validate_quiz → calculate_readiness →
// generate_report.
type Pipeline struct {
	provider  llm.LLMProvider
	bus       *events.Bus
	logger    *log.Logger
	threshold float64
}

var _ workflow.Subworkflow = &Pipeline{}

func NewPipeline(provider llm.LLMProvider, bus *events.Bus, logger *log.Logger, threshold float64) *Pipeline {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Pipeline{provider: provider, bus: bus, logger: logger, threshold: threshold}
}

func (p *Pipeline) Name() string { return "validation" }

func (p *Pipeline) Invoke(ctx context.Context, st *state.ConstructorState) (*state.ConstructorUpdate, error) {
	if st.Structure == nil || len(st.Structure.Topics) == 0 {
		return nil, fmt.Errorf("validation: no course structure to validate")
	}

	update := &state.ConstructorUpdate{
		SubResults: map[string]map[string]any{"validation": {}},
		Progress:   0.95,
	}

	content := p.stage(ctx, st, "content", contentFallback)
	p.emit(st.SessionID, "validate_content", 0.2)

	structural := p.stage(ctx, st, "structure", structureFallback)
	p.emit(st.SessionID, "validate_structure", 0.4)

	quiz := p.stage(ctx, st, "quiz", quizFallback)
	p.emit(st.SessionID, "validate_quiz", 0.6)

	result := p.calculateReadiness(st, map[string]stageIssues{
		"content":   content,
		"structure": structural,
		"quiz":      quiz,
	})
	p.emit(st.SessionID, "calculate_readiness", 0.8)

	result.Report = p.generateReport(st, result)
	p.emit(st.SessionID, "generate_report", 1)

	update.Validation = result
	update.SubResults["validation"] = map[string]any{
		"passed":          result.Passed,
		"readiness_score": result.ReadinessScore,
		"errors":          len(result.Errors),
		"warnings":        len(result.Warnings),
		"report":          result.Report,
	}
	return update, nil
}

// stage runs one validation dimension: reasoning call first, the
// deterministic fallback when the call cannot produce its contract.
func (p *Pipeline) stage(ctx context.Context, st *state.ConstructorState, dimension string, fallback func(*state.ConstructorState) stageIssues) stageIssues {
	prompt := p.stagePrompt(st, dimension)

	var issues stageIssues
	if err := workflow.CallJSON(ctx, p.provider, prompt, &issues, llm.WithTemperature(0.1)); err != nil {
		p.logf("[%s] reasoning call failed (%v), running deterministic fallback", strings.ToUpper(dimension), err)
		return fallback(st)
	}
	return issues
}

func (p *Pipeline) stagePrompt(st *state.ConstructorState, dimension string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are validating the %s quality of a course draft.\n", dimension)
	fmt.Fprintf(&sb, "Course: %s (%d units, %d topics, %d chunks, %d questions)\n",
		st.Info.Title, len(st.Structure.Units), len(st.Structure.Topics), len(st.Chunks), len(st.Questions))
	sb.WriteString("Topics:\n")
	for _, t := range st.Structure.Topics {
		fmt.Fprintf(&sb, "- %s: %s\n", t.Title, t.Description)
	}
	sb.WriteString(`Respond with a JSON object only:
{"errors": ["blocking problems"], "warnings": ["minor problems"]}`)
	return sb.String()
}

// calculateReadiness combines per-dimension issues into a [0,1] score:
// start at 1.0, subtract 0.1 per error capped at 0.5 and 0.05 per
// warning capped at 0.3, add small coverage bonuses, clamp. Passing
// requires both the threshold and zero errors.
func (p *Pipeline) calculateReadiness(st *state.ConstructorState, dimensions map[string]stageIssues) *state.ValidationResult {
	result := &state.ValidationResult{
		Dimensions: make(map[string]state.DimensionResult, len(dimensions)),
	}
	for name, issues := range dimensions {
		status := "pass"
		if len(issues.Warnings) > 0 {
			status = "warn"
		}
		if len(issues.Errors) > 0 {
			status = "fail"
		}
		result.Dimensions[name] = state.DimensionResult{
			Status:   status,
			Errors:   issues.Errors,
			Warnings: issues.Warnings,
		}
		result.Errors = append(result.Errors, issues.Errors...)
		result.Warnings = append(result.Warnings, issues.Warnings...)
	}

	errPenalty := 0.1 * float64(len(result.Errors))
	if errPenalty > 0.5 {
		errPenalty = 0.5
	}
	warnPenalty := 0.05 * float64(len(result.Warnings))
	if warnPenalty > 0.3 {
		warnPenalty = 0.3
	}

	score := 1.0 - errPenalty - warnPenalty
	if p.fullQuizCoverage(st) {
		score += 0.05
	}
	if p.fullContentCoverage(st) {
		score += 0.05
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	result.ReadinessScore = score
	result.Passed = score >= p.threshold && len(result.Errors) == 0
	p.logf("[READINESS] score %.2f, errors %d, warnings %d, passed %v",
		score, len(result.Errors), len(result.Warnings), result.Passed)
	return result
}

func (p *Pipeline) fullQuizCoverage(st *state.ConstructorState) bool {
	counts := make(map[string]int)
	for _, q := range st.Questions {
		counts[q.TopicID]++
	}
	for _, t := range st.Structure.Topics {
		if counts[t.ID] < 3 {
			return false
		}
	}
	return true
}

func (p *Pipeline) fullContentCoverage(st *state.ConstructorState) bool {
	for _, t := range st.Structure.Topics {
		if !topicCovered(t, st.Chunks) {
			return false
		}
	}
	return true
}

func (p *Pipeline) generateReport(st *state.ConstructorState, result *state.ValidationResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Readiness check for %q: %.0f%%.\n", st.Info.Title, result.ReadinessScore*100)
	for _, name := range []string{"content", "structure", "quiz"} {
		dim, ok := result.Dimensions[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "- %s: %s (%d errors, %d warnings)\n",
			name, dim.Status, len(dim.Errors), len(dim.Warnings))
	}
	if result.Passed {
		sb.WriteString("The course is ready to finalize.")
	} else if len(result.Errors) > 0 {
		sb.WriteString("Blocking problems must be fixed before the course can be finalized.")
	} else {
		sb.WriteString("The course needs more work before it reaches the readiness threshold.")
	}
	return sb.String()
}

func (p *Pipeline) emit(sessionID, step string, fraction float64) {
	if p.bus == nil {
		return
	}
	_ = p.bus.Publish(events.StepEvent{
		SessionID: sessionID,
		Workflow:  p.Name(),
		Step:      step,
		Progress:  fraction,
	})
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}
