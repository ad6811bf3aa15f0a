// Package structure turns ingested content chunks into a unit/topic
// hierarchy with a validated prerequisite graph.
package structure

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-coursebuilder-be/pkg/llm"
	"ai-coursebuilder-be/pkg/workflow"
	"ai-coursebuilder-be/pkg/workflow/events"
	"ai-coursebuilder-be/pkg/workflow/state"

	"github.com/google/uuid"
)

const sampleLimit = 6000

// Pipeline implements the structure sub-workflow:
// analyze → detect_topics → group_into_units → identify_prerequisites →
// build_hierarchy → validate_structure → suggest_organization → finalize.
type Pipeline struct {
	provider llm.LLMProvider
	bus      *events.Bus
	logger   *log.Logger
}

var _ workflow.Subworkflow = &Pipeline{}

func NewPipeline(provider llm.LLMProvider, bus *events.Bus, logger *log.Logger) *Pipeline {
	return &Pipeline{provider: provider, bus: bus, logger: logger}
}

func (p *Pipeline) Name() string { return "structure" }

type detectedTopic struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Concepts    []string `json:"concepts"`
}

type detectedUnit struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	TopicTitles []string `json:"topic_titles"`
}

func (p *Pipeline) Invoke(ctx context.Context, st *state.ConstructorState) (*state.ConstructorUpdate, error) {
	if len(st.Chunks) == 0 {
		return nil, fmt.Errorf("structure: no content chunks to analyze")
	}

	update := &state.ConstructorUpdate{
		SubResults: map[string]map[string]any{"structure": {}},
		Progress:   0.75,
	}

	sample := p.analyze(st)
	p.emit(st.SessionID, "analyze", 0.1)

	topics, err := p.detectTopics(ctx, st, sample)
	if err != nil {
		return nil, fmt.Errorf("structure: topic detection: %w", err)
	}
	p.emit(st.SessionID, "detect_topics", 0.3)

	units := p.groupIntoUnits(ctx, topics, update)
	p.emit(st.SessionID, "group_into_units", 0.45)

	prereqs := p.identifyPrerequisites(ctx, topics, update)
	p.emit(st.SessionID, "identify_prerequisites", 0.6)

	cs := p.buildHierarchy(topics, units, prereqs)
	p.emit(st.SessionID, "build_hierarchy", 0.7)

	p.validateStructure(cs, update)
	p.emit(st.SessionID, "validate_structure", 0.8)

	p.suggestOrganization(ctx, cs)
	p.emit(st.SessionID, "suggest_organization", 0.9)

	p.finalize(cs, update)
	p.emit(st.SessionID, "finalize", 1)

	update.Structure = cs
	return update, nil
}

// analyze summarizes the ingested content into a bounded sample the
// reasoning calls can work with.
func (p *Pipeline) analyze(st *state.ConstructorState) string {
	var sb strings.Builder
	for _, chunk := range st.Chunks {
		if sb.Len() >= sampleLimit {
			break
		}
		sb.WriteString(chunk.Text)
		sb.WriteString("\n\n")
	}
	sample := sb.String()
	if len(sample) > sampleLimit {
		sample = sample[:sampleLimit]
	}
	p.logf("[ANALYZE] %d chunks, %d sample chars", len(st.Chunks), len(sample))
	return sample
}

func (p *Pipeline) detectTopics(ctx context.Context, st *state.ConstructorState, sample string) ([]detectedTopic, error) {
	prompt := fmt.Sprintf(`You are structuring a course titled %q.
Identify the distinct topics taught by the material below.
Respond with a JSON array only, each element:
{"title": "...", "description": "...", "concepts": ["..."]}

Material:
%s`, st.Info.Title, sample)

	var topics []detectedTopic
	if err := workflow.CallJSON(ctx, p.provider, prompt, &topics, llm.WithTemperature(0.2)); err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		return nil, fmt.Errorf("empty topic list")
	}
	p.logf("[TOPICS] detected %d topics", len(topics))
	return topics, nil
}

// groupIntoUnits asks the model to cluster topics; when the call fails
// the fallback is a single unit holding everything.
func (p *Pipeline) groupIntoUnits(ctx context.Context, topics []detectedTopic, update *state.ConstructorUpdate) []detectedUnit {
	titles := topicTitles(topics)
	prompt := fmt.Sprintf(`Group these course topics into coherent units.
Respond with a JSON array only, each element:
{"title": "...", "description": "...", "topic_titles": ["..."]}

Topics: %s`, strings.Join(titles, ", "))

	var units []detectedUnit
	if err := workflow.CallJSON(ctx, p.provider, prompt, &units, llm.WithTemperature(0.2)); err != nil || len(units) == 0 {
		update.Errors = append(update.Errors, "structure: unit grouping failed, using a single unit")
		p.logf("[UNITS] grouping failed (%v), falling back to one unit", err)
		return []detectedUnit{{
			Title:       "Course Content",
			Description: "All topics",
			TopicTitles: titles,
		}}
	}
	p.logf("[UNITS] grouped into %d units", len(units))
	return units
}

// identifyPrerequisites asks for a title → prerequisite-titles map;
// failure degrades to an empty map with a recorded error.
func (p *Pipeline) identifyPrerequisites(ctx context.Context, topics []detectedTopic, update *state.ConstructorUpdate) map[string][]string {
	titles := topicTitles(topics)
	prompt := fmt.Sprintf(`For each topic below, list which of the other topics must be learned first.
Respond with a JSON object only, mapping topic title to an array of prerequisite titles.
Topics without prerequisites map to an empty array.

Topics: %s`, strings.Join(titles, ", "))

	prereqs := map[string][]string{}
	if err := workflow.CallJSON(ctx, p.provider, prompt, &prereqs, llm.WithTemperature(0.1)); err != nil {
		update.Errors = append(update.Errors, "structure: prerequisite identification failed")
		p.logf("[PREREQS] identification failed: %v", err)
		return map[string][]string{}
	}
	p.logf("[PREREQS] mapped %d topics", len(prereqs))
	return prereqs
}

func (p *Pipeline) buildHierarchy(topics []detectedTopic, units []detectedUnit, prereqs map[string][]string) *state.CourseStructure {
	cs := &state.CourseStructure{Prerequisites: prereqs}

	unitByTopic := map[string]string{}
	for i, u := range units {
		unit := state.Unit{
			ID:          uuid.NewString(),
			Title:       u.Title,
			Description: u.Description,
			TopicTitles: u.TopicTitles,
			Order:       i,
		}
		cs.Units = append(cs.Units, unit)
		for _, title := range u.TopicTitles {
			unitByTopic[strings.ToLower(title)] = unit.ID
		}
	}

	for i, t := range topics {
		topic := state.Topic{
			ID:          uuid.NewString(),
			Title:       t.Title,
			Description: t.Description,
			Concepts:    t.Concepts,
			UnitID:      unitByTopic[strings.ToLower(t.Title)],
			Order:       i,
		}
		if topic.UnitID == "" && len(cs.Units) > 0 {
			topic.UnitID = cs.Units[0].ID
		}
		cs.Topics = append(cs.Topics, topic)
	}
	return cs
}

func (p *Pipeline) validateStructure(cs *state.CourseStructure, update *state.ConstructorUpdate) {
	titles := make([]string, len(cs.Topics))
	for i, t := range cs.Topics {
		titles[i] = t.Title
	}

	var errCount, warnCount int
	for _, cycle := range DetectCycles(cs.Prerequisites, titles) {
		update.Errors = append(update.Errors, "prerequisite cycle: "+strings.Join(cycle, " -> "))
		errCount++
	}
	for _, ref := range UnknownRefs(cs.Prerequisites, titles) {
		update.Warnings = append(update.Warnings, fmt.Sprintf("prerequisite %q does not match any topic", ref))
		warnCount++
	}
	for _, orphan := range Orphans(cs.Prerequisites, titles) {
		update.Warnings = append(update.Warnings, fmt.Sprintf("topic %q is not connected to the rest of the course", orphan))
		warnCount++
	}

	score := 1.0 - 0.5*float64(errCount) - 0.1*float64(warnCount)
	if score < 0 {
		score = 0
	}
	cs.QualityScore = score
	p.logf("[VALIDATE] %d errors, %d warnings, quality %.2f", errCount, warnCount, score)
}

// suggestOrganization is advisory only; failures are silent because
// the deterministic validation already produced the actionable items.
func (p *Pipeline) suggestOrganization(ctx context.Context, cs *state.CourseStructure) {
	prompt := fmt.Sprintf(`Suggest up to 3 short improvements to this course outline.
Respond with a JSON array of strings only.

Units: %d, Topics: %d, Quality: %.2f`, len(cs.Units), len(cs.Topics), cs.QualityScore)

	var suggestions []string
	if err := workflow.CallJSON(ctx, p.provider, prompt, &suggestions); err != nil {
		p.logf("[SUGGEST] skipped: %v", err)
		return
	}
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	cs.Suggestions = suggestions
}

func (p *Pipeline) finalize(cs *state.CourseStructure, update *state.ConstructorUpdate) {
	update.SubResults["structure"] = map[string]any{
		"units":         len(cs.Units),
		"topics":        len(cs.Topics),
		"quality_score": cs.QualityScore,
		"report": fmt.Sprintf("Organized the material into %d units and %d topics (structure quality %.0f%%).",
			len(cs.Units), len(cs.Topics), cs.QualityScore*100),
	}
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

func topicTitles(topics []detectedTopic) []string {
	titles := make([]string, len(topics))
	for i, t := range topics {
		titles[i] = t.Title
	}
	return titles
}
