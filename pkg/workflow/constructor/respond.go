package constructor

import (
	"context"
	"fmt"
	"strings"

	"ai-coursebuilder-be/pkg/llm"
	"ai-coursebuilder-be/pkg/workflow/state"
)

// respond phrases the turn's reply. The LLM only rewords the
// deterministic reply; when it fails or returns nothing the
// deterministic text is used as-is.
func (c *Coordinator) respond(ctx context.Context, st *state.ConstructorState, decision Decision, update *state.ConstructorUpdate) string {
	fallback := c.defaultReply(st, decision, update)

	if c.provider == nil {
		return fallback
	}

	prompt := fmt.Sprintf(`You are a friendly course-building assistant.
Rephrase the status message below as a short conversational reply.
Keep every fact; do not invent new ones.

Status: %s`, fallback)

	reply, err := c.provider.Generate(ctx, prompt, llm.WithTemperature(0.7))
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			c.logf("[RESPOND] phrasing failed: %v", err)
		}
		return fallback
	}
	return strings.TrimSpace(reply)
}

// defaultReply builds the deterministic reply for each action,
// folding in sub-workflow reports and any errors this turn produced.
func (c *Coordinator) defaultReply(st *state.ConstructorState, decision Decision, update *state.ConstructorUpdate) string {
	var sb strings.Builder

	switch decision.Action {
	case ActionCollectInfo:
		if st.Phase == state.PhaseWelcome {
			sb.WriteString("Welcome! Let's build a course together. ")
		}
		sb.WriteString("Tell me the course title, what it covers, and the difficulty level (beginner, intermediate, or advanced).")
		missing := missingInfo(st.Info)
		if len(missing) > 0 && st.Phase != state.PhaseWelcome {
			sb.Reset()
			fmt.Fprintf(&sb, "Thanks! I still need the %s to continue.", strings.Join(missing, " and "))
		}

	case ActionRequestFiles:
		fmt.Fprintf(&sb, "Great, %q is set up. Upload your course materials (text, PDF, slides, or audio) and I'll process them.", st.Info.Title)

	case ActionProcessFiles:
		sb.WriteString(c.subReport(update, "ingestion", "I'm processing your files."))

	case ActionAnalyzeStructure:
		sb.WriteString(c.subReport(update, "structure", "I'm analyzing the material structure."))

	case ActionGenerateQuizzes:
		sb.WriteString(c.subReport(update, "quizgen", "I'm generating quiz questions."))

	case ActionValidateCourse:
		sb.WriteString(c.subReport(update, "validation", "I'm validating the course."))

	case ActionFinalize:
		if update.CourseID != "" {
			fmt.Fprintf(&sb, "Your course %q has been published. Students can now enroll.", st.Info.Title)
		} else {
			sb.WriteString("The course cannot be finalized yet.")
		}

	default:
		if st.Phase == state.PhaseComplete {
			sb.WriteString("This course is already published. Start a new session to build another one.")
		} else {
			sb.WriteString("Let me know how you'd like to continue.")
		}
	}

	if len(update.Errors) > 0 {
		sb.WriteString(" Issues this turn: ")
		sb.WriteString(strings.Join(update.Errors, "; "))
		sb.WriteString(".")
	}
	return sb.String()
}

func (c *Coordinator) subReport(update *state.ConstructorUpdate, name, fallback string) string {
	if result, ok := update.SubResults[name]; ok {
		if report, ok := result["report"].(string); ok && report != "" {
			return report
		}
	}
	return fallback
}

func missingInfo(info state.CourseInfo) []string {
	var missing []string
	if info.Title == "" {
		missing = append(missing, "title")
	}
	if info.Description == "" {
		missing = append(missing, "description")
	}
	if info.Difficulty == "" {
		missing = append(missing, "difficulty")
	}
	return missing
}
