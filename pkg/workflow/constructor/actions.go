package constructor

import "ai-coursebuilder-be/pkg/workflow/state"

// Action is the fixed next-action vocabulary. The rule table below is
// the only place an action is chosen; the LLM merely phrases replies.
type Action string

const (
	ActionCollectInfo      Action = "collect_info"
	ActionRequestFiles     Action = "request_files"
	ActionProcessFiles     Action = "process_files"
	ActionAnalyzeStructure Action = "analyze_structure"
	ActionGenerateQuizzes  Action = "generate_quizzes"
	ActionValidateCourse   Action = "validate_course"
	ActionFinalize         Action = "finalize"
	ActionRespond          Action = "respond"
)

// pipelineFor maps dispatchable actions to the sub-workflow that
// serves them, by pipeline name.
var pipelineFor = map[Action]string{
	ActionProcessFiles:     "ingestion",
	ActionAnalyzeStructure: "structure",
	ActionGenerateQuizzes:  "quizgen",
	ActionValidateCourse:   "validation",
}

// Decision is one turn's routing outcome: the action to perform and
// the phase the session moves to while performing it.
type Decision struct {
	Action Action
	Phase  state.ConstructorPhase
	Reason string
}

// Decide is the deterministic rule table mapping session state to
// exactly one action.
func Decide(st *state.ConstructorState) Decision {
	switch st.Phase {
	case state.PhaseWelcome:
		return Decision{ActionCollectInfo, state.PhaseInfoGathering, "new session needs course information"}

	case state.PhaseInfoGathering:
		if !st.Info.Complete() {
			return Decision{ActionCollectInfo, st.Phase, "course information incomplete"}
		}
		return Decision{ActionRequestFiles, state.PhaseUpload, "course information collected, waiting for materials"}

	case state.PhaseUpload:
		if len(st.PendingFiles()) > 0 {
			return Decision{ActionProcessFiles, state.PhaseIngestion, "uploaded files are waiting to be processed"}
		}
		return Decision{ActionRequestFiles, st.Phase, "no unprocessed uploads yet"}

	case state.PhaseIngestion:
		if len(st.PendingFiles()) > 0 {
			return Decision{ActionProcessFiles, st.Phase, "more files are waiting to be processed"}
		}
		if len(st.Chunks) == 0 {
			return Decision{ActionRequestFiles, state.PhaseUpload, "ingestion produced no content, more materials needed"}
		}
		return Decision{ActionAnalyzeStructure, state.PhaseStructuring, "content ingested, ready to structure"}

	case state.PhaseStructuring:
		if st.Structure == nil || len(st.Structure.Topics) == 0 {
			return Decision{ActionAnalyzeStructure, st.Phase, "no course structure yet"}
		}
		return Decision{ActionGenerateQuizzes, state.PhaseQuizGen, "structure ready, generating quizzes"}

	case state.PhaseQuizGen:
		if len(st.Questions) == 0 {
			return Decision{ActionGenerateQuizzes, st.Phase, "no quiz questions yet"}
		}
		return Decision{ActionValidateCourse, state.PhaseValidation, "quizzes generated, validating course"}

	case state.PhaseValidation:
		if st.Validation == nil {
			return Decision{ActionValidateCourse, st.Phase, "course not validated yet"}
		}
		if st.Validation.Passed {
			return Decision{ActionFinalize, state.PhaseFinalization, "validation passed, finalizing"}
		}
		return Decision{ActionValidateCourse, st.Phase, "validation found problems, re-validating"}

	case state.PhaseFinalization:
		return Decision{ActionFinalize, st.Phase, "finalization in progress"}

	default: // complete
		return Decision{ActionRespond, st.Phase, "course construction is complete"}
	}
}
