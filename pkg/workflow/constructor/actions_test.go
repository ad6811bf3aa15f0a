package constructor

import (
	"testing"

	"ai-coursebuilder-be/pkg/workflow/state"
)

func TestDecideRuleTable(t *testing.T) {
	completeInfo := state.CourseInfo{Title: "Go Basics", Description: "An introduction to Go.", Difficulty: "beginner"}

	tests := []struct {
		name       string
		mutate     func(st *state.ConstructorState)
		wantAction Action
		wantPhase  state.ConstructorPhase
	}{
		{
			name:       "welcome always collects info",
			mutate:     func(st *state.ConstructorState) {},
			wantAction: ActionCollectInfo,
			wantPhase:  state.PhaseInfoGathering,
		},
		{
			name: "info gathering keeps collecting while incomplete",
			mutate: func(st *state.ConstructorState) {
				st.Phase = state.PhaseInfoGathering
				st.Info = state.CourseInfo{Title: "Go Basics"}
			},
			wantAction: ActionCollectInfo,
			wantPhase:  state.PhaseInfoGathering,
		},
		{
			name: "info gathering moves to upload once complete",
			mutate: func(st *state.ConstructorState) {
				st.Phase = state.PhaseInfoGathering
				st.Info = completeInfo
			},
			wantAction: ActionRequestFiles,
			wantPhase:  state.PhaseUpload,
		},
		{
			name: "upload with pending files starts ingestion",
			mutate: func(st *state.ConstructorState) {
				st.Phase = state.PhaseUpload
				st.Files = []state.UploadedFile{{ID: "f1", Status: state.FilePending}}
			},
			wantAction: ActionProcessFiles,
			wantPhase:  state.PhaseIngestion,
		},
		{
			name: "upload without files keeps asking",
			mutate: func(st *state.ConstructorState) {
				st.Phase = state.PhaseUpload
			},
			wantAction: ActionRequestFiles,
			wantPhase:  state.PhaseUpload,
		},
		{
			name: "ingestion reprocesses newly uploaded files",
			mutate: func(st *state.ConstructorState) {
				st.Phase = state.PhaseIngestion
				st.Files = []state.UploadedFile{
					{ID: "f1", Status: state.FileCompleted},
					{ID: "f2", Status: state.FilePending},
				}
			},
			wantAction: ActionProcessFiles,
			wantPhase:  state.PhaseIngestion,
		},
		{
			name: "ingestion with no content goes back to upload",
			mutate: func(st *state.ConstructorState) {
				st.Phase = state.PhaseIngestion
				st.Files = []state.UploadedFile{{ID: "f1", Status: state.FileError}}
			},
			wantAction: ActionRequestFiles,
			wantPhase:  state.PhaseUpload,
		},
		{
			name: "ingestion with chunks moves to structuring",
			mutate: func(st *state.ConstructorState) {
				st.Phase = state.PhaseIngestion
				st.Files = []state.UploadedFile{{ID: "f1", Status: state.FileCompleted}}
				st.Chunks = []state.ContentChunk{{ID: "c1", Text: "content"}}
			},
			wantAction: ActionAnalyzeStructure,
			wantPhase:  state.PhaseStructuring,
		},
		{
			name: "structuring retries until topics exist",
			mutate: func(st *state.ConstructorState) {
				st.Phase = state.PhaseStructuring
			},
			wantAction: ActionAnalyzeStructure,
			wantPhase:  state.PhaseStructuring,
		},
		{
			name: "structuring with topics starts quiz generation",
			mutate: func(st *state.ConstructorState) {
				st.Phase = state.PhaseStructuring
				st.Structure = &state.CourseStructure{Topics: []state.Topic{{ID: "t1", Title: "Slices"}}}
			},
			wantAction: ActionGenerateQuizzes,
			wantPhase:  state.PhaseQuizGen,
		},
		{
			name: "quiz gen with questions moves to validation",
			mutate: func(st *state.ConstructorState) {
				st.Phase = state.PhaseQuizGen
				st.Questions = []state.QuizQuestion{{ID: "q1"}}
			},
			wantAction: ActionValidateCourse,
			wantPhase:  state.PhaseValidation,
		},
		{
			name: "validation pass finalizes",
			mutate: func(st *state.ConstructorState) {
				st.Phase = state.PhaseValidation
				st.Validation = &state.ValidationResult{Passed: true, ReadinessScore: 0.9}
			},
			wantAction: ActionFinalize,
			wantPhase:  state.PhaseFinalization,
		},
		{
			// A failed run must re-dispatch validation, otherwise the
			// session could never pick up fixes and reach finalization.
			name: "validation failure re-validates",
			mutate: func(st *state.ConstructorState) {
				st.Phase = state.PhaseValidation
				st.Validation = &state.ValidationResult{Passed: false, ReadinessScore: 0.4}
			},
			wantAction: ActionValidateCourse,
			wantPhase:  state.PhaseValidation,
		},
		{
			name: "complete only responds",
			mutate: func(st *state.ConstructorState) {
				st.Phase = state.PhaseComplete
			},
			wantAction: ActionRespond,
			wantPhase:  state.PhaseComplete,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := state.NewConstructorState("s1", "u1")
			tc.mutate(st)
			got := Decide(st)
			if got.Action != tc.wantAction {
				t.Errorf("action = %s, want %s", got.Action, tc.wantAction)
			}
			if got.Phase != tc.wantPhase {
				t.Errorf("phase = %s, want %s", got.Phase, tc.wantPhase)
			}
			if got.Reason == "" {
				t.Error("every decision should carry a reason")
			}
		})
	}
}
