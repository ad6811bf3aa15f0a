package state

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from ConstructorPhase
		to   ConstructorPhase
		want bool
	}{
		{"self transition", PhaseUpload, PhaseUpload, true},
		{"welcome to info", PhaseWelcome, PhaseInfoGathering, true},
		{"info to upload", PhaseInfoGathering, PhaseUpload, true},
		{"upload to ingestion", PhaseUpload, PhaseIngestion, true},
		{"ingestion back to upload", PhaseIngestion, PhaseUpload, true},
		{"validation back to structuring", PhaseValidation, PhaseStructuring, true},
		{"finalization to complete", PhaseFinalization, PhaseComplete, true},
		{"welcome straight to quiz_gen", PhaseWelcome, PhaseQuizGen, false},
		{"complete goes nowhere", PhaseComplete, PhaseWelcome, false},
		{"skip ingestion", PhaseUpload, PhaseStructuring, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestCanTransitionTutor(t *testing.T) {
	tests := []struct {
		name string
		from TutorMode
		to   TutorMode
		want bool
	}{
		{"welcome to intake", ModeWelcome, ModeIntake, true},
		{"intake to quiz", ModeIntake, ModeQuiz, true},
		{"quiz to grading", ModeQuiz, ModeGradeQuiz, true},
		{"grading back to quiz", ModeGradeQuiz, ModeQuiz, true},
		{"grading to summary", ModeGradeQuiz, ModeSummarize, true},
		{"end_turn re-enters intake", ModeEndTurn, ModeIntake, true},
		{"explainer cannot jump to quiz", ModeExplainer, ModeQuiz, false},
		{"summarize cannot resume quiz", ModeSummarize, ModeQuiz, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransitionTutor(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransitionTutor(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestApplyRejectsIllegalTransition(t *testing.T) {
	s := NewConstructorState("", "creator-1")
	err := s.Apply(&ConstructorUpdate{Phase: PhasePtr(PhaseQuizGen)})
	if err == nil {
		t.Fatal("expected error for welcome -> quiz_gen")
	}
	if s.Phase != PhaseWelcome {
		t.Errorf("phase mutated on failed apply: %s", s.Phase)
	}
}
