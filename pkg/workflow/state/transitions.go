package state

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is returned when a step tries to move a
// workflow to a phase not reachable from its current phase.
var ErrIllegalTransition = errors.New("illegal phase transition")

// constructorTransitions declares, per phase, the phases a single step
// may move to. Staying in the current phase is always legal.
var constructorTransitions = map[ConstructorPhase][]ConstructorPhase{
	PhaseWelcome:       {PhaseInfoGathering},
	PhaseInfoGathering: {PhaseUpload},
	PhaseUpload:        {PhaseIngestion},
	PhaseIngestion:     {PhaseStructuring, PhaseUpload},
	PhaseStructuring:   {PhaseQuizGen},
	PhaseQuizGen:       {PhaseValidation},
	PhaseValidation:    {PhaseFinalization, PhaseStructuring, PhaseQuizGen},
	PhaseFinalization:  {PhaseComplete},
	PhaseComplete:      {},
}

// CanTransition reports whether one construction step may move the
// session from one phase to another.
func CanTransition(from, to ConstructorPhase) bool {
	if from == to {
		return true
	}
	for _, p := range constructorTransitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to ConstructorPhase) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}

// tutorTransitions declares the mode graph for tutoring sessions. A
// turn always drains into end_turn; the next turn re-enters at intake.
var tutorTransitions = map[TutorMode][]TutorMode{
	ModeWelcome:     {ModeIntake, ModeEndTurn},
	ModeIntake:      {ModeExplainer, ModeGapAnalysis, ModeQuiz, ModeSummarize, ModeEndTurn},
	ModeExplainer:   {ModeEndTurn},
	ModeGapAnalysis: {ModeEndTurn},
	ModeQuiz:        {ModeGradeQuiz, ModeEndTurn},
	ModeGradeQuiz:   {ModeQuiz, ModeSummarize, ModeEndTurn},
	ModeSummarize:   {ModeEndTurn},
	ModeEndTurn:     {ModeIntake},
}

// CanTransitionTutor reports whether a tutoring step may move between
// the two modes.
func CanTransitionTutor(from, to TutorMode) bool {
	if from == to {
		return true
	}
	for _, m := range tutorTransitions[from] {
		if m == to {
			return true
		}
	}
	return false
}

func checkTutorTransition(from, to TutorMode) error {
	if !CanTransitionTutor(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}
