package tutor

import (
	"context"
	"errors"
	"testing"

	"ai-coursebuilder-be/pkg/workflow/checkpoint"
	"ai-coursebuilder-be/pkg/workflow/registry"
	"ai-coursebuilder-be/pkg/workflow/state"
)

func newTestOrchestrator() *Orchestrator {
	store := checkpoint.NewMemoryStore(0)
	build := func() *Coordinator {
		return newOfflineCoordinator(&fakeCourse{structure: &state.CourseStructure{
			Topics: []state.Topic{{ID: "t1", Title: "Slices"}},
		}})
	}
	return NewOrchestrator(build, store, nil, nil)
}

func TestOrchestratorInvokeAndResume(t *testing.T) {
	orch := newTestOrchestrator()
	ctx := context.Background()
	in := TurnInput{SessionID: "s1", StudentID: "u1", CourseID: "c1"}

	st, err := orch.Invoke(ctx, in)
	if err != nil {
		t.Fatalf("first turn: %v", err)
	}
	if st.Mode != state.ModeEndTurn {
		t.Errorf("mode = %s, want %s after the welcome turn", st.Mode, state.ModeEndTurn)
	}

	in.Message = "explain slices to me"
	st, err = orch.Invoke(ctx, in)
	if err != nil {
		t.Fatalf("second turn: %v", err)
	}
	if st.Interactions != 2 {
		t.Errorf("interactions = %d, want 2 across two turns", st.Interactions)
	}

	loaded, err := orch.GetState(ctx, "s1")
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if loaded.Interactions != st.Interactions {
		t.Error("checkpoint should hold the post-turn state")
	}
}

func TestOrchestratorRejectsConcurrentTurn(t *testing.T) {
	orch := newTestOrchestrator()
	orch.sessions.GetOrCreate("s1", orch.build)

	release, err := orch.sessions.BeginTurn("s1")
	if err != nil {
		t.Fatalf("BeginTurn: %v", err)
	}
	defer release()

	_, err = orch.Invoke(context.Background(), TurnInput{SessionID: "s1"})
	if !errors.Is(err, registry.ErrTurnInProgress) {
		t.Errorf("err = %v, want ErrTurnInProgress", err)
	}
}

func TestOrchestratorGetStateUnknown(t *testing.T) {
	orch := newTestOrchestrator()
	if _, err := orch.GetState(context.Background(), "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}
