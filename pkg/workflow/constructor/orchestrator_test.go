package constructor

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-coursebuilder-be/pkg/workflow/checkpoint"
	"ai-coursebuilder-be/pkg/workflow/events"
	"ai-coursebuilder-be/pkg/workflow/registry"
	"ai-coursebuilder-be/pkg/workflow/state"
)

func newTestOrchestrator(bus *events.Bus) (*Orchestrator, checkpoint.Store) {
	store := checkpoint.NewMemoryStore(0)
	build := func() *Coordinator {
		return NewCoordinator(offlineProvider{}, nil, bus, nil)
	}
	return NewOrchestrator(build, store, bus, nil), store
}

func TestInvokeCreatesSessionAndCheckpoints(t *testing.T) {
	orch, _ := newTestOrchestrator(nil)

	st, err := orch.Invoke(context.Background(), TurnInput{SessionID: "s1", CreatorID: "u1", Message: "hi"})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if st.Phase != state.PhaseInfoGathering {
		t.Errorf("phase = %s, want %s", st.Phase, state.PhaseInfoGathering)
	}

	loaded, err := orch.GetState(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if loaded.Phase != st.Phase || len(loaded.Messages) != len(st.Messages) {
		t.Error("checkpoint should hold the post-turn state")
	}
}

func TestInvokeResumesFromCheckpoint(t *testing.T) {
	orch, _ := newTestOrchestrator(nil)
	ctx := context.Background()

	if _, err := orch.Invoke(ctx, TurnInput{SessionID: "s1", CreatorID: "u1", Message: "first"}); err != nil {
		t.Fatalf("first turn: %v", err)
	}
	st, err := orch.Invoke(ctx, TurnInput{SessionID: "s1", CreatorID: "u1", Message: "second"})
	if err != nil {
		t.Fatalf("second turn: %v", err)
	}
	if len(st.Messages) != 4 {
		t.Errorf("messages = %d, want 4 across two turns", len(st.Messages))
	}
}

func TestInvokeRejectsConcurrentTurn(t *testing.T) {
	orch, _ := newTestOrchestrator(nil)
	orch.sessions.GetOrCreate("s1", orch.build)

	release, err := orch.sessions.BeginTurn("s1")
	if err != nil {
		t.Fatalf("BeginTurn: %v", err)
	}
	defer release()

	_, err = orch.Invoke(context.Background(), TurnInput{SessionID: "s1", CreatorID: "u1", Message: "hi"})
	if !errors.Is(err, registry.ErrTurnInProgress) {
		t.Errorf("err = %v, want ErrTurnInProgress", err)
	}
}

func TestGetStateUnknownSession(t *testing.T) {
	orch, _ := newTestOrchestrator(nil)
	if _, err := orch.GetState(context.Background(), "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestRegisterFilesMarksUploadsPending(t *testing.T) {
	orch, _ := newTestOrchestrator(nil)
	ctx := context.Background()

	if _, err := orch.Invoke(ctx, TurnInput{SessionID: "s1", CreatorID: "u1", Message: "hi"}); err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	st, err := orch.RegisterFiles(ctx, "s1", []state.UploadedFile{
		{ID: "f1", Filename: "notes.md", Status: state.FileCompleted},
	})
	if err != nil {
		t.Fatalf("RegisterFiles: %v", err)
	}
	if len(st.Files) != 1 || st.Files[0].Status != state.FilePending {
		t.Errorf("registered files must start pending, got %+v", st.Files)
	}
	if len(st.PendingFiles()) != 1 {
		t.Error("pending files should drive the next turn's decision")
	}
}

func TestEndSessionDropsCheckpoint(t *testing.T) {
	orch, _ := newTestOrchestrator(nil)
	ctx := context.Background()

	if _, err := orch.Invoke(ctx, TurnInput{SessionID: "s1", CreatorID: "u1", Message: "hi"}); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if err := orch.EndSession(ctx, "s1"); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if _, err := orch.GetState(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound after EndSession", err)
	}
}

func TestStreamDeliversStepEvents(t *testing.T) {
	bus := events.NewBus(nil)
	defer bus.Close()
	orch, _ := newTestOrchestrator(bus)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	steps, err := orch.Stream(ctx, TurnInput{SessionID: "s1", CreatorID: "u1", Message: "hi"})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	var got []events.StepEvent
	for ev := range steps {
		got = append(got, ev)
	}
	if len(got) < 2 {
		t.Fatalf("events = %d, want at least append_message and the action step", len(got))
	}
	if got[0].Step != "append_message" {
		t.Errorf("first step = %s, want append_message", got[0].Step)
	}
	for _, ev := range got {
		if ev.SessionID != "s1" {
			t.Errorf("event for session %s leaked into this stream", ev.SessionID)
		}
	}
}
