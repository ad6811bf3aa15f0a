package events

import (
	"context"
	"testing"
	"time"
)

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ch, err := bus.Subscribe(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}

	steps := []string{"detect_types", "extract", "chunk"}
	for _, s := range steps {
		if err := bus.Publish(StepEvent{SessionID: "sess-1", Workflow: "ingestion", Step: s}); err != nil {
			t.Fatal(err)
		}
	}

	for i, want := range steps {
		select {
		case ev := <-ch:
			if ev.Step != want {
				t.Errorf("event %d step = %q, want %q", i, ev.Step, want)
			}
		case <-ctx.Done():
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestBusIsolatesSessions(t *testing.T) {
	bus := NewBus(nil)
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	other, err := bus.Subscribe(ctx, "sess-other")
	if err != nil {
		t.Fatal(err)
	}

	if err := bus.Publish(StepEvent{SessionID: "sess-1", Workflow: "structure", Step: "analyze"}); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-other:
		t.Errorf("cross-session delivery: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}
