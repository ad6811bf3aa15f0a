package constructor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ai-coursebuilder-be/pkg/workflow/checkpoint"
	"ai-coursebuilder-be/pkg/workflow/events"
	"ai-coursebuilder-be/pkg/workflow/registry"
	"ai-coursebuilder-be/pkg/workflow/state"
)

// ErrSessionNotFound is returned by GetState for sessions that were
// never started or have been cleaned up.
var ErrSessionNotFound = errors.New("constructor: session not found")

// TurnInput is one caller-submitted turn.
type TurnInput struct {
	SessionID string
	CreatorID string
	Message   string
}

// Orchestrator owns one coordinator per live session plus the
// checkpoint store. Turns for the same session are serialized through
// the registry; different sessions never block each other.
type Orchestrator struct {
	build    func() *Coordinator
	sessions *registry.Registry[*Coordinator]
	store    checkpoint.Store
	bus      *events.Bus
	logger   *log.Logger
}

func NewOrchestrator(build func() *Coordinator, store checkpoint.Store, bus *events.Bus, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		build:    build,
		sessions: registry.New[*Coordinator](),
		store:    store,
		bus:      bus,
		logger:   logger,
	}
}

// Invoke runs one turn to completion and returns the updated state.
func (o *Orchestrator) Invoke(ctx context.Context, in TurnInput) (*state.ConstructorState, error) {
	coord := o.sessions.GetOrCreate(in.SessionID, o.build)

	release, err := o.sessions.BeginTurn(in.SessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	st, err := o.loadOrCreate(ctx, in)
	if err != nil {
		return nil, err
	}

	save := func(s *state.ConstructorState) error {
		return o.store.Put(ctx, s.SessionID, s)
	}
	if err := coord.Turn(ctx, st, in.Message, save); err != nil {
		return nil, fmt.Errorf("turn failed: %w", err)
	}
	return st, nil
}

// Stream runs one turn and delivers its step events in order. The
// channel is finite: it closes once the turn has finished and all its
// events are drained. A consumed stream is not restartable.
func (o *Orchestrator) Stream(ctx context.Context, in TurnInput) (<-chan events.StepEvent, error) {
	if o.bus == nil {
		return nil, errors.New("constructor: streaming requires an event bus")
	}

	subCtx, cancel := context.WithCancel(ctx)
	steps, err := o.bus.Subscribe(subCtx, in.SessionID)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan events.StepEvent)
	go func() {
		defer close(out)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			_, err := o.Invoke(ctx, in)
			done <- err
		}()

		finished := false
		for {
			var idle <-chan time.Time
			if finished {
				idle = time.After(200 * time.Millisecond)
			}
			select {
			case ev, ok := <-steps:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			case err := <-done:
				finished = true
				if err != nil {
					out <- events.StepEvent{
						SessionID: in.SessionID,
						Workflow:  "constructor",
						Step:      "turn",
						Error:     err.Error(),
						Final:     true,
					}
					return
				}
			case <-idle:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// GetState returns the last checkpointed state.
func (o *Orchestrator) GetState(ctx context.Context, sessionID string) (*state.ConstructorState, error) {
	var st state.ConstructorState
	err := o.store.Get(ctx, sessionID, &st)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// UpdateState merges an out-of-band partial update (manual structure
// edits, file registrations) into the checkpoint under the turn lock.
func (o *Orchestrator) UpdateState(ctx context.Context, sessionID string, update *state.ConstructorUpdate) (*state.ConstructorState, error) {
	o.sessions.GetOrCreate(sessionID, o.build)
	release, err := o.sessions.BeginTurn(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	st, err := o.GetState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := st.Apply(update); err != nil {
		return nil, err
	}
	if err := o.store.Put(ctx, sessionID, st); err != nil {
		return nil, fmt.Errorf("checkpoint: %w", err)
	}
	return st, nil
}

// RegisterFiles records fresh uploads as pending files on the session.
func (o *Orchestrator) RegisterFiles(ctx context.Context, sessionID string, files []state.UploadedFile) (*state.ConstructorState, error) {
	for i := range files {
		files[i].Status = state.FilePending
	}
	return o.UpdateState(ctx, sessionID, &state.ConstructorUpdate{Files: files})
}

// EndSession removes the live coordinator and deletes the checkpoint.
func (o *Orchestrator) EndSession(ctx context.Context, sessionID string) error {
	if !o.sessions.Remove(sessionID) {
		if _, ok := o.sessions.Get(sessionID); ok {
			return registry.ErrTurnInProgress
		}
	}
	return o.store.Delete(ctx, sessionID)
}

func (o *Orchestrator) loadOrCreate(ctx context.Context, in TurnInput) (*state.ConstructorState, error) {
	var st state.ConstructorState
	err := o.store.Get(ctx, in.SessionID, &st)
	if errors.Is(err, checkpoint.ErrNotFound) {
		fresh := state.NewConstructorState(in.SessionID, in.CreatorID)
		if err := o.store.Put(ctx, fresh.SessionID, fresh); err != nil {
			return nil, fmt.Errorf("checkpoint: %w", err)
		}
		return fresh, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}
