package tutor

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
var ErrSessionNotFound = errors.New("tutor: session not found")

// TurnInput is one learner-submitted turn.
type TurnInput struct {
	SessionID string
	StudentID string
	CourseID  string
	Message   string
}

// StateSeeder primes a freshly created session's state, typically with
// the student's persisted mastery records.
type StateSeeder interface {
	SeedState(ctx context.Context, st *state.TutorState) error
}

// Orchestrator owns one coordinator per live tutoring session plus the
// checkpoint store.
type Orchestrator struct {
	build    func() *Coordinator
	sessions *registry.Registry[*Coordinator]
	store    checkpoint.Store
	bus      *events.Bus
	logger   *log.Logger

	// Seeder, when set, runs once per new session before the first
	// checkpoint.
	Seeder StateSeeder
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
func (o *Orchestrator) Invoke(ctx context.Context, in TurnInput) (*state.TutorState, error) {
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

	save := func(s *state.TutorState) error {
		return o.store.Put(ctx, s.SessionID, s)
	}
	if err := coord.Turn(ctx, st, in.Message, save); err != nil {
		return nil, fmt.Errorf("turn failed: %w", err)
	}
	return st, nil
}

// Stream runs one turn and delivers its step events in order. The
// channel closes once the turn finishes and its events are drained.
func (o *Orchestrator) Stream(ctx context.Context, in TurnInput) (<-chan events.StepEvent, error) {
	if o.bus == nil {
		return nil, errors.New("tutor: streaming requires an event bus")
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
						Workflow:  "tutor",
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
func (o *Orchestrator) GetState(ctx context.Context, sessionID string) (*state.TutorState, error) {
	var st state.TutorState
	err := o.store.Get(ctx, sessionID, &st)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// UpdateState merges an out-of-band partial update into the checkpoint
// under the turn lock.
func (o *Orchestrator) UpdateState(ctx context.Context, sessionID string, update *state.TutorUpdate) (*state.TutorState, error) {
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

// EndSession removes the live coordinator and deletes the checkpoint.
func (o *Orchestrator) EndSession(ctx context.Context, sessionID string) error {
	if !o.sessions.Remove(sessionID) {
		if _, ok := o.sessions.Get(sessionID); ok {
			return registry.ErrTurnInProgress
		}
	}
	return o.store.Delete(ctx, sessionID)
}

func (o *Orchestrator) loadOrCreate(ctx context.Context, in TurnInput) (*state.TutorState, error) {
	var st state.TutorState
	err := o.store.Get(ctx, in.SessionID, &st)
	if errors.Is(err, checkpoint.ErrNotFound) {
		fresh := state.NewTutorState(in.SessionID, in.StudentID, in.CourseID)
		if o.Seeder != nil {
			if err := o.Seeder.SeedState(ctx, fresh); err != nil {
				return nil, fmt.Errorf("seed session: %w", err)
			}
		}
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
