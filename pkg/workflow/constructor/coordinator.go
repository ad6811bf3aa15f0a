// Package constructor drives a course from "welcome" to "published".
// Each turn the coordinator appends the incoming message, runs intake,
// picks exactly one action from the rule table, dispatches to a
// sub-workflow when the action maps to one, and phrases a reply.
package constructor

import (
	"context"
	"fmt"
	"log"

	"ai-coursebuilder-be/pkg/llm"
	"ai-coursebuilder-be/pkg/workflow"
	"ai-coursebuilder-be/pkg/workflow/events"
	"ai-coursebuilder-be/pkg/workflow/state"
)

// Finalizer persists the finished course to the relational store and
// returns its id. Only finalized records are ever written.
type Finalizer interface {
	Finalize(ctx context.Context, st *state.ConstructorState) (string, error)
}

// Coordinator composes the construction sub-workflows for one session.
type Coordinator struct {
	provider  llm.LLMProvider
	subs      map[string]workflow.Subworkflow
	finalizer Finalizer
	bus       *events.Bus
	logger    *log.Logger
}

func NewCoordinator(provider llm.LLMProvider, finalizer Finalizer, bus *events.Bus, logger *log.Logger, subs ...workflow.Subworkflow) *Coordinator {
	byName := make(map[string]workflow.Subworkflow, len(subs))
	for _, s := range subs {
		byName[s.Name()] = s
	}
	return &Coordinator{
		provider:  provider,
		subs:      byName,
		finalizer: finalizer,
		bus:       bus,
		logger:    logger,
	}
}

// Turn advances the session by one turn. Every step mutation goes
// through Apply and is checkpointed by save; a failed save fails the
// turn. A failing sub-workflow becomes an error-list entry and the
// turn still reaches respond.
func (c *Coordinator) Turn(ctx context.Context, st *state.ConstructorState, message string, save func(*state.ConstructorState) error) error {
	if message != "" {
		if err := c.step(st, &state.ConstructorUpdate{
			Messages: []state.Message{state.NewMessage(state.RoleUser, message)},
		}, save, "append_message"); err != nil {
			return err
		}
	}

	if info := c.intake(ctx, st); info != nil {
		if err := c.step(st, &state.ConstructorUpdate{Info: info}, save, "intake"); err != nil {
			return err
		}
	}

	decision := Decide(st)
	c.logf("[DECIDE] phase=%s action=%s (%s)", st.Phase, decision.Action, decision.Reason)

	update := &state.ConstructorUpdate{}
	if decision.Phase != st.Phase {
		update.Phase = state.PhasePtr(decision.Phase)
	}

	switch {
	case pipelineFor[decision.Action] != "":
		c.dispatch(ctx, st, decision, update)

	case decision.Action == ActionFinalize:
		// Finalization is its own checkpointed hop so the later jump
		// to "complete" starts from the finalization phase.
		if update.Phase != nil {
			if err := c.step(st, &state.ConstructorUpdate{Phase: update.Phase}, save, "enter_finalization"); err != nil {
				return err
			}
			update.Phase = nil
		}
		c.finalize(ctx, st, update)
	}

	reply := c.respond(ctx, st, decision, update)
	update.Messages = append(update.Messages, state.NewMessage(state.RoleAssistant, reply))

	return c.step(st, update, save, string(decision.Action))
}

// dispatch invokes the sub-workflow mapped to the action and folds its
// result into the turn's update. A panic or error is captured; the
// turn continues to respond with an intact checkpoint.
func (c *Coordinator) dispatch(ctx context.Context, st *state.ConstructorState, decision Decision, update *state.ConstructorUpdate) {
	name := pipelineFor[decision.Action]
	sub, ok := c.subs[name]
	if !ok {
		update.Errors = append(update.Errors, fmt.Sprintf("no %s pipeline registered", name))
		return
	}

	result, err := c.invoke(ctx, sub, st)
	if err != nil {
		c.logf("[DISPATCH] %s failed: %v", name, err)
		update.Errors = append(update.Errors, fmt.Sprintf("%s: %s", name, llm.UserMessage(err)))
		return
	}

	update.Files = append(update.Files, result.Files...)
	update.Chunks = result.Chunks
	update.Structure = result.Structure
	update.Questions = result.Questions
	update.Validation = result.Validation
	update.Progress = result.Progress
	update.Errors = append(update.Errors, result.Errors...)
	update.Warnings = append(update.Warnings, result.Warnings...)
	if update.SubResults == nil {
		update.SubResults = map[string]map[string]any{}
	}
	for k, v := range result.SubResults {
		update.SubResults[k] = v
	}
}

func (c *Coordinator) invoke(ctx context.Context, sub workflow.Subworkflow, st *state.ConstructorState) (result *state.ConstructorUpdate, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%s panicked: %v", sub.Name(), r)
		}
	}()
	return sub.Invoke(ctx, st)
}

// finalize persists the course. It is gated on a passed validation;
// the gate is an invariant, never auto-repaired.
func (c *Coordinator) finalize(ctx context.Context, st *state.ConstructorState, update *state.ConstructorUpdate) {
	if st.Validation == nil || !st.Validation.Passed {
		update.Errors = append(update.Errors, "finalize blocked: course validation has not passed")
		update.Phase = nil
		return
	}
	if c.finalizer == nil {
		update.Errors = append(update.Errors, "finalize blocked: no course store configured")
		update.Phase = nil
		return
	}

	courseID, err := c.finalizer.Finalize(ctx, st)
	if err != nil {
		update.Errors = append(update.Errors, fmt.Sprintf("finalize failed: %s", err))
		update.Phase = nil
		return
	}
	update.CourseID = courseID
	update.Phase = state.PhasePtr(state.PhaseComplete)
	update.Progress = 1
	c.logf("[FINALIZE] course %s published", courseID)
}

// step applies one update, checkpoints, and emits a step event.
func (c *Coordinator) step(st *state.ConstructorState, update *state.ConstructorUpdate, save func(*state.ConstructorState) error, name string) error {
	if err := st.Apply(update); err != nil {
		return fmt.Errorf("step %s: %w", name, err)
	}
	if save != nil {
		if err := save(st); err != nil {
			return fmt.Errorf("step %s: checkpoint: %w", name, err)
		}
	}
	if c.bus != nil {
		_ = c.bus.Publish(events.StepEvent{
			SessionID: st.SessionID,
			Workflow:  "constructor",
			Step:      name,
			Phase:     string(st.Phase),
			Progress:  st.Progress,
			Final:     st.Phase == state.PhaseComplete,
		})
	}
	return nil
}

func (c *Coordinator) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
