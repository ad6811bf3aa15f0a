// Package workflow contains the orchestration engine behind the
// course-construction and tutoring pipelines: the session state model,
// the checkpoint/resume contract, and the sub-workflow composition
// rules the coordinator relies on.
package workflow

import (
	"context"

	"ai-coursebuilder-be/pkg/workflow/state"
)

// Subworkflow is the contract every construction pipeline implements.
// The coordinator invokes it synchronously with the current session
// state and merges the returned update under the pipeline's namespace;
// there is no special case for a missing implementation.
type Subworkflow interface {
	// Name identifies the pipeline and namespaces its results.
	Name() string

	// Invoke runs the pipeline to completion against a projection of
	// the session state. The state must not be mutated; all changes
	// are carried by the returned update.
	Invoke(ctx context.Context, st *state.ConstructorState) (*state.ConstructorUpdate, error)
}
