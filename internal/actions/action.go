// Package actions defines the Action contract: a single named step with
// validateInput/execute, plus the closed action-name enumeration. Generic
// over the payload type D so each worker's pipeline builder instantiates
// it concretely for its own "Action<In,Out,Deps>" shape.
package actions

import "context"

// Name is drawn from the closed, per-queue enumeration below. Kept as
// stable string literals so tests can reference them directly rather than
// scattering name strings across the codebase.
type Name string

const (
	// image queue
	NameUploadOriginal        Name = "upload_original"
	NameProcessImage          Name = "process_image"
	NameUploadProcessed       Name = "upload_processed"
	NameSaveImage             Name = "save_image"
	NameCleanupLocalFiles     Name = "cleanup_local_files"
	NameImageCompletedStatus  Name = "image_completed_status"
	NameCheckImageCompletion  Name = "check_image_completion"

	// notes queue
	NameSaveNote    Name = "save_note"
	NameFanOutNote  Name = "fan_out_note"

	// ingredients queue
	NameParseIngredientLine Name = "parse_ingredient_line"
	NameSaveIngredient      Name = "save_ingredient"
	NameCheckIngredientCompletion Name = "check_ingredient_completion"

	// instruction queue
	NameFormatInstructionLine Name = "format_instruction_line"
	NameSaveInstruction       Name = "save_instruction"
	NameCheckInstructionCompletion Name = "check_instruction_completion"

	// categorization queue
	NameCategorizeNote Name = "categorize_note"

	// source queue
	NameFetchSource Name = "fetch_source"
)

// ActionContext is the per-job immutable metadata passed to every action:
// created once per job invocation, never mutated.
type ActionContext struct {
	JobID     string
	Attempt   int
	Queue     string
	Operation string
	StartedAt int64 // unix nanos; wall-clock start time
	Worker    string
}

// Deps is the worker-bound dependency bundle an action closes over at
// construction time (DB handles, object store, broadcaster, ...). Each
// worker defines its own concrete deps struct; the factory and pipeline
// runtime only ever see it as this opaque type.
type Deps any

// Action is one narrowly scoped pipeline step over payload type D.
//
// Guarantees: actions are individually deterministic given
// (data, deps, ctx) modulo intended side effects; actions never mutate deps
// or ctx; actions return a new payload value rather than mutating the
// input (an action MAY return the identical reference it received when no
// transformation is needed — the runtime treats that as a no-op, not an
// error).
type Action[D any] interface {
	Name() Name
	ValidateInput(data D) error
	Execute(ctx context.Context, data D, deps Deps, ac ActionContext) (D, error)
}

// Constructor binds per-worker dependencies to produce a concrete Action.
type Constructor[D any] func(deps Deps) (Action[D], error)
