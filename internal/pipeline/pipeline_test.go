package pipeline_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/errs"
	"github.com/yungbote/recipe-notes-worker/internal/logging"
	"github.com/yungbote/recipe-notes-worker/internal/pipeline"
)

type appendAction struct {
	name  actions.Name
	token string
	fail  bool
}

func (a *appendAction) Name() actions.Name { return a.name }

func (a *appendAction) ValidateInput([]string) error { return nil }

func (a *appendAction) Execute(_ context.Context, data []string, _ actions.Deps, _ actions.ActionContext) ([]string, error) {
	if a.fail {
		return data, fmt.Errorf("boom")
	}
	out := append(append([]string{}, data...), a.token)
	return out, nil
}

func steps(tokens ...string) []pipeline.Step[[]string] {
	out := make([]pipeline.Step[[]string], 0, len(tokens))
	for _, t := range tokens {
		out = append(out, pipeline.Step[[]string]{Action: &appendAction{name: actions.Name(t), token: t}})
	}
	return out
}

func TestRun_SequencesStepsInOrder(t *testing.T) {
	eh := errs.NewHandler(logging.NewNop())
	ac := actions.ActionContext{JobID: "job-1", Queue: "test"}

	out, err := pipeline.Run(context.Background(), ac, steps("a", "b", "c"), []string{}, nil, pipeline.NoopSink, eh)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, out)
}

func TestRun_PayloadImmutability(t *testing.T) {
	eh := errs.NewHandler(logging.NewNop())
	ac := actions.ActionContext{JobID: "job-1", Queue: "test"}
	d0 := []string{"seed"}

	out, err := pipeline.Run(context.Background(), ac, steps("a"), d0, nil, pipeline.NoopSink, eh)

	require.NoError(t, err)
	assert.Equal(t, []string{"seed"}, d0, "the original slice value passed in must not be mutated")
	assert.Equal(t, []string{"seed", "a"}, out)
}

func TestRun_StopsOnFirstError(t *testing.T) {
	eh := errs.NewHandler(logging.NewNop())
	ac := actions.ActionContext{JobID: "job-1", Queue: "test"}

	failing := []pipeline.Step[[]string]{
		{Action: &appendAction{name: "a", token: "a"}},
		{Action: &appendAction{name: "b", fail: true}},
		{Action: &appendAction{name: "c", token: "c"}},
	}

	out, err := pipeline.Run(context.Background(), ac, failing, []string{}, nil, pipeline.NoopSink, eh)

	require.Error(t, err)
	assert.Equal(t, []string{"a"}, out, "the payload from the last successful step is returned, not the failed step's")
}

func TestRun_ValidationFailureIsNonRetryable(t *testing.T) {
	eh := errs.NewHandler(logging.NewNop())
	ac := actions.ActionContext{JobID: "job-1", Queue: "test"}

	invalidating := []pipeline.Step[[]string]{
		{Action: invalidatingAction{}},
	}

	_, err := pipeline.Run(context.Background(), ac, invalidating, []string{}, nil, pipeline.NoopSink, eh)

	require.Error(t, err)
	se, ok := err.(*errs.StructuredError)
	require.True(t, ok)
	assert.True(t, se.NonRetryable)
	assert.Equal(t, errs.KindValidation, se.Kind)
}

type invalidatingAction struct{}

func (invalidatingAction) Name() actions.Name { return "invalidating" }
func (invalidatingAction) ValidateInput([]string) error {
	return fmt.Errorf("always invalid")
}
func (invalidatingAction) Execute(context.Context, []string, actions.Deps, actions.ActionContext) ([]string, error) {
	return nil, nil
}
