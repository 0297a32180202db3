package ingredients

import (
	"context"
	"fmt"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/completion"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
)

type checkIngredientCompletionAction struct {
	deps Deps
}

func newCheckIngredientCompletionAction(d actions.Deps) (actions.Action[domain.IngredientJobData], error) {
	deps, ok := d.(Deps)
	if !ok {
		return nil, fmt.Errorf("ingredients: check_ingredient_completion requires ingredients.Deps")
	}
	return &checkIngredientCompletionAction{deps: deps}, nil
}

func (a *checkIngredientCompletionAction) Name() actions.Name {
	return actions.NameCheckIngredientCompletion
}

func (a *checkIngredientCompletionAction) ValidateInput(domain.IngredientJobData) error { return nil }

func (a *checkIngredientCompletionAction) Execute(_ context.Context, data domain.IngredientJobData, _ actions.Deps, ac actions.ActionContext) (domain.IngredientJobData, error) {
	if data.NoteID == "" {
		a.deps.Log.Info("check_ingredient_completion: note id absent, skipping", "job_id", ac.JobID)
		return data, nil
	}
	if a.deps.Tracker != nil {
		a.deps.Tracker.MarkComplete(data.NoteID, completion.CategoryIngredient, ac.JobID)
	}
	return data, nil
}
