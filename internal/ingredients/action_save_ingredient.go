package ingredients

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/errs"
)

type saveIngredientAction struct {
	deps Deps
}

func newSaveIngredientAction(d actions.Deps) (actions.Action[domain.IngredientJobData], error) {
	deps, ok := d.(Deps)
	if !ok {
		return nil, fmt.Errorf("ingredients: save_ingredient requires ingredients.Deps")
	}
	return &saveIngredientAction{deps: deps}, nil
}

func (a *saveIngredientAction) Name() actions.Name { return actions.NameSaveIngredient }

func (a *saveIngredientAction) ValidateInput(data domain.IngredientJobData) error {
	if data.NoteID == "" {
		return fmt.Errorf("save_ingredient: missing noteId")
	}
	return nil
}

func (a *saveIngredientAction) Execute(ctx context.Context, data domain.IngredientJobData, _ actions.Deps, ac actions.ActionContext) (domain.IngredientJobData, error) {
	parts := strings.SplitN(data.LineText, "|", 3)
	var quantity, unit, name string
	if len(parts) == 3 {
		quantity, unit, name = parts[0], parts[1], parts[2]
	} else {
		name = data.LineText
	}

	rec := domain.IngredientRecord{
		NoteID:   data.NoteID,
		ImportID: data.ImportID,
		LineIdx:  data.LineIdx,
		RawText:  data.LineText,
		Quantity: quantity,
		Unit:     unit,
		Name:     name,
	}
	if _, err := a.deps.Store.Create(ctx, rec); err != nil {
		return data, &errs.StructuredError{
			Kind:     errs.KindDatabase,
			Severity: errs.SeverityHigh,
			JobID:    ac.JobID,
			Queue:    ac.Queue,
			Op:       string(a.Name()),
			Err:      fmt.Errorf("save_ingredient: create: %w", err),
		}
	}
	return data, nil
}
