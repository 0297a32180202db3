package ingredients

import (
	"context"
	"fmt"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
)

type parsedIngredient struct {
	Quantity string
	Unit     string
	Name     string
}

// parseIngredientLineAction never fails on malformed input; it degrades to
// treating the whole line as the ingredient name.
type parseIngredientLineAction struct {
	deps Deps
}

func newParseIngredientLineAction(d actions.Deps) (actions.Action[domain.IngredientJobData], error) {
	deps, ok := d.(Deps)
	if !ok {
		return nil, fmt.Errorf("ingredients: parse_ingredient_line requires ingredients.Deps")
	}
	return &parseIngredientLineAction{deps: deps}, nil
}

func (a *parseIngredientLineAction) Name() actions.Name { return actions.NameParseIngredientLine }

func (a *parseIngredientLineAction) ValidateInput(data domain.IngredientJobData) error {
	if data.NoteID == "" {
		return fmt.Errorf("parse_ingredient_line: missing noteId")
	}
	return nil
}

func (a *parseIngredientLineAction) Execute(_ context.Context, data domain.IngredientJobData, _ actions.Deps, _ actions.ActionContext) (domain.IngredientJobData, error) {
	q, u, n := parseLine(data.LineText)
	data.LineText = fmt.Sprintf("%s|%s|%s", q, u, n)
	return data, nil
}
