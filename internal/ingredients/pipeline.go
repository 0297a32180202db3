package ingredients

import (
	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/pipeline"
)

func NewFactory() (*actions.Factory[domain.IngredientJobData], error) {
	f := actions.NewFactory[domain.IngredientJobData]()
	registrations := []struct {
		name actions.Name
		ctor actions.Constructor[domain.IngredientJobData]
	}{
		{actions.NameParseIngredientLine, newParseIngredientLineAction},
		{actions.NameSaveIngredient, newSaveIngredientAction},
		{actions.NameCheckIngredientCompletion, newCheckIngredientCompletionAction},
	}
	for _, r := range registrations {
		if err := f.Register(r.name, r.ctor); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func BuildPipeline(f *actions.Factory[domain.IngredientJobData], deps actions.Deps) ([]pipeline.Step[domain.IngredientJobData], error) {
	order := []actions.Name{
		actions.NameParseIngredientLine,
		actions.NameSaveIngredient,
		actions.NameCheckIngredientCompletion,
	}
	steps := make([]pipeline.Step[domain.IngredientJobData], 0, len(order))
	for _, name := range order {
		act, err := f.Create(name, deps)
		if err != nil {
			return nil, err
		}
		steps = append(steps, pipeline.Step[domain.IngredientJobData]{Action: act})
	}
	return steps, nil
}
