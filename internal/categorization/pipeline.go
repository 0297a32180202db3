package categorization

import (
	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/pipeline"
)

func NewFactory() (*actions.Factory[domain.CategorizationJobData], error) {
	f := actions.NewFactory[domain.CategorizationJobData]()
	if err := f.Register(actions.NameCategorizeNote, newCategorizeNoteAction); err != nil {
		return nil, err
	}
	return f, nil
}

func BuildPipeline(f *actions.Factory[domain.CategorizationJobData], deps actions.Deps) ([]pipeline.Step[domain.CategorizationJobData], error) {
	act, err := f.Create(actions.NameCategorizeNote, deps)
	if err != nil {
		return nil, err
	}
	return []pipeline.Step[domain.CategorizationJobData]{{Action: act}}, nil
}
