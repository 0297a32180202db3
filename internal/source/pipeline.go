package source

import (
	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/pipeline"
)

func NewFactory() (*actions.Factory[domain.SourceJobData], error) {
	f := actions.NewFactory[domain.SourceJobData]()
	if err := f.Register(actions.NameFetchSource, newFetchSourceAction); err != nil {
		return nil, err
	}
	return f, nil
}

func BuildPipeline(f *actions.Factory[domain.SourceJobData], deps actions.Deps) ([]pipeline.Step[domain.SourceJobData], error) {
	act, err := f.Create(actions.NameFetchSource, deps)
	if err != nil {
		return nil, err
	}
	return []pipeline.Step[domain.SourceJobData]{{Action: act}}, nil
}
