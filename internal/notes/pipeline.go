package notes

import (
	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/pipeline"
)

func NewFactory() (*actions.Factory[domain.NoteJobData], error) {
	f := actions.NewFactory[domain.NoteJobData]()
	registrations := []struct {
		name actions.Name
		ctor actions.Constructor[domain.NoteJobData]
	}{
		{actions.NameSaveNote, newSaveNoteAction},
		{actions.NameFanOutNote, newFanOutNoteAction},
	}
	for _, r := range registrations {
		if err := f.Register(r.name, r.ctor); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func BuildPipeline(f *actions.Factory[domain.NoteJobData], deps actions.Deps) ([]pipeline.Step[domain.NoteJobData], error) {
	order := []actions.Name{actions.NameSaveNote, actions.NameFanOutNote}
	steps := make([]pipeline.Step[domain.NoteJobData], 0, len(order))
	for _, name := range order {
		act, err := f.Create(name, deps)
		if err != nil {
			return nil, err
		}
		steps = append(steps, pipeline.Step[domain.NoteJobData]{Action: act})
	}
	return steps, nil
}
