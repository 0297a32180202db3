package instruction

import (
	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/pipeline"
)

func NewFactory() (*actions.Factory[domain.InstructionJobData], error) {
	f := actions.NewFactory[domain.InstructionJobData]()
	registrations := []struct {
		name actions.Name
		ctor actions.Constructor[domain.InstructionJobData]
	}{
		{actions.NameFormatInstructionLine, newFormatInstructionLineAction},
		{actions.NameSaveInstruction, newSaveInstructionAction},
		{actions.NameCheckInstructionCompletion, newCheckInstructionCompletionAction},
	}
	for _, r := range registrations {
		if err := f.Register(r.name, r.ctor); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func BuildPipeline(f *actions.Factory[domain.InstructionJobData], deps actions.Deps) ([]pipeline.Step[domain.InstructionJobData], error) {
	order := []actions.Name{
		actions.NameFormatInstructionLine,
		actions.NameSaveInstruction,
		actions.NameCheckInstructionCompletion,
	}
	steps := make([]pipeline.Step[domain.InstructionJobData], 0, len(order))
	for _, name := range order {
		act, err := f.Create(name, deps)
		if err != nil {
			return nil, err
		}
		steps = append(steps, pipeline.Step[domain.InstructionJobData]{Action: act})
	}
	return steps, nil
}
