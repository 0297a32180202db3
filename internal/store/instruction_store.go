package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/recipe-notes-worker/internal/domain"
)

// InstructionStore persists one formatted instruction step per call, the
// instruction-queue analogue of IngredientStore.
type InstructionStore interface {
	Create(ctx context.Context, rec domain.InstructionRecord) (domain.InstructionRecord, error)
	ListByNoteID(ctx context.Context, noteID string) ([]domain.InstructionRecord, error)
}

type gormInstructionStore struct {
	db *gorm.DB
}

func NewInstructionStore(db *gorm.DB) InstructionStore {
	return &gormInstructionStore{db: db}
}

func (s *gormInstructionStore) Create(ctx context.Context, rec domain.InstructionRecord) (domain.InstructionRecord, error) {
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.InstructionRecord{}, err
	}
	return rec, nil
}

func (s *gormInstructionStore) ListByNoteID(ctx context.Context, noteID string) ([]domain.InstructionRecord, error) {
	var out []domain.InstructionRecord
	err := s.db.WithContext(ctx).Where("note_id = ?", noteID).Order("step_number asc").Find(&out).Error
	return out, err
}
