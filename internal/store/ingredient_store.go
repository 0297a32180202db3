package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/recipe-notes-worker/internal/domain"
)

// IngredientStore persists one parsed ingredient line per call; there is
// no natural-key upsert here, so a (noteID, lineIdx) pair pushed again by a
// retried fan-out is stored as a second row.
type IngredientStore interface {
	Create(ctx context.Context, rec domain.IngredientRecord) (domain.IngredientRecord, error)
	ListByNoteID(ctx context.Context, noteID string) ([]domain.IngredientRecord, error)
}

type gormIngredientStore struct {
	db *gorm.DB
}

func NewIngredientStore(db *gorm.DB) IngredientStore {
	return &gormIngredientStore{db: db}
}

func (s *gormIngredientStore) Create(ctx context.Context, rec domain.IngredientRecord) (domain.IngredientRecord, error) {
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.IngredientRecord{}, err
	}
	return rec, nil
}

func (s *gormIngredientStore) ListByNoteID(ctx context.Context, noteID string) ([]domain.IngredientRecord, error) {
	var out []domain.IngredientRecord
	err := s.db.WithContext(ctx).Where("note_id = ?", noteID).Order("line_idx asc").Find(&out).Error
	return out, err
}
