package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/recipe-notes-worker/internal/domain"
)

// NoteStore persists the parsed note row the notes-queue SaveNote action
// produces, upserted by import id exactly like ImageStore.
type NoteStore interface {
	UpsertByImportID(ctx context.Context, rec domain.NoteRecord) (domain.NoteRecord, error)
	UpdateStatus(ctx context.Context, importID string, status domain.ProcessingStatus, processingError string) error
	SetCategory(ctx context.Context, noteID string, category string) error
}

type gormNoteStore struct {
	db *gorm.DB
}

func NewNoteStore(db *gorm.DB) NoteStore {
	return &gormNoteStore{db: db}
}

func (s *gormNoteStore) UpsertByImportID(ctx context.Context, rec domain.NoteRecord) (domain.NoteRecord, error) {
	if rec.ImportID == "" {
		return domain.NoteRecord{}, fmt.Errorf("store: note record missing import id")
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "import_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"note_id", "user_id", "source_url", "title", "raw_html", "metadata",
			"processing_status", "processing_error", "updated_at",
		}),
	}).Create(&rec).Error
	if err != nil {
		return domain.NoteRecord{}, err
	}

	var out domain.NoteRecord
	if err := s.db.WithContext(ctx).Where("import_id = ?", rec.ImportID).First(&out).Error; err != nil {
		return domain.NoteRecord{}, err
	}
	return out, nil
}

func (s *gormNoteStore) UpdateStatus(ctx context.Context, importID string, status domain.ProcessingStatus, processingError string) error {
	return s.db.WithContext(ctx).
		Model(&domain.NoteRecord{}).
		Where("import_id = ?", importID).
		Updates(map[string]interface{}{
			"processing_status": string(status),
			"processing_error":  processingError,
		}).Error
}

func (s *gormNoteStore) SetCategory(ctx context.Context, noteID string, category string) error {
	return s.db.WithContext(ctx).
		Model(&domain.NoteRecord{}).
		Where("note_id = ?", noteID).
		Update("category", category).Error
}
