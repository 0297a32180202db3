// Package store implements the database surface: per-entity upsert by
// natural key, update by natural key, find-by-key. Natural key upserts
// go through Clauses(clause.OnConflict{...}).Create(...), never
// find-then-insert, which races under concurrent workers.
package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/recipe-notes-worker/internal/domain"
)

// ImageStore is the persistence surface the SaveImage and
// ImageCompletedStatus actions use.
type ImageStore interface {
	UpsertByImportID(ctx context.Context, rec domain.ImageRecord) (domain.ImageRecord, error)
	UpdateStatus(ctx context.Context, importID string, status domain.ProcessingStatus, processingError string) error
	FindByImportID(ctx context.Context, importID string) (domain.ImageRecord, bool, error)
}

type gormImageStore struct {
	db *gorm.DB
}

func NewImageStore(db *gorm.DB) ImageStore {
	return &gormImageStore{db: db}
}

// UpsertByImportID inserts a new row or, on a conflicting import_id,
// updates the note_id/URL/dimension/size/format/status columns and clears
// processing_error. On insert, import_id is additionally set.
func (s *gormImageStore) UpsertByImportID(ctx context.Context, rec domain.ImageRecord) (domain.ImageRecord, error) {
	if rec.ImportID == "" {
		return domain.ImageRecord{}, fmt.Errorf("store: image record missing import id")
	}
	rec.ProcessingStatus = string(domain.StatusCompleted)
	rec.ProcessingError = ""

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "import_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"note_id",
			"original_image_url",
			"thumbnail_image_url",
			"crop3x2_image_url",
			"crop4x3_image_url",
			"crop16x9_image_url",
			"original_width",
			"original_height",
			"original_size",
			"original_format",
			"processing_status",
			"processing_error",
			"updated_at",
		}),
	}).Create(&rec).Error
	if err != nil {
		return domain.ImageRecord{}, err
	}

	var out domain.ImageRecord
	if err := s.db.WithContext(ctx).Where("import_id = ?", rec.ImportID).First(&out).Error; err != nil {
		return domain.ImageRecord{}, err
	}
	return out, nil
}

// UpdateStatus is a surrogate-key-free status transition by natural key,
// used by the failure path and ImageCompletedStatus.
func (s *gormImageStore) UpdateStatus(ctx context.Context, importID string, status domain.ProcessingStatus, processingError string) error {
	return s.db.WithContext(ctx).
		Model(&domain.ImageRecord{}).
		Where("import_id = ?", importID).
		Updates(map[string]interface{}{
			"processing_status": string(status),
			"processing_error":  processingError,
		}).Error
}

func (s *gormImageStore) FindByImportID(ctx context.Context, importID string) (domain.ImageRecord, bool, error) {
	var out domain.ImageRecord
	err := s.db.WithContext(ctx).Where("import_id = ?", importID).First(&out).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.ImageRecord{}, false, nil
		}
		return domain.ImageRecord{}, false, err
	}
	return out, true, nil
}
