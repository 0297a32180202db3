// Package domain holds the data model shapes shared across packages:
// Job, ImageJobData, ImageRecord, and the thinner per-queue payloads.
// Grounded on the data model section.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Job is the unit pulled from a queue. The queue owns it
// while enqueued; the executing worker owns it while processing; it is
// destroyed by the queue after terminal success or exhausted retries.
type Job struct {
	ID      string
	Queue   string
	Payload []byte
	Attempt int
}

// ImageJobData is the payload threaded through the image pipeline
//. Passed by value between actions — each action owns its
// own copy and returns a new value, never mutating the one it received.
type ImageJobData struct {
	// identity — set once, stable across the whole pipeline (invariant i).
	NoteID   string
	ImportID string
	ImageID  string // assigned mid-pipeline, exactly once, by SaveImage

	// input
	ImagePath      string // source path on local filesystem
	OutputDir      string
	OriginalFilename string

	// derivative paths — non-empty iff produced (invariant ii)
	OriginalPath  string
	ThumbnailPath string
	Crop3x2Path   string
	Crop4x3Path   string
	Crop16x9Path  string

	// derivative sizes in bytes, keyed the same way as the paths
	OriginalSize  int64
	ThumbnailSize int64
	Crop3x2Size   int64
	Crop4x3Size   int64
	Crop16x9Size  int64

	// intrinsic metadata of the original
	Width  int
	Height int
	Format string

	// object-store keys/URLs — non-empty iff the corresponding upload
	// succeeded (invariant iii)
	R2OriginalKey  string
	R2OriginalURL  string
	R2ThumbnailURL string
	R2Crop3x2URL   string
	R2Crop4x3URL   string
	R2Crop16x9URL  string
}

// ProcessingStatus is the closed set of states a note or image record
// moves through from creation to terminal success or failure.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// ImageRecord is the persisted row keyed by ImportID (upsert key), with a
// surrogate ID assigned on insert.
type ImageRecord struct {
	ID                uint   `gorm:"primaryKey"`
	ImportID          string `gorm:"uniqueIndex"`
	NoteID            string
	OriginalImageURL  string
	ThumbnailImageURL string
	Crop3x2ImageURL   string
	Crop4x3ImageURL   string
	Crop16x9ImageURL  string
	OriginalWidth     int
	OriginalHeight    int
	OriginalSize      int64
	OriginalFormat    string
	ProcessingStatus  string
	ProcessingError   string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (ImageRecord) TableName() string { return "image_records" }

// NoteJobData is the notes-queue payload: a raw HTML blob to be parsed,
// persisted, then fanned out into downstream queues.
type NoteJobData struct {
	NoteID    string
	ImportID  string
	UserID    string
	SourceURL string
	HTML      string
	Metadata  map[string]interface{}
}

// IngredientJobData / InstructionJobData are the thin per-line payloads
// the notes fan-out produces for the ingredients and instruction queues —
// concrete producers/consumers for the completion-tracker categories of
// the same names.
type IngredientJobData struct {
	NoteID   string
	ImportID string
	LineText string
	LineIdx  int
}

type InstructionJobData struct {
	NoteID   string
	ImportID string
	LineText string
	LineIdx  int
}

// CategorizationJobData is the single categorization job per note,
// enqueued by the completion tracker once ingredient parsing finishes.
type CategorizationJobData struct {
	NoteID      string
	ImportID    string
	Ingredients []string
}

// NoteRecord is the persisted row for a single imported note, keyed by
// ImportID the same way ImageRecord is. Metadata carries whatever
// attributes the source fetch collects (content type, content length,
// source host) beyond the fields this system models explicitly —
// a flexible JSON column rather than a new migration per new attribute.
type NoteRecord struct {
	ID               uint               `gorm:"primaryKey"`
	ImportID         string             `gorm:"uniqueIndex"`
	NoteID           string             `gorm:"index"`
	UserID           string
	SourceURL        string
	Title            string
	RawHTML          string
	Category         string
	Metadata         datatypes.JSONMap
	ProcessingStatus string
	ProcessingError  string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (NoteRecord) TableName() string { return "note_records" }

// IngredientRecord is one parsed ingredient line belonging to a note.
type IngredientRecord struct {
	ID       uint `gorm:"primaryKey"`
	NoteID   string `gorm:"index"`
	ImportID string `gorm:"index"`
	LineIdx  int
	RawText  string
	Quantity string
	Unit     string
	Name     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (IngredientRecord) TableName() string { return "ingredient_records" }

// InstructionRecord is one formatted instruction step belonging to a note.
type InstructionRecord struct {
	ID          uint `gorm:"primaryKey"`
	NoteID      string `gorm:"index"`
	ImportID    string `gorm:"index"`
	StepNumber  int
	Text        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (InstructionRecord) TableName() string { return "instruction_records" }

// SourceJobData is the source-queue payload: a URL to fetch before a note
// even exists, the entry point for import flows that start from a link
// rather than a pasted HTML blob.
type SourceJobData struct {
	ImportID  string
	UserID    string
	SourceURL string
}
