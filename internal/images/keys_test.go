package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginalKey_Deterministic(t *testing.T) {
	got := OriginalKey("import-1", "photo.JPG")
	assert.Equal(t, "originals/import-1/photo.JPG", got)
	assert.Equal(t, got, OriginalKey("import-1", "photo.JPG"), "same inputs must always produce the same key")
}

func TestOriginalKey_StripsThenReappliesExtension(t *testing.T) {
	got := OriginalKey("import-1", "nested/path/photo.png")
	assert.Equal(t, "originals/import-1/photo.png", got)
}

func TestProcessedKey_PrefersNoteIDOverImportID(t *testing.T) {
	got := ProcessedKey("import-1", "note-9", DerivativeThumbnail, ".jpg")
	assert.Equal(t, "processed/import-1/note-9-thumbnail.jpg", got)
}

func TestProcessedKey_FallsBackToImportIDWhenNoteIDEmpty(t *testing.T) {
	got := ProcessedKey("import-1", "", DerivativeCrop3x2, ".jpg")
	assert.Equal(t, "processed/import-1/import-1-crop3x2.jpg", got)
}

func TestProcessedKey_EveryDerivativeProducesADistinctKey(t *testing.T) {
	seen := map[string]struct{}{}
	for _, d := range []Derivative{DerivativeOriginal, DerivativeThumbnail, DerivativeCrop3x2, DerivativeCrop4x3, DerivativeCrop16x9} {
		k := ProcessedKey("import-1", "note-1", d, ".jpg")
		_, dup := seen[k]
		assert.False(t, dup, "derivative %s collided with a previous key", d)
		seen[k] = struct{}{}
	}
}
