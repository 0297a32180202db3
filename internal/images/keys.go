// Object-store key layout:
//   originals/{importId}/{basenameWithoutExt}{originalExt}
//   processed/{importId}/{noteIdOrImportId}-{derivative}{ext}
//
// For processed keys, {ext} is the extension of the derivative's local
// file, which ProcessImage always writes as JPEG (".jpg"); it is not the
// original's extension.
package images

import (
	"path/filepath"
	"strings"
)

// Derivative is the closed set of five derivative names a processed image
// produces.
type Derivative string

const (
	DerivativeOriginal  Derivative = "original"
	DerivativeThumbnail Derivative = "thumbnail"
	DerivativeCrop3x2   Derivative = "crop3x2"
	DerivativeCrop4x3   Derivative = "crop4x3"
	DerivativeCrop16x9  Derivative = "crop16x9"
)

// suffixFor returns the filename suffix ProcessImage uses for a
// derivative's local file.
func suffixFor(d Derivative) string {
	return "-" + string(d)
}

// OriginalKey computes the object-store key for the unprocessed original.
func OriginalKey(importID, filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	return "originals/" + importID + "/" + base + ext
}

// ProcessedKey computes the object-store key for one derivative; ext is
// appended as given.
func ProcessedKey(importID, noteID string, derivative Derivative, ext string) string {
	id := noteID
	if id == "" {
		id = importID
	}
	return "processed/" + importID + "/" + id + "-" + string(derivative) + ext
}
