// Package objectstore defines the object-store collaborator: upload-file,
// upload-buffer, and presigned-URL helpers, all capable of failing with
// NETWORK or EXTERNAL_SERVICE errors.
package objectstore

import (
	"context"
	"time"
)

// Uploaded is the result of a successful upload.
type Uploaded struct {
	Key  string
	URL  string
	Size int64
	ETag string
}

// Client is the external object-store collaborator.
type Client interface {
	UploadFile(ctx context.Context, key string, localPath string) (Uploaded, error)
	UploadBuffer(ctx context.Context, key string, data []byte, contentType string) (Uploaded, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}
