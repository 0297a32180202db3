package images

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/errs"
	"github.com/yungbote/recipe-notes-worker/internal/logging"
	"github.com/yungbote/recipe-notes-worker/internal/objectstore"
)

type fakeObjectStore struct {
	uploadErr error
	uploaded  objectstore.Uploaded
}

func (f *fakeObjectStore) UploadFile(ctx context.Context, key, localPath string) (objectstore.Uploaded, error) {
	if f.uploadErr != nil {
		return objectstore.Uploaded{}, f.uploadErr
	}
	return f.uploaded, nil
}
func (f *fakeObjectStore) UploadBuffer(ctx context.Context, key string, data []byte, contentType string) (objectstore.Uploaded, error) {
	return f.uploaded, f.uploadErr
}
func (f *fakeObjectStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", nil
}

func TestUploadOriginal_SkipsWhenObjectStoreNil(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	a := &uploadOriginalAction{deps: Deps{Log: logging.NewNop()}}
	out, err := a.Execute(context.Background(), domain.ImageJobData{ImagePath: path, ImportID: "import-1"}, nil, actions.ActionContext{})
	require.NoError(t, err)
	assert.Empty(t, out.R2OriginalURL)
}

func TestUploadOriginal_MissingSourceFileIsNonRetryable(t *testing.T) {
	a := &uploadOriginalAction{deps: Deps{Log: logging.NewNop(), ObjectStore: &fakeObjectStore{}}}
	_, err := a.Execute(context.Background(), domain.ImageJobData{ImagePath: "/no/such/file.jpg", ImportID: "import-1"}, nil, actions.ActionContext{})
	require.Error(t, err)
	var se *errs.StructuredError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.NonRetryable)
}

func TestUploadOriginal_UploadFailureIsSwallowedNotFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	a := &uploadOriginalAction{deps: Deps{Log: logging.NewNop(), ObjectStore: &fakeObjectStore{uploadErr: fmt.Errorf("network blip")}}}
	out, err := a.Execute(context.Background(), domain.ImageJobData{ImagePath: path, ImportID: "import-1"}, nil, actions.ActionContext{})
	require.NoError(t, err, "a best-effort upload must never fail the pipeline")
	assert.Empty(t, out.R2OriginalURL)
}

func TestUploadOriginal_SuccessSetsKeyAndURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	store := &fakeObjectStore{uploaded: objectstore.Uploaded{Key: "originals/import-1/photo.jpg", URL: "https://cdn/photo.jpg"}}
	a := &uploadOriginalAction{deps: Deps{Log: logging.NewNop(), ObjectStore: store}}
	out, err := a.Execute(context.Background(), domain.ImageJobData{ImagePath: path, ImportID: "import-1"}, nil, actions.ActionContext{})
	require.NoError(t, err)
	assert.Equal(t, "originals/import-1/photo.jpg", out.R2OriginalKey)
	assert.Equal(t, "https://cdn/photo.jpg", out.R2OriginalURL)
}
