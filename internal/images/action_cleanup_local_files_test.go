package images

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/logging"
)

func newCleanupAction(t *testing.T) *cleanupLocalFilesAction {
	t.Helper()
	return &cleanupLocalFilesAction{deps: Deps{Log: logging.NewNop()}}
}

func TestCleanupLocalFiles_RemovesEveryExistingTarget(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 0, 3)
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
		paths = append(paths, p)
	}

	a := newCleanupAction(t)
	data := domain.ImageJobData{ImagePath: paths[0], OriginalPath: paths[1], ThumbnailPath: paths[2], OutputDir: dir}

	_, err := a.Execute(context.Background(), data, nil, actions.ActionContext{})
	require.NoError(t, err)

	for _, p := range paths {
		_, statErr := os.Stat(p)
		assert.True(t, os.IsNotExist(statErr), "%s should have been removed", p)
	}
}

func TestCleanupLocalFiles_MissingFilesAreNotAnError(t *testing.T) {
	a := newCleanupAction(t)
	data := domain.ImageJobData{ImagePath: "/nonexistent/path/does-not-exist.jpg"}

	_, err := a.Execute(context.Background(), data, nil, actions.ActionContext{})
	assert.NoError(t, err)
}

func TestCleanupLocalFiles_EmptyPathsAreSkipped(t *testing.T) {
	a := newCleanupAction(t)
	_, err := a.Execute(context.Background(), domain.ImageJobData{}, nil, actions.ActionContext{})
	assert.NoError(t, err)
}

func TestCleanupLocalFiles_RemovesOutputDirOnlyWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	kept := filepath.Join(dir, "kept.txt")
	require.NoError(t, os.WriteFile(kept, []byte("x"), 0o644))

	a := newCleanupAction(t)
	_, err := a.Execute(context.Background(), domain.ImageJobData{OutputDir: dir}, nil, actions.ActionContext{})
	require.NoError(t, err)

	_, statErr := os.Stat(dir)
	assert.NoError(t, statErr, "non-empty output dir must survive cleanup")
}

func TestCleanupLocalFiles_RemovesEmptyOutputDir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "job-output")
	require.NoError(t, os.Mkdir(sub, 0o755))

	a := newCleanupAction(t)
	_, err := a.Execute(context.Background(), domain.ImageJobData{OutputDir: sub}, nil, actions.ActionContext{})
	require.NoError(t, err)

	_, statErr := os.Stat(sub)
	assert.True(t, os.IsNotExist(statErr))
}
