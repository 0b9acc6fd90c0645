package sandbox

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/slushhq/agent-ops/internal/errors"
)

// recordingFS wraps an fs.FS and records every path it is asked about.
type recordingFS struct {
	inner  fs.FS
	opened []string
}

func (r *recordingFS) Open(name string) (fs.File, error) {
	r.opened = append(r.opened, name)
	return r.inner.Open(name)
}

func newTestLoader(t *testing.T, maxBytes int64) (*Loader, *recordingFS) {
	t.Helper()
	rec := &recordingFS{inner: fstest.MapFS{
		"snapshot.txt": &fstest.MapFile{Data: []byte("repo snapshot contents")},
		"binary.bin":   &fstest.MapFile{Data: []byte{0xff, 0xfe, 0x00, 0x41}},
		"big.txt":      &fstest.MapFile{Data: []byte(strings.Repeat("x", 64))},
	}}
	loader := NewLoaderWithRoots(LoaderOptions{
		Roots: map[Category]fs.FS{
			CategoryRepoSnapshots:    rec,
			CategoryPilotDataExports: fstest.MapFS{"export.csv": &fstest.MapFile{Data: []byte("a,b\n1,2\n")}},
			CategoryOutputs:          fstest.MapFS{},
		},
		MaxBytes: maxBytes,
	})
	return loader, rec
}

func TestLoaderLoad(t *testing.T) {
	loader, _ := newTestLoader(t, 2048)

	content, err := loader.Load(CategoryRepoSnapshots, "snapshot.txt")
	require.NoError(t, err)
	assert.Equal(t, "repo snapshot contents", content)

	content, err = loader.Load(CategoryPilotDataExports, "export.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", content)
}

func TestLoaderLoadMissingFile(t *testing.T) {
	loader, _ := newTestLoader(t, 2048)

	_, err := loader.Load(CategoryRepoSnapshots, "nope.txt")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.False(t, apperrors.IsFileRejected(err))
}

func TestLoaderRejectsBadKeysWithoutFilesystemAccess(t *testing.T) {
	loader, rec := newTestLoader(t, 2048)

	keys := []string{
		"",
		"../snapshot.txt",
		"..",
		"a/../b",
		"dir/snapshot.txt",
		`dir\snapshot.txt`,
		"/etc/passwd",
	}
	for _, key := range keys {
		t.Run("key="+key, func(t *testing.T) {
			_, err := loader.Load(CategoryRepoSnapshots, key)
			require.Error(t, err)
			assert.True(t, apperrors.IsFileRejected(err), "expected file_rejected, got %v", err)
		})
	}
	assert.Empty(t, rec.opened, "rejected keys must never reach the filesystem")
}

func TestLoaderRejectsUnknownCategory(t *testing.T) {
	loader, rec := newTestLoader(t, 2048)

	_, err := loader.Load(Category("scratch"), "snapshot.txt")
	require.Error(t, err)
	assert.True(t, apperrors.IsFileRejected(err))
	assert.Empty(t, rec.opened)
}

func TestLoaderRejectsOversizeFile(t *testing.T) {
	loader, _ := newTestLoader(t, 32)

	_, err := loader.Load(CategoryRepoSnapshots, "big.txt")
	require.Error(t, err)
	assert.True(t, apperrors.IsFileRejected(err))

	// Exactly at the limit is allowed.
	loader, _ = newTestLoader(t, 64)
	content, err := loader.Load(CategoryRepoSnapshots, "big.txt")
	require.NoError(t, err)
	assert.Len(t, content, 64)
}

func TestLoaderRejectsNonUTF8File(t *testing.T) {
	loader, _ := newTestLoader(t, 2048)

	_, err := loader.Load(CategoryRepoSnapshots, "binary.bin")
	require.Error(t, err)
	assert.True(t, apperrors.IsFileRejected(err))
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryRepoSnapshots.Valid())
	assert.True(t, CategoryPilotDataExports.Valid())
	assert.True(t, CategoryOutputs.Valid())
	assert.False(t, Category("").Valid())
	assert.False(t, Category("repo_snapshot").Valid())
}
