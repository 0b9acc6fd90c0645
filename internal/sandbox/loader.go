// Package sandbox provides safe access to operator-provisioned input files.
// Callers resolve a bare filename-like key against one of a few fixed base
// categories; path traversal is structurally impossible because each category
// is an fs.FS rooted at its directory and keys are validated before any
// filesystem access.
package sandbox

import (
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/slushhq/agent-ops/config"
	apperrors "github.com/slushhq/agent-ops/internal/errors"
)

// Category identifies one fixed sandbox root. Callers never supply a path.
type Category string

const (
	// CategoryRepoSnapshots holds exported repository snapshots.
	CategoryRepoSnapshots Category = "repo_snapshots"
	// CategoryPilotDataExports holds pilot data exports.
	CategoryPilotDataExports Category = "pilot_data_exports"
	// CategoryOutputs holds previously generated outputs.
	CategoryOutputs Category = "outputs"
)

// Valid returns true if the Category is one of the fixed sandbox roots.
func (c Category) Valid() bool {
	return c == CategoryRepoSnapshots || c == CategoryPilotDataExports || c == CategoryOutputs
}

// Loader resolves file keys to content under fixed roots, enforcing
// traversal, size, and text-content rules.
type Loader struct {
	roots    map[Category]fs.FS
	maxBytes int64
	logger   *slog.Logger
}

// LoaderOptions groups dependencies for NewLoaderWithRoots.
type LoaderOptions struct {
	Roots    map[Category]fs.FS // Required: one fs.FS per category
	MaxBytes int64              // Required: per-file size cap
	Logger   *slog.Logger       // Optional: structured logger
}

// NewLoader builds a Loader over the configured on-disk sandbox directories.
func NewLoader(cfg config.SandboxConfig, logger *slog.Logger) *Loader {
	return NewLoaderWithRoots(LoaderOptions{
		Roots: map[Category]fs.FS{
			CategoryRepoSnapshots:    os.DirFS(cfg.RepoSnapshotsDir),
			CategoryPilotDataExports: os.DirFS(cfg.PilotDataExportsDir),
			CategoryOutputs:          os.DirFS(cfg.OutputsDir),
		},
		MaxBytes: cfg.MaxFileBytes,
		Logger:   logger,
	})
}

// NewLoaderWithRoots builds a Loader over caller-supplied filesystems. Tests
// inject fstest.MapFS roots here to observe (or assert the absence of)
// filesystem access.
func NewLoaderWithRoots(opts LoaderOptions) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		roots:    opts.Roots,
		maxBytes: opts.MaxBytes,
		logger:   logger.With("component", "sandbox"),
	}
}

// Load resolves key inside the category root and returns its content.
//
// Outcomes are distinct by error code: a FileRejected error means the key or
// file violated a sandbox rule (traversal, oversize, non-text); a NotFound
// error means the file simply does not exist. Generators must treat NotFound
// as "proceed without this input", never as fatal.
func (l *Loader) Load(category Category, key string) (string, error) {
	// Key validation is a hard precondition checked before any filesystem
	// access, not a best-effort filter.
	if err := validateKey(key); err != nil {
		return "", err
	}

	if !category.Valid() {
		return "", apperrors.FileRejectedf("unknown sandbox category: %q", category)
	}
	root, ok := l.roots[category]
	if !ok {
		return "", apperrors.FileRejectedf("sandbox category %q is not mounted", category)
	}

	info, err := fs.Stat(root, key)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.NotFoundf("file %q not found in %s", key, category)
		}
		return "", apperrors.Wrapf(err, apperrors.ErrCodeFileRejected, "stat file %q in %s", key, category)
	}
	if info.IsDir() {
		return "", apperrors.FileRejectedf("%q is not a regular file", key)
	}
	if info.Size() > l.maxBytes {
		return "", apperrors.FileRejectedf("file %q exceeds size limit (%d > %d bytes)", key, info.Size(), l.maxBytes)
	}

	data, err := fs.ReadFile(root, key)
	if err != nil {
		return "", apperrors.Wrapf(err, apperrors.ErrCodeFileRejected, "read file %q in %s", key, category)
	}
	if !utf8.Valid(data) {
		return "", apperrors.FileRejectedf("file %q is not valid UTF-8 text", key)
	}

	l.logger.Debug("sandbox file loaded", "category", string(category), "key", key, "bytes", len(data))
	return string(data), nil
}

// validateKey rejects anything that is not a bare filename. Separators and
// parent-directory segments never reach the filesystem.
func validateKey(key string) error {
	if key == "" {
		return apperrors.FileRejected("file key is required")
	}
	if strings.ContainsAny(key, `/\`) {
		return apperrors.FileRejectedf("file key %q contains a path separator", key)
	}
	if strings.Contains(key, "..") {
		return apperrors.FileRejectedf("file key %q contains a parent-directory segment", key)
	}
	if !fs.ValidPath(key) {
		return apperrors.FileRejectedf("file key %q is not a valid file name", key)
	}
	return nil
}
