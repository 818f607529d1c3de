package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/ctxutil"
	hiveerrors "github.com/hiveworks/hive/internal/errors"
)

// WriteOutput stores a skill output at its workspace-relative path
// (outputs/<squad>/<skill>/<taskID>.md). The path must stay inside the
// store root.
func (s *FileStore) WriteOutput(ctx context.Context, rel, content string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if err := validateRelPath(rel); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	path := filepath.Join(s.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	lock, err := s.acquireLock(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = releaseLock(lock) }()

	return atomicWrite(path, []byte(content), filePerm)
}

// ReadOutput loads a skill output by its workspace-relative path.
func (s *FileStore) ReadOutput(ctx context.Context, rel string) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}
	if err := validateRelPath(rel); err != nil {
		return "", fmt.Errorf("reading output: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, rel)) // #nosec G304 -- rel is validated to stay under baseDir
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", rel, hiveerrors.ErrOutputNotFound)
		}
		return "", fmt.Errorf("reading %s: %w", rel, err)
	}
	return string(data), nil
}

// FoundationContextPath returns the workspace-relative path of the
// shared brand context document.
func (s *FileStore) FoundationContextPath() string {
	return filepath.Join(constants.ContextDir, constants.FoundationContextFile)
}

// WriteFoundationContext stores the shared brand context document.
func (s *FileStore) WriteFoundationContext(ctx context.Context, content string) error {
	return s.WriteOutput(ctx, s.FoundationContextPath(), content)
}

// ReadFoundationContext loads the shared brand context document.
func (s *FileStore) ReadFoundationContext(ctx context.Context) (string, error) {
	return s.ReadOutput(ctx, s.FoundationContextPath())
}

// validateRelPath rejects absolute paths and traversal outside the
// store root.
func validateRelPath(rel string) error {
	if rel == "" {
		return hiveerrors.ErrEmptyValue
	}
	if filepath.IsAbs(rel) {
		return fmt.Errorf("path %q is absolute: %w", rel, hiveerrors.ErrInvalidID)
	}
	clean := filepath.Clean(rel)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path %q escapes the store: %w", rel, hiveerrors.ErrInvalidID)
	}
	return nil
}
