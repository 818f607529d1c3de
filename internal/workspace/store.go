// Package workspace implements the persistence layer for hive state:
// tasks, goals, pipeline runs, outputs, reviews, human review items,
// and the learning journal, all as files under the hive home directory
// with atomic writes and per-file locking.
package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/ctxutil"
	"github.com/hiveworks/hive/internal/domain"
	hiveerrors "github.com/hiveworks/hive/internal/errors"
	"github.com/hiveworks/hive/internal/flock"
	"github.com/hiveworks/hive/internal/task"
)

// LockTimeout is the maximum duration to wait for a file lock.
const LockTimeout = 5 * time.Second

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// validIDRegex matches ids that are safe as path segments.
var validIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// FileStore persists all hive state under a base directory, normally
// ~/.hive.
type FileStore struct {
	baseDir string
}

// NewFileStore creates a FileStore rooted at baseDir. An empty baseDir
// resolves to ~/.hive.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		baseDir = filepath.Join(home, constants.HiveHome)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// BaseDir returns the store's root directory.
func (s *FileStore) BaseDir() string {
	return s.baseDir
}

// SaveTask writes or overwrites a task document.
func (s *FileStore) SaveTask(ctx context.Context, t *domain.Task) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if err := validateID(t.ID); err != nil {
		return fmt.Errorf("saving task: %w", err)
	}
	return s.writeJSON(ctx, filepath.Join(constants.TasksDir, t.ID+".json"), t)
}

// ReadTask loads a task by id.
func (s *FileStore) ReadTask(ctx context.Context, id string) (*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, fmt.Errorf("reading task: %w", err)
	}
	var t domain.Task
	if err := s.readJSON(filepath.Join(constants.TasksDir, id+".json"), &t, hiveerrors.ErrTaskNotFound); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTasks loads every stored task.
func (s *FileStore) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	paths, err := s.jsonFiles(constants.TasksDir)
	if err != nil {
		return nil, err
	}
	tasks := make([]*domain.Task, 0, len(paths))
	for _, p := range paths {
		var t domain.Task
		if err := s.readJSONAbs(p, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, &t)
	}
	return tasks, nil
}

// UpdateTaskStatus applies a state-machine-checked transition to a
// stored task and persists the result.
func (s *FileStore) UpdateTaskStatus(ctx context.Context, id string, to constants.TaskStatus, reason string) (*domain.Task, error) {
	t, err := s.ReadTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := task.Transition(ctx, t, to, reason); err != nil {
		return nil, err
	}
	if err := s.SaveTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// writeJSON marshals v and writes it under the store root with a lock
// held and an atomic rename.
func (s *FileStore) writeJSON(ctx context.Context, rel string, v any) error {
	path := filepath.Join(s.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("creating directory for %s: %w", rel, err)
	}

	lock, err := s.acquireLock(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = releaseLock(lock) }()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", rel, err)
	}
	return atomicWrite(path, data, filePerm)
}

// readJSON decodes one document under the store root. A missing file
// maps to notFound; an undecodable one to ErrStoreCorrupted.
func (s *FileStore) readJSON(rel string, v any, notFound error) error {
	path := filepath.Join(s.baseDir, rel)
	data, err := os.ReadFile(path) // #nosec G304 -- path is built from validated ids
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", rel, notFound)
		}
		return fmt.Errorf("reading %s: %w", rel, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", rel, hiveerrors.ErrStoreCorrupted)
	}
	return nil
}

func (s *FileStore) readJSONAbs(path string, v any) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from directory listing under baseDir
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, hiveerrors.ErrStoreCorrupted)
	}
	return nil
}

// jsonFiles lists the .json documents in one store subdirectory. A
// missing directory is an empty result, not an error.
func (s *FileStore) jsonFiles(rel string) ([]string, error) {
	dir := filepath.Join(s.baseDir, rel)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", rel, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// acquireLock takes an exclusive lock guarding one document, retrying
// until LockTimeout.
func (s *FileStore) acquireLock(ctx context.Context, path string) (*os.File, error) {
	lockPath := path + ".lock"
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, filePerm) // #nosec G304 -- lock path derives from a validated document path
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	deadline := time.Now().Add(LockTimeout)
	for {
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		default:
		}

		if err := flock.Exclusive(f.Fd()); err == nil {
			return f, nil
		}
		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("locking %s: %w", path, hiveerrors.ErrLockTimeout)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func releaseLock(f *os.File) error {
	if f == nil {
		return nil
	}
	if err := flock.Unlock(f.Fd()); err != nil {
		_ = f.Close()
		return fmt.Errorf("releasing lock: %w", err)
	}
	return f.Close()
}

// atomicWrite writes data with a write-then-rename so readers never see
// a partial document.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm) // #nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// validateID rejects ids that would escape the store layout.
func validateID(id string) error {
	if id == "" {
		return hiveerrors.ErrEmptyValue
	}
	if !validIDRegex.MatchString(id) {
		return fmt.Errorf("id %q contains invalid characters: %w", id, hiveerrors.ErrInvalidID)
	}
	return nil
}
