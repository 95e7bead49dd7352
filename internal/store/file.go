package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileRepo stores the progress document as a single JSON file.
type FileRepo struct {
	mu   sync.Mutex
	path string
}

// OpenFile returns a FileRepo writing to path. The file itself is created on
// the first Save.
func OpenFile(path string) (*FileRepo, error) {
	if path == "" {
		return nil, errors.New("progress file path is empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	return &FileRepo{path: path}, nil
}

// Path returns the backing file path.
func (r *FileRepo) Path() string { return r.path }

func (r *FileRepo) Load(ctx context.Context) (*ProgressData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var data ProgressData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &StorageError{Op: "load", Err: fmt.Errorf("decode %s: %w", r.path, err)}
	}
	return &data, nil
}

// Save writes data to a temp file in the same directory, syncs it and renames
// it over the target, so readers never observe a partial document.
func (r *FileRepo) Save(ctx context.Context, data *ProgressData) error {
	if err := ctx.Err(); err != nil {
		return &StorageError{Op: "save", Err: err}
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return &StorageError{Op: "save", Err: fmt.Errorf("encode: %w", err)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := writeAtomic(r.path, raw); err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	return nil
}

func (r *FileRepo) Close() error { return nil }

func writeAtomic(path string, raw []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
