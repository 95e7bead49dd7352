package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Open returns the progress repo of the given kind. path is the JSON file for
// KindFile and the database file (or DSN) for KindSQLite.
func Open(kind, path string) (ProgressRepo, error) {
	switch kind {
	case KindFile, "":
		return OpenFile(path)
	case KindSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}

// ensureDir creates the parent directory of path if it doesn't exist.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
