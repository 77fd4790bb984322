package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// JSONFile persists each key as a JSON file in a directory. Writes go to a
// temp file first and replace the target with a rename, so a crash mid-write
// never leaves a truncated payload behind.
type JSONFile struct {
	dir string
}

// NewJSONFile creates the directory if needed and returns a file-backed KV.
func NewJSONFile(dir string) (*JSONFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &JSONFile{dir: dir}, nil
}

func (f *JSONFile) Load(_ context.Context, key string) ([]byte, error) {
	payload, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return payload, nil
}

func (f *JSONFile) Save(_ context.Context, key string, payload []byte) error {
	target := f.path(key)
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

func (f *JSONFile) Clear(_ context.Context, key string) error {
	if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (f *JSONFile) path(key string) string {
	// Keys are short identifiers; flatten anything path-like.
	safe := strings.NewReplacer("/", "_", string(filepath.Separator), "_").Replace(key)
	return filepath.Join(f.dir, safe+".json")
}
