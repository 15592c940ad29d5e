package tab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStorage keeps the tab collection in a single JSON document, the
// device-local equivalent of the browser's salesOrders key. A missing or
// malformed file loads as an empty collection, never as an error.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) Load(_ context.Context) ([]Tab, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	var tabs []Tab
	if err := json.Unmarshal(b, &tabs); err != nil {
		// Corrupt persisted state is treated as no data.
		return nil, nil
	}
	return tabs, nil
}

func (f *FileStorage) Save(_ context.Context, tabs []Tab) error {
	if tabs == nil {
		tabs = []Tab{}
	}
	b, err := json.Marshal(tabs)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
