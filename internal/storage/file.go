package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// CorruptSuffix is appended to a state file that could not be parsed.
const CorruptSuffix = ".corrupt"

// File keeps every key in one JSON document on disk. Writes go to a temp file
// that is renamed over the original.
type File struct {
	path string

	mu  sync.Mutex
	doc string
}

// OpenFile loads path, or starts empty when it does not exist yet. A file that
// is not a JSON object is moved aside to path+".corrupt" and replaced with an
// empty document.
func OpenFile(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	path = filepath.Clean(path)

	doc := "{}"
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read state file: %w", err)
	case !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject():
		aside := path + CorruptSuffix
		if err := os.Rename(path, aside); err != nil {
			slog.Warn("storage: state file is not a JSON object, starting empty", "path", path, "err", err)
		} else {
			slog.Warn("storage: state file is not a JSON object, moved aside", "path", path, "moved_to", aside)
		}
	default:
		doc = string(data)
	}

	return &File{path: path, doc: doc}, nil
}

// Path returns the backing file.
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := gjson.Get(f.doc, gjson.Escape(key))
	if !r.Exists() {
		return "", false, nil
	}
	return r.String(), true, nil
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := sjson.Set(f.doc, gjson.Escape(key), value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write tmp state: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename state: %w", err)
	}
	f.doc = doc
	return nil
}
