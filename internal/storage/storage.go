// Package storage holds the key/value adapters the pet state is persisted through.
package storage

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Adapter is a durable string key/value store.
type Adapter interface {
	// Get returns the value under key. ok is false when nothing is stored.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Backend names an adapter implementation.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open creates the adapter for backend. path is ignored by the memory backend.
// The returned close func is never nil.
func Open(backend, path string) (Adapter, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendMemory:
		return NewMemory(), noop, nil
	case "", BackendFile:
		f, err := OpenFile(path)
		if err != nil {
			return nil, noop, err
		}
		return f, noop, nil
	case BackendSQLite:
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// OpenOrMemory is Open for startup: when the backend cannot be opened it logs a
// warning and returns a memory adapter, so the pet runs on defaults instead of
// not running at all. backend reports what was actually opened.
func OpenOrMemory(backendName, path string) (a Adapter, closeFn func() error, backend string) {
	a, closeFn, err := Open(backendName, path)
	if err != nil {
		slog.Warn("storage: falling back to memory, state will not survive a restart",
			"backend", backendName, "path", path, "err", err)
		return NewMemory(), func() error { return nil }, BackendMemory
	}
	backend = strings.ToLower(strings.TrimSpace(backendName))
	if backend == "" {
		backend = BackendFile
	}
	return a, closeFn, backend
}

// Memory is an in-process adapter. Nothing survives a restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty memory adapter.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}
