package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func exerciseAdapter(t *testing.T, a Adapter) {
	t.Helper()

	if _, ok, err := a.Get("deskpet.state"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	blob := `{"stats":{"hunger":40},"name":"Bubbles"}`
	if err := a.Set("deskpet.state", blob); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := a.Get("deskpet.state")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got != blob {
		t.Errorf("expected %s, got %s", blob, got)
	}

	if err := a.Set("deskpet.state", "{}"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got, _, _ := a.Get("deskpet.state"); got != "{}" {
		t.Errorf("expected overwrite, got %s", got)
	}

	if err := a.Set("other", "x"); err != nil {
		t.Fatalf("set other: %v", err)
	}
	if got, _, _ := a.Get("deskpet.state"); got != "{}" {
		t.Errorf("expected keys independent, got %s", got)
	}
}

func TestMemory(t *testing.T) {
	exerciseAdapter(t, NewMemory())
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	exerciseAdapter(t, f)

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("expected temp file renamed away")
	}
}

func TestFile_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := f.Set("deskpet.state", `{"level":3}`); err != nil {
		t.Fatalf("set: %v", err)
	}

	again, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok, err := again.Get("deskpet.state")
	if err != nil || !ok || got != `{"level":3}` {
		t.Errorf("expected value after reopen, got %q ok=%v err=%v", got, ok, err)
	}
}

func TestFile_RecoversFromCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("expected corrupt file to be recovered, got %v", err)
	}
	if _, ok, err := f.Get("deskpet.state"); ok || err != nil {
		t.Errorf("expected empty document, got ok=%v err=%v", ok, err)
	}
	if data, err := os.ReadFile(path + CorruptSuffix); err != nil || string(data) != "{truncated" {
		t.Errorf("expected corrupt file kept aside, got %q %v", data, err)
	}

	if err := f.Set("deskpet.state", `{"level":2}`); err != nil {
		t.Fatalf("expected adapter writable after recovery: %v", err)
	}
	again, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got, _, _ := again.Get("deskpet.state"); got != `{"level":2}` {
		t.Errorf("expected saved state after recovery, got %q", got)
	}
}

func TestFile_RequiresPath(t *testing.T) {
	if _, err := OpenFile(" "); err == nil {
		t.Error("expected error")
	}
}

func TestOpenOrMemory(t *testing.T) {
	dir := t.TempDir()

	a, closeFn, backend := OpenOrMemory("file", filepath.Join(dir, "state.json"))
	if _, ok := a.(*File); !ok || backend != BackendFile {
		t.Errorf("expected file adapter, got %T %s", a, backend)
	}
	closeFn()

	// A directory cannot be read as a state file.
	a, closeFn, backend = OpenOrMemory("file", dir)
	if _, ok := a.(*Memory); !ok || backend != BackendMemory {
		t.Errorf("expected memory fallback, got %T %s", a, backend)
	}
	if err := a.Set("k", "v"); err != nil {
		t.Errorf("expected fallback writable: %v", err)
	}
	if err := closeFn(); err != nil {
		t.Errorf("close: %v", err)
	}

	if _, _, backend := OpenOrMemory("", filepath.Join(dir, "b.json")); backend != BackendFile {
		t.Errorf("expected empty backend to mean file, got %s", backend)
	}
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	exerciseAdapter(t, s)
}

func TestSQLite_InMemory(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	exerciseAdapter(t, s)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		backend string
		path    string
		wantErr string
	}{
		{backend: "memory"},
		{backend: "", path: filepath.Join(dir, "a.json")},
		{backend: "FILE", path: filepath.Join(dir, "b.json")},
		{backend: "sqlite", path: filepath.Join(dir, "c.db")},
		{backend: "redis", wantErr: "unknown storage backend"},
		{backend: "sqlite", wantErr: "path is required"},
	}
	for _, tt := range tests {
		a, closeFn, err := Open(tt.backend, tt.path)
		if tt.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Open(%q): expected error containing %q, got %v", tt.backend, tt.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Open(%q): %v", tt.backend, err)
			continue
		}
		if err := a.Set("k", "v"); err != nil {
			t.Errorf("Open(%q) set: %v", tt.backend, err)
		}
		if err := closeFn(); err != nil {
			t.Errorf("Open(%q) close: %v", tt.backend, err)
		}
	}
}
