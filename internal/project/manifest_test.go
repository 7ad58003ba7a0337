package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "sable.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

// TestLoadManifest проверяет разбор полного манифеста.
func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[package]
name = "billing"

[rewrite]
autogen = true
jobs = 4
max_diagnostics = 50
extensions = [".rbs", ".rbi"]
`)

	m, ok, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("manifest not found")
	}
	if m.Root != dir {
		t.Errorf("Root = %q, want %q", m.Root, dir)
	}
	if m.Config.Package.Name != "billing" {
		t.Errorf("Package.Name = %q", m.Config.Package.Name)
	}
	rw := m.Config.Rewrite
	if !rw.Autogen || rw.Jobs != 4 || rw.MaxDiagnostics != 50 {
		t.Errorf("unexpected rewrite config: %+v", rw)
	}
	if len(rw.Extensions) != 2 || rw.Extensions[1] != ".rbi" {
		t.Errorf("unexpected extensions: %v", rw.Extensions)
	}
}

// TestLoadManifestDefaults: секция [rewrite] может отсутствовать целиком.
func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[package]\nname = \"billing\"\n")

	m, ok, err := Load(dir)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	rw := m.Config.Rewrite
	if rw.Autogen {
		t.Error("autogen must default to false")
	}
	if rw.Jobs != 0 {
		t.Errorf("jobs default = %d, want 0", rw.Jobs)
	}
	if rw.MaxDiagnostics != defaultMaxDiagnostics {
		t.Errorf("max_diagnostics default = %d", rw.MaxDiagnostics)
	}
	if len(rw.Extensions) != 1 || rw.Extensions[0] != ".mpt" {
		t.Errorf("extensions default = %v", rw.Extensions)
	}
}

// TestLoadManifestErrors проверяет валидацию.
func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing package", "[rewrite]\njobs = 1\n", "missing [package]"},
		{"empty name", "[package]\nname = \"  \"\n", "missing [package].name"},
		{"negative jobs", "[package]\nname = \"x\"\n[rewrite]\njobs = -1\n", "jobs must be >= 0"},
		{"zero max", "[package]\nname = \"x\"\n[rewrite]\nmax_diagnostics = 0\n", "max_diagnostics must be > 0"},
		{"bad extension", "[package]\nname = \"x\"\n[rewrite]\nextensions = [\"rbs\"]\n", "must start with a dot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir, tt.content)
			_, _, err := Load(dir)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

// TestFindWalksUp: манифест находится из вложенной директории.
func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[package]\nname = \"x\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, ok, err := FindProjectRoot(nested)
	if err != nil || !ok {
		t.Fatalf("FindProjectRoot: ok=%v err=%v", ok, err)
	}
	if got != root {
		t.Errorf("root = %q, want %q", got, root)
	}
}

// TestFindAbsent: отсутствие манифеста это не ошибка.
func TestFindAbsent(t *testing.T) {
	_, ok, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Error("manifest must not be found in an empty tree")
	}
}
