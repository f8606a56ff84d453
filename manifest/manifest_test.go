package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `
[project]
name = "calc"
version = "0.1.0"

[source]
files = ["main.gls"]
dirs = ["lib"]
entry = "start"

[vm]
stack-size = 4096
trace = true

[image]
output = "build/calc.glsc"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "calc" {
		t.Errorf("project name = %q, want calc", m.Project.Name)
	}
	if m.Project.Version != "0.1.0" {
		t.Errorf("version = %q, want 0.1.0", m.Project.Version)
	}
	if m.Source.Entry != "start" {
		t.Errorf("entry = %q, want start", m.Source.Entry)
	}
	if m.VM.StackSize != 4096 || !m.VM.Trace {
		t.Errorf("vm = %+v, want stack-size 4096 and trace", m.VM)
	}
	if m.ImagePath() != filepath.Join(m.Dir, "build", "calc.glsc") {
		t.Errorf("ImagePath = %q", m.ImagePath())
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `[project]
name = "bare"
`)
	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(m.Source.Dirs) != 1 || m.Source.Dirs[0] != "src" {
		t.Errorf("dirs = %v, want [src]", m.Source.Dirs)
	}
	if m.Source.Entry != "main" {
		t.Errorf("entry = %q, want main", m.Source.Entry)
	}
	if m.VM.StackSize != 64*1024 {
		t.Errorf("stack-size = %d, want 65536", m.VM.StackSize)
	}
	if m.ImagePath() != "" {
		t.Errorf("ImagePath = %q, want empty", m.ImagePath())
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for missing manifest")
	}

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "[project\nname=")
	if _, err := Load(dir); err == nil {
		t.Error("expected parse error")
	}

	dir = t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "[vm]\nstack-size = 4\n")
	if _, err := Load(dir); err == nil {
		t.Error("expected error for tiny stack")
	}
}

func TestSourcePaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `
[source]
files = ["main.gls"]
dirs = ["lib", "missing"]
`)
	writeFile(t, filepath.Join(dir, "main.gls"), "")
	writeFile(t, filepath.Join(dir, "lib", "b.gls"), "")
	writeFile(t, filepath.Join(dir, "lib", "a.gls"), "")
	writeFile(t, filepath.Join(dir, "lib", "notes.txt"), "")

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	paths, err := m.SourcePaths()
	if err != nil {
		t.Fatalf("SourcePaths: %v", err)
	}
	want := []string{
		filepath.Join(m.Dir, "main.gls"),
		filepath.Join(m.Dir, "lib", "a.gls"),
		filepath.Join(m.Dir, "lib", "b.gls"),
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestFindAndLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "[project]\nname = \"up\"\n")
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(sub)
	if err != nil {
		t.Fatalf("FindAndLoad: %v", err)
	}
	if m == nil || m.Project.Name != "up" {
		t.Fatalf("manifest = %+v, want project up", m)
	}
}
