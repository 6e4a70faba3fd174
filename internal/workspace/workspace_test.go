package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func mkdirs(t *testing.T, dirs ...string) {
	t.Helper()
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
}

func TestFindRoot_DefaultLayout(t *testing.T) {
	root := t.TempDir()
	example := filepath.Join(root, "examples", "react")
	mkdirs(t, filepath.Join(root, "packages"), example)

	got, err := FindRoot(example)
	if err != nil {
		t.Fatalf("FindRoot failed: %v", err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("expected root %s, got %s", want, got)
	}
}

func TestFindRoot_ConfigFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "demos", "vue", "src")
	mkdirs(t, nested)
	if err := os.WriteFile(filepath.Join(root, "devlink.yaml"), []byte("examples_dir: demos\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	got, err := FindRoot(nested)
	if err != nil {
		t.Fatalf("FindRoot failed: %v", err)
	}
	if got != root {
		t.Errorf("expected root %s, got %s", root, got)
	}
}

func TestFindRoot_NotFound(t *testing.T) {
	_, err := FindRoot(t.TempDir())
	if !errors.Is(err, ErrRootNotFound) {
		t.Errorf("expected ErrRootNotFound, got %v", err)
	}
}

func TestExample(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, filepath.Join(root, "packages"), filepath.Join(root, "examples", "react"))

	ws, err := Load(root, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	ex, err := ws.Example(filepath.Join("/somewhere", "else", "react"))
	if err != nil {
		t.Fatalf("Example failed: %v", err)
	}
	if ex.Name != "react" {
		t.Errorf("expected name 'react', got %q", ex.Name)
	}
	if ex.ManifestPath() != filepath.Join(root, "examples", "react", "package.json") {
		t.Errorf("unexpected manifest path %s", ex.ManifestPath())
	}
	if ex.LinkDir("fastify-vite") != filepath.Join(root, "examples", "react", "node_modules", "fastify-vite") {
		t.Errorf("unexpected link dir %s", ex.LinkDir("fastify-vite"))
	}
	if ws.PackageDir("fastify-vite") != filepath.Join(root, "packages", "fastify-vite") {
		t.Errorf("unexpected package dir %s", ws.PackageDir("fastify-vite"))
	}
}

func TestExample_NotFound(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, filepath.Join(root, "packages"), filepath.Join(root, "examples"))

	ws, err := Load(root, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for _, cwd := range []string{"/tmp/vue", "/"} {
		if _, err := ws.Example(cwd); !errors.Is(err, ErrExampleNotFound) {
			t.Errorf("Example(%q): expected ErrExampleNotFound, got %v", cwd, err)
		}
	}
}
