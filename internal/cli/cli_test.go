package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ohare93/devlink/internal/devenv"
)

// executeCommand runs the root command with args and returns its output.
// Global flag state is reset first since commands are package-level.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	GlobalOpts = GlobalOptions{LogLevel: "error"}
	renderOpts = RenderOptions{}
	mergeDepsOnly = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// setupTestWorkspace creates examples/react linking packages/core and
// returns the workspace root.
func setupTestWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "packages", "core", "package.json"), `{"name": "core", "dependencies": {"b": "2.0"}}`)
	writeTestFile(t, filepath.Join(root, "packages", "core", "index.js"), "core")
	writeTestFile(t, filepath.Join(root, "examples", "react", "package.json"), `{"name": "react", "external": {"a": "1.0"}, "local": {"core": "*"}}`)
	writeTestFile(t, filepath.Join(root, "examples", "react", "node_modules", ".vite", "deps.json"), "{}")
	return root
}

func TestMergeCommand(t *testing.T) {
	root := setupTestWorkspace(t)
	manifestPath := filepath.Join(root, "examples", "react", "package.json")
	before, _ := os.ReadFile(manifestPath)

	out, err := executeCommand(t, "merge", "--root", root, "--project-dir", filepath.Join(root, "examples", "react"))
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	want := `{
  "name": "react",
  "external": {
    "a": "1.0"
  },
  "local": {
    "core": "*"
  },
  "dependencies": {
    "a": "1.0",
    "b": "2.0"
  }
}
`
	if out != want {
		t.Errorf("expected\n%s\ngot\n%s", want, out)
	}

	after, _ := os.ReadFile(manifestPath)
	if !bytes.Equal(before, after) {
		t.Error("merge should not modify the manifest")
	}
}

func TestMergeCommand_DepsOnly(t *testing.T) {
	root := setupTestWorkspace(t)

	out, err := executeCommand(t, "merge", "--deps-only", "--project-dir", filepath.Join(root, "examples", "react"))
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	want := "{\n  \"a\": \"1.0\",\n  \"b\": \"2.0\"\n}\n"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestMissingExample_NoMutation(t *testing.T) {
	root := setupTestWorkspace(t)
	manifestPath := filepath.Join(root, "examples", "react", "package.json")
	before, _ := os.ReadFile(manifestPath)

	for _, command := range []string{"dev", "sync", "merge"} {
		t.Run(command, func(t *testing.T) {
			out, err := executeCommand(t, command, "--root", root, "--project-dir", filepath.Join(t.TempDir(), "vue"))
			if err != nil {
				t.Fatalf("expected clean exit, got %v", err)
			}
			if !strings.Contains(out, missingExampleMessage) {
				t.Errorf("expected message %q, got %q", missingExampleMessage, out)
			}
		})
	}

	after, _ := os.ReadFile(manifestPath)
	if !bytes.Equal(before, after) {
		t.Error("manifest was modified")
	}
	if _, err := os.Stat(filepath.Join(root, "examples", "react", "node_modules", ".vite")); err != nil {
		t.Error("caches should be left alone")
	}
}

func TestMissingWorkspace(t *testing.T) {
	out, err := executeCommand(t, "sync", "--project-dir", t.TempDir())
	if err != nil {
		t.Fatalf("expected clean exit, got %v", err)
	}
	if !strings.Contains(out, missingExampleMessage) {
		t.Errorf("expected message %q, got %q", missingExampleMessage, out)
	}
}

func TestSyncCommand(t *testing.T) {
	root := setupTestWorkspace(t)
	writeTestFile(t, filepath.Join(root, "devlink.yaml"), "install: [sh, -c, \"echo installed\"]\n")
	example := filepath.Join(root, "examples", "react")

	out, err := executeCommand(t, "sync", "--project-dir", example)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if !strings.Contains(out, "installed") {
		t.Errorf("expected install output, got %q", out)
	}

	data, err := os.ReadFile(filepath.Join(example, "node_modules", "core", "index.js"))
	if err != nil {
		t.Fatalf("local package not linked: %v", err)
	}
	if string(data) != "core" {
		t.Errorf("unexpected linked content %q", data)
	}
	if _, err := os.Stat(filepath.Join(example, "node_modules", ".vite")); !os.IsNotExist(err) {
		t.Error("expected .vite cache to be removed")
	}
}

func TestSyncCommand_InstallFailure(t *testing.T) {
	root := setupTestWorkspace(t)
	writeTestFile(t, filepath.Join(root, "devlink.yaml"), "install: [sh, -c, \"exit 4\"]\n")

	_, err := executeCommand(t, "sync", "--project-dir", filepath.Join(root, "examples", "react"))
	if err == nil {
		t.Fatal("expected install failure")
	}
	if code := devenv.ExitCode(err); code != 4 {
		t.Errorf("expected exit code 4, got %d", code)
	}
}

func TestDevCommand_RunsTrailingCommand(t *testing.T) {
	root := setupTestWorkspace(t)
	writeTestFile(t, filepath.Join(root, "devlink.yaml"), "install: [\"true\"]\n")
	example := filepath.Join(root, "examples", "react")

	out, err := executeCommand(t, "dev", "--project-dir", example, "--", "sh", "-c", "cat node_modules/core/index.js")
	if err != nil {
		t.Fatalf("dev failed: %v", err)
	}
	if !strings.Contains(out, "core") {
		t.Errorf("expected trailing command output, got %q", out)
	}
}

func TestRenderCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	writeTestFile(t, path, "<html><body>Hi</body></html>")

	out, err := executeCommand(t, "render", path, "--html-attrs", ` lang="en"`)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if want := `<html lang="en"><body>Hi</body></html>`; out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestRenderCommand_InterpolateToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	output := filepath.Join(dir, "out.html")
	writeTestFile(t, path, "<html><head>${head}</head><body>${element}</body></html>")

	_, err := executeCommand(t, "render", path, "--interpolate", "--head", "<title>x</title>", "--element", "<p>y</p>", "-o", output)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if want := "<html><head><title>x</title></head><body><p>y</p></body></html>"; string(data) != want {
		t.Errorf("expected %q, got %q", want, data)
	}
}

func TestRenderCommand_SyntaxError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	writeTestFile(t, path, "<html><body>${nope}</body></html>")

	if _, err := executeCommand(t, "render", path, "--interpolate"); err == nil {
		t.Error("expected syntax error")
	}
}

func TestConfigCommand(t *testing.T) {
	root := setupTestWorkspace(t)
	writeTestFile(t, filepath.Join(root, "devlink.yaml"), "clean: []\n")

	out, err := executeCommand(t, "config", "--root", root)
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	for _, want := range []string{"Workspace: " + root, "packages_dir: packages", "clean: (empty)", "install: npm install -f"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}
