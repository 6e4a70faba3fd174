// Package workspace resolves the directories of a devlink workspace: the
// root holding the config, the local packages and the example projects.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ohare93/devlink/internal/config"
)

// ErrExampleNotFound is returned when the working directory does not name an
// example project.
var ErrExampleNotFound = errors.New("no example matches the working directory")

// ErrRootNotFound is returned when no workspace root encloses the start dir.
var ErrRootNotFound = errors.New("no devlink workspace found")

// Context holds the resolved paths and loaded config for a workspace.
type Context struct {
	Root   string
	Config *config.Config
}

// Load reads the config at configPath (default: devlink.yaml in root).
func Load(root, configPath string) (*Context, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}
	if configPath == "" {
		configPath = filepath.Join(root, config.FileName)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return &Context{Root: root, Config: cfg}, nil
}

// FindRoot walks up from start until it reaches a directory that holds a
// devlink.yaml, or both the default packages and examples directories.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving start dir: %w", err)
	}
	for {
		if isRoot(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w (searched upward from %s)", ErrRootNotFound, start)
		}
		dir = parent
	}
}

func isRoot(dir string) bool {
	if fileExists(filepath.Join(dir, config.FileName)) {
		return true
	}
	return dirExists(filepath.Join(dir, config.DefaultPackagesDir)) &&
		dirExists(filepath.Join(dir, config.DefaultExamplesDir))
}

// PackagesDir returns the directory holding local packages.
func (c *Context) PackagesDir() string {
	return filepath.Join(c.Root, c.Config.PackagesDir)
}

// PackageDir returns the source directory of a local package.
func (c *Context) PackageDir(name string) string {
	return filepath.Join(c.PackagesDir(), name)
}

// Example resolves the example project named after the base of cwd.
func (c *Context) Example(cwd string) (*Example, error) {
	name := filepath.Base(filepath.Clean(cwd))
	dir := filepath.Join(c.Root, c.Config.ExamplesDir, name)
	if name == "." || name == string(filepath.Separator) || !dirExists(dir) {
		return nil, ErrExampleNotFound
	}
	return &Example{Name: name, Dir: dir, cfg: c.Config}, nil
}

// Example is one example project inside the workspace.
type Example struct {
	Name string
	Dir  string
	cfg  *config.Config
}

// ManifestPath returns the path of the example's manifest.
func (e *Example) ManifestPath() string {
	return filepath.Join(e.Dir, e.cfg.ManifestName)
}

// DepsDir returns the example's install destination.
func (e *Example) DepsDir() string {
	return filepath.Join(e.Dir, e.cfg.DepsDir)
}

// LinkDir returns where a local package is copied to inside DepsDir.
func (e *Example) LinkDir(pkg string) string {
	return filepath.Join(e.DepsDir(), pkg)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
