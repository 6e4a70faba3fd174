package manifest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidPackageName is returned for local package names that would
// resolve outside the packages directory.
var ErrInvalidPackageName = errors.New("invalid local package name")

// LocalPackage is a workspace package linked into an example.
type LocalPackage struct {
	Name     string
	Dir      string
	Manifest *Manifest
}

// LoadLocalPackages loads the manifest of each named package under
// packagesDir, preserving the order of names.
func LoadLocalPackages(packagesDir, manifestName string, names []string) ([]LocalPackage, error) {
	pkgs := make([]LocalPackage, 0, len(names))
	for _, name := range names {
		if err := ValidatePackageName(name); err != nil {
			return nil, err
		}
		dir := filepath.Join(packagesDir, name)
		m, err := Load(filepath.Join(dir, manifestName))
		if err != nil {
			return nil, fmt.Errorf("local package %s: %w", name, err)
		}
		pkgs = append(pkgs, LocalPackage{Name: name, Dir: dir, Manifest: m})
	}
	return pkgs, nil
}

// ValidatePackageName rejects names that are empty, absolute or contain a
// ".." element. Scoped names such as "@scope/pkg" are accepted.
func ValidatePackageName(name string) error {
	if name == "" || filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidPackageName, name)
	}
	for _, elem := range strings.Split(filepath.ToSlash(filepath.Clean(name)), "/") {
		if elem == ".." || elem == "." {
			return fmt.Errorf("%w: %q", ErrInvalidPackageName, name)
		}
	}
	return nil
}

// Merge overlays the dependencies of each local package onto a copy of
// external. Packages are applied in order, so on a name collision the
// package listed last wins. external itself is left untouched.
func Merge(external *Deps, locals []LocalPackage) (*Deps, error) {
	merged := external.Clone()
	for _, pkg := range locals {
		deps, err := pkg.Manifest.Deps(FieldDependencies)
		if err != nil {
			return nil, fmt.Errorf("local package %s: %w", pkg.Name, err)
		}
		merged.Overlay(deps)
	}
	return merged, nil
}
