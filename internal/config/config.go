// Package config loads the optional devlink.yaml workspace configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up at the workspace root.
const FileName = "devlink.yaml"

// Default values for configuration fields
var (
	DefaultPackagesDir  = "packages"
	DefaultExamplesDir  = "examples"
	DefaultDepsDir      = "node_modules"
	DefaultManifestName = "package.json"
	DefaultNoticeMarker = "ℹ"
	DefaultClean        = []string{"vite", ".vite"}
	DefaultIgnore       = []string{"node_modules"}
	DefaultInstall      = []string{"npm", "install", "-f"}
)

// Config holds workspace layout and collaborator commands.
type Config struct {
	PackagesDir  string   `yaml:"packages_dir,omitempty"`
	ExamplesDir  string   `yaml:"examples_dir,omitempty"`
	DepsDir      string   `yaml:"deps_dir,omitempty"`
	ManifestName string   `yaml:"manifest_name,omitempty"`
	Clean        []string `yaml:"clean,omitempty"`   // entries removed from DepsDir before install
	Ignore       []string `yaml:"ignore,omitempty"`  // directory names the watchers skip
	Install      []string `yaml:"install,omitempty"` // argv of the install command
	NoticeMarker string   `yaml:"notice_marker,omitempty"`
}

// Default returns a configuration matching the conventional workspace layout.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.PackagesDir == "" {
		c.PackagesDir = DefaultPackagesDir
	}
	if c.ExamplesDir == "" {
		c.ExamplesDir = DefaultExamplesDir
	}
	if c.DepsDir == "" {
		c.DepsDir = DefaultDepsDir
	}
	if c.ManifestName == "" {
		c.ManifestName = DefaultManifestName
	}
	if c.NoticeMarker == "" {
		c.NoticeMarker = DefaultNoticeMarker
	}
	// nil means unset; an explicit empty list disables the step
	if c.Clean == nil {
		c.Clean = append([]string(nil), DefaultClean...)
	}
	if c.Ignore == nil {
		c.Ignore = append([]string(nil), DefaultIgnore...)
	}
	if len(c.Install) == 0 {
		c.Install = append([]string(nil), DefaultInstall...)
	}
}

// Validate checks that configured paths stay relative to the workspace.
func (c *Config) Validate() error {
	for name, dir := range map[string]string{
		"packages_dir": c.PackagesDir,
		"examples_dir": c.ExamplesDir,
		"deps_dir":     c.DepsDir,
	} {
		if filepath.IsAbs(dir) {
			return fmt.Errorf("%s must be relative, got %q", name, dir)
		}
	}
	for _, entry := range c.Clean {
		if entry == "" || filepath.IsAbs(entry) || entry == ".." || filepath.Dir(filepath.Clean(entry)) != "." {
			return fmt.Errorf("clean entry %q must be a plain name inside %s", entry, c.DepsDir)
		}
	}
	return nil
}

// Parse decodes YAML config data. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	c := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}
