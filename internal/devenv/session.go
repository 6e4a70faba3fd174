// Package devenv prepares an example project for development against the
// workspace's local packages.
//
// A session merges the example's external dependencies with those of its
// local packages, rewrites the example manifest, runs the installer, copies
// every local package into the example's dependency directory and keeps
// those copies in sync while a foreground command runs.
package devenv

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/ohare93/devlink/internal/manifest"
	"github.com/ohare93/devlink/internal/workspace"
)

// Session operates on one example of a workspace.
type Session struct {
	Workspace *workspace.Context
	Example   *workspace.Example
	Runner    Runner
	Notifier  Notifier
	Logger    *slog.Logger
	WorkDir   string // Where the trailing command runs; defaults to the example dir
}

// Plan is the result of merging an example's dependencies.
type Plan struct {
	Manifest *manifest.Manifest // manifest to write, dependencies replaced
	Locals   []manifest.LocalPackage
	Merged   *manifest.Deps
}

// Clean removes the configured build-tool caches from the example's
// dependency directory. Entries that do not exist are skipped.
func (s *Session) Clean() error {
	for _, entry := range s.Workspace.Config.Clean {
		path := filepath.Join(s.Example.DepsDir(), entry)
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to clean %s: %w", path, err)
		}
		s.logger().Debug("cleaned", "path", path)
	}
	return nil
}

// Plan loads the example manifest and the manifests of its local packages
// and computes the merged dependency mapping. Nothing is written.
func (s *Session) Plan() (*Plan, error) {
	tmpl, err := manifest.Load(s.Example.ManifestPath())
	if err != nil {
		return nil, err
	}

	external, err := tmpl.Deps(manifest.FieldExternal)
	if err != nil {
		return nil, err
	}
	local, err := tmpl.Deps(manifest.FieldLocal)
	if err != nil {
		return nil, err
	}

	locals, err := manifest.LoadLocalPackages(s.Workspace.PackagesDir(), s.Workspace.Config.ManifestName, local.Names())
	if err != nil {
		return nil, err
	}

	merged, err := manifest.Merge(external, locals)
	if err != nil {
		return nil, err
	}

	out, err := tmpl.WithDeps(manifest.FieldDependencies, merged)
	if err != nil {
		return nil, err
	}

	return &Plan{Manifest: out, Locals: locals, Merged: merged}, nil
}

// Sync runs the one-shot part of a session: clean, merge, write the
// manifest, install and copy each local package into place.
func (s *Session) Sync(ctx context.Context) (*Plan, error) {
	plan, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}
	for _, pkg := range plan.Locals {
		if err := s.copyLocal(pkg); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

// Dev runs a full session. Each local package is watched and copied into
// place, then command runs in the foreground. The session ends when the
// command exits, when ctx is cancelled, or when a link fails. With no
// command, the session lasts until ctx is cancelled.
func (s *Session) Dev(ctx context.Context, command []string) error {
	lock, err := AcquireLock(s.Example.Dir)
	if err != nil {
		return err
	}
	defer lock.Release()

	plan, err := s.prepare(ctx)
	if err != nil {
		return err
	}

	links := make([]*Link, 0, len(plan.Locals))
	closeLinks := func() {
		for _, l := range links {
			l.Close()
		}
	}
	for _, pkg := range plan.Locals {
		// The watcher starts before the copy so that edits made while later
		// packages are still copying trigger a recopy.
		link, err := NewLink(pkg.Name, pkg.Dir, s.Example.LinkDir(pkg.Name), s.Workspace.Config.Ignore)
		if err != nil {
			closeLinks()
			return err
		}
		links = append(links, link)
		s.logger().Debug("watching local package", "package", pkg.Name, "src", pkg.Dir)

		if err := s.copyLocal(pkg); err != nil {
			closeLinks()
			return err
		}
	}

	return s.supervise(ctx, links, command)
}

// prepare cleans the caches, writes the merged manifest and runs the
// installer.
func (s *Session) prepare(ctx context.Context) (*Plan, error) {
	log := s.logger()

	if err := s.Clean(); err != nil {
		return nil, err
	}

	plan, err := s.Plan()
	if err != nil {
		return nil, err
	}

	if err := manifest.Write(s.Example.ManifestPath(), plan.Manifest); err != nil {
		return nil, err
	}
	log.Info("wrote manifest", "path", s.Example.ManifestPath(), "dependencies", plan.Merged.Len())

	log.Info("installing dependencies", "command", s.Workspace.Config.Install)
	if err := s.Runner.Run(ctx, s.Example.Dir, s.Workspace.Config.Install); err != nil {
		return nil, fmt.Errorf("install failed: %w", err)
	}
	return plan, nil
}

func (s *Session) copyLocal(pkg manifest.LocalPackage) error {
	if err := copyTree(pkg.Dir, s.Example.LinkDir(pkg.Name)); err != nil {
		return fmt.Errorf("local package %s: %w", pkg.Name, err)
	}
	s.logger().Info("linked local package", "package", pkg.Name)
	return nil
}

func (s *Session) supervise(ctx context.Context, links []*Link, command []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, link := range links {
		g.Go(func() error {
			return link.Run(gctx, s.Notifier, s.logger())
		})
	}

	if len(command) > 0 {
		g.Go(func() error {
			defer cancel()
			err := s.Runner.Run(gctx, s.workDir(), command)
			if err != nil && ctx.Err() != nil {
				// Interrupted from outside; the command's exit is expected
				return nil
			}
			return err
		})
	} else {
		g.Go(func() error {
			<-gctx.Done()
			return nil
		})
	}

	return g.Wait()
}

func (s *Session) workDir() string {
	if s.WorkDir != "" {
		return s.WorkDir
	}
	return s.Example.Dir
}

func (s *Session) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
