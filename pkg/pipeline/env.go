// SPDX-License-Identifier: Apache-2.0
// Package pipeline installs a profile's files and launches the game: it
// sequences the descriptor, asset, library and client jar stages through a
// small state machine, then templates the command line and runs it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/crafter/internal/launcherdir"
	"github.com/provide-io/crafter/pkg/config"
	"github.com/provide-io/crafter/pkg/download"
	crerrors "github.com/provide-io/crafter/pkg/errors"
	"github.com/provide-io/crafter/pkg/java"
	"github.com/provide-io/crafter/pkg/meta"
	"github.com/provide-io/crafter/pkg/platform"
	"github.com/provide-io/crafter/pkg/profile"
)

// Env is everything a run of the launcher shares: settings, the data root,
// the download orchestrator, discovered Java runtimes, the global config
// and the profile registry. Build it once with NewEnv and pass it down.
type Env struct {
	Settings     *config.Settings
	Layout       launcherdir.Layout
	Platform     platform.Platform
	Orchestrator *download.Orchestrator
	Java         java.List
	Global       config.Config
	Registry     *profile.Registry

	logger hclog.Logger

	manifestMu sync.Mutex
	manifest   *meta.VersionManifest
}

type envOptions struct {
	fetcher  download.Fetcher
	prober   java.Prober
	platform *platform.Platform
}

// Option customizes NewEnv.
type Option func(*envOptions)

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f download.Fetcher) Option {
	return func(o *envOptions) { o.fetcher = f }
}

// WithJavaProber replaces the `java -version` probe.
func WithJavaProber(p java.Prober) Option {
	return func(o *envOptions) { o.prober = p }
}

// WithPlatform evaluates rules for p instead of the host.
func WithPlatform(p platform.Platform) Option {
	return func(o *envOptions) { o.platform = &p }
}

// NewEnv prepares the data root and loads the shared state. The global
// config is created on first run, pointing at the newest Java found.
func NewEnv(ctx context.Context, settings *config.Settings, logger hclog.Logger, opts ...Option) (*Env, error) {
	var o envOptions
	for _, opt := range opts {
		opt(&o)
	}

	var plat platform.Platform
	if o.platform != nil {
		plat = *o.platform
	} else {
		p, err := platform.Detect()
		if err != nil {
			return nil, err
		}
		plat = p
	}
	if o.fetcher == nil {
		o.fetcher = download.NewHTTPFetcher(settings.HTTPTimeout, logger)
	}
	if o.prober == nil {
		o.prober = java.ExecProber
	}

	layout := settings.Layout()
	if err := layout.Create(); err != nil {
		return nil, &crerrors.FSError{Op: "mkdir", Path: layout.Root, Err: err}
	}
	logger.Debug("📁 Data root ready", "root", layout.Root, "platform", plat.String())

	javas := java.Discover(ctx, java.Candidates(settings.JavaPaths), o.prober, logger)
	var javaPath string
	if latest, err := javas.Latest(); err == nil {
		javaPath = latest.Path
	}

	global, err := config.LoadGlobal(layout.GlobalConfig(), javaPath, logger)
	if err != nil {
		return nil, err
	}

	registry, err := profile.OpenRegistry(layout.Registry())
	if err != nil {
		return nil, err
	}

	return &Env{
		Settings:     settings,
		Layout:       layout,
		Platform:     plat,
		Orchestrator: download.New(o.fetcher, logger),
		Java:         javas,
		Global:       global,
		Registry:     registry,
		logger:       logger,
	}, nil
}

// Manifest returns the version manifest, fetching it on first use. A fresh
// copy that decodes is cached on disk; when the fetch fails or the body is
// malformed the cached copy is used.
func (e *Env) Manifest(ctx context.Context) (*meta.VersionManifest, error) {
	e.manifestMu.Lock()
	defer e.manifestMu.Unlock()
	if e.manifest != nil {
		return e.manifest, nil
	}

	cachePath := e.Layout.Manifest()
	data, fetchErr := e.Orchestrator.Fetcher().Get(ctx, e.Settings.ManifestURL)
	if fetchErr == nil {
		m, err := meta.DecodeManifest(data)
		if err == nil {
			if err := download.WriteFile(cachePath, data); err != nil {
				e.logger.Warn("⚠️ Failed to cache version manifest", "error", err)
			}
			e.manifest = m
			return m, nil
		}
		fetchErr = err
	}

	e.logger.Warn("⚠️ Version manifest unavailable, using cached copy", "error", fetchErr)
	cached, err := os.ReadFile(cachePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fetchErr
	}
	if err != nil {
		return nil, &crerrors.FSError{Op: "read", Path: cachePath, Err: err}
	}
	m, err := meta.DecodeManifest(cached)
	if err != nil {
		return nil, err
	}
	e.manifest = m
	return m, nil
}

// Profile returns the registered profile called name and its paths.
func (e *Env) Profile(name string) (profile.Profile, *profile.Paths, error) {
	p, err := e.Registry.Get(name)
	if err != nil {
		return profile.Profile{}, nil, err
	}
	return p, profile.NewPaths(e.Layout.Profiles(), p.Name), nil
}

// CreateProfile registers a profile for version. The descriptor is fetched
// and cached right away, and if it asks for a Java release that is
// installed, the profile is pointed at it.
func (e *Env) CreateProfile(ctx context.Context, name, version string) (profile.Profile, error) {
	if err := profile.ValidateName(name); err != nil {
		return profile.Profile{}, err
	}
	if _, err := e.Registry.Get(name); err == nil {
		return profile.Profile{}, &crerrors.ProfileError{Name: name, Err: crerrors.ErrProfileExists}
	}

	p := profile.Profile{Name: name, Version: version}
	paths := profile.NewPaths(e.Layout.Profiles(), name)
	desc, err := e.descriptor(ctx, p, paths)
	if err != nil {
		return profile.Profile{}, err
	}

	if jv := desc.JavaVersion; jv != nil && jv.MajorVersion > 0 {
		if inst, ok := e.Java.ForMajor(jv.MajorVersion); ok {
			path := inst.Path
			if err := profile.EditConfig(paths, config.KeyJavaPath, &path, e.logger); err != nil {
				return profile.Profile{}, err
			}
			e.logger.Info("☕ Selected java for profile", "profile", name, "major", jv.MajorVersion, "path", path)
		} else {
			e.logger.Warn("⚠️ Required java release not installed, using global java", "profile", name, "major", jv.MajorVersion)
		}
	}

	if err := e.Registry.Add(p); err != nil {
		return profile.Profile{}, err
	}
	e.logger.Info("✨ Created profile", "profile", name, "version", version)
	return p, nil
}

// descriptor returns the profile's client.json, reading the cached copy
// when present and otherwise resolving it through the manifest. A cached
// copy that does not parse is an error, not a miss.
func (e *Env) descriptor(ctx context.Context, p profile.Profile, paths *profile.Paths) (*meta.ClientDescriptor, error) {
	path := paths.Descriptor()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		e.logger.Trace("📦 Cached descriptor", "path", path)
	case errors.Is(err, fs.ErrNotExist):
		m, err := e.Manifest(ctx)
		if err != nil {
			return nil, err
		}
		url, err := m.ResolveURL(p.Version)
		if err != nil {
			return nil, err
		}
		data, err = e.Orchestrator.FetchOrCached(ctx, meta.Download{URL: url}, path)
		if err != nil {
			return nil, err
		}
	default:
		return nil, &crerrors.FSError{Op: "read", Path: path, Err: err}
	}

	desc, err := meta.DecodeDescriptor(data, path)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return desc, nil
}
