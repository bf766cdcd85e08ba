package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/provide-io/crafter/internal/launcherdir"
)

const (
	DefaultManifestURL = "https://launchermeta.mojang.com/mc/game/version_manifest.json"
	DefaultAssetURL    = "https://resources.download.minecraft.net"
)

// Settings are the process-wide knobs read from the environment.
type Settings struct {
	Root               string        `env:"CRAFTER_ROOT"`
	ManifestURL        string        `env:"CRAFTER_MANIFEST_URL" envDefault:"https://launchermeta.mojang.com/mc/game/version_manifest.json"`
	AssetURL           string        `env:"CRAFTER_ASSET_URL" envDefault:"https://resources.download.minecraft.net"`
	AssetConcurrency   int           `env:"CRAFTER_ASSET_CONCURRENCY" envDefault:"20"`
	LibraryConcurrency int           `env:"CRAFTER_LIBRARY_CONCURRENCY" envDefault:"5"`
	HTTPTimeout        time.Duration `env:"CRAFTER_HTTP_TIMEOUT" envDefault:"60s"`
	JavaPaths          []string      `env:"CRAFTER_JAVA_PATHS" envSeparator:","`
}

// LoadSettings reads Settings from the process environment.
func LoadSettings() (*Settings, error) {
	return parseSettings(env.Options{})
}

// LoadSettingsFrom reads Settings from environ instead of the process
// environment.
func LoadSettingsFrom(environ map[string]string) (*Settings, error) {
	return parseSettings(env.Options{Environment: environ})
}

func parseSettings(opts env.Options) (*Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if s.Root == "" {
		s.Root = launcherdir.Default()
	}
	if s.AssetConcurrency < 1 || s.LibraryConcurrency < 1 {
		return nil, fmt.Errorf("parse env: concurrency budgets must be positive (assets %d, libraries %d)",
			s.AssetConcurrency, s.LibraryConcurrency)
	}
	return &s, nil
}

// Layout returns the directory layout under the configured root.
func (s *Settings) Layout() launcherdir.Layout {
	return launcherdir.Layout{Root: s.Root}
}
