// Package launcherdir locates the launcher's data root and lays out its
// directory tree.
package launcherdir

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "crafter"

// Default returns the platform default data root. CRAFTER_ROOT overrides it
// through config.Settings, not here.
func Default() string {
	return defaultFor(runtime.GOOS, os.Getenv)
}

func defaultFor(goos string, getenv func(string) string) string {
	switch goos {
	case "darwin":
		if home := getenv("HOME"); home != "" {
			return filepath.Join(home, "Library", "Application Support", appName)
		}
	case "linux":
		if xdgData := getenv("XDG_DATA_HOME"); xdgData != "" {
			return filepath.Join(xdgData, appName)
		}
		if home := getenv("HOME"); home != "" {
			return filepath.Join(home, ".local", "share", appName)
		}
	case "windows":
		if appData := getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
		if localAppData := getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, appName)
		}
	}

	return filepath.Join(os.TempDir(), appName)
}

// Layout names the fixed directories under a data root.
type Layout struct {
	Root string
}

func (l Layout) Libraries() string    { return filepath.Join(l.Root, "libraries") }
func (l Layout) Assets() string       { return filepath.Join(l.Root, "assets") }
func (l Layout) AssetIndexes() string { return filepath.Join(l.Root, "assets", "indexes") }
func (l Layout) AssetObjects() string { return filepath.Join(l.Root, "assets", "objects") }
func (l Layout) Profiles() string     { return filepath.Join(l.Root, "profiles") }
func (l Layout) Registry() string     { return filepath.Join(l.Root, "profiles.json") }
func (l Layout) GlobalConfig() string { return filepath.Join(l.Root, "config.json") }
func (l Layout) Manifest() string     { return filepath.Join(l.Root, "version_manifest.json") }

// Create makes the root and its fixed subdirectories.
func (l Layout) Create() error {
	for _, dir := range []string{l.Root, l.Libraries(), l.AssetIndexes(), l.AssetObjects(), l.Profiles()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
