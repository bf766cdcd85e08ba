package download

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"

	crerrors "github.com/provide-io/crafter/pkg/errors"
	"github.com/provide-io/crafter/pkg/meta"
)

const (
	DirPerms  = 0o755
	FilePerms = 0o644
)

// Orchestrator serves artifacts from the on-disk cache, fetching and
// storing them on a miss.
type Orchestrator struct {
	fetcher Fetcher
	logger  hclog.Logger
}

// New creates an Orchestrator over fetcher.
func New(fetcher Fetcher, logger hclog.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
		logger:  logger.Named("download"),
	}
}

// Fetcher returns the fetcher used on cache misses.
func (o *Orchestrator) Fetcher() Fetcher {
	return o.fetcher
}

// TargetPath is where dl is cached under baseDir: baseDir joined with the
// download's sub-path, or baseDir itself when it has none.
func TargetPath(dl meta.Download, baseDir string) (string, error) {
	if dl.Path == "" {
		return baseDir, nil
	}
	rel := filepath.FromSlash(dl.Path)
	if !filepath.IsLocal(rel) {
		return "", &crerrors.DescriptorError{
			Source: dl.URL,
			Err:    fmt.Errorf("download path %q escapes its base directory", dl.Path),
		}
	}
	return filepath.Join(baseDir, rel), nil
}

// FetchOrCached returns the cached bytes of dl if its target path exists,
// with no network access. Otherwise it downloads dl, stores it at the target
// path and returns the bytes. Neither path checks SHA1 or Size.
func (o *Orchestrator) FetchOrCached(ctx context.Context, dl meta.Download, baseDir string) ([]byte, error) {
	path, err := TargetPath(dl, baseDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err == nil {
		o.logger.Trace("📦 Cache hit", "path", path)
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, &crerrors.FSError{Op: "read", Path: path, Err: err}
	}

	data, err = o.fetcher.Get(ctx, dl.URL)
	if err != nil {
		return nil, err
	}
	if err := WriteFile(path, data); err != nil {
		return nil, err
	}
	o.logger.Debug("⬇️ Downloaded", "url", dl.URL, "path", path, "size", humanize.Bytes(uint64(len(data))))
	return data, nil
}

// WriteFile creates parent directories and publishes data at path with a
// rename, so a concurrent reader never sees a partial file.
func WriteFile(path string, data []byte) error {
	return WriteFileMode(path, data, FilePerms)
}

// WriteFileMode is WriteFile with explicit permission bits.
func WriteFileMode(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPerms); err != nil {
		return &crerrors.FSError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".partial-*")
	if err != nil {
		return &crerrors.FSError{Op: "create", Path: dir, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &crerrors.FSError{Op: "write", Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &crerrors.FSError{Op: "close", Path: tmpPath, Err: err}
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return &crerrors.FSError{Op: "chmod", Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &crerrors.FSError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
