// SPDX-License-Identifier: Apache-2.0
// Package archive unpacks natives archives into a profile's natives
// directory.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zip"

	"github.com/provide-io/crafter/pkg/download"
	crerrors "github.com/provide-io/crafter/pkg/errors"
)

// Extract unpacks the zip archive in data into destDir. Entries whose path,
// or any ancestor directory of it, appears in exclude are skipped. An entry
// whose path is absolute or climbs out of destDir fails the whole
// extraction.
func Extract(data []byte, destDir string, exclude []string, logger hclog.Logger) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && zr == nil {
		return &crerrors.ArchiveError{Kind: crerrors.KindCorrupt, Err: err}
	}
	// A reader returned alongside an error flagged insecure names; those
	// are rejected entry by entry below.

	excluded := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		if clean := cleanEntryPath(e); clean != "" {
			excluded[clean] = true
		}
	}

	var written, skipped int
	var total uint64
	for _, f := range zr.File {
		rel, ok := safeEntryPath(f.Name)
		if !ok {
			return &crerrors.ArchiveError{Entry: f.Name, Kind: crerrors.KindUnsafePath}
		}
		if rel == "" || isExcluded(rel, excluded) {
			skipped++
			continue
		}

		target := filepath.Join(destDir, filepath.FromSlash(rel))
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, download.DirPerms); err != nil {
				return &crerrors.FSError{Op: "mkdir", Path: target, Err: err}
			}
			continue
		}

		n, err := writeEntry(f, target)
		if err != nil {
			return err
		}
		written++
		total += uint64(n)
	}

	logger.Debug("📂 Extracted archive",
		"dest", destDir,
		"files", written,
		"skipped", skipped,
		"exclude", describeExcludes(exclude),
		"size", humanize.Bytes(total))
	return nil
}

// writeEntry publishes one entry at target through a rename, so a file left
// read-only by an earlier extraction is replaced rather than reopened. The
// entry's own mode only decides whether the executable bit is set.
func writeEntry(f *zip.File, target string) (int64, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, &crerrors.ArchiveError{Entry: f.Name, Kind: crerrors.KindCorrupt, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return 0, &crerrors.ArchiveError{Entry: f.Name, Kind: crerrors.KindCorrupt, Err: err}
	}

	if err := download.WriteFileMode(target, data, entryPerms(f.Mode())); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func entryPerms(mode os.FileMode) os.FileMode {
	if mode&0o111 != 0 {
		return download.DirPerms
	}
	return download.FilePerms
}

// cleanEntryPath normalizes an archive or exclusion path to slash form
// without leading "./" or a trailing slash.
func cleanEntryPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	if p == "." || p == "/" {
		return ""
	}
	return strings.TrimSuffix(p, "/")
}

// safeEntryPath returns the cleaned relative path of an entry, or false if
// it is absolute, carries a drive letter, or escapes the destination.
func safeEntryPath(name string) (string, bool) {
	slashed := strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(slashed, "/") {
		return "", false
	}
	if len(slashed) >= 2 && slashed[1] == ':' {
		return "", false
	}
	clean := cleanEntryPath(slashed)
	if clean == "" {
		return "", true
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	if !filepath.IsLocal(filepath.FromSlash(clean)) {
		return "", false
	}
	return clean, true
}

func isExcluded(rel string, excluded map[string]bool) bool {
	for p := rel; p != "." && p != ""; p = path.Dir(p) {
		if excluded[p] {
			return true
		}
	}
	return false
}

// describeExcludes formats an exclusion list for logs.
func describeExcludes(exclude []string) string {
	if len(exclude) == 0 {
		return "none"
	}
	return fmt.Sprintf("%v", exclude)
}
