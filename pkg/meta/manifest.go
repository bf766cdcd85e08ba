// SPDX-License-Identifier: Apache-2.0
// Package meta decodes the version manifest, per-version client descriptors
// and asset indexes, and answers the platform-dependent questions the
// installer asks of them.
package meta

import (
	"encoding/json"
	"fmt"

	crerrors "github.com/provide-io/crafter/pkg/errors"
)

// VersionKind is the release channel of a manifest entry.
type VersionKind string

const (
	Release  VersionKind = "release"
	Snapshot VersionKind = "snapshot"
	OldAlpha VersionKind = "old_alpha"
	OldBeta  VersionKind = "old_beta"
)

// ManifestVersion names where a version's descriptor lives.
type ManifestVersion struct {
	ID          string      `json:"id"`
	Type        VersionKind `json:"type,omitempty"`
	URL         string      `json:"url"`
	ReleaseTime string      `json:"releaseTime,omitempty"`
}

// LatestVersions points at the newest release and snapshot ids.
type LatestVersions struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

// VersionManifest is the top-level index of every published version, in
// the order the manifest lists them.
type VersionManifest struct {
	Latest   LatestVersions    `json:"latest"`
	Versions []ManifestVersion `json:"versions"`
}

// DecodeManifest parses manifest JSON.
func DecodeManifest(data []byte) (*VersionManifest, error) {
	var m VersionManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &crerrors.DescriptorError{Source: "version manifest", Err: err}
	}
	return &m, nil
}

// ResolveURL returns the descriptor URL for id.
func (m *VersionManifest) ResolveURL(id string) (string, error) {
	for _, v := range m.Versions {
		if v.ID == id {
			return v.URL, nil
		}
	}
	return "", &crerrors.DescriptorError{
		Source: fmt.Sprintf("version %q", id),
		Err:    crerrors.ErrVersionNotFound,
	}
}

// Filter returns the entries of the given kinds in manifest order. No kinds
// means every entry.
func (m *VersionManifest) Filter(kinds ...VersionKind) []ManifestVersion {
	if len(kinds) == 0 {
		return m.Versions
	}
	var out []ManifestVersion
	for _, v := range m.Versions {
		for _, k := range kinds {
			if v.Type == k {
				out = append(out, v)
				break
			}
		}
	}
	return out
}
