// SPDX-License-Identifier: Apache-2.0
// Package profile manages named game installations: the registry file,
// each profile's directory and config overrides, and the install lock.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/provide-io/crafter/pkg/download"
	crerrors "github.com/provide-io/crafter/pkg/errors"
)

// Profile is a named installation of one game version.
type Profile struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ValidateName rejects names that cannot be a single directory component.
func ValidateName(name string) error {
	if name == "" || name == "." || strings.ContainsAny(name, `/\`) || !filepath.IsLocal(name) {
		return &crerrors.ProfileError{Name: name, Err: errors.New("invalid profile name")}
	}
	return nil
}

// Registry is the list of known profiles, persisted as a JSON array.
type Registry struct {
	path     string
	profiles []Profile
}

// OpenRegistry reads the registry at path. A missing or empty file is an
// empty registry.
func OpenRegistry(path string) (*Registry, error) {
	r := &Registry{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, &crerrors.FSError{Op: "read", Path: path, Err: err}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return r, nil
	}

	if err := json.Unmarshal(jsonc.ToJSON(data), &r.profiles); err != nil {
		return nil, &crerrors.ConfigError{Err: fmt.Errorf("profile registry %s: %w", path, err)}
	}
	return r, nil
}

// List returns the profiles in registration order.
func (r *Registry) List() []Profile {
	return append([]Profile(nil), r.profiles...)
}

// Get returns the profile called name.
func (r *Registry) Get(name string) (Profile, error) {
	for _, p := range r.profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, &crerrors.ProfileError{Name: name, Err: crerrors.ErrProfileNotFound}
}

// Add registers p and saves the registry.
func (r *Registry) Add(p Profile) error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	if _, err := r.Get(p.Name); err == nil {
		return &crerrors.ProfileError{Name: p.Name, Err: crerrors.ErrProfileExists}
	}
	r.profiles = append(r.profiles, p)
	return r.Save()
}

// Save writes the registry back to disk.
func (r *Registry) Save() error {
	profiles := r.profiles
	if profiles == nil {
		profiles = []Profile{}
	}
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return err
	}
	return download.WriteFile(r.path, append(data, '\n'))
}
