// SPDX-License-Identifier: Apache-2.0
// Package errors holds the launcher's error taxonomy. Sentinels are matched
// with errors.Is, the typed errors with errors.As.
package errors

import (
	"errors"
	"fmt"
)

var (
	// Descriptor errors 📜
	ErrVersionNotFound   = errors.New("❌ version not found in manifest")
	ErrAmbiguousNative   = errors.New("❌ more than one natives entry matches this platform")
	ErrMissingClassifier = errors.New("❌ natives entry names an undeclared classifier")

	// Profile errors 👤
	ErrProfileNotFound = errors.New("❌ profile not found")
	ErrProfileExists   = errors.New("❌ profile already exists")

	// Configuration errors ⚙️
	ErrMissingConfigKey = errors.New("❌ required config key missing")
	ErrNoJava           = errors.New("❌ no java installation found")

	// Pipeline errors 🚀
	ErrInvalidTransition = errors.New("❌ invalid pipeline state transition")
	ErrInstallLocked     = errors.New("❌ profile is being installed by another process")
)

// TransportKind classifies a failed HTTP fetch.
type TransportKind int

const (
	KindNetwork TransportKind = iota
	KindTimeout
	KindInvalidURL
	KindStatus
)

func (k TransportKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindInvalidURL:
		return "invalid url"
	case KindStatus:
		return "bad status"
	default:
		return "network"
	}
}

// TransportError is returned for any failed artifact download.
type TransportError struct {
	URL    string
	Kind   TransportKind
	Status int // set when Kind == KindStatus
	Err    error
}

func (e *TransportError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("download %s: status %d", e.URL, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("download %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("download %s: %s", e.URL, e.Kind)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FSError wraps a filesystem failure with the operation and path involved.
type FSError struct {
	Op   string
	Path string
	Err  error
}

func (e *FSError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FSError) Unwrap() error { return e.Err }

// ArchiveKind classifies an extraction failure.
type ArchiveKind int

const (
	KindCorrupt ArchiveKind = iota
	KindUnsafePath
)

func (k ArchiveKind) String() string {
	if k == KindUnsafePath {
		return "unsafe entry path"
	}
	return "corrupt archive"
}

// ArchiveError is returned when a natives archive cannot be unpacked.
type ArchiveError struct {
	Entry string
	Kind  ArchiveKind
	Err   error
}

func (e *ArchiveError) Error() string {
	msg := e.Kind.String()
	if e.Entry != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Entry)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// DescriptorError covers missing versions and malformed manifest,
// descriptor or asset index JSON, whether fetched or read from cache.
type DescriptorError struct {
	Source string
	Err    error
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("descriptor %s: %v", e.Source, e.Err)
}

func (e *DescriptorError) Unwrap() error { return e.Err }

// ProfileError reports a registry lookup or mutation failure.
type ProfileError struct {
	Name string
	Err  error
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("profile %q: %v", e.Name, e.Err)
}

func (e *ProfileError) Unwrap() error { return e.Err }

// ConfigError reports a missing or unusable configuration entry.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %q: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// LaunchError carries the non-zero exit code of the game process.
type LaunchError struct {
	Code int
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("game exited with code %d", e.Code)
}

// 🌶️☕🚀
