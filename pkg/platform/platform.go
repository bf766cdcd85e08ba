// SPDX-License-Identifier: Apache-2.0
// Package platform describes the host operating system and architecture in
// the vocabulary used by version descriptors, and evaluates descriptor rules
// against it.
package platform

import (
	"fmt"
	"runtime"
)

// OSName is an operating system name as spelled in descriptor rules.
type OSName string

const (
	Linux   OSName = "linux"
	Windows OSName = "windows"
	OSX     OSName = "osx"
)

// Arch is a CPU architecture as spelled in descriptor rules.
type Arch string

const (
	X86    Arch = "x86"
	X86_64 Arch = "x86_64"
	ARM64  Arch = "arm64"
)

// Platform is the (OS, arch) pair rules are evaluated against.
type Platform struct {
	OS   OSName
	Arch Arch
}

// Detect maps the running host onto a Platform.
func Detect() (Platform, error) {
	return fromGo(runtime.GOOS, runtime.GOARCH)
}

// Current is Detect for hosts known to be supported; it panics otherwise.
func Current() Platform {
	p, err := Detect()
	if err != nil {
		panic(err)
	}
	return p
}

func fromGo(goos, goarch string) (Platform, error) {
	var p Platform
	switch goos {
	case "linux":
		p.OS = Linux
	case "windows":
		p.OS = Windows
	case "darwin":
		p.OS = OSX
	default:
		return Platform{}, fmt.Errorf("unsupported operating system %q", goos)
	}

	switch goarch {
	case "386":
		p.Arch = X86
	case "amd64":
		p.Arch = X86_64
	case "arm64":
		p.Arch = ARM64
	default:
		return Platform{}, fmt.Errorf("unsupported architecture %q", goarch)
	}
	return p, nil
}

// PathListSeparator is the classpath separator the game runtime expects on
// this platform.
func (p Platform) PathListSeparator() string {
	if p.OS == Windows {
		return ";"
	}
	return ":"
}

func (p Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}
