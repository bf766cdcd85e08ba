package profile

import (
	"path/filepath"
)

const (
	descriptorFile = "client.json"
	clientJarFile  = "client.jar"
	configFile     = "config.json"
	nativesDir     = ".natives"
	lockFile       = ".install.lock"
	completeFile   = ".install.complete"
)

// Paths names every file of one profile directory.
type Paths struct {
	profilesDir string
	name        string
}

// NewPaths returns the paths of profile name under profilesDir.
func NewPaths(profilesDir, name string) *Paths {
	return &Paths{profilesDir: profilesDir, name: name}
}

// Dir is the profile directory, also used as the game directory.
func (p *Paths) Dir() string {
	return filepath.Join(p.profilesDir, p.name)
}

func (p *Paths) Descriptor() string { return filepath.Join(p.Dir(), descriptorFile) }

func (p *Paths) ClientJar() string { return filepath.Join(p.Dir(), clientJarFile) }

// Config is the optional per-profile override file.
func (p *Paths) Config() string { return filepath.Join(p.Dir(), configFile) }

func (p *Paths) Natives() string { return filepath.Join(p.Dir(), nativesDir) }

func (p *Paths) LockFile() string { return filepath.Join(p.Dir(), lockFile) }

func (p *Paths) CompleteFile() string { return filepath.Join(p.Dir(), completeFile) }
