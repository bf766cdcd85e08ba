package profile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/crafter/pkg/download"
	crerrors "github.com/provide-io/crafter/pkg/errors"
)

// Lock is a held install lock.
type Lock struct {
	path   string
	logger hclog.Logger
}

// TryLock takes the profile's install lock, a file holding the owner's PID.
// A lock left by a dead process is removed first. If a live process holds
// it, TryLock returns ErrInstallLocked.
func TryLock(paths *Paths, logger hclog.Logger) (*Lock, error) {
	if err := os.MkdirAll(paths.Dir(), download.DirPerms); err != nil {
		return nil, &crerrors.FSError{Op: "mkdir", Path: paths.Dir(), Err: err}
	}

	lockPath := paths.LockFile()
	if data, err := os.ReadFile(lockPath); err == nil {
		logger.Debug("🔍 Lock file exists, checking if it's stale...")
		pid, perr := strconv.Atoi(strings.TrimSpace(string(data)))
		switch {
		case perr != nil:
			logger.Info("🧹 Removing invalid lock file (couldn't parse PID)")
			os.Remove(lockPath)
		case !processAlive(pid):
			logger.Info("🧹 Removing stale lock from dead process", "pid", pid)
			os.Remove(lockPath)
		default:
			logger.Debug("🔒 Lock held by active process", "pid", pid)
			return nil, &crerrors.ProfileError{Name: paths.name, Err: crerrors.ErrInstallLocked}
		}
	}

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, download.FilePerms)
	if err != nil {
		if os.IsExist(err) {
			return nil, &crerrors.ProfileError{Name: paths.name, Err: crerrors.ErrInstallLocked}
		}
		return nil, &crerrors.FSError{Op: "create", Path: lockPath, Err: err}
	}
	defer file.Close()

	pid := os.Getpid()
	if _, err := fmt.Fprintf(file, "%d\n", pid); err != nil {
		os.Remove(lockPath)
		return nil, &crerrors.FSError{Op: "write", Path: lockPath, Err: err}
	}

	logger.Debug("🔒 Acquired install lock", "pid", pid)
	return &Lock{path: lockPath, logger: logger}, nil
}

// Release removes the lock file.
func (l *Lock) Release() {
	if err := os.Remove(l.path); err != nil {
		l.logger.Debug("⚠️ Failed to remove lock file", "error", err)
		return
	}
	l.logger.Debug("🔓 Released install lock")
}
