package main

import (
	"errors"

	crerrors "github.com/provide-io/crafter/pkg/errors"
)

// Exit codes
const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitPanic           = 101
	ExitDescriptorError = 102
	ExitArchiveError    = 103
	ExitLaunchFailure   = 104
	ExitInvalidArgs     = 105
	ExitIOError         = 106
	ExitDownloadError   = 107
	ExitProfileNotFound = 108
	ExitConfigError     = 109
)

// usageError marks errors caused by how the command was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// exitCode maps an error to the process exit code for its category.
func exitCode(err error) int {
	var (
		usage      *usageError
		launch     *crerrors.LaunchError
		transport  *crerrors.TransportError
		archive    *crerrors.ArchiveError
		descriptor *crerrors.DescriptorError
		cfg        *crerrors.ConfigError
		fsErr      *crerrors.FSError
		prof       *crerrors.ProfileError
	)

	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &usage):
		return ExitInvalidArgs
	case errors.As(err, &launch):
		return ExitLaunchFailure
	case errors.Is(err, crerrors.ErrProfileNotFound):
		return ExitProfileNotFound
	case errors.As(err, &transport):
		return ExitDownloadError
	case errors.As(err, &archive):
		return ExitArchiveError
	case errors.As(err, &descriptor):
		return ExitDescriptorError
	case errors.As(err, &cfg), errors.Is(err, crerrors.ErrNoJava):
		return ExitConfigError
	case errors.As(err, &fsErr):
		return ExitIOError
	case errors.As(err, &prof):
		return ExitInvalidArgs
	default:
		return ExitFailure
	}
}
