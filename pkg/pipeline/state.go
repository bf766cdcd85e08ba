package pipeline

import (
	"fmt"

	crerrors "github.com/provide-io/crafter/pkg/errors"
)

// State is a pipeline's progress through install and launch.
type State int

const (
	Uninitialized State = iota
	DescriptorReady
	AssetsInstalled
	LibrariesInstalled
	ClientJarInstalled
	Ready
	Running
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "UNINITIALIZED"
	case DescriptorReady:
		return "DESCRIPTOR_READY"
	case AssetsInstalled:
		return "ASSETS_INSTALLED"
	case LibrariesInstalled:
		return "LIBRARIES_INSTALLED"
	case ClientJarInstalled:
		return "CLIENT_JAR_INSTALLED"
	case Ready:
		return "READY"
	case Running:
		return "RUNNING"
	case Succeeded:
		return "SUCCEEDED"
	case Failed:
		return "FAILED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// isAllowedTransition accepts each install stage's successor, the exits
// from Running, and a reset to Uninitialized from anywhere but Running.
func isAllowedTransition(from, to State) bool {
	switch {
	case to == Uninitialized:
		return from != Running
	case from == Running:
		return to == Succeeded || to == Failed
	case from < Running:
		return to == from+1
	default:
		return false
	}
}

// transition moves s from -> to, or fails with ErrInvalidTransition.
func transition(s *State, from, to State) error {
	if *s != from {
		return fmt.Errorf("%w: expected %s, got %s", crerrors.ErrInvalidTransition, from, *s)
	}
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", crerrors.ErrInvalidTransition, from, to)
	}
	*s = to
	return nil
}
