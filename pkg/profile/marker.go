package profile

import (
	"encoding/json"
	"os"
	"time"

	"github.com/provide-io/crafter/pkg/download"
	crerrors "github.com/provide-io/crafter/pkg/errors"
)

// CompletionMarker records a finished install. It is informational; cache
// hits decide what an install actually fetches.
type CompletionMarker struct {
	Timestamp time.Time `json:"timestamp"`
	Profile   string    `json:"profile"`
	Version   string    `json:"version"`
}

// MarkComplete writes the completion marker for version.
func MarkComplete(paths *Paths, version string) error {
	data, err := json.MarshalIndent(CompletionMarker{
		Timestamp: time.Now().UTC(),
		Profile:   paths.name,
		Version:   version,
	}, "", "  ")
	if err != nil {
		return err
	}
	return download.WriteFile(paths.CompleteFile(), data)
}

// MarkIncomplete removes the completion marker.
func MarkIncomplete(paths *Paths) error {
	if err := os.Remove(paths.CompleteFile()); err != nil && !os.IsNotExist(err) {
		return &crerrors.FSError{Op: "remove", Path: paths.CompleteFile(), Err: err}
	}
	return nil
}

// IsComplete reports whether a marker for version exists.
func IsComplete(paths *Paths, version string) bool {
	data, err := os.ReadFile(paths.CompleteFile())
	if err != nil {
		return false
	}
	var marker CompletionMarker
	if err := json.Unmarshal(data, &marker); err != nil {
		return false
	}
	return marker.Version == version
}
