package logging

import (
	"bytes"
	"io"
	"sync"
)

// PrefixWriter writes a prefix before every complete line. A trailing
// partial line is held until its newline arrives.
type PrefixWriter struct {
	mu      sync.Mutex
	prefix  []byte
	writer  io.Writer
	pending []byte
}

// NewPrefixWriter creates a PrefixWriter over w.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{prefix: []byte(prefix), writer: w}
}

func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	pw.pending = append(pw.pending, p...)
	for {
		i := bytes.IndexByte(pw.pending, '\n')
		if i < 0 {
			break
		}
		line := pw.pending[:i+1]
		if _, err := pw.writer.Write(append(append([]byte(nil), pw.prefix...), line...)); err != nil {
			return 0, err
		}
		pw.pending = pw.pending[i+1:]
	}
	if len(pw.pending) == 0 {
		pw.pending = nil
	}
	return len(p), nil
}

// Flush writes any held partial line.
func (pw *PrefixWriter) Flush() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	if len(pw.pending) == 0 {
		return nil
	}
	_, err := pw.writer.Write(append(append([]byte(nil), pw.prefix...), pw.pending...))
	pw.pending = nil
	return err
}
