package report

import (
	"encoding/json"
	"io"
	"sync"

	"example.com/timexdr/internal/session"
)

type flusher interface {
	Flush() error
}

// NDJSONWriter streams newline-delimited JSON objects to the underlying writer.
type NDJSONWriter struct {
	mu      sync.Mutex
	writer  io.Writer
	flusher flusher
}

// NewNDJSONWriter wraps w. If w has a Flush method (a *bufio.Writer, for
// example) it is called after every record.
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	var f flusher
	if ff, ok := w.(flusher); ok {
		f = ff
	}
	return &NDJSONWriter{writer: w, flusher: f}
}

// WriteSession writes the decoded session as a single NDJSON record.
func (w *NDJSONWriter) WriteSession(d *session.Decoded) error {
	return w.WriteObject(d)
}

// WriteObject marshals v, writes it followed by a newline and flushes.
func (w *NDJSONWriter) WriteObject(v any) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.writer.Write(data); err != nil {
		return err
	}
	if _, err := w.writer.Write([]byte("\n")); err != nil {
		return err
	}
	if w.flusher != nil {
		return w.flusher.Flush()
	}
	return nil
}
