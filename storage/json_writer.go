package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"booking-scraper/models"
)

// JSONWriter writes the run output: a JSON array with one object per
// record, pretty-printed with two-space indentation.
type JSONWriter struct {
	mu   sync.Mutex
	path string
}

// NewJSONWriter returns a writer targeting path. Nothing is created until
// WriteRecords is called.
func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

// Path returns the output file path.
func (j *JSONWriter) Path() string { return j.path }

// WriteRecords replaces the output file with records. The file is written
// to a temporary sibling and renamed into place, so readers never see a
// partial document.
func (j *JSONWriter) WriteRecords(records []*models.HotelRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if records == nil {
		records = []*models.HotelRecord{}
	}

	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("json: create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(j.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("json: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("json: encode records: %w", err)
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("json: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("json: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), j.path); err != nil {
		return fmt.Errorf("json: replace %q: %w", j.path, err)
	}
	return nil
}

// Close is a no-op; every WriteRecords call produces a complete file.
func (j *JSONWriter) Close() error { return nil }
