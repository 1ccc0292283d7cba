package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"booking-scraper/models"
)

// imageSeparator joins image URLs into a single CSV cell.
const imageSeparator = "|"

var csvHeader = []string{
	"url", "hotel_name", "address", "description", "review_score",
	"total_reviews", "check_in", "check_out", "image_count", "image_urls",
}

// CSVWriter writes scraped records to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteRecords appends one row per record. Absent fields are empty cells.
func (c *CSVWriter) WriteRecords(records []*models.HotelRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range records {
		row := []string{
			r.URL,
			models.Value(r.HotelName),
			models.Value(r.Address),
			models.Value(r.Description),
			models.Value(r.ReviewScore),
			models.Value(r.TotalReviews),
			models.Value(r.CheckIn),
			models.Value(r.CheckOut),
			strconv.Itoa(len(r.ImageURLs)),
			strings.Join(r.ImageURLs, imageSeparator),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
