package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"compensation-dashboard/apperr"
	"compensation-dashboard/models"
)

var csvHeader = []string{"job_category", "location", "experience_level", "salary", "year", "source"}

// CSVWriter exports unified records to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	closer io.Closer
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, apperr.Storage("csv: create output dir", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, apperr.Storage(fmt.Sprintf("csv: create file %q", path), err)
	}

	c, err := newCSVWriter(f, f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return c, nil
}

func newCSVWriter(w io.Writer, closer io.Closer) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return nil, apperr.Storage("csv: write header", err)
	}
	cw.Flush()
	return &CSVWriter{closer: closer, writer: cw}, nil
}

// Write appends the records to the file.
func (c *CSVWriter) Write(records []models.CompensationRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range records {
		row := []string{
			r.JobCategory,
			r.Location,
			r.ExperienceLevel,
			strconv.FormatFloat(r.Salary, 'f', 2, 64),
			strconv.Itoa(r.Year),
			string(r.Source),
		}
		if err := c.writer.Write(row); err != nil {
			return apperr.Storage("csv: write row", err)
		}
	}

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return apperr.Storage("csv: flush", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	if c.closer == nil {
		return c.writer.Error()
	}
	return c.closer.Close()
}
