package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"compensation-dashboard/models"
)

func sampleRecords() []models.CompensationRecord {
	return []models.CompensationRecord{
		{JobCategory: "Data Scientists", Location: "California", Salary: 125000, Year: 2022, Source: models.SourceBLS},
		{JobCategory: "Software Developers", Location: "CA", ExperienceLevel: "II", Salary: 150000.5, Year: 2023, Source: models.SourceH1B},
	}
}

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "records.csv")

	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	if err := w.Write(sampleRecords()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want 3", len(rows))
	}
	if strings.Join(rows[0], ",") != "job_category,location,experience_level,salary,year,source" {
		t.Errorf("header: got %v", rows[0])
	}
	if strings.Join(rows[2], ",") != "Software Developers,CA,II,150000.50,2023,h1b" {
		t.Errorf("row 2: got %v", rows[2])
	}
}

func TestCSVWriterEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	if err := w.Write(nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	_ = w.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := strings.TrimSpace(string(data)); strings.Count(got, "\n") != 0 {
		t.Errorf("expected only the header, got %q", got)
	}
}

func TestInsertQuery(t *testing.T) {
	query, args := insertQuery(sampleRecords())

	if !strings.Contains(query, "($1,$2,$3,$4,$5,$6),($7,$8,$9,$10,$11,$12)") {
		t.Errorf("placeholders: got %s", query)
	}
	if len(args) != 12 {
		t.Fatalf("args: got %d, want 12", len(args))
	}
	if args[6] != "Software Developers" || args[11] != "h1b" {
		t.Errorf("args out of order: %v", args)
	}
}
