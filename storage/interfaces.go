package storage

import "compensation-dashboard/models"

// RecordWriter is the interface any storage backend must satisfy.
type RecordWriter interface {
	Write(records []models.CompensationRecord) error
	Close() error
}

// RecordReader loads a previously persisted dataset.
type RecordReader interface {
	FetchAll() ([]models.CompensationRecord, error)
	Close() error
}
