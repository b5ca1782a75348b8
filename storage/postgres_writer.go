package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"compensation-dashboard/apperr"
	"compensation-dashboard/models"
)

const (
	pingAttempts = 10
	pingInterval = 2 * time.Second
	batchSize    = 200
	columnsPer   = 6
)

// PostgresWriter persists the unified dataset to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, apperr.Storage("postgres: open", err)
	}

	for i := 0; i < pingAttempts; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(pingInterval)
	}
	if err != nil {
		_ = db.Close()
		return nil, apperr.Storage("postgres: ping failed after retries", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, apperr.Storage("postgres: migrate", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS compensation_records (
			id               SERIAL PRIMARY KEY,
			job_category     TEXT          NOT NULL,
			location         TEXT          NOT NULL,
			experience_level TEXT          NOT NULL DEFAULT '',
			salary           NUMERIC(14,2) NOT NULL,
			year             INTEGER       NOT NULL,
			source           VARCHAR(16)   NOT NULL,
			created_at       TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_compensation_job      ON compensation_records(job_category);
		CREATE INDEX IF NOT EXISTS idx_compensation_location ON compensation_records(location);
		CREATE INDEX IF NOT EXISTS idx_compensation_year     ON compensation_records(year);
	`)
	return err
}

// Write replaces the stored dataset with records in a single transaction.
func (pw *PostgresWriter) Write(records []models.CompensationRecord) error {
	tx, err := pw.db.Begin()
	if err != nil {
		return apperr.Storage("postgres: begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM compensation_records"); err != nil {
		return apperr.Storage("postgres: clear", err)
	}

	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := insertBatch(tx, records[i:end]); err != nil {
			return apperr.Storage(fmt.Sprintf("postgres: insert batch at %d", i), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Storage("postgres: commit", err)
	}
	return nil
}

func insertBatch(tx *sql.Tx, batch []models.CompensationRecord) error {
	query, args := insertQuery(batch)
	_, err := tx.Exec(query, args...)
	return err
}

// insertQuery builds a multi-row INSERT with positional placeholders.
func insertQuery(batch []models.CompensationRecord) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*columnsPer)

	for idx, r := range batch {
		base := idx * columnsPer
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6))
		valueArgs = append(valueArgs,
			r.JobCategory, r.Location, r.ExperienceLevel, r.Salary, r.Year, string(r.Source))
	}

	query := fmt.Sprintf(`
		INSERT INTO compensation_records (job_category, location, experience_level, salary, year, source)
		VALUES %s
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored records in insertion order.
func (pw *PostgresWriter) FetchAll() ([]models.CompensationRecord, error) {
	rows, err := pw.db.Query(`
		SELECT job_category, location, experience_level, salary, year, source
		FROM compensation_records
		ORDER BY id
	`)
	if err != nil {
		return nil, apperr.Storage("postgres: fetch all", err)
	}
	defer rows.Close()

	var records []models.CompensationRecord
	for rows.Next() {
		var (
			r      models.CompensationRecord
			source string
		)
		if err := rows.Scan(&r.JobCategory, &r.Location, &r.ExperienceLevel, &r.Salary, &r.Year, &source); err != nil {
			return nil, apperr.Storage("postgres: scan row", err)
		}
		r.Source = models.SourceID(source)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("postgres: iterate rows", err)
	}
	return records, nil
}
