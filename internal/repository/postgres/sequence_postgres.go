package postgres

import (
	"context"
	"database/sql"

	"daoapi/internal/database"
	"daoapi/internal/repository"
)

// SequencePostgres implements repository.SequenceRepository on the dossier_sequences table.
// Every statement is a single atomic SQL command; no value is read-modified-written in Go.
type SequencePostgres struct {
	db *sql.DB
}

// NewSequencePostgres creates a new SequencePostgres repository.
func NewSequencePostgres(db *sql.DB) *SequencePostgres {
	return &SequencePostgres{db: db}
}

var _ repository.SequenceRepository = (*SequencePostgres)(nil)

// Increment bumps the counter of an existing year row. sql.ErrNoRows means the row is missing.
func (r *SequencePostgres) Increment(ctx context.Context, year int) (int, error) {
	const q = `
		UPDATE dossier_sequences
		SET counter = counter + 1
		WHERE year = $1
		RETURNING counter
	`
	var counter int
	if err := r.db.QueryRowContext(ctx, q, year).Scan(&counter); err != nil {
		return 0, err
	}
	return counter, nil
}

// Insert creates the first counter of a year.
func (r *SequencePostgres) Insert(ctx context.Context, year int) error {
	const q = `INSERT INTO dossier_sequences (year, counter) VALUES ($1, 1)`
	if _, err := r.db.ExecContext(ctx, q, year); err != nil {
		if database.IsUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}
