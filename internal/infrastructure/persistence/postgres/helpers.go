package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// scannable covers both pgx.Row and pgx.Rows so one scan helper serves
// single-row and multi-row queries.
type scannable interface {
	Scan(dest ...any) error
}

// scanErr wraps a scan failure, keeping pgx.ErrNoRows recognizable for
// not-found mapping at the call site.
func scanErr(entity string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	return fmt.Errorf("scan %s: %w", entity, err)
}

// nullableString maps an empty string to SQL NULL.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
