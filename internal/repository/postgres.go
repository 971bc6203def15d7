// Package repository provides PostgreSQL persistence for the users,
// apartments, payments and maintenance collections, and for the identity
// provider's credentials and revoked sessions.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/clivebixby0/myapt-2/internal/apperr"
	"github.com/lib/pq"
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// setList accumulates the SET clause of a partial UPDATE.
type setList struct {
	cols []string
	args []any
}

func (s *setList) add(col string, v any) {
	s.args = append(s.args, v)
	s.cols = append(s.cols, fmt.Sprintf("%s = $%d", col, len(s.args)))
}

func (s *setList) empty() bool { return len(s.cols) == 0 }

// query renders an UPDATE of the row with the given id that also bumps
// updated_at.
func (s *setList) query(table, id string) (string, []any) {
	args := append(s.args, id)
	q := fmt.Sprintf("UPDATE %s SET %s, updated_at = now() WHERE id = $%d",
		table, strings.Join(s.cols, ", "), len(args))
	return q, args
}

func addPtr[T any](s *setList, col string, v *T) {
	if v != nil {
		s.add(col, *v)
	}
}

// nullable turns an optional reference into a query argument.
func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func refFromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// notFound classifies sql.ErrNoRows as apperr.ErrNotFound.
func notFound(kind, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, id, apperr.ErrNotFound)
	}
	return classify(fmt.Sprintf("get %s", kind), err)
}

// classify wraps driver errors with context. Connection failures become
// apperr.Unavailable so callers can tell them from bad input.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "53", "57":
			return fmt.Errorf("%s: %w", op, apperr.Wrap(apperr.Unavailable, err))
		case "23":
			return fmt.Errorf("%s: %w", op, apperr.Wrap(apperr.Validation, err))
		}
	}
	if errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%s: %w", op, apperr.Wrap(apperr.Unavailable, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

// execOne runs a statement that must touch exactly one row.
func execOne(ctx context.Context, db *sql.DB, kind, id, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(fmt.Sprintf("update %s %s", kind, id), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, apperr.ErrNotFound)
	}
	return nil
}
