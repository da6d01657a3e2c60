package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("registro no encontrado")
	// ErrConflict is returned on unique or foreign key violations.
	ErrConflict = errors.New("conflicto con registros existentes")
	// ErrInvalid is returned when a record is rejected by a repository rule.
	ErrInvalid = errors.New("datos inválidos")
)

// Query selects a page of records. A zero Limit returns every matching row.
type Query struct {
	Search  string
	Filters map[string]int
	Limit   int
	Offset  int
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns a search term into an ILIKE pattern matching it
// literally anywhere in the value. Use it with ESCAPE '\'.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// Store is the capability set every CRUD resource is served through.
type Store[T any] interface {
	List(ctx context.Context, q Query) ([]T, int, error)
	Get(ctx context.Context, id int) (T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) (T, error)
	Delete(ctx context.Context, id int) error
}

// Postgres error classes we translate.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// translate maps driver errors onto repository sentinels, keeping the original in the chain.
func translate(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%w: %s ya existe", ErrConflict, constraintSubject(pqErr))
		case pqForeignKeyViolation:
			return fmt.Errorf("%w: el registro está referenciado o referencia un registro inexistente", ErrConflict)
		}
	}
	return fmt.Errorf("error %s: %w", op, err)
}

func constraintSubject(e *pq.Error) string {
	if e.Column != "" {
		return e.Column
	}
	if e.Constraint != "" {
		return e.Constraint
	}
	return "el registro"
}
