package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "github.com/mattn/go-sqlite3"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"pg unique", &pgconn.PgError{Code: "23505"}, true},
		{"pg fk", &pgconn.PgError{Code: "23503"}, false},
		{"pg wrapped", fmt.Errorf("create project: %w", &pgconn.PgError{Code: "23505"}), true},
		{"sqlite unique", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, true},
		{"sqlite pk", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, true},
		{"sqlite notnull", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}, false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		if got := IsUniqueViolation(tc.err); got != tc.want {
			t.Errorf("%s: IsUniqueViolation = %v, want %v", tc.name, got, tc.want)
		}
	}
}
