package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DBTX is the minimal executor surface the repositories need. Both
// *sql.DB and the circuit-breaker wrapped handle satisfy it, so breaker
// protection is an injection decision made in cmd wiring, not here.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// inPlaceholders expands a string slice into a "$n, $n+1, ..." placeholder
// list starting at $start, returning the list and the matching args.
// Used for IN (...) queries over small mobile-number sets.
func inPlaceholders(values []string, start int) (string, []interface{}) {
	placeholders := make([]string, len(values))
	args := make([]interface{}, len(values))
	for i, v := range values {
		placeholders[i] = fmt.Sprintf("$%d", start+i)
		args[i] = v
	}
	return strings.Join(placeholders, ", "), args
}
