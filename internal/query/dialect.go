package query

import (
	"fmt"
	"strings"
)

// Dialect selects identifier quoting, placeholder style, and the
// case-insensitive match operator for a target engine.
type Dialect int

const (
	Postgres Dialect = iota
	MySQL
	SQLite
)

// DialectFor maps an engine name to its dialect. Unknown engines fall
// back to Postgres.
func DialectFor(engine string) Dialect {
	switch engine {
	case "mysql":
		return MySQL
	case "sqlite":
		return SQLite
	default:
		return Postgres
	}
}

// QuoteIdent quotes a SQL identifier: backticks for MySQL, double
// quotes for PostgreSQL, SQLite, and ANSI SQL. Internal quote
// characters are escaped by doubling.
func (d Dialect) QuoteIdent(name string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// placeholder returns the bind marker for the n-th parameter, 1-based.
func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// matchOperator is the case-insensitive substring operator. MySQL and
// SQLite compare ASCII case-insensitively under their default LIKE
// semantics; PostgreSQL needs ILIKE.
func (d Dialect) matchOperator() string {
	if d == Postgres {
		return "ILIKE"
	}
	return "LIKE"
}
