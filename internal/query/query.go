// Package query builds the parameterized statements the menu actions
// execute. Operator-supplied values never reach the SQL text: every
// operand binds through a placeholder, and identifiers are quoted per
// dialect. Builders re-validate their inputs so a statement cannot be
// constructed from values that skipped the validators.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bhartley/carddb/internal/card"
	"github.com/bhartley/carddb/internal/input"
)

// Statement is a fully built operation: SQL text plus bound parameters.
type Statement struct {
	SQL    string
	Params []any
}

// ErrInvalidQuery reports a statement that failed construction-time
// validation. It is always recoverable.
var ErrInvalidQuery = errors.New("invalid query")

// maxSearchTerms caps how many columns one search may combine.
const maxSearchTerms = 2

func table(d Dialect) string {
	return d.QuoteIdent(card.Table)
}

// columnList renders the ten columns in table order so result rows
// scan in a deterministic order regardless of engine.
func columnList(d Dialect) string {
	names := make([]string, len(card.Columns))
	for i, c := range card.Columns {
		names[i] = d.QuoteIdent(c.Name)
	}
	return strings.Join(names, ", ")
}

// bindValue converts a validated raw term into a typed bind parameter.
func bindValue(col card.Column, raw string) any {
	switch col.Kind {
	case card.KindID:
		n, _ := input.ParseID(raw)
		return n
	case card.KindYear:
		n, _ := strconv.Atoi(raw)
		return n
	case card.KindCurrency:
		v, _ := input.ParseCurrency(raw)
		return v
	default:
		// Dates bind as ISO text; every supported engine coerces it.
		return raw
	}
}

// --- Search ---

type term struct {
	col   card.Column
	op    string
	value any
}

// Search accumulates validated (column, operator, value) tuples and
// builds one parameterized SELECT combining them with AND.
type Search struct {
	dialect Dialect
	terms   []term
}

// NewSearch creates an empty search for the given dialect.
func NewSearch(d Dialect) *Search {
	return &Search{dialect: d}
}

// Where adds one search term. For numeric and date columns op is one
// of < = > (empty defaults to =); for text columns op is ignored and
// the term becomes a case-insensitive substring match. The raw term
// must already be sanitized; it is validated against the column's kind
// here.
func (s *Search) Where(col card.Column, op, raw string) error {
	if len(s.terms) >= maxSearchTerms {
		return fmt.Errorf("%w: at most %d search columns", ErrInvalidQuery, maxSearchTerms)
	}
	for _, t := range s.terms {
		if t.col.Code == col.Code {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidQuery, col.Display)
		}
	}
	if raw == "" {
		return fmt.Errorf("%w: empty search term for %s", ErrInvalidQuery, col.Display)
	}
	if !input.ValidForColumn(col, raw) {
		return fmt.Errorf("%w: invalid %s term %q", ErrInvalidQuery, col.Display, raw)
	}
	if col.Kind == card.KindText {
		// The sanitizer strips % _ and backslash, so the term cannot
		// smuggle its own wildcards into the pattern.
		s.terms = append(s.terms, term{col: col, op: s.dialect.matchOperator(), value: "%" + raw + "%"})
		return nil
	}
	if op == "" {
		op = "="
	}
	switch op {
	case "<", "=", ">":
	default:
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidQuery, op)
	}
	s.terms = append(s.terms, term{col: col, op: op, value: bindValue(col, raw)})
	return nil
}

// Build renders the SELECT. At least one term is required.
func (s *Search) Build() (Statement, error) {
	if len(s.terms) == 0 {
		return Statement{}, fmt.Errorf("%w: no search columns selected", ErrInvalidQuery)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s WHERE ", columnList(s.dialect), table(s.dialect))
	params := make([]any, 0, len(s.terms))
	for i, t := range s.terms {
		if i > 0 {
			b.WriteString(" AND ")
		}
		fmt.Fprintf(&b, "%s %s %s", s.dialect.QuoteIdent(t.col.Name), t.op, s.dialect.placeholder(i+1))
		params = append(params, t.value)
	}
	fmt.Fprintf(&b, " ORDER BY %s", s.dialect.QuoteIdent("ID"))
	return Statement{SQL: b.String(), Params: params}, nil
}

// --- Keyed operations ---

// ByID builds the single-card lookup used by the edit, vend, and
// delete flows.
func ByID(d Dialect, id int) Statement {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		columnList(d), table(d), d.QuoteIdent("ID"), d.placeholder(1))
	return Statement{SQL: sql, Params: []any{id}}
}

// Edit builds a single-column assignment keyed by ID. The ID column
// itself is never assignable.
func Edit(d Dialect, col card.Column, raw string, id int) (Statement, error) {
	if col.Kind == card.KindID {
		return Statement{}, fmt.Errorf("%w: the ID field is not editable", ErrInvalidQuery)
	}
	if !input.ValidForColumn(col, raw) {
		return Statement{}, fmt.Errorf("%w: invalid %s value %q", ErrInvalidQuery, col.Display, raw)
	}
	sql := fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = %s",
		table(d), d.QuoteIdent(col.Name), d.placeholder(1), d.QuoteIdent("ID"), d.placeholder(2))
	return Statement{SQL: sql, Params: []any{bindValue(col, raw), id}}, nil
}

// Vend records a sale. Both the date and the price are assigned in one
// statement so an abort can never leave a partial sale.
func Vend(d Dialect, saleDate string, salePrice decimal.Decimal, id int) (Statement, error) {
	if !input.ValidDate(saleDate) {
		return Statement{}, fmt.Errorf("%w: invalid sale date %q", ErrInvalidQuery, saleDate)
	}
	if !input.CurrencyInRange(salePrice) {
		return Statement{}, fmt.Errorf("%w: sale price %s out of range", ErrInvalidQuery, salePrice)
	}
	sql := fmt.Sprintf("UPDATE %s SET %s = %s, %s = %s WHERE %s = %s",
		table(d),
		d.QuoteIdent("saleDate"), d.placeholder(1),
		d.QuoteIdent("salePrice"), d.placeholder(2),
		d.QuoteIdent("ID"), d.placeholder(3))
	return Statement{SQL: sql, Params: []any{saleDate, salePrice, id}}, nil
}

// Delete builds the physical removal of one card.
func Delete(d Dialect, id int) Statement {
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		table(d), d.QuoteIdent("ID"), d.placeholder(1))
	return Statement{SQL: sql, Params: []any{id}}
}

// Insert builds the add-action INSERT from a completed draft. The ID
// column is omitted; the store assigns it.
func Insert(d Dialect, draft card.Draft) Statement {
	cols := card.Columns[1:] // everything but ID
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		names[i] = d.QuoteIdent(c.Name)
		marks[i] = d.placeholder(i + 1)
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table(d), strings.Join(names, ", "), strings.Join(marks, ", "))
	params := []any{
		draft.Sport, draft.LastName, draft.FirstName, draft.Year,
		draft.Team, draft.Company,
		draft.ValueEst, draft.SaleDate, draft.SalePrice,
	}
	return Statement{SQL: sql, Params: params}
}
