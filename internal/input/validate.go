package input

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bhartley/carddb/internal/card"
)

const (
	maxTextLen = 49
	minYear    = 1900
	maxYear    = 2024
	maxID      = 999

	dateLayout = "2006-01-02"
)

var maxCurrency = decimal.RequireFromString("99999.99")

// ValidText reports whether s is an acceptable varchar value:
// 1-49 characters after trimming.
func ValidText(s string) bool {
	n := len(strings.TrimSpace(s))
	return n >= 1 && n <= maxTextLen
}

// ValidYear reports whether s is exactly four digits within 1900-2024.
func ValidYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	return n >= minYear && n <= maxYear
}

// ValidDate reports whether s parses as an ISO YYYY-MM-DD date. The
// cancel sentinel is the caller's concern, not the validator's.
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// ParseCurrency parses s as a currency amount within 0.00-99999.99.
func ParseCurrency(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if !CurrencyInRange(d) {
		return decimal.Decimal{}, false
	}
	return d, true
}

// CurrencyInRange reports whether d lies within the storable
// 0.00-99999.99 range.
func CurrencyInRange(d decimal.Decimal) bool {
	return !d.IsNegative() && !d.GreaterThan(maxCurrency)
}

// ValidCurrency reports whether s is a parseable in-range amount.
func ValidCurrency(s string) bool {
	_, ok := ParseCurrency(s)
	return ok
}

// ParseID parses s as a card identifier within 1-999.
func ParseID(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxID {
		return 0, false
	}
	return n, true
}

// ValidID reports whether s is a parseable in-range identifier.
func ValidID(s string) bool {
	_, ok := ParseID(s)
	return ok
}

// ValidColumns reports whether every character of s is a known column
// code. An empty selection is invalid.
func ValidColumns(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if _, ok := card.ByCode(s[i]); !ok {
			return false
		}
	}
	return true
}

// operators maps the search prefix tokens to SQL comparison operators.
var operators = map[string]string{"lt": "<", "eq": "=", "gt": ">"}

// SplitOperator splits an optional lt/eq/gt prefix from a search term
// and returns the SQL operator plus the remaining value. An absent or
// unrecognized prefix defaults to equality.
func SplitOperator(term string) (op, rest string) {
	if len(term) > 2 {
		if sym, ok := operators[term[:2]]; ok {
			return sym, term[2:]
		}
	}
	return "=", term
}

// ValidForColumn reports whether s is a valid value for the column's
// kind.
func ValidForColumn(col card.Column, s string) bool {
	switch col.Kind {
	case card.KindID:
		return ValidID(s)
	case card.KindYear:
		return ValidYear(s)
	case card.KindCurrency:
		return ValidCurrency(s)
	case card.KindDate:
		return ValidDate(s)
	default:
		return ValidText(s)
	}
}
