// Package card defines the card record model and the column metadata
// shared by the prompt, query, and rendering layers.
package card

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// Table is the inventory table name.
const Table = "cardinfo"

// Kind classifies a column's value type for validation and binding.
type Kind int

const (
	KindID Kind = iota
	KindText
	KindYear
	KindCurrency
	KindDate
)

// Column describes one column of the cardinfo table.
type Column struct {
	Code    byte   // one-letter selector used in menus
	Name    string // SQL column name
	Display string // operator-facing name used in prompts and messages
	Kind    Kind
}

// Columns lists the ten columns in table order.
var Columns = []Column{
	{Code: 'i', Name: "ID", Display: "ID", Kind: KindID},
	{Code: 's', Name: "sport", Display: "sport", Kind: KindText},
	{Code: 'l', Name: "lastName", Display: "last name", Kind: KindText},
	{Code: 'f', Name: "firstName", Display: "first name", Kind: KindText},
	{Code: 'y', Name: "year", Display: "year", Kind: KindYear},
	{Code: 't', Name: "team", Display: "team", Kind: KindText},
	{Code: 'c', Name: "company", Display: "company", Kind: KindText},
	{Code: 'v', Name: "valueEst", Display: "estimated value", Kind: KindCurrency},
	{Code: 'd', Name: "saleDate", Display: "sale date", Kind: KindDate},
	{Code: 'p', Name: "salePrice", Display: "sale price", Kind: KindCurrency},
}

// Codes returns the valid one-letter column codes in table order.
func Codes() string {
	codes := make([]byte, len(Columns))
	for i, c := range Columns {
		codes[i] = c.Code
	}
	return string(codes)
}

// ByCode looks up a column by its one-letter code.
func ByCode(code byte) (Column, bool) {
	for _, c := range Columns {
		if c.Code == code {
			return c, true
		}
	}
	return Column{}, false
}

// Draft is a pending card record accumulated by the add flow. The ID is
// assigned by the store on insert. Optional fields left empty at the
// prompt stay invalid/null here and are stored as NULL.
type Draft struct {
	Sport     string
	LastName  string
	FirstName string
	Year      int
	Team      string
	Company   string
	ValueEst  decimal.NullDecimal
	SaleDate  sql.NullString // ISO YYYY-MM-DD, validated before it gets here
	SalePrice decimal.NullDecimal
}

// Summary renders the confirmation line shown before committing an add.
func (d Draft) Summary() string {
	return fmt.Sprintf("\n [ %s %s, %s - %d (%s) ] will be added to the database.",
		d.FirstName, d.LastName, d.Team, d.Year, d.Company)
}
