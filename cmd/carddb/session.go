package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/bhartley/carddb/internal/card"
	"github.com/bhartley/carddb/internal/input"
	"github.com/bhartley/carddb/internal/query"
)

// errStoreFatal marks a persistence failure the session cannot recover
// from: the caller closes the connection and exits nonzero.
var errStoreFatal = errors.New("unrecoverable store error")

const (
	rule      = "__________________________________________________"
	ansiClear = "\033[2J\033[H"
)

// Session drives the menu loop: one store connection, one input
// source, and a one-shot status message shown on menu re-entry.
type Session struct {
	conn     *storeConn
	dialect  query.Dialect
	rl       input.LineReader
	prompter *input.Prompter
	out      io.Writer
	status   string
}

// NewSession creates a session over an established store connection.
func NewSession(conn *storeConn, rl input.LineReader, out io.Writer) *Session {
	return &Session{
		conn:     conn,
		dialect:  query.DialectFor(conn.engine),
		rl:       rl,
		prompter: input.NewPrompter(rl, out),
		out:      out,
	}
}

// Run loops on the main menu until the operator quits or a store
// failure turns fatal. Validation failures never leave this loop.
func (s *Session) Run() error {
	for {
		if s.status != "" {
			fmt.Fprintln(s.out, s.status)
			s.status = ""
		}
		fmt.Fprintln(s.out, "\n MAIN MENU: select desired operation.")

		choice, err := s.read(" [A]dd, [S]earch, [E]dit, [V]end, [D]elete, or [Q]uit >> ")
		if err != nil {
			return nil
		}

		var actErr error
		switch strings.ToLower(choice) {
		case "a":
			actErr = s.addCard()
		case "s":
			actErr = s.searchCards()
		case "e":
			actErr = s.editCard()
		case "v":
			actErr = s.vendCard()
		case "d":
			actErr = s.deleteCard()
		case "q":
			if s.quit() {
				return nil
			}
		default:
			s.clearScreen()
			s.status = "\n     <<< Invalid selection >>>\n" + rule
		}
		if actErr != nil {
			return actErr
		}
	}
}

func (s *Session) read(label string) (string, error) {
	s.rl.SetPrompt(label)
	line, err := s.rl.ReadLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// clearScreen clears the terminal between menu states. Writers that
// ignore ANSI escapes just accumulate them.
func (s *Session) clearScreen() {
	fmt.Fprint(s.out, ansiClear)
}

func (s *Session) setStatus(msg string) {
	s.clearScreen()
	s.status = msg
}

// fatal logs a store execution failure and wraps it for Run's caller.
func (s *Session) fatal(err error) error {
	log.WithError(err).Error("store execution failed")
	return fmt.Errorf("%w: %v", errStoreFatal, err)
}

// --- Add ---

func (s *Session) addCard() error {
	s.clearScreen()
	fmt.Fprintln(s.out, "\n Enter card values as prompted. Required unless (Null), press Enter to skip.")

	var draft card.Draft

	res := s.prompter.Text(" Sport: ", "Invalid sport")
	if res.Status == input.Canceled {
		return s.cancelAdd()
	}
	draft.Sport = res.Value

	res = s.prompter.Text(" Last Name: ", "Invalid last name")
	if res.Status == input.Canceled {
		return s.cancelAdd()
	}
	draft.LastName = res.Value

	res = s.prompter.Text(" First Name: ", "Invalid first name")
	if res.Status == input.Canceled {
		return s.cancelAdd()
	}
	draft.FirstName = res.Value

	res = s.prompter.Year(" Card year as yyyy: ", "Invalid year")
	if res.Status == input.Canceled {
		return s.cancelAdd()
	}
	draft.Year, _ = strconv.Atoi(res.Value)

	res = s.prompter.Text(" Team on card: ", "Invalid team")
	if res.Status == input.Canceled {
		return s.cancelAdd()
	}
	draft.Team = res.Value

	res = s.prompter.Text(" Company: ", "Invalid company")
	if res.Status == input.Canceled {
		return s.cancelAdd()
	}
	draft.Company = res.Value

	res = s.prompter.Currency(" Estimated value (Null): ", "Invalid estimated value", true)
	switch res.Status {
	case input.Canceled:
		return s.cancelAdd()
	case input.Entered:
		v, _ := input.ParseCurrency(res.Value)
		draft.ValueEst = decimal.NullDecimal{Decimal: v, Valid: true}
	}

	res = s.prompter.Date(" Sale date as yyyy-mm-dd (Null): ", "Invalid sale date", true)
	switch res.Status {
	case input.Canceled:
		return s.cancelAdd()
	case input.Entered:
		draft.SaleDate = sql.NullString{String: res.Value, Valid: true}
	}

	res = s.prompter.Currency(" Sale price (Null): ", "Invalid sale price", true)
	switch res.Status {
	case input.Canceled:
		return s.cancelAdd()
	case input.Entered:
		v, _ := input.ParseCurrency(res.Value)
		draft.SalePrice = decimal.NullDecimal{Decimal: v, Valid: true}
	}

	return s.confirmCommit(draft.Summary(), query.Insert(s.dialect, draft))
}

func (s *Session) cancelAdd() error {
	s.setStatus("\n     <<< Card entry canceled >>>")
	return nil
}

// --- Search ---

func (s *Session) searchCards() error {
	s.clearScreen()
	fmt.Fprintln(s.out, "\n     <<< SEARCH OPTIONS >>>")
	fmt.Fprintln(s.out, "\n [I]D, [S]port, [L]ast name, [F]irst name, [Y]ear, [T]eam, [C]ompany,")
	fmt.Fprintln(s.out, " [V]alue est., [D]ate of sale, [P]rice, [Q]uit to Main Menu")
	fmt.Fprintln(s.out, "\n Enter up to two (2) desired search fields (Example: sv )")

	raw, err := s.read(" >> ")
	if err != nil {
		s.setStatus("\n     <<< Search action canceled >>>")
		return nil
	}
	cols := strings.ToLower(strings.ReplaceAll(raw, " ", ""))
	if strings.Contains(cols, "q") {
		s.setStatus("\n     <<< Search action canceled >>>")
		return nil
	}
	if cols == "" {
		s.setStatus("\n     <<< Empty column input >>>")
		return nil
	}
	if len(cols) > maxSearchCols || (len(cols) == 2 && cols[0] == cols[1]) || !input.ValidColumns(cols) {
		s.setStatus("\n     <<< Invalid column input >>>")
		return nil
	}

	s.clearScreen()
	sq := query.NewSearch(s.dialect)
	for i := 0; i < len(cols); i++ {
		col, _ := card.ByCode(cols[i])
		if col.Kind == card.KindText {
			term, err := s.read(fmt.Sprintf("\n Enter search term for %s: ", col.Display))
			if err != nil {
				s.setStatus("\n     <<< Search action canceled >>>")
				return nil
			}
			term = strings.ToLower(input.Sanitize(term))
			if term == "q" {
				s.setStatus("\n     <<< Search action canceled >>>")
				return nil
			}
			if term == "" {
				s.setStatus("\n     <<< Empty search terms >>>")
				return nil
			}
			if err := sq.Where(col, "", term); err != nil {
				s.setStatus("\n     <<< Invalid search terms >>>")
				return nil
			}
			continue
		}

		fmt.Fprintln(s.out, "\n Optional: Precede search term by [lt, gt, eq] for less than, greater than, equals. Default is eq.")
		fmt.Fprintln(s.out, "\n Recall that dates follow a yyyy-mm-dd format.")
		term, err := s.read(fmt.Sprintf("\n Enter search term for %s: ", col.Display))
		if err != nil {
			s.setStatus("\n     <<< Search action canceled >>>")
			return nil
		}
		term = strings.ToLower(input.SanitizeNumber(term))
		if term == "q" {
			s.setStatus("\n     <<< Search action canceled >>>")
			return nil
		}
		if term == "" {
			s.setStatus("\n     <<< Empty search terms >>>")
			return nil
		}
		op, rest := input.SplitOperator(term)
		if err := sq.Where(col, op, rest); err != nil {
			s.setStatus("\n     <<< Invalid search terms >>>")
			return nil
		}
	}

	st, err := sq.Build()
	if err != nil {
		s.setStatus("\n     <<< Invalid search terms >>>")
		return nil
	}

	rows, total, err := s.conn.search(st)
	if err != nil {
		return s.fatal(err)
	}

	s.clearScreen()
	fmt.Fprintln(s.out, "\n     <<< Search complete! >>>")
	if total == 0 {
		s.status = "\n     <<< No results match the query. >>>"
		return nil
	}
	if total > displayRows {
		fmt.Fprintf(s.out, "\n     %d rows returned (max %d) of %d that match search criteria.\n",
			len(rows), displayRows, total)
	} else {
		fmt.Fprintf(s.out, "\n     %d rows returned (max %d)\n", len(rows), displayRows)
	}
	fmt.Fprintln(s.out)
	fmt.Fprint(s.out, renderCards(rows))
	return nil
}

// maxSearchCols mirrors the query package's two-column search limit at
// the prompt stage.
const maxSearchCols = 2

// --- Edit ---

func (s *Session) editCard() error {
	s.clearScreen()
	fmt.Fprintln(s.out, "\n     <<< EDIT OPTIONS >>>")

	id, ok, canceled := s.promptID("\n Enter 'ID' of card you wish to edit: ")
	if canceled {
		s.setStatus("\n     <<< Edit action canceled >>>")
		return nil
	}
	if !ok {
		s.setStatus("\n     <<< Invalid ID >>>")
		return nil
	}
	found, err := s.showCard(id)
	if err != nil {
		return err
	}
	if !found {
		s.setStatus("\n     <<< No card with that ID exists. >>>")
		return nil
	}

	fmt.Fprintln(s.out, "\n [I]D, [S]port, [L]ast name, [F]irst name, [Y]ear, [T]eam, [C]ompany,")
	fmt.Fprintln(s.out, " [V]alue est., [D]ate of sale, [P]rice, [Q]uit to Main Menu")
	choice, err := s.read("\n Select the field you wish to edit: ")
	if err != nil {
		s.setStatus("\n     <<< Edit action canceled >>>")
		return nil
	}
	choice = strings.ToLower(strings.ReplaceAll(input.Sanitize(choice), " ", ""))
	switch {
	case choice == "q":
		s.setStatus("\n     <<< Edit action canceled >>>")
		return nil
	case choice == "i":
		s.setStatus("\n     <<< Cannot edit ID field >>>")
		return nil
	case len(choice) != 1 || !input.ValidColumns(choice):
		s.setStatus("\n     <<< Invalid column input >>>")
		return nil
	}
	col, _ := card.ByCode(choice[0])

	raw, err := s.read(fmt.Sprintf("\n Enter new value for '%s': ", col.Display))
	if err != nil {
		s.setStatus("\n     <<< Edit action canceled >>>")
		return nil
	}
	var val string
	if col.Kind == card.KindText {
		val = input.Capitalize(input.Sanitize(raw))
		if val == "Q" {
			s.setStatus("\n     <<< Edit action canceled >>>")
			return nil
		}
	} else {
		val = strings.ToLower(input.SanitizeNumber(raw))
		if val == "q" {
			s.setStatus("\n     <<< Edit action canceled >>>")
			return nil
		}
	}

	st, err := query.Edit(s.dialect, col, val, id)
	if err != nil {
		s.setStatus(fmt.Sprintf("\n     <<< Invalid %s >>>", col.Display))
		return nil
	}
	summary := fmt.Sprintf("\n At card ID: %d, '%s' will be updated to '%s.'", id, col.Display, val)
	return s.confirmCommit(summary, st)
}

// --- Vend ---

func (s *Session) vendCard() error {
	s.clearScreen()
	fmt.Fprintln(s.out, "\n     <<< VEND OPTIONS >>>")

	id, ok, canceled := s.promptID("\n Enter 'ID' of card you wish to vend: ")
	if canceled {
		s.setStatus("\n     <<< Vend action canceled >>>")
		return nil
	}
	if !ok {
		s.setStatus("\n     <<< Invalid ID >>>")
		return nil
	}
	found, err := s.showCard(id)
	if err != nil {
		return err
	}
	if !found {
		s.setStatus("\n     <<< No card with that ID exists. >>>")
		return nil
	}
	fmt.Fprintln(s.out)

	// Both fields or neither: an abort on either prompt leaves the
	// card untouched.
	res := s.prompter.Date(" Sale date as yyyy-mm-dd: ", "Invalid sale date", true)
	switch res.Status {
	case input.Canceled:
		s.setStatus("\n     <<< Card sale canceled >>>")
		return nil
	case input.Absent:
		s.setStatus("\n     <<< Invalid sale date input >>>")
		return nil
	}
	saleDate := res.Value

	res = s.prompter.Currency(" Sale price: ", "Invalid sale price", true)
	switch res.Status {
	case input.Canceled:
		s.setStatus("\n     <<< Card sale canceled >>>")
		return nil
	case input.Absent:
		s.setStatus("\n     <<< Invalid sale price >>>")
		return nil
	}
	price, _ := input.ParseCurrency(res.Value)

	st, err := query.Vend(s.dialect, saleDate, price, id)
	if err != nil {
		s.setStatus("\n     <<< Invalid sale input >>>")
		return nil
	}
	summary := fmt.Sprintf("\n The card at ID %d was sold on %s for a price of $%s.",
		id, saleDate, price.StringFixed(2))
	return s.confirmCommit(summary, st)
}

// --- Delete ---

func (s *Session) deleteCard() error {
	s.clearScreen()
	fmt.Fprintln(s.out, "\n     <<< DELETE OPTIONS >>>")

	id, ok, canceled := s.promptID("\n Enter 'ID' of card you wish to delete: ")
	if canceled {
		s.setStatus("\n     <<< Delete action canceled >>>")
		return nil
	}
	if !ok {
		s.setStatus("\n     <<< Invalid ID >>>")
		return nil
	}
	found, err := s.showCard(id)
	if err != nil {
		return err
	}
	if !found {
		s.setStatus("\n     <<< No card with that ID exists. >>>")
		return nil
	}

	summary := fmt.Sprintf("\n The card at ID %d will be PERMANENTLY DELETED from the database.", id)
	return s.confirmCommit(summary, query.Delete(s.dialect, id))
}

// --- Shared flow pieces ---

// promptID reads a card ID once. The keyed flows bounce back to the
// menu on a bad ID rather than re-prompting.
func (s *Session) promptID(label string) (id int, ok, canceled bool) {
	raw, err := s.read(label)
	if err != nil {
		return 0, false, true
	}
	raw = strings.ToLower(strings.ReplaceAll(input.Sanitize(raw), " ", ""))
	if raw == "q" {
		return 0, false, true
	}
	id, ok = input.ParseID(raw)
	return id, ok, false
}

// showCard fetches and renders the card with the given ID. found is
// false when no card matches.
func (s *Session) showCard(id int) (bool, error) {
	row, found, err := s.conn.fetchByID(query.ByID(s.dialect, id))
	if err != nil {
		return false, s.fatal(err)
	}
	if !found {
		return false, nil
	}
	fmt.Fprintln(s.out)
	fmt.Fprint(s.out, renderCards([][]string{row}))
	return true, nil
}

// confirmCommit shows the pending change and asks for a yes/no. Only
// an explicit yes executes the statement; anything else discards it,
// so declining is guaranteed to leave the store unchanged.
func (s *Session) confirmCommit(summary string, st query.Statement) error {
	fmt.Fprintln(s.out, summary)
	ans, err := s.read("\n Commit the above changes? [Y]es or [N]o. > ")
	if err != nil {
		s.setStatus("\n     <<< The changes were not saved. >>>\n" + rule)
		return nil
	}
	switch strings.ToLower(ans) {
	case "y":
		if err := s.conn.exec(st); err != nil {
			if recoverable(err) {
				log.WithError(err).Warn("commit rejected by the database")
				s.setStatus("\n     <<< The database rejected the changes. Nothing was saved. >>>\n" + rule)
				return nil
			}
			return s.fatal(err)
		}
		s.setStatus("\n     <<< Changes committed. >>>\n" + rule)
	case "n":
		s.setStatus("\n     <<< The changes were not saved. >>>\n" + rule)
	default:
		s.setStatus("\n     <<< Invalid input. No changes saved. >>>\n" + rule)
	}
	return nil
}

// quit confirms before ending the session. Returns true when the
// operator confirmed the exit.
func (s *Session) quit() bool {
	s.clearScreen()
	ans, err := s.read("\n Exit the program and close database connection? [Y]es or [N]o. ")
	if err != nil {
		return true
	}
	switch strings.ToLower(ans) {
	case "y":
		return true
	case "n":
		s.clearScreen()
		return false
	default:
		s.setStatus("\n     <<< Invalid response >>>\n" + rule)
		return false
	}
}
