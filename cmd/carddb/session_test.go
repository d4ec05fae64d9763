package main

import (
	"io"
	"strings"
	"testing"

	"github.com/bhartley/carddb/internal/testutil"
)

// scriptReader feeds a fixed sequence of lines to the session and
// reports EOF once exhausted.
type scriptReader struct {
	lines []string
	i     int
}

func (r *scriptReader) ReadLine() (string, error) {
	if r.i >= len(r.lines) {
		return "", io.EOF
	}
	line := r.lines[r.i]
	r.i++
	return line, nil
}

func (r *scriptReader) SetPrompt(string) {}

// runScript drives a session over an in-memory store with scripted
// input and returns everything the session printed.
func runScript(t *testing.T, conn *storeConn, lines ...string) string {
	t.Helper()
	var out strings.Builder
	sess := NewSession(conn, &scriptReader{lines: lines}, &out)
	testutil.AssertNoError(t, sess.Run())
	return out.String()
}

func TestAddCommitInsertsOneCard(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	out := runScript(t, conn,
		"a",
		"baseball", "mantle", "mickey", "1952", "yankees", "topps",
		"50.00", "", "",
		"y",
		"q", "y",
	)

	testutil.AssertEqual(t, countCards(t, conn), 1)
	testutil.AssertEqual(t, strings.Contains(out,
		"[ Mickey Mantle, Yankees - 1952 (Topps) ] will be added to the database."), true)
	testutil.AssertEqual(t, strings.Contains(out, "<<< Changes committed. >>>"), true)

	var sport, saleDate string
	err := conn.db.QueryRow(
		`SELECT "sport", COALESCE("saleDate", 'NULL') FROM cardinfo WHERE "ID" = 1`).
		Scan(&sport, &saleDate)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, sport, "Baseball")
	testutil.AssertEqual(t, saleDate, "NULL")
}

func TestAddDeclinedSavesNothing(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	out := runScript(t, conn,
		"a",
		"baseball", "mantle", "mickey", "1952", "yankees", "topps",
		"", "", "",
		"n",
		"q", "y",
	)

	testutil.AssertEqual(t, countCards(t, conn), 0)
	testutil.AssertEqual(t, strings.Contains(out, "<<< The changes were not saved. >>>"), true)
}

func TestAddCanceledMidwaySavesNothing(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	out := runScript(t, conn,
		"a",
		"baseball", "q",
		"q", "y",
	)

	testutil.AssertEqual(t, countCards(t, conn), 0)
	testutil.AssertEqual(t, strings.Contains(out, "<<< Card entry canceled >>>"), true)
}

func TestAddRepromptsInvalidYear(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	out := runScript(t, conn,
		"a",
		"baseball", "mantle", "mickey",
		"52", "1952",
		"yankees", "topps",
		"", "", "",
		"y",
		"q", "y",
	)

	testutil.AssertEqual(t, countCards(t, conn), 1)
	testutil.AssertEqual(t, strings.Contains(out, "<<< Invalid year >>>"), true)
}

func TestSearchRendersMatches(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	insertTestCard(t, conn, "Mantle", 1952)
	insertTestCard(t, conn, "Mays", 1951)

	out := runScript(t, conn,
		"s", "y", "gt1951",
		"q", "y",
	)

	testutil.AssertEqual(t, strings.Contains(out, "<<< Search complete! >>>"), true)
	testutil.AssertEqual(t, strings.Contains(out, "1 rows returned (max 10)"), true)
	testutil.AssertEqual(t, strings.Contains(out, "Mantle"), true)
	testutil.AssertEqual(t, strings.Contains(out, "Mays"), false)
}

func TestSearchTwoColumnFlow(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	insertTestCard(t, conn, "Mantle", 1952)
	insertTestCard(t, conn, "Mays", 1952)

	out := runScript(t, conn,
		"s", "ly", "mant", "1952",
		"q", "y",
	)

	testutil.AssertEqual(t, strings.Contains(out, "Mantle"), true)
	testutil.AssertEqual(t, strings.Contains(out, "Mays"), false)
}

func TestSearchNoMatchesMessage(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	out := runScript(t, conn,
		"s", "t", "dodgers",
		"q", "y",
	)

	testutil.AssertEqual(t, strings.Contains(out, "<<< No results match the query. >>>"), true)
}

func TestSearchRejectsThreeColumns(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	out := runScript(t, conn,
		"s", "slt",
		"q", "y",
	)

	testutil.AssertEqual(t, strings.Contains(out, "<<< Invalid column input >>>"), true)
}

func TestSearchRejectsDuplicateColumns(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	out := runScript(t, conn,
		"s", "ss",
		"q", "y",
	)

	testutil.AssertEqual(t, strings.Contains(out, "<<< Invalid column input >>>"), true)
}

func TestSearchCancel(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	out := runScript(t, conn,
		"s", "q",
		"q", "y",
	)

	testutil.AssertEqual(t, strings.Contains(out, "<<< Search action canceled >>>"), true)
}

func TestEditCommitUpdatesField(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	insertTestCard(t, conn, "Mantle", 1952)

	out := runScript(t, conn,
		"e", "1", "t", "dodgers",
		"y",
		"q", "y",
	)

	testutil.AssertEqual(t, strings.Contains(out,
		"At card ID: 1, 'team' will be updated to 'Dodgers.'"), true)

	var team string
	err := conn.db.QueryRow(`SELECT "team" FROM cardinfo WHERE "ID" = 1`).Scan(&team)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, team, "Dodgers")
}

func TestEditRejectsIDField(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	insertTestCard(t, conn, "Mantle", 1952)

	out := runScript(t, conn,
		"e", "1", "i",
		"q", "y",
	)

	testutil.AssertEqual(t, strings.Contains(out, "<<< Cannot edit ID field >>>"), true)
}

func TestEditUnknownIDBailsToMenu(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	out := runScript(t, conn,
		"e", "42",
		"q", "y",
	)

	testutil.AssertEqual(t, strings.Contains(out, "<<< No card with that ID exists. >>>"), true)
}

func TestEditInvalidIDBailsToMenu(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	out := runScript(t, conn,
		"e", "abc",
		"q", "y",
	)

	testutil.AssertEqual(t, strings.Contains(out, "<<< Invalid ID >>>"), true)
}

func TestVendCommitRecordsSale(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	insertTestCard(t, conn, "Mantle", 1952)

	out := runScript(t, conn,
		"v", "1", "2024-05-01", "150.00",
		"y",
		"q", "y",
	)

	testutil.AssertEqual(t, strings.Contains(out,
		"The card at ID 1 was sold on 2024-05-01 for a price of $150.00."), true)

	var saleDate, salePrice string
	err := conn.db.QueryRow(
		`SELECT "saleDate", CAST("salePrice" AS TEXT) FROM cardinfo WHERE "ID" = 1`).
		Scan(&saleDate, &salePrice)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, saleDate, "2024-05-01")
	testutil.AssertEqual(t, salePrice, "150")
}

func TestVendCanceledAtPriceLeavesCardUntouched(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	insertTestCard(t, conn, "Mantle", 1952)

	out := runScript(t, conn,
		"v", "1", "2024-05-01", "q",
		"q", "y",
	)

	testutil.AssertEqual(t, strings.Contains(out, "<<< Card sale canceled >>>"), true)

	var saleDate string
	err := conn.db.QueryRow(
		`SELECT COALESCE("saleDate", 'NULL') FROM cardinfo WHERE "ID" = 1`).Scan(&saleDate)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, saleDate, "NULL")
}

func TestDeleteCommitRemovesCard(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	insertTestCard(t, conn, "Mantle", 1952)

	out := runScript(t, conn,
		"d", "1",
		"y",
		"q", "y",
	)

	testutil.AssertEqual(t, strings.Contains(out,
		"The card at ID 1 will be PERMANENTLY DELETED from the database."), true)
	testutil.AssertEqual(t, countCards(t, conn), 0)
}

func TestDeleteDeclinedKeepsCard(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	insertTestCard(t, conn, "Mantle", 1952)

	runScript(t, conn,
		"d", "1",
		"n",
		"q", "y",
	)

	testutil.AssertEqual(t, countCards(t, conn), 1)
}

func TestConfirmAmbiguousAnswerSavesNothing(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	out := runScript(t, conn,
		"a",
		"baseball", "mantle", "mickey", "1952", "yankees", "topps",
		"", "", "",
		"maybe",
		"q", "y",
	)

	testutil.AssertEqual(t, countCards(t, conn), 0)
	testutil.AssertEqual(t, strings.Contains(out, "<<< Invalid input. No changes saved. >>>"), true)
}

func TestInvalidMenuSelection(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	out := runScript(t, conn,
		"x",
		"q", "y",
	)

	testutil.AssertEqual(t, strings.Contains(out, "<<< Invalid selection >>>"), true)
}

func TestQuitDeclinedReturnsToMenu(t *testing.T) {
	t.Parallel()

	conn := newTestStore(t)
	out := runScript(t, conn,
		"q", "n",
		"q", "y",
	)

	testutil.AssertEqual(t, strings.Count(out, "MAIN MENU"), 2)
}
