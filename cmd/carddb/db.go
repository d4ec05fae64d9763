package main

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"

	"github.com/bhartley/carddb/internal/query"
)

// driverName maps an engine to its database/sql driver.
var driverName = map[string]string{
	"postgres": "pgx",
	"mysql":    "mysql",
	"sqlite":   "sqlite",
}

// displayRows caps how many matching rows a search renders.
const displayRows = 10

// storeConn is the single store connection shared for the process
// lifetime.
type storeConn struct {
	db     *sql.DB
	dsn    string
	engine string
}

func connect(engine, dsn string) (*storeConn, error) {
	driver, ok := driverName[engine]
	if !ok {
		return nil, fmt.Errorf("no driver for engine %q", engine)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	// One session, one connection: the menu loop is strictly serial.
	db.SetMaxOpenConns(1)
	return &storeConn{db: db, dsn: dsn, engine: engine}, nil
}

func (c *storeConn) close() error {
	return c.db.Close()
}

// search runs a built SELECT, returning at most displayRows rendered
// rows plus the total number of matches.
func (c *storeConn) search(st query.Statement) ([][]string, int, error) {
	rows, err := c.db.Query(st.SQL, st.Params...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, 0, fmt.Errorf("columns: %w", err)
	}

	var data [][]string
	total := 0
	for rows.Next() {
		total++
		if total > displayRows {
			// Keep counting matches, stop collecting rows.
			continue
		}
		row, err := scanStrings(rows, len(cols))
		if err != nil {
			return nil, 0, err
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows: %w", err)
	}
	return data, total, nil
}

// fetchByID returns the one card a keyed lookup matches, or
// found=false when the ID misses.
func (c *storeConn) fetchByID(st query.Statement) ([]string, bool, error) {
	rows, err := c.db.Query(st.SQL, st.Params...)
	if err != nil {
		return nil, false, fmt.Errorf("query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, false, fmt.Errorf("columns: %w", err)
	}
	if !rows.Next() {
		return nil, false, rows.Err()
	}
	row, err := scanStrings(rows, len(cols))
	if err != nil {
		return nil, false, err
	}
	return row, true, rows.Err()
}

// exec runs a built write statement.
func (c *storeConn) exec(st query.Statement) error {
	if _, err := c.db.Exec(st.SQL, st.Params...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}

// scanStrings scans the current row as display strings, with NULL for
// null columns.
func scanStrings(rows *sql.Rows, n int) ([]string, error) {
	vals := make([]*sql.NullString, n)
	ptrs := make([]any, n)
	for i := range vals {
		vals[i] = &sql.NullString{}
		ptrs[i] = vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	row := make([]string, n)
	for i, v := range vals {
		if v.Valid {
			row[i] = v.String
		} else {
			row[i] = "NULL"
		}
	}
	return row, nil
}

// recoverable reports whether a store error is an integrity violation
// the operator can fix by re-entering data. Anything else is treated
// as fatal for the session.
func recoverable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 23: integrity constraint violations.
		return strings.HasPrefix(pgErr.Code, "23")
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1048, 1062, 1216, 1217, 1451, 1452, 3819:
			return true
		}
		return false
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code()&0xff == 19 // SQLITE_CONSTRAINT
	}
	return false
}

// sanitizeDSN masks the password portion of a DSN for display and
// logging.
func sanitizeDSN(dsn string) string {
	// URL style (postgres).
	u, err := url.Parse(dsn)
	if err == nil && u.Scheme != "" && u.User != nil {
		if _, hasPass := u.User.Password(); hasPass {
			// Rebuild manually to avoid percent-encoding the mask.
			masked := u.Scheme + "://" + u.User.Username() + ":****@" + u.Host + u.Path
			if u.RawQuery != "" {
				masked += "?" + u.RawQuery
			}
			return masked
		}
		return dsn
	}

	// MySQL style: user:pass@tcp(host)/db
	if atIdx := strings.Index(dsn, "@"); atIdx > 0 {
		userPass := dsn[:atIdx]
		if colonIdx := strings.Index(userPass, ":"); colonIdx >= 0 {
			return userPass[:colonIdx+1] + "****" + dsn[atIdx:]
		}
	}

	return dsn
}
