// Interactive terminal for a baseball-card inventory stored in a
// relational cardinfo table.
//
// Configuration (env vars, or a .env file in the working directory):
//
//	CARDDB_ENGINE=postgres|mysql|sqlite  (optional, default postgres)
//	DATABASE_URL=<dsn>                    (optional, prompted if absent)
//
// Usage:
//
//	go run ./cmd/carddb
package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	// A missing .env just means plain environment variables.
	_ = godotenv.Load()
	setupLogging()

	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:          "[Config] ",
		HistoryFile:     historyPath(),
		HistoryLimit:    500,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	engine := loadEngine(rl)

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		switch engine {
		case "sqlite":
			dsn = buildSQLiteDSN(rl)
		case "mysql":
			dsn = buildMySQLDSN(rl)
		default:
			dsn = buildPostgresDSN(rl)
		}
	}

	conn, err := connect(engine, dsn)
	if err != nil {
		log.WithError(err).WithField("dsn", sanitizeDSN(dsn)).Error("connection failed")
		fmt.Println("\n<<< Unable to establish database connection. >>>")
		os.Exit(1)
	}
	defer func() { _ = conn.close() }()
	log.WithFields(log.Fields{"engine": engine, "dsn": sanitizeDSN(dsn)}).Info("connected")

	fmt.Print(ansiClear)
	fmt.Println("\n     <<< Database connection established! >>>")
	fmt.Println("\n Welcome to CardDB: a database tool for your baseball card inventory!")
	fmt.Println(rule)

	sess := NewSession(conn, rl, os.Stdout)
	if err := sess.Run(); err != nil {
		fmt.Println("\n     <<< Fatal error. See database logs for info. >>>")
		os.Exit(1)
	}
	fmt.Println("\n Goodbye!")
}

// setupLogging sends structured logs to an append-only file so the
// terminal stays clean for the menus.
func setupLogging() {
	file, err := os.OpenFile("carddb.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Warnf("unable to open log file, logging to stderr: %v", err)
		return
	}
	log.SetOutput(file)
	log.SetFormatter(&log.TextFormatter{})
	log.SetLevel(log.InfoLevel)
}

func loadEngine(rl *readline.Instance) string {
	engine := strings.TrimSpace(strings.ToLower(os.Getenv("CARDDB_ENGINE")))
	if engine == "" {
		return "postgres"
	}
	if !isValidEngine(engine) {
		fmt.Fprintf(os.Stderr, "Warning: invalid CARDDB_ENGINE=%q, defaulting to postgres\n", engine)
		return "postgres"
	}
	return engine
}

// prompt prints a label with an optional default and returns the user's
// input (or the default if they press enter).
func prompt(rl *readline.Instance, label, defaultVal string) string {
	if rl == nil {
		return defaultVal
	}
	if defaultVal != "" {
		rl.SetPrompt(fmt.Sprintf("[Config]   %s [%s]: ", label, defaultVal))
	} else {
		rl.SetPrompt(fmt.Sprintf("[Config]   %s: ", label))
	}
	line, err := rl.ReadLine()
	if err != nil {
		return defaultVal
	}
	val := strings.TrimSpace(line)
	if val == "" {
		return defaultVal
	}
	return val
}

func buildSQLiteDSN(rl *readline.Instance) string {
	fmt.Println("[Config] SQLite connection setup:")
	return prompt(rl, "Database path", ":memory:")
}

func buildPostgresDSN(rl *readline.Instance) string {
	fmt.Println("[Config] PostgreSQL connection setup:")

	dbUser := prompt(rl, "User", "py_carddb")
	dbPass := prompt(rl, "Password", "")
	host := prompt(rl, "Host", "localhost")
	port := prompt(rl, "Port", "5432")
	dbName := prompt(rl, "Database", "cards")
	sslMode := prompt(rl, "SSL mode (disable/require/verify-full)", "disable")

	var userInfo *url.Userinfo
	if dbPass != "" {
		userInfo = url.UserPassword(dbUser, dbPass)
	} else {
		userInfo = url.User(dbUser)
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     host + ":" + port,
		Path:     "/" + dbName,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}

func buildMySQLDSN(rl *readline.Instance) string {
	fmt.Println("[Config] MySQL connection setup:")

	dbUser := prompt(rl, "User", "root")
	dbPass := prompt(rl, "Password", "")
	host := prompt(rl, "Host", "localhost")
	port := prompt(rl, "Port", "3306")
	dbName := prompt(rl, "Database", "cards")

	// Format: user:pass@tcp(host:port)/dbname
	auth := dbUser
	if dbPass != "" {
		auth = dbUser + ":" + dbPass
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s", auth, host, port, dbName)
}

func isValidEngine(engine string) bool {
	switch engine {
	case "postgres", "mysql", "sqlite":
		return true
	}
	return false
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".carddb_history")
}
