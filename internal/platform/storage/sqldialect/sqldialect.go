// Package sqldialect describes the SQL engines the catalog store can target
// and the small differences between them.
package sqldialect

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Dialect names a supported SQL engine.
type Dialect string

const (
	// SQLite targets modernc.org/sqlite.
	SQLite Dialect = "sqlite"
	// Postgres targets github.com/lib/pq.
	Postgres Dialect = "postgres"
)

// SQLiteMemoryDSN opens a named in-memory database shared by every
// connection of the pool.
const SQLiteMemoryDSN = "file:sqltour?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// PostgresLocalDSN points at a local development server.
const PostgresLocalDSN = "postgres://localhost:5432/sqltour?sslmode=disable"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Parse resolves a dialect by name. Empty selects SQLite.
func Parse(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	default:
		return "", fmt.Errorf("unknown sql dialect %q (valid: sqlite, postgres)", name)
	}
}

// String returns the dialect name.
func (d Dialect) String() string {
	return string(d)
}

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	switch d {
	case Postgres:
		return "postgres"
	default:
		return "sqlite"
	}
}

// DefaultDSN returns the connection string used when none is configured.
func (d Dialect) DefaultDSN() string {
	if d == Postgres {
		return PostgresLocalDSN
	}
	return SQLiteMemoryDSN
}

// InMemory reports whether dsn addresses a SQLite in-memory database.
func (d Dialect) InMemory(dsn string) bool {
	if d != SQLite {
		return false
	}
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// Rebind rewrites ? placeholders into the dialect's bind variable syntax.
// Question marks inside quoted literals and identifiers are left alone.
func (d Dialect) Rebind(query string) string {
	if d != Postgres || !strings.Contains(query, "?") {
		return query
	}
	var (
		b     strings.Builder
		n     int
		quote rune
	)
	b.Grow(len(query) + 8)
	for _, r := range query {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			b.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			b.WriteRune(r)
		case r == '?':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidIdent reports whether name can be used as an unqualified identifier.
func ValidIdent(name string) bool {
	return identPattern.MatchString(name)
}

// QuoteIdent validates name and returns it double-quoted.
func (d Dialect) QuoteIdent(name string) (string, error) {
	if !ValidIdent(name) {
		return "", fmt.Errorf("invalid identifier %q", name)
	}
	return `"` + name + `"`, nil
}

// IsUniqueViolation reports whether err is a primary key or unique constraint failure.
func (d Dialect) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// IsForeignKeyViolation reports whether err is a foreign key constraint failure.
func (d Dialect) IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

// IsDuplicateObject reports whether err says a schema or sequence already exists.
func (d Dialect) IsDuplicateObject(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "42P06", "42P07":
			return true
		}
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "already in use") || strings.Contains(message, "already exists")
}

// IsMissingObject reports whether err says a schema or sequence does not exist.
func (d Dialect) IsMissingObject(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "3F000", "42P01":
			return true
		}
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "no such database") || strings.Contains(message, "does not exist")
}
