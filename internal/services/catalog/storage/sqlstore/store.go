// Package sqlstore provides the SQL-backed catalog store for SQLite and
// PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/sqltour/internal/platform/filter"
	"github.com/louisbranch/sqltour/internal/platform/storage/sqldialect"
	"github.com/louisbranch/sqltour/internal/platform/storage/sqllog"
	"github.com/louisbranch/sqltour/internal/platform/storage/sqlmigrate"
	"github.com/louisbranch/sqltour/internal/platform/timeouts"
	"github.com/louisbranch/sqltour/internal/services/catalog/storage"
	"github.com/louisbranch/sqltour/internal/services/catalog/storage/sqlstore/migrations"
)

// Options configures Open.
type Options struct {
	Dialect sqldialect.Dialect
	// DSN defaults to the dialect's DefaultDSN.
	DSN string
	// Logger echoes every statement. Nil keeps statements quiet.
	Logger logrus.FieldLogger
	// TracerProvider receives statement spans. Defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// Store persists catalog state in a SQL database.
//
// A Store returned by Open runs each statement on the pool. The Store passed
// to an InTx callback runs every statement on that transaction.
type Store struct {
	sqlDB   *sql.DB
	dialect sqldialect.Dialect
	q       sqllog.Querier
	tx      *sql.Tx
	logOpts sqllog.Options
}

// Open opens the configured database and applies embedded migrations.
func Open(ctx context.Context, opts Options) (*Store, error) {
	dialect := opts.Dialect
	if dialect == "" {
		dialect = sqldialect.SQLite
	}
	dsn := strings.TrimSpace(opts.DSN)
	if dsn == "" {
		dsn = dialect.DefaultDSN()
	}

	sqlDB, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", dialect, err)
	}
	if dialect.InMemory(dsn) {
		// An in-memory database, and anything attached to it, lives on a
		// single connection.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s db: %w", dialect, err)
	}
	if err := sqlmigrate.ApplyMigrations(ctx, sqlDB, dialect, migrations.FS, dialect.String()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return newStore(sqlDB, dialect, sqllog.Options{
		Logger:         opts.Logger,
		System:         dialect.String(),
		TracerProvider: opts.TracerProvider,
	}), nil
}

func newStore(sqlDB *sql.DB, dialect sqldialect.Dialect, logOpts sqllog.Options) *Store {
	return &Store{
		sqlDB:   sqlDB,
		dialect: dialect,
		q:       sqllog.Wrap(sqlDB, logOpts),
		logOpts: logOpts,
	}
}

// Close closes the database handle. Closing a transaction-bound Store is a no-op.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil || s.tx != nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Dialect reports the SQL dialect the store speaks.
func (s *Store) Dialect() sqldialect.Dialect {
	return s.dialect
}

// InTx runs fn against a Store bound to one transaction, committing when fn
// returns nil and rolling back otherwise. Nested calls reuse the outer
// transaction.
func (s *Store) InTx(ctx context.Context, fn func(*Store) error) (err error) {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("%w: transaction function is required", storage.ErrInvalidArgument)
	}
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	txStore := &Store{
		sqlDB:   s.sqlDB,
		dialect: s.dialect,
		q:       sqllog.Wrap(tx, s.logOpts),
		tx:      tx,
		logOpts: s.logOpts,
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil || s.q == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func (s *Store) rebind(query string) string {
	return s.dialect.Rebind(query)
}

// classify maps driver constraint errors onto storage sentinels.
func (s *Store) classify(op string, err error) error {
	switch {
	case s.dialect.IsUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	case s.dialect.IsForeignKeyViolation(err):
		return fmt.Errorf("%s: %w", op, storage.ErrInvalidReference)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func (s *Store) parseFilter(filterStr string, fields filter.Fields) (filter.Condition, error) {
	cond, err := filter.Parse(filterStr, fields)
	if err != nil {
		return filter.Condition{}, fmt.Errorf("%w: %v", storage.ErrInvalidArgument, err)
	}
	return cond, nil
}

func (s *Store) insertReturningID(ctx context.Context, op, query string, args ...any) (int64, error) {
	var id int64
	if err := s.q.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, s.classify(op, err)
	}
	return id, nil
}

func validateID(field string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s must be positive", storage.ErrInvalidArgument, field)
	}
	return nil
}

var _ storage.CatalogStore = (*Store)(nil)
