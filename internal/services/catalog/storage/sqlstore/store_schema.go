package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/sqltour/internal/platform/storage/sqldialect"
	"github.com/louisbranch/sqltour/internal/services/catalog/storage"
)

// CreateSchema creates a named schema. SQLite attaches a fresh in-memory
// database under that name; it cannot do so inside a transaction.
func (s *Store) CreateSchema(ctx context.Context, name string) error {
	quoted, err := s.schemaIdent(ctx, name)
	if err != nil {
		return err
	}
	query := `CREATE SCHEMA ` + quoted
	if s.dialect == sqldialect.SQLite {
		query = `ATTACH DATABASE ':memory:' AS ` + quoted
	}
	if _, err := s.q.ExecContext(ctx, query); err != nil {
		if s.dialect.IsDuplicateObject(err) {
			return fmt.Errorf("create schema %s: %w", name, storage.ErrAlreadyExists)
		}
		return fmt.Errorf("create schema %s: %w", name, err)
	}
	return nil
}

// DropSchema drops a named schema.
func (s *Store) DropSchema(ctx context.Context, name string) error {
	quoted, err := s.schemaIdent(ctx, name)
	if err != nil {
		return err
	}
	query := `DROP SCHEMA ` + quoted
	if s.dialect == sqldialect.SQLite {
		query = `DETACH DATABASE ` + quoted
	}
	if _, err := s.q.ExecContext(ctx, query); err != nil {
		if s.dialect.IsMissingObject(err) {
			return fmt.Errorf("drop schema %s: %w", name, storage.ErrNotFound)
		}
		return fmt.Errorf("drop schema %s: %w", name, err)
	}
	return nil
}

// ListSchemas returns the schema names visible to the connection.
func (s *Store) ListSchemas(ctx context.Context) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if s.dialect == sqldialect.SQLite {
		return s.listAttachedDatabases(ctx)
	}
	rows, err := s.q.QueryContext(ctx, `SELECT schema_name FROM information_schema.schemata ORDER BY schema_name`)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list schemas: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	return names, nil
}

// ListTables returns the catalog tables in the default schema, excluding
// migration bookkeeping.
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := `SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' AND table_name <> 'schema_migrations'
		ORDER BY table_name`
	if s.dialect == sqldialect.SQLite {
		query = `SELECT name FROM sqlite_master
			WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name <> 'schema_migrations'
			ORDER BY name`
	}
	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return names, nil
}

func (s *Store) listAttachedDatabases(ctx context.Context) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, `PRAGMA database_list`)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var (
			seq  int64
			name string
			file sql.NullString
		)
		if err := rows.Scan(&seq, &name, &file); err != nil {
			return nil, fmt.Errorf("list schemas: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	return names, nil
}

func (s *Store) schemaIdent(ctx context.Context, name string) (string, error) {
	if err := s.ready(ctx); err != nil {
		return "", err
	}
	if s.dialect == sqldialect.SQLite && s.tx != nil {
		return "", fmt.Errorf("%w: sqlite cannot attach or detach schemas inside a transaction", storage.ErrInvalidArgument)
	}
	quoted, err := s.dialect.QuoteIdent(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", storage.ErrInvalidArgument, err)
	}
	return quoted, nil
}

// CreateSequence creates a named counter. Start defaults to 1 and Increment
// defaults to 1.
func (s *Store) CreateSequence(ctx context.Context, seq storage.Sequence) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	quoted, err := s.dialect.QuoteIdent(seq.Name)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidArgument, err)
	}
	if seq.Start == 0 {
		seq.Start = 1
	}
	if seq.Increment == 0 {
		seq.Increment = 1
	}

	if s.dialect == sqldialect.SQLite {
		if _, err := s.q.ExecContext(
			ctx,
			`INSERT INTO sequences (name, next_value, increment) VALUES (?, ?, ?)`,
			seq.Name,
			seq.Start,
			seq.Increment,
		); err != nil {
			return s.classify("create sequence "+seq.Name, err)
		}
		return nil
	}

	query := fmt.Sprintf(`CREATE SEQUENCE %s START WITH %d INCREMENT BY %d`, quoted, seq.Start, seq.Increment)
	if _, err := s.q.ExecContext(ctx, query); err != nil {
		if s.dialect.IsDuplicateObject(err) {
			return fmt.Errorf("create sequence %s: %w", seq.Name, storage.ErrAlreadyExists)
		}
		return fmt.Errorf("create sequence %s: %w", seq.Name, err)
	}
	return nil
}

// NextSequenceValue advances the named sequence and returns the value it
// handed out.
func (s *Store) NextSequenceValue(ctx context.Context, name string) (int64, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	quoted, err := s.dialect.QuoteIdent(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", storage.ErrInvalidArgument, err)
	}

	var value int64
	if s.dialect == sqldialect.SQLite {
		err = s.q.QueryRowContext(
			ctx,
			`UPDATE sequences
			    SET next_value = next_value + increment
			  WHERE name = ?
			RETURNING next_value - increment`,
			name,
		).Scan(&value)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("next value of %s: %w", name, storage.ErrNotFound)
		}
	} else {
		err = s.q.QueryRowContext(ctx, `SELECT nextval($1)`, quoted).Scan(&value)
		if s.dialect.IsMissingObject(err) {
			return 0, fmt.Errorf("next value of %s: %w", name, storage.ErrNotFound)
		}
	}
	if err != nil {
		return 0, fmt.Errorf("next value of %s: %w", name, err)
	}
	return value, nil
}

// DropSequence drops the named sequence.
func (s *Store) DropSequence(ctx context.Context, name string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	quoted, err := s.dialect.QuoteIdent(name)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidArgument, err)
	}

	if s.dialect == sqldialect.SQLite {
		affected, err := s.execAffected(ctx, "drop sequence "+name, `DELETE FROM sequences WHERE name = ?`, name)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("drop sequence %s: %w", name, storage.ErrNotFound)
		}
		return nil
	}

	if _, err := s.q.ExecContext(ctx, `DROP SEQUENCE `+quoted); err != nil {
		if s.dialect.IsMissingObject(err) {
			return fmt.Errorf("drop sequence %s: %w", name, storage.ErrNotFound)
		}
		return fmt.Errorf("drop sequence %s: %w", name, err)
	}
	return nil
}
