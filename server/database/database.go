package database

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/JRI98/maxogram/server/database/queries"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var ddl string

var ErrNotFound = errors.New("not found")

type Database struct {
	db      *sql.DB
	queries *queries.Queries
}

func Open(databasePath string) (*Database, error) {
	ctx := context.Background()

	db, err := sql.Open("sqlite3", databasePath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer; one connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return nil, err
	}

	qs := queries.New(db)

	return &Database{db: db, queries: qs}, nil
}

// WithTx runs f against a Database bound to one transaction. f must only use
// the Database it is given.
func (database *Database) WithTx(ctx context.Context, f func(transaction *Database) error) error {
	if database.db == nil {
		return f(database)
	}

	tx, err := database.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := database.queries.WithTx(tx)

	err = f(&Database{db: nil, queries: qtx})
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (database *Database) Close() error {
	return database.db.Close()
}

func unixTime(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func nullTime(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromUnix(n.Int64)
	return &t
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
