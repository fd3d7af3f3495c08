// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface.
//
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver, which makes it the default backend for development.
//
// Importing go-sqlite3 registers the "sqlite3" driver with database/sql;
// sqlx opens connections through it.
package sqlite

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/sqlstore"
)

// schema is idempotent, so it runs on every startup.
//
// register_number is the primary key and email carries a UNIQUE index:
// both uniqueness rules are enforced by the table itself.
const schema = `
	CREATE TABLE IF NOT EXISTS users (
		register_number      TEXT PRIMARY KEY CHECK (length(register_number) = 11),
		username             TEXT NOT NULL,
		year                 TEXT NOT NULL DEFAULT '',
		branch               TEXT NOT NULL DEFAULT '',
		programme            TEXT NOT NULL DEFAULT '',
		study_mode           TEXT NOT NULL DEFAULT '',
		dob                  TEXT NOT NULL DEFAULT '',
		blood_group          TEXT NOT NULL DEFAULT '',
		abc_id               TEXT NOT NULL DEFAULT '',
		aadhar_number        TEXT NOT NULL DEFAULT '',
		contact_number       TEXT NOT NULL DEFAULT '',
		state                TEXT NOT NULL DEFAULT '',
		city                 TEXT NOT NULL DEFAULT '',
		taluk                TEXT NOT NULL DEFAULT '',
		street               TEXT NOT NULL DEFAULT '',
		door_no              TEXT NOT NULL DEFAULT '',
		pincode              TEXT NOT NULL DEFAULT '',
		aadhar_document_path TEXT NOT NULL DEFAULT '',
		email                TEXT NOT NULL,
		password             TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email);
`

// SQLite is the concrete implementation of storage.Storage.
type SQLite struct {
	sqlstore.Store
}

var _ storage.Storage = (*SQLite)(nil)

// New opens (or creates) the database at path and makes sure the users
// table exists. path may be ":memory:" for a throwaway database.
func New(path string) (*SQLite, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// SQLite allows one writer at a time anyway, and every connection to
	// ":memory:" would otherwise get its own empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Store: sqlstore.Store{DB: db, Violation: uniqueViolation}}, nil
}

// uniqueViolation recognises SQLite constraint errors. The field comes
// from the message, e.g. "UNIQUE constraint failed: users.email".
func uniqueViolation(err error) (string, bool) {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return "", false
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintPrimaryKey:
		return storage.FieldRegisterNumber, true
	case sqlite3.ErrConstraintUnique:
		if strings.Contains(sqliteErr.Error(), "users.email") {
			return storage.FieldEmail, true
		}
		return storage.FieldRegisterNumber, true
	}
	return "", false
}
