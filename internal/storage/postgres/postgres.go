// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Storage interface, for deployments that outgrow a single
// SQLite file.
package postgres

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/sqlstore"
)

// Constraint names are fixed so a violation can be mapped back to the
// field that collided.
const (
	pkeyConstraint  = "users_pkey"
	emailConstraint = "users_email_key"
)

// uniqueViolationCode is SQLSTATE 23505.
const uniqueViolationCode = "23505"

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		register_number      CHAR(11) NOT NULL,
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
		password             TEXT NOT NULL,
		CONSTRAINT users_pkey PRIMARY KEY (register_number),
		CONSTRAINT users_email_key UNIQUE (email)
	)
`

// Postgres is the concrete implementation of storage.Storage.
type Postgres struct {
	sqlstore.Store
}

var _ storage.Storage = (*Postgres)(nil)

// New connects to dsn (a postgres:// URL or key=value string) and makes
// sure the users table exists.
func New(dsn string) (*Postgres, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres.New: create table: %w", err)
	}

	return &Postgres{Store: sqlstore.Store{DB: db, Violation: uniqueViolation}}, nil
}

func uniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolationCode {
		return "", false
	}

	switch pqErr.Constraint {
	case emailConstraint:
		return storage.FieldEmail, true
	case pkeyConstraint:
		return storage.FieldRegisterNumber, true
	}
	return "", false
}
