// Package sqlstore implements storage.Storage on top of sqlx. The SQL is
// written once with ? placeholders and rebound for each driver, so the
// sqlite and postgres packages only contribute a connection, a schema
// and a way to recognise a unique-constraint violation.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// UniqueViolation inspects a driver error. If it is a unique or primary
// key violation it returns the storage field that collided.
type UniqueViolation func(err error) (field string, ok bool)

// Store is the shared implementation. Embed it in a driver package.
type Store struct {
	DB        *sqlx.DB
	Violation UniqueViolation
}

// row is the flat table shape. types.Student nests the address; the
// table does not.
type row struct {
	RegisterNumber     string `db:"register_number"`
	Username           string `db:"username"`
	Year               string `db:"year"`
	Branch             string `db:"branch"`
	Programme          string `db:"programme"`
	StudyMode          string `db:"study_mode"`
	DateOfBirth        string `db:"dob"`
	BloodGroup         string `db:"blood_group"`
	NationalIDNumber   string `db:"abc_id"`
	GovernmentIDNumber string `db:"aadhar_number"`
	ContactNumber      string `db:"contact_number"`
	State              string `db:"state"`
	City               string `db:"city"`
	Taluk              string `db:"taluk"`
	Street             string `db:"street"`
	DoorNo             string `db:"door_no"`
	Pincode            string `db:"pincode"`
	DocumentPath       string `db:"aadhar_document_path"`
	Email              string `db:"email"`
	Password           string `db:"password"`
}

func toRow(s types.Student) row {
	return row{
		RegisterNumber:     s.RegisterNumber,
		Username:           s.Username,
		Year:               s.Year,
		Branch:             s.Branch,
		Programme:          s.Programme,
		StudyMode:          s.StudyMode,
		DateOfBirth:        s.DateOfBirth,
		BloodGroup:         s.BloodGroup,
		NationalIDNumber:   s.NationalIDNumber,
		GovernmentIDNumber: s.GovernmentIDNumber,
		ContactNumber:      s.ContactNumber,
		State:              s.Address.State,
		City:               s.Address.City,
		Taluk:              s.Address.Taluk,
		Street:             s.Address.Street,
		DoorNo:             s.Address.DoorNo,
		Pincode:            s.Address.Pincode,
		DocumentPath:       s.DocumentPath,
		Email:              s.Email,
		Password:           s.Password,
	}
}

func (r row) student() types.Student {
	return types.Student{
		RegisterNumber:     r.RegisterNumber,
		Username:           r.Username,
		Year:               r.Year,
		Branch:             r.Branch,
		Programme:          r.Programme,
		StudyMode:          r.StudyMode,
		DateOfBirth:        r.DateOfBirth,
		BloodGroup:         r.BloodGroup,
		NationalIDNumber:   r.NationalIDNumber,
		GovernmentIDNumber: r.GovernmentIDNumber,
		ContactNumber:      r.ContactNumber,
		Address: types.Address{
			State:   r.State,
			City:    r.City,
			Taluk:   r.Taluk,
			Street:  r.Street,
			DoorNo:  r.DoorNo,
			Pincode: r.Pincode,
		},
		DocumentPath: r.DocumentPath,
		Email:        r.Email,
		Password:     r.Password,
	}
}

// Explicit column list, never SELECT *, so Scan order never depends
// on the table definition.
const selectColumns = `
	SELECT register_number, username, year, branch, programme, study_mode,
	       dob, blood_group, abc_id, aadhar_number, contact_number,
	       state, city, taluk, street, door_no, pincode,
	       aadhar_document_path, email, password
	FROM users`

func (s *Store) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// CreateStudent inserts a row. The primary key and the unique email
// index reject duplicates even when two signups race past the
// workflow's pre-checks.
func (s *Store) CreateStudent(student types.Student) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO users (
			register_number, username, year, branch, programme, study_mode,
			dob, blood_group, abc_id, aadhar_number, contact_number,
			state, city, taluk, street, door_no, pincode,
			aadhar_document_path, email, password
		) VALUES (
			:register_number, :username, :year, :branch, :programme, :study_mode,
			:dob, :blood_group, :abc_id, :aadhar_number, :contact_number,
			:state, :city, :taluk, :street, :door_no, :pincode,
			:aadhar_document_path, :email, :password
		)`, toRow(student))
	if err != nil {
		return s.classify("CreateStudent", err)
	}
	return nil
}

func (s *Store) GetStudentByRegisterNumber(registerNumber string) (types.Student, error) {
	return s.getOne("GetStudentByRegisterNumber",
		selectColumns+" WHERE register_number = ? LIMIT 1", registerNumber)
}

func (s *Store) GetStudentByEmail(email string) (types.Student, error) {
	return s.getOne("GetStudentByEmail",
		selectColumns+" WHERE email = ? LIMIT 1", email)
}

func (s *Store) getOne(op, query string, arg any) (types.Student, error) {
	var r row
	err := s.DB.Get(&r, s.DB.Rebind(query), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("%s: %w", op, err)
	}
	return r.student(), nil
}

// UpdateStudent overwrites every column except the primary key, then
// re-reads the row so the caller gets exactly what is stored.
func (s *Store) UpdateStudent(student types.Student) (types.Student, error) {
	res, err := s.DB.NamedExec(`
		UPDATE users SET
			username = :username, year = :year, branch = :branch,
			programme = :programme, study_mode = :study_mode, dob = :dob,
			blood_group = :blood_group, abc_id = :abc_id,
			aadhar_number = :aadhar_number, contact_number = :contact_number,
			state = :state, city = :city, taluk = :taluk, street = :street,
			door_no = :door_no, pincode = :pincode,
			aadhar_document_path = :aadhar_document_path,
			email = :email, password = :password
		WHERE register_number = :register_number`, toRow(student))
	if err != nil {
		return types.Student{}, s.classify("UpdateStudent", err)
	}
	if err := mustAffect(res); err != nil {
		return types.Student{}, err
	}

	return s.GetStudentByRegisterNumber(student.RegisterNumber)
}

func (s *Store) UpdatePassword(registerNumber, passwordHash string) error {
	return s.exec("UpdatePassword",
		"UPDATE users SET password = ? WHERE register_number = ?",
		passwordHash, registerNumber)
}

func (s *Store) SetDocumentPath(registerNumber, path string) error {
	return s.exec("SetDocumentPath",
		"UPDATE users SET aadhar_document_path = ? WHERE register_number = ?",
		path, registerNumber)
}

func (s *Store) exec(op, query string, args ...any) error {
	res, err := s.DB.Exec(s.DB.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("%s: exec: %w", op, err)
	}
	return mustAffect(res)
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) classify(op string, err error) error {
	if s.Violation != nil {
		if field, ok := s.Violation(err); ok {
			return &storage.DuplicateError{Field: field, Err: err}
		}
	}
	return fmt.Errorf("%s: exec: %w", op, err)
}
