// Package validation checks a student record before it is written.
//
// Rules run in a fixed order and the FIRST failing rule is reported, so a
// client always gets one actionable message instead of a list:
//
//  1. username, registerNumber, email and password must be non-blank
//  2. registerNumber must be exactly 11 digits
//  3. abcid (if present) must be 12 digits once hyphens are removed
//  4. aadharNumber (if present) must be 12 digits once spaces are removed
//  5. contactNumber (if present) must be exactly 10 digits
//  6. dob (if present) must be a yyyy-MM-dd date
//
// The checks themselves are go-playground/validator tags applied with
// Var, which lets us keep the ordering explicit.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Messages returned to clients. They match the wording the web client
// already shows to users.
const (
	MsgRequired       = "All required fields must be filled"
	MsgRegisterNumber = "Register number must be exactly 11 digits"
	MsgNationalID     = "ABC ID must be exactly 12 digits"
	MsgGovernmentID   = "Aadhar number must be exactly 12 digits"
	MsgContactNumber  = "Contact number must be exactly 10 digits"
	MsgDateOfBirth    = "Date of birth must be in yyyy-MM-dd format"
)

// digitsRe backs the custom "digits" tag. The built-in "numeric" tag
// also accepts signs and decimal points, which an id must not contain.
var digitsRe = regexp.MustCompile(`^[0-9]+$`)

// Error is the first rule a record violated.
type Error struct {
	Field   string // JSON name of the offending field
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Validator is safe for concurrent use; build one and share it.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the "digits" tag registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// RegisterValidation only fails on an empty tag name or a nil func.
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return digitsRe.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

// rule is one ordered check: the value, the tag it must satisfy and
// what to tell the client when it doesn't.
type rule struct {
	field    string
	value    string
	tag      string
	optional bool
	message  string
}

// ValidateRegistration runs every rule against a signup payload.
func (v *Validator) ValidateRegistration(s types.Student) error {
	return v.run(v.rules(s, true))
}

// ValidateProfile runs the same rules against a profile update. The
// password may be left empty there, meaning "keep the current one".
func (v *Validator) ValidateProfile(s types.Student) error {
	return v.run(v.rules(s, false))
}

func (v *Validator) rules(s types.Student, passwordRequired bool) []rule {
	rules := []rule{
		{field: "username", value: strings.TrimSpace(s.Username), tag: "required", message: MsgRequired},
		{field: "registerNumber", value: strings.TrimSpace(s.RegisterNumber), tag: "required", message: MsgRequired},
		{field: "email", value: strings.TrimSpace(s.Email), tag: "required", message: MsgRequired},
	}
	if passwordRequired {
		rules = append(rules,
			rule{field: "password", value: strings.TrimSpace(s.Password), tag: "required", message: MsgRequired})
	}

	return append(rules,
		rule{field: "registerNumber", value: s.RegisterNumber, tag: "digits,len=11", message: MsgRegisterNumber},
		rule{field: "abcid", value: strings.ReplaceAll(s.NationalIDNumber, "-", ""),
			tag: "digits,len=12", optional: s.NationalIDNumber == "", message: MsgNationalID},
		rule{field: "aadharNumber", value: strings.ReplaceAll(s.GovernmentIDNumber, " ", ""),
			tag: "digits,len=12", optional: s.GovernmentIDNumber == "", message: MsgGovernmentID},
		rule{field: "contactNumber", value: s.ContactNumber,
			tag: "digits,len=10", optional: s.ContactNumber == "", message: MsgContactNumber},
		rule{field: "dob", value: s.DateOfBirth,
			tag: "datetime=2006-01-02", optional: s.DateOfBirth == "", message: MsgDateOfBirth},
	)
}

func (v *Validator) run(rules []rule) error {
	for _, r := range rules {
		if r.optional {
			continue
		}
		if err := v.v.Var(r.value, r.tag); err != nil {
			if _, ok := err.(validator.ValidationErrors); !ok {
				// A malformed tag is a programming error, not bad input.
				panic(fmt.Sprintf("validation: bad tag %q: %v", r.tag, err))
			}
			return &Error{Field: r.field, Message: r.message}
		}
	}
	return nil
}

// Normalize strips the cosmetic separators the client may send: hyphens
// from the ABC id and spaces from the Aadhar number.
func Normalize(s types.Student) types.Student {
	s.NationalIDNumber = strings.ReplaceAll(s.NationalIDNumber, "-", "")
	s.GovernmentIDNumber = strings.ReplaceAll(s.GovernmentIDNumber, " ", "")
	return s
}
