// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, records, storage, and utils can all import types without
// depending on each other.
package types

// Student represents one row of the users table.
//
// The json:"..." names match what the web client sends and expects, so
// a few of them differ from the Go field names:
//
//	NationalIDNumber   ↔ "abcid"         (Academic Bank of Credits id)
//	GovernmentIDNumber ↔ "aadharNumber"
//	DocumentPath       ↔ "aadharDocumentPath"
//
// An empty string means "not provided" for every optional field.
type Student struct {
	// RegisterNumber is the primary key: exactly 11 decimal digits.
	RegisterNumber string `json:"registerNumber"`

	Username    string `json:"username"`
	Year        string `json:"year"`
	Branch      string `json:"branch"`
	Programme   string `json:"programme"`
	StudyMode   string `json:"studyMode"`
	DateOfBirth string `json:"dob"` // yyyy-MM-dd
	BloodGroup  string `json:"bloodGroup"`

	// Stored without separators: hyphens are stripped from the national
	// id and spaces from the government id before the row is written.
	NationalIDNumber   string `json:"abcid"`
	GovernmentIDNumber string `json:"aadharNumber"`

	ContactNumber string  `json:"contactNumber"`
	Address       Address `json:"address"`

	// DocumentPath is the stored filename of the uploaded Aadhar document.
	// It is set only by a successful upload.
	DocumentPath string `json:"aadharDocumentPath,omitempty"`

	Email string `json:"email"`

	// Password is write-only on the wire: clients send the plain value,
	// the database keeps a bcrypt hash, and responses never carry either
	// (handlers call Public before encoding).
	Password string `json:"password,omitempty"`
}

// Address is embedded in Student; it has no identity of its own.
type Address struct {
	State   string `json:"state"`
	City    string `json:"city"`
	Taluk   string `json:"taluk"`
	Street  string `json:"street"`
	DoorNo  string `json:"doorNo"`
	Pincode string `json:"pincode"`
}

// Public returns a copy of s that is safe to send to a client.
func (s Student) Public() Student {
	s.Password = ""
	return s
}

// Credentials is the sign-in request body.
type Credentials struct {
	RegisterNumber string `json:"registerNumber"`
	Password       string `json:"password"`
}

// PasswordChange is the body of both password reset endpoints. Exactly
// one of Email / RegisterNumber is used, depending on the endpoint.
type PasswordChange struct {
	Email          string `json:"email"`
	RegisterNumber string `json:"registerNumber"`
	Password       string `json:"password"`
}
