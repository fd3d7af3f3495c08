package records

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aanand-mishra/student-records/internal/auth"
	"github.com/aanand-mishra/student-records/internal/documents"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/sqlite"
	"github.com/aanand-mishra/student-records/internal/types"
)

type testEnv struct {
	svc     *Service
	store   *sqlite.SQLite
	docRoot string
}

func setupService(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	root := filepath.Join(t.TempDir(), "uploads")
	docs, err := documents.NewLocalStorage(root)
	require.NoError(t, err)

	return &testEnv{
		svc:     NewService(store, auth.NewHasher(bcrypt.MinCost), docs),
		store:   store,
		docRoot: root,
	}
}

func newStudent() types.Student {
	return types.Student{
		RegisterNumber: "20230010101",
		Email:          "a@x.com",
		Username:       "A",
		Password:       "p1",
	}
}

func register(t *testing.T, env *testEnv, s types.Student) {
	t.Helper()
	res, err := env.svc.Register(s)
	require.NoError(t, err)
	require.False(t, res.Exists)
}

func TestRegister(t *testing.T) {
	env := setupService(t)

	st := newStudent()
	st.NationalIDNumber = "1234-5678-9012"
	st.GovernmentIDNumber = "1234 5678 9012"
	st.DocumentPath = "client-supplied.png"

	res, err := env.svc.Register(st)
	require.NoError(t, err)
	assert.False(t, res.Exists)
	assert.Equal(t, MsgRegistered, res.Message)

	stored, err := env.store.GetStudentByRegisterNumber(st.RegisterNumber)
	require.NoError(t, err)
	assert.Equal(t, "123456789012", stored.NationalIDNumber)
	assert.Equal(t, "123456789012", stored.GovernmentIDNumber)
	assert.Empty(t, stored.DocumentPath, "only an upload sets the document path")
	assert.NotEqual(t, "p1", stored.Password, "password is stored hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("p1")))
}

func TestRegisterValidation(t *testing.T) {
	env := setupService(t)

	tests := []struct {
		name   string
		mutate func(*types.Student)
	}{
		{"missing username", func(s *types.Student) { s.Username = "" }},
		{"missing register number", func(s *types.Student) { s.RegisterNumber = " " }},
		{"missing email", func(s *types.Student) { s.Email = "" }},
		{"missing password", func(s *types.Student) { s.Password = "" }},
		{"short register number", func(s *types.Student) { s.RegisterNumber = "12345" }},
		{"abc id too short", func(s *types.Student) { s.NationalIDNumber = "1234-5678-901" }},
		{"bad contact number", func(s *types.Student) { s.ContactNumber = "12" }},
		{"password too long for bcrypt", func(s *types.Student) { s.Password = strings.Repeat("p", 80) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newStudent()
			tt.mutate(&st)

			_, err := env.svc.Register(st)
			require.ErrorIs(t, err, ErrValidation)
			assert.NotEmpty(t, Message(err))

			_, err = env.store.GetStudentByEmail(st.Email)
			assert.ErrorIs(t, err, storage.ErrNotFound, "nothing is written")
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	env := setupService(t)
	register(t, env, newStudent())

	t.Run("same email", func(t *testing.T) {
		st := newStudent()
		st.RegisterNumber = "20230010102"

		res, err := env.svc.Register(st)
		require.NoError(t, err)
		assert.True(t, res.Exists)
		assert.Equal(t, storage.FieldEmail, res.Field)
		assert.Equal(t, "User with this email already exists", res.Message)

		_, err = env.store.GetStudentByRegisterNumber(st.RegisterNumber)
		assert.ErrorIs(t, err, storage.ErrNotFound, "no second row")
	})

	t.Run("same register number", func(t *testing.T) {
		st := newStudent()
		st.Email = "b@x.com"

		res, err := env.svc.Register(st)
		require.NoError(t, err)
		assert.True(t, res.Exists)
		assert.Equal(t, storage.FieldRegisterNumber, res.Field)
		assert.Equal(t, "User with this register number already exists", res.Message)
	})

	t.Run("email checked before register number", func(t *testing.T) {
		res, err := env.svc.Register(newStudent())
		require.NoError(t, err)
		assert.Equal(t, storage.FieldEmail, res.Field)
	})
}

// blindStore hides existing rows from the pre-checks, like a concurrent
// signup that has not committed yet.
type blindStore struct {
	storage.Storage
}

func (blindStore) GetStudentByEmail(string) (types.Student, error) {
	return types.Student{}, storage.ErrNotFound
}

func (blindStore) GetStudentByRegisterNumber(string) (types.Student, error) {
	return types.Student{}, storage.ErrNotFound
}

func TestRegisterConstraintCatchesRace(t *testing.T) {
	env := setupService(t)
	register(t, env, newStudent())

	svc := NewService(blindStore{env.store}, auth.NewHasher(bcrypt.MinCost), nil)

	st := newStudent()
	st.RegisterNumber = "20230010199"
	res, err := svc.Register(st)
	require.NoError(t, err)
	assert.True(t, res.Exists)
	assert.Equal(t, storage.FieldEmail, res.Field)
}

type brokenStore struct {
	storage.Storage
}

func (brokenStore) GetStudentByEmail(string) (types.Student, error) {
	return types.Student{}, errors.New("disk I/O error")
}

func (brokenStore) GetStudentByRegisterNumber(string) (types.Student, error) {
	return types.Student{}, errors.New("disk I/O error")
}

func TestStoreFailuresAreStorageErrors(t *testing.T) {
	svc := NewService(brokenStore{}, auth.NewHasher(bcrypt.MinCost), nil)

	_, err := svc.Register(newStudent())
	assert.ErrorIs(t, err, ErrStorage)

	_, err = svc.SignIn(types.Credentials{RegisterNumber: "20230010101", Password: "p1"})
	assert.ErrorIs(t, err, ErrStorage)

	_, err = svc.Details("20230010101")
	assert.ErrorIs(t, err, ErrStorage)
}

func TestSignIn(t *testing.T) {
	env := setupService(t)
	register(t, env, newStudent())

	got, err := env.svc.SignIn(types.Credentials{RegisterNumber: "20230010101", Password: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "A", got.Username)
	assert.Equal(t, "20230010101", got.RegisterNumber)
	assert.Empty(t, got.Password)

	_, err = env.svc.SignIn(types.Credentials{RegisterNumber: "20230010101", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "Invalid password", Message(err))

	_, err = env.svc.SignIn(types.Credentials{RegisterNumber: "99999999999", Password: "p1"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "User not found", Message(err))
}

func TestResetPassword(t *testing.T) {
	env := setupService(t)
	register(t, env, newStudent())

	storedHash := func() string {
		st, err := env.store.GetStudentByRegisterNumber("20230010101")
		require.NoError(t, err)
		return st.Password
	}

	t.Run("same password is refused", func(t *testing.T) {
		before := storedHash()

		err := env.svc.ResetPasswordByRegisterNumber("20230010101", "p1")
		assert.ErrorIs(t, err, ErrSamePassword)
		err = env.svc.ResetPasswordByEmail("a@x.com", "p1")
		assert.ErrorIs(t, err, ErrSamePassword)

		assert.Equal(t, before, storedHash())
	})

	t.Run("unknown account", func(t *testing.T) {
		assert.ErrorIs(t, env.svc.ResetPasswordByRegisterNumber("99999999999", "x"), ErrNotFound)
		assert.ErrorIs(t, env.svc.ResetPasswordByEmail("nobody@x.com", "x"), ErrNotFound)
	})

	t.Run("by register number", func(t *testing.T) {
		require.NoError(t, env.svc.ResetPasswordByRegisterNumber("20230010101", "p2"))

		_, err := env.svc.SignIn(types.Credentials{RegisterNumber: "20230010101", Password: "p2"})
		assert.NoError(t, err)
		_, err = env.svc.SignIn(types.Credentials{RegisterNumber: "20230010101", Password: "p1"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("by email", func(t *testing.T) {
		require.NoError(t, env.svc.ResetPasswordByEmail("a@x.com", "p3"))

		_, err := env.svc.SignIn(types.Credentials{RegisterNumber: "20230010101", Password: "p3"})
		assert.NoError(t, err)
	})
}

func TestDetails(t *testing.T) {
	env := setupService(t)
	register(t, env, newStudent())

	got, err := env.svc.Details("  20230010101 ")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Empty(t, got.Password)
	assert.Empty(t, got.DocumentPath)

	_, err = env.svc.Details("20230010199")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	env := setupService(t)
	register(t, env, newStudent())

	t.Run("full replacement keeps password when omitted", func(t *testing.T) {
		upd := newStudent()
		upd.Password = ""
		upd.Username = "A. Kumar"
		upd.Branch = "ECE"
		upd.GovernmentIDNumber = "1234 5678 9012"
		upd.Address = types.Address{City: "Madurai", Pincode: "625001"}

		got, err := env.svc.UpdateProfile(upd)
		require.NoError(t, err)
		assert.Equal(t, "A. Kumar", got.Username)
		assert.Equal(t, "ECE", got.Branch)
		assert.Equal(t, "123456789012", got.GovernmentIDNumber)
		assert.Equal(t, "Madurai", got.Address.City)
		assert.Empty(t, got.Password)

		_, err = env.svc.SignIn(types.Credentials{RegisterNumber: "20230010101", Password: "p1"})
		assert.NoError(t, err)
	})

	t.Run("new password is hashed", func(t *testing.T) {
		upd := newStudent()
		upd.Password = "p9"

		_, err := env.svc.UpdateProfile(upd)
		require.NoError(t, err)

		_, err = env.svc.SignIn(types.Credentials{RegisterNumber: "20230010101", Password: "p9"})
		assert.NoError(t, err)
	})

	t.Run("document path in payload is ignored", func(t *testing.T) {
		upd := newStudent()
		upd.DocumentPath = "../../etc/passwd"

		got, err := env.svc.UpdateProfile(upd)
		require.NoError(t, err)
		assert.Empty(t, got.DocumentPath)

		stored, err := env.store.GetStudentByRegisterNumber("20230010101")
		require.NoError(t, err)
		assert.Empty(t, stored.DocumentPath)
	})

	t.Run("unknown register number", func(t *testing.T) {
		upd := newStudent()
		upd.RegisterNumber = "20230010199"

		_, err := env.svc.UpdateProfile(upd)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalid payload", func(t *testing.T) {
		upd := newStudent()
		upd.ContactNumber = "123"

		_, err := env.svc.UpdateProfile(upd)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("email owned by another student", func(t *testing.T) {
		other := newStudent()
		other.RegisterNumber = "20230010102"
		other.Email = "b@x.com"
		register(t, env, other)

		other.Email = "a@x.com"
		_, err := env.svc.UpdateProfile(other)
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.Equal(t, "User with this email already exists", Message(err))
	})
}

func pngUpload(body []byte) Upload {
	return Upload{
		RegisterNumber: "20230010101",
		Filename:       "scan.png",
		ContentType:    "image/png",
		Size:           int64(len(body)),
		Body:           bytes.NewReader(body),
	}
}

func TestUploadDocument(t *testing.T) {
	env := setupService(t)
	register(t, env, newStudent())

	body := []byte("\x89PNG\r\n\x1a\nfake")

	name, err := env.svc.UploadDocument(pngUpload(body))
	require.NoError(t, err)
	assert.Equal(t, "20230010101-aadhar.png", name)

	written, err := os.ReadFile(filepath.Join(env.docRoot, name))
	require.NoError(t, err)
	assert.Equal(t, body, written)

	got, err := env.svc.Details("20230010101")
	require.NoError(t, err)
	assert.Equal(t, "20230010101-aadhar.png", got.DocumentPath)

	t.Run("profile update keeps the document", func(t *testing.T) {
		upd := newStudent()
		upd.Password = ""
		updated, err := env.svc.UpdateProfile(upd)
		require.NoError(t, err)
		assert.Equal(t, "20230010101-aadhar.png", updated.DocumentPath)
	})

	t.Run("profile update cannot repoint the document", func(t *testing.T) {
		upd := newStudent()
		upd.Password = ""
		upd.DocumentPath = "20230010102-aadhar.png"

		updated, err := env.svc.UpdateProfile(upd)
		require.NoError(t, err)
		assert.Equal(t, "20230010101-aadhar.png", updated.DocumentPath)

		stored, err := env.store.GetStudentByRegisterNumber("20230010101")
		require.NoError(t, err)
		assert.Equal(t, "20230010101-aadhar.png", stored.DocumentPath)
	})

	t.Run("second upload overwrites", func(t *testing.T) {
		_, err := env.svc.UploadDocument(pngUpload([]byte("second")))
		require.NoError(t, err)

		written, err := os.ReadFile(filepath.Join(env.docRoot, name))
		require.NoError(t, err)
		assert.Equal(t, "second", string(written))
	})
}

func TestUploadDocumentRejections(t *testing.T) {
	env := setupService(t)
	register(t, env, newStudent())

	t.Run("empty file", func(t *testing.T) {
		_, err := env.svc.UploadDocument(pngUpload(nil))
		assert.ErrorIs(t, err, ErrInvalidFile)
		assert.Equal(t, "Please select a file to upload.", Message(err))
	})

	t.Run("text/plain", func(t *testing.T) {
		up := pngUpload([]byte("hello"))
		up.ContentType = "text/plain"
		up.Filename = "notes.txt"

		_, err := env.svc.UploadDocument(up)
		assert.ErrorIs(t, err, ErrInvalidFile)
	})

	t.Run("unknown student writes nothing", func(t *testing.T) {
		up := pngUpload([]byte("%PDF-1.4"))
		up.RegisterNumber = "20230010199"
		up.ContentType = "application/pdf"
		up.Filename = "card.pdf"

		_, err := env.svc.UploadDocument(up)
		assert.ErrorIs(t, err, ErrNotFound)

		entries, err := os.ReadDir(env.docRoot)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

type failingDocs struct{}

func (failingDocs) Save(string, io.Reader) error {
	return errors.New("no space left on device")
}

func (failingDocs) Remove(string) error { return nil }

func TestUploadDocumentStorageError(t *testing.T) {
	env := setupService(t)
	register(t, env, newStudent())

	svc := NewService(env.store, auth.NewHasher(bcrypt.MinCost), failingDocs{})

	_, err := svc.UploadDocument(pngUpload([]byte("x")))
	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, "Failed to upload file due to server error", Message(err))
	assert.ErrorContains(t, err, "no space left on device")

	got, err := env.store.GetStudentByRegisterNumber("20230010101")
	require.NoError(t, err)
	assert.Empty(t, got.DocumentPath)
}

// pathlessStore fails to record the document path.
type pathlessStore struct {
	storage.Storage
}

func (pathlessStore) SetDocumentPath(string, string) error {
	return errors.New("database is locked")
}

func TestUploadDocumentRecordFailure(t *testing.T) {
	env := setupService(t)
	register(t, env, newStudent())

	docs, err := documents.NewLocalStorage(env.docRoot)
	require.NoError(t, err)
	svc := NewService(pathlessStore{env.store}, auth.NewHasher(bcrypt.MinCost), docs)

	t.Run("new file is removed", func(t *testing.T) {
		_, err := svc.UploadDocument(pngUpload([]byte("x")))
		assert.ErrorIs(t, err, ErrInternal)
		assert.Equal(t, "An unexpected error occurred", Message(err))
		assert.ErrorContains(t, err, "database is locked")

		entries, err := os.ReadDir(env.docRoot)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("file the record points at is kept", func(t *testing.T) {
		name, err := env.svc.UploadDocument(pngUpload([]byte("first")))
		require.NoError(t, err)

		_, err = svc.UploadDocument(pngUpload([]byte("second")))
		assert.ErrorIs(t, err, ErrInternal)

		_, statErr := os.Stat(filepath.Join(env.docRoot, name))
		assert.NoError(t, statErr)
	})
}
