package documents

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		original string
		want     string
	}{
		{"scan.png", "20230010101-aadhar.png"},
		{"my.card.final.pdf", "20230010101-aadhar.pdf"},
		{"photo", "20230010101-aadhar"},
		{"", "20230010101-aadhar"},
		{"../../etc/passwd.jpg", "20230010101-aadhar.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName("20230010101", tt.original))
		})
	}
}

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed("image/jpeg"))
	assert.True(t, Allowed("image/png"))
	assert.True(t, Allowed("application/pdf"))
	assert.False(t, Allowed("text/plain"))
	assert.False(t, Allowed("image/gif"))
	assert.False(t, Allowed(""))
}

func TestSaveOverwrites(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	ls, err := NewLocalStorage(root)
	require.NoError(t, err)
	assert.Equal(t, root, ls.Root())

	require.NoError(t, ls.Save("20230010101-aadhar.png", strings.NewReader("first")))
	require.NoError(t, ls.Save("20230010101-aadhar.png", strings.NewReader("second")))

	got, err := os.ReadFile(filepath.Join(root, "20230010101-aadhar.png"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestSaveRejectsPaths(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../x.png", "a/b.png", ".hidden"} {
		assert.Error(t, ls.Save(name, strings.NewReader("x")), name)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestSaveRemovesPartialFile(t *testing.T) {
	root := t.TempDir()
	ls, err := NewLocalStorage(root)
	require.NoError(t, err)

	err = ls.Save("20230010101-aadhar.pdf", io.MultiReader(strings.NewReader("partial"), failingReader{}))
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(root, "20230010101-aadhar.pdf"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestNewLocalStorageEmptyRoot(t *testing.T) {
	_, err := NewLocalStorage("")
	assert.Error(t, err)
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	ls, err := NewLocalStorage(root)
	require.NoError(t, err)

	require.NoError(t, ls.Save("20230010101-aadhar.pdf", strings.NewReader("%PDF")))
	require.NoError(t, ls.Remove("20230010101-aadhar.pdf"))

	_, statErr := os.Stat(filepath.Join(root, "20230010101-aadhar.pdf"))
	assert.True(t, os.IsNotExist(statErr))

	assert.NoError(t, ls.Remove("20230010101-aadhar.pdf"), "already gone")
	assert.Error(t, ls.Remove("../escape.pdf"))
}
