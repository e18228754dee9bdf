package validation

import (
	"bytes"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// fileHeader builds a real *multipart.FileHeader by round-tripping a form.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func TestValidateFile(t *testing.T) {
	t.Run("png accepted", func(t *testing.T) {
		mimeType, err := ValidateFile(fileHeader(t, "a.png", pngHeader), BlogImageConstraints)
		require.NoError(t, err)
		assert.Equal(t, "image/png", mimeType)
	})

	t.Run("gif accepted", func(t *testing.T) {
		mimeType, err := ValidateFile(fileHeader(t, "a.GIF", []byte("GIF89a\x01\x00\x01\x00")), BlogImageConstraints)
		require.NoError(t, err)
		assert.Equal(t, "image/gif", mimeType)
	})

	t.Run("txt extension rejected", func(t *testing.T) {
		_, err := ValidateFile(fileHeader(t, "notes.txt", []byte("hello")), BlogImageConstraints)
		assert.ErrorIs(t, err, ErrNotAnImage)
	})

	t.Run("text disguised as png rejected", func(t *testing.T) {
		_, err := ValidateFile(fileHeader(t, "fake.png", []byte("just some text")), BlogImageConstraints)
		assert.ErrorIs(t, err, ErrNotAnImage)
	})

	t.Run("avatar size ceiling", func(t *testing.T) {
		big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 2<<20)...)
		_, err := ValidateFile(fileHeader(t, "big.png", big), AvatarConstraints)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2MB")

		_, err = ValidateFile(fileHeader(t, "big.png", big), BlogImageConstraints)
		assert.NoError(t, err)
	})

	t.Run("empty file rejected", func(t *testing.T) {
		_, err := ValidateFile(fileHeader(t, "empty.png", nil), BlogImageConstraints)
		assert.ErrorIs(t, err, ErrFileEmpty)
	})
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("12345"))
	assert.NoError(t, ValidatePassword("secret1"))
	assert.Error(t, ValidatePassword(strings.Repeat("x", 73)))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("alice@x.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("Alice <alice@x.com>"))
	assert.Equal(t, "alice@x.com", NormalizeEmail("  Alice@X.com "))
}

func TestValidateName(t *testing.T) {
	assert.Error(t, ValidateName("   "))
	assert.NoError(t, ValidateName("Alice"))
	assert.Error(t, ValidateName(strings.Repeat("a", 101)))
}
