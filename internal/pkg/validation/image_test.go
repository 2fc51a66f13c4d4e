package validation

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is a minimal valid PNG signature plus IHDR chunk start
var pngHeader = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
}

func uploadedFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File["file"][0]
}

func TestValidateImageAcceptsPNG(t *testing.T) {
	fh := uploadedFile(t, "selfie.png", pngHeader)

	mime, err := ValidateImage(fh)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
}

func TestValidateImageRejectsNonImage(t *testing.T) {
	fh := uploadedFile(t, "notes.txt", []byte("just some text, not an image"))

	_, err := ValidateImage(fh)
	assert.Error(t, err)
}

func TestValidateImageRejectsNil(t *testing.T) {
	_, err := ValidateImage(nil)
	assert.Error(t, err)
}
