package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func multipartFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestSaveImage_StoresSniffedPNG(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "/uploads", 1024)
	require.NoError(t, err)

	// The extension lies; content decides
	info, err := ls.SaveImage(multipartFile(t, "photo.txt", pngHeader), "images")
	require.NoError(t, err)
	assert.Equal(t, "image/png", info.MimeType)
	assert.True(t, strings.HasPrefix(info.URL, "/uploads/images/"))
	assert.True(t, strings.HasSuffix(info.URL, ".png"))

	_, err = os.Stat(filepath.Join(dir, "images", filepath.Base(info.URL)))
	require.NoError(t, err)

	require.NoError(t, ls.DeleteFile(info.URL))
	_, err = os.Stat(info.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveImage_RejectsNonImage(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "/uploads", 1024)
	require.NoError(t, err)

	_, err = ls.SaveImage(multipartFile(t, "evil.png", []byte("%PDF-1.4 not an image")), "images")
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFileType)
}

func TestSaveImage_RejectsOversize(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "/uploads", 16)
	require.NoError(t, err)

	_, err = ls.SaveImage(multipartFile(t, "big.png", pngHeader), "images")
	assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)
}

func TestGetFullPath_StaysInsideBase(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "uploads", 0)
	require.NoError(t, err)

	assert.Equal(t, "", ls.GetFullPath("/elsewhere/a.png"))
	p := ls.GetFullPath("/uploads/../../etc/passwd")
	assert.True(t, strings.HasPrefix(p, ls.basePath))
}
