package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a real multipart header by parsing a one-file form.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestNormalizeFilename(t *testing.T) {
	name := normalizeFilename("../My Holiday (1).JPG")
	assert.True(t, strings.HasPrefix(name, "My_Holiday_1_"), name)
	assert.True(t, strings.HasSuffix(name, ".jpg"), name)
	assert.NotContains(t, name, "/")

	assert.True(t, strings.HasPrefix(normalizeFilename("???"), "file_"))
	assert.NotEqual(t, normalizeFilename("a.png"), normalizeFilename("a.png"))
}

func TestLocalStorage_SaveAndResolve(t *testing.T) {
	dir := t.TempDir()
	ls := NewLocalStorage(filepath.Join(dir, "uploads"))
	ctx := context.Background()

	stored, err := ls.SaveFile(ctx, fileHeader(t, "clip.mp4", []byte("video-bytes")))
	require.NoError(t, err)

	obj, err := ls.Resolve(ctx, stored)
	require.NoError(t, err)
	assert.Empty(t, obj.URL)
	data, err := os.ReadFile(obj.Path)
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))
}

func TestLocalStorage_ResolveMissingOrUnsafe(t *testing.T) {
	ls := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	for _, name := range []string{"missing.png", "../etc/passwd", "", ".hidden"} {
		_, err := ls.Resolve(ctx, name)
		assert.ErrorIs(t, err, ErrFileNotFound, name)
	}
}

func TestGetContentType(t *testing.T) {
	assert.Equal(t, "image/png", getContentType("a.PNG"))
	assert.Equal(t, "video/mp4", getContentType("a.mp4"))
	assert.Equal(t, "application/octet-stream", getContentType("a.bin"))
}
