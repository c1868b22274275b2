package storage

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestCoverStore_SavePreservesExtension(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewCoverStore(dir)
	require.NoError(t, err)

	fh := makeFileHeader(t, "cat.png", []byte("png-bytes"))
	p, err := store.Save(fh)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(p, "uploads/"), "path=%s", p)
	assert.True(t, strings.HasSuffix(p, ".png"), "path=%s", p)

	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(p)))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestCoverStore_URLPrefixIndependentOfDirName(t *testing.T) {
	// 本地目录叫什么都不影响对外的 uploads/ 前缀
	dir := filepath.Join(t.TempDir(), "covers")
	store, err := NewCoverStore(dir)
	require.NoError(t, err)

	p, err := store.Save(makeFileHeader(t, "cat.png", []byte("x")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "uploads/"), "path=%s", p)

	_, err = os.Stat(filepath.Join(dir, filepath.Base(p)))
	assert.NoError(t, err)
}

func TestCoverStore_SaveUniqueNames(t *testing.T) {
	store, err := NewCoverStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	fh := makeFileHeader(t, "cat.jpg", []byte("x"))
	p1, err := store.Save(fh)
	require.NoError(t, err)
	p2, err := store.Save(fh)
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)
}
