package filestorage

import (
	"bytes"
	"errors"
	"mime/multipart"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

// pngBytes is a 1x1 transparent PNG.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("logo", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["logo"][0]
}

func TestSaveImage_StoresAndDeletes(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "", 1<<20)
	require.NoError(t, err)

	url, err := ls.SaveImage(fileHeader(t, "logo.txt", pngBytes), "logos")
	require.NoError(t, err)
	assert.Regexp(t, `^/uploads/logos/[0-9a-f-]{36}\.png$`, url, "extension follows the sniffed type")

	full := ls.GetFullPath(url)
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)

	require.NoError(t, ls.DeleteFile(url))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, ls.DeleteFile(url), "deleting twice is fine")
}

func TestSaveImage_WithBaseURL(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "https://cdn.example/", 1<<20)
	require.NoError(t, err)

	url, err := ls.SaveImage(fileHeader(t, "a.png", pngBytes), "logos")
	require.NoError(t, err)
	assert.Contains(t, url, "https://cdn.example/uploads/logos/")
	assert.NotEmpty(t, ls.GetFullPath(url))
}

func TestSaveImage_Rejects(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "", 32)
	require.NoError(t, err)

	_, err = ls.SaveImage(fileHeader(t, "big.png", pngBytes), "logos")
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest), "over the size cap")

	ls.maxBytes = 1 << 20
	_, err = ls.SaveImage(fileHeader(t, "fake.png", []byte("#!/bin/sh\necho hi\n")), "logos")
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest), "not an image")

	_, err = ls.SaveImage(nil, "logos")
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
}

func TestGetFullPath_RejectsTraversal(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "", 0)
	require.NoError(t, err)

	assert.Empty(t, ls.GetFullPath("/uploads/../etc/passwd"))
	assert.Empty(t, ls.GetFullPath("https://elsewhere.example/logo.png"))
	assert.Error(t, ls.DeleteFile("/elsewhere/logo.png"))
}
