package storage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pdf = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

func TestSavePDFAndOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	f := NewFiles(dir, 1<<20)

	path, err := f.SavePDF(bytes.NewReader(pdf), "../../oficio 001.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_oficio 001.pdf"))
	assert.True(t, strings.HasPrefix(path, filepath.ToSlash(dir)))

	file, err := f.Open(path)
	require.NoError(t, err)
	defer file.Close()
	got, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, pdf, got)
}

func TestSavePDFRejectsOtherContent(t *testing.T) {
	f := NewFiles(t.TempDir(), 1<<20)
	_, err := f.SavePDF(strings.NewReader("hola, no soy un pdf"), "nota.pdf")
	assert.ErrorIs(t, err, ErrNotPDF)
}

func TestSavePDFRejectsLargeFiles(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir, 64)
	big := append(append([]byte{}, pdf...), bytes.Repeat([]byte("x"), 128)...)

	_, err := f.SavePDF(bytes.NewReader(big), "grande.pdf")
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "partial file must be removed")
}

func TestOpenRefusesPathsOutsideDir(t *testing.T) {
	f := NewFiles(filepath.Join(t.TempDir(), "uploads"), 1<<20)
	_, err := f.Open("/etc/passwd")
	assert.ErrorIs(t, err, ErrBadPath)
	_, err = f.Open("uploads/../../secret.pdf")
	assert.ErrorIs(t, err, ErrBadPath)
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	f := NewFiles(dir, 1<<20)
	path, err := f.SavePDF(bytes.NewReader(pdf), "a.pdf")
	require.NoError(t, err)

	require.NoError(t, f.Remove(&path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, f.Remove(&path), "already removed")
	assert.NoError(t, f.Remove(nil))
}
