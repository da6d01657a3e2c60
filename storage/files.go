// Package storage keeps uploaded document files on the local filesystem.
package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotPDF   = errors.New("el archivo debe ser un PDF")
	ErrTooLarge = errors.New("el archivo excede el tamaño máximo permitido")
	ErrBadPath  = errors.New("ruta de archivo inválida")
)

// Files stores PDFs under dir with unique names.
type Files struct {
	dir     string
	maxSize int64
}

func NewFiles(dir string, maxSize int64) *Files {
	return &Files{dir: dir, maxSize: maxSize}
}

// MaxSize is the largest accepted file in bytes.
func (f *Files) MaxSize() int64 { return f.maxSize }

// SavePDF copies src to a new file and returns its path relative to the
// working directory, using forward slashes. Partially written files are removed.
func (f *Files) SavePDF(src io.Reader, originalName string) (string, error) {
	br := bufio.NewReaderSize(src, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return "", fmt.Errorf("error reading uploaded file: %w", err)
	}
	if http.DetectContentType(head) != "application/pdf" {
		return "", ErrNotPDF
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating upload directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	base = strings.ReplaceAll(base, "..", "")
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "documento"
	}
	filePath := filepath.Join(f.dir, fmt.Sprintf("%s_%s.pdf", uuid.NewString(), base))

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("error creating destination file: %w", err)
	}

	n, err := io.Copy(dst, io.LimitReader(br, f.maxSize+1))
	closeErr := dst.Close()
	if err == nil && n > f.maxSize {
		err = ErrTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(filePath)
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("error copying uploaded file: %w", err)
	}
	return filepath.ToSlash(filePath), nil
}

// Open opens a stored file. Paths outside the storage directory are refused.
func (f *Files) Open(relativePath string) (*os.File, error) {
	p, err := f.resolve(relativePath)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

// Remove deletes a stored file; nil or missing files are not an error.
func (f *Files) Remove(relativePath *string) error {
	if relativePath == nil || *relativePath == "" {
		return nil
	}
	p, err := f.resolve(*relativePath)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error removing file '%s': %w", *relativePath, err)
	}
	return nil
}

func (f *Files) resolve(relativePath string) (string, error) {
	p := filepath.Clean(filepath.FromSlash(relativePath))
	rel, err := filepath.Rel(filepath.Clean(f.dir), p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", ErrBadPath
	}
	return p, nil
}
