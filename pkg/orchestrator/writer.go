package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-validgen/pkg/codegen"
)

// DefaultSuffix is appended to the snake cased type name of written files.
const DefaultSuffix = "_validator.go"

// Writer persists one rendered validator and returns where it went.
type Writer interface {
	Write(ctx context.Context, typeName string, src []byte) (string, error)
}

// WriterFunc adapts plain functions to the Writer interface.
type WriterFunc func(ctx context.Context, typeName string, src []byte) (string, error)

// Write calls fn.
func (fn WriterFunc) Write(ctx context.Context, typeName string, src []byte) (string, error) {
	return fn(ctx, typeName, src)
}

// FileWriter writes validators into Dir as <snake_type><Suffix>. Files are
// written to a temporary sibling first and renamed into place, so a failed
// write never leaves a partial file behind.
type FileWriter struct {
	Dir    string
	Suffix string
	Perm   os.FileMode
}

// NewFileWriter returns a FileWriter targeting dir with the default suffix.
func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{Dir: dir, Suffix: DefaultSuffix, Perm: 0o644}
}

// Path returns the destination of typeName's validator.
func (w *FileWriter) Path(typeName string) string {
	suffix := w.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return filepath.Join(w.Dir, codegen.SnakeCase(typeName)+suffix)
}

// Write implements Writer.
func (w *FileWriter) Write(ctx context.Context, typeName string, src []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(typeName) == "" {
		return "", errors.New("file writer: type name is required")
	}
	dir := w.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("file writer: create %s: %w", dir, err)
	}

	dest := w.Path(typeName)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("file writer: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	if _, err := tmp.Write(src); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("file writer: write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("file writer: close %s: %w", dest, err)
	}
	perm := w.Perm
	if perm == 0 {
		perm = 0o644
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		cleanup()
		return "", fmt.Errorf("file writer: chmod %s: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		cleanup()
		return "", fmt.Errorf("file writer: rename %s: %w", dest, err)
	}
	return dest, nil
}
