package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend keeps each collection in <dir>/<kind>.json.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) Dir() string { return b.dir }

func (b *FileBackend) path(kind Kind) string {
	return filepath.Join(b.dir, string(kind)+".json")
}

func (b *FileBackend) Read(ctx context.Context, kind Kind) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.path(kind))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Kind: kind, Op: "read", Err: err}
	}
	// A zero-length file was created but never written; treat it as empty.
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return decodeArray(kind, data)
}

// Write replaces the collection file through a temp file and rename so a
// crash mid-write leaves the previous contents in place.
func (b *FileBackend) Write(ctx context.Context, kind Kind, docs []Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeArray(docs)
	if err != nil {
		return &StorageError{Kind: kind, Op: "encode", Err: err}
	}
	if err := writeFileAtomic(b.path(kind), data); err != nil {
		return &StorageError{Kind: kind, Op: "write", Err: err}
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }

func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
