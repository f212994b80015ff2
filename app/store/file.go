package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File is a storage that keeps all records in a single JSON file.
type File struct {
	path string
}

// NewFile creates new File storage. The file is created on the first Save.
func NewFile(path string) *File { return &File{path: path} }

// Load reads all records from the file.
func (f *File) Load(context.Context) (Records, error) {
	bts, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Records{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	var recs Records
	if err = json.Unmarshal(bts, &recs); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", f.path, err)
	}

	// "null" unmarshals into a nil map
	if recs == nil {
		recs = Records{}
	}

	return recs, nil
}

// Save replaces the file with the given records.
// Records are written to a temporary file first and renamed over the old one.
func (f *File) Save(_ context.Context, recs Records) error {
	if recs == nil {
		recs = Records{}
	}

	bts, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmp.Name())
	}()

	if _, err = tmp.Write(bts); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err = os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}

	return nil
}

// Close does nothing, file is not kept open between calls.
func (f *File) Close() error { return nil }
