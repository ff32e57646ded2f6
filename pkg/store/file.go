package store

import (
	"fmt"
	"os"
)

// FileStore persists the record as a small fixed-size file on the host.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store backed by the file at path. The file is
// created on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads and decodes the record file. A missing file or an invalid
// label yields ErrNoRecord.
func (f *FileStore) Load() (Record, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, fmt.Errorf("%w: %s", ErrNoRecord, f.path)
		}
		return Record{}, fmt.Errorf("failed to read record file: %w", err)
	}
	var rec Record
	if err := rec.UnmarshalBinary(data); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Save writes the encoded record to the backing file.
func (f *FileStore) Save(rec Record) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write record file: %w", err)
	}
	return nil
}
