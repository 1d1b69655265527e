package infra

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/fd1az/dex-arbitrage-bot/business/arbitrage/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
)

// FileStore keeps pair performance in a JSON document. Writes go to a
// temporary file in the same directory and are renamed into place.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the document location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the document. A missing file is an empty map.
func (s *FileStore) Load(_ context.Context) (map[string]domain.PairPerformance, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]domain.PairPerformance{}, nil
	}
	if err != nil {
		return nil, storeError("read "+s.path, err)
	}

	records := make(map[string]domain.PairPerformance)
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, storeError("decode "+s.path, err)
	}
	return records, nil
}

// Save replaces the document with records.
func (s *FileStore) Save(_ context.Context, records map[string]domain.PairPerformance) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return storeError("encode", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return storeError("mkdir "+dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return storeError("create temp", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return storeError("write temp", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return storeError("sync temp", err)
	}
	if err := tmp.Close(); err != nil {
		return storeError("close temp", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return storeError("rename", err)
	}
	return nil
}

func storeError(ctx string, err error) error {
	return apperror.New(apperror.CodeStateStoreFailed,
		apperror.WithContext(ctx),
		apperror.WithCause(err))
}
