// Package storage provides the ephemeral upload blob store.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/docbridge-ai/docbridge/internal/domain"
	"github.com/docbridge-ai/docbridge/internal/observability"
)

// BlobStore keeps uploaded files on disk under a single directory and
// tracks them in an in-process registry. Contents are ephemeral: a restart
// forgets every upload.
type BlobStore struct {
	dir    string
	logger *observability.Logger

	mu    sync.RWMutex
	files map[string]domain.UploadedFile
}

// NewBlobStore creates the upload directory and returns an empty store.
func NewBlobStore(dir string, logger *observability.Logger) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.StorageError("create upload directory", err)
	}

	return &BlobStore{
		dir:    dir,
		logger: logger,
		files:  make(map[string]domain.UploadedFile),
	}, nil
}

// Save writes the reader to disk under a fresh id and registers the file.
// The stored filename embeds the (sanitized) original name so downstream
// type detection can see the extension.
func (s *BlobStore) Save(originalName string, r io.Reader) (domain.UploadedFile, error) {
	name := filepath.Base(originalName)
	if name == "" || name == "." || name == "/" {
		name = "upload"
	}

	id := uuid.New().String()
	stored := filepath.Join(s.dir, fmt.Sprintf("%s_%s", id, name))

	f, err := os.Create(stored)
	if err != nil {
		return domain.UploadedFile{}, domain.StorageError("create blob file", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(stored)
		return domain.UploadedFile{}, domain.StorageError("write blob file", err)
	}

	file := domain.UploadedFile{
		ID:           id,
		StoredPath:   stored,
		OriginalName: originalName,
	}

	s.mu.Lock()
	s.files[id] = file
	s.mu.Unlock()

	s.logger.Debug().Str("file_id", id).Str("path", stored).Msg("stored upload")

	return file, nil
}

// Get returns the registry entry for id.
func (s *BlobStore) Get(id string) (domain.UploadedFile, error) {
	s.mu.RLock()
	file, ok := s.files[id]
	s.mu.RUnlock()

	if !ok {
		return domain.UploadedFile{}, domain.FileNotFoundError(fmt.Sprintf("no uploaded file with id %s", id), nil)
	}

	return file, nil
}

// Len returns the number of registered uploads.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
