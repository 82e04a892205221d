package storage

import (
	"context"
	"time"
)

// StubArchiveStorage is used when object storage is not configured.
// Every operation fails with ErrStorageDisabled.
type StubArchiveStorage struct{}

// NewStubArchiveStorage creates a new StubArchiveStorage
func NewStubArchiveStorage() *StubArchiveStorage {
	return &StubArchiveStorage{}
}

// Upload always returns ErrStorageDisabled
func (s *StubArchiveStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	return ErrStorageDisabled
}

// GenerateDownloadURL always returns ErrStorageDisabled
func (s *StubArchiveStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	return "", time.Time{}, ErrStorageDisabled
}

var _ ArchiveStorage = (*StubArchiveStorage)(nil)
