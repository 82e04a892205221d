// Package storage archives rendered dashboard PDFs in object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContentTypePDF is the content type of archived documents
const ContentTypePDF = "application/pdf"

// ErrStorageDisabled is returned by the stub when no object storage is configured
var ErrStorageDisabled = errors.New("archive storage is not configured")

// ArchiveStorage stores documents and hands out time-limited download URLs
type ArchiveStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// ArchiveKey builds the object key of a dashboard export. The random suffix
// keeps repeated exports of the same window apart.
func ArchiveKey(dashboardID uint64, fromTS, toTS int64) string {
	return fmt.Sprintf("dashboards/%d/%d-%d-%s.pdf", dashboardID, fromTS, toTS, uuid.NewString())
}
