package storage

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dashprint/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:            "dashboards",
		AccessKey:         "test-key",
		SecretKey:         "test-secret",
		Region:            "us-east-1",
		Endpoint:          "http://localhost:9000",
		UsePathStyle:      true,
		PresignExpiration: 15 * time.Minute,
	}
}

func TestNewS3ArchiveStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKey = "" }, "access key is required"},
		{"missing secret key", func(c *config.StorageConfig) { c.SecretKey = "" }, "secret key is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validStorageConfig()
			tt.mutate(cfg)
			_, err := NewS3ArchiveStorage(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ArchiveStorage(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})
}

func TestNewS3ArchiveStorage_Defaults(t *testing.T) {
	cfg := validStorageConfig()
	cfg.PresignExpiration = 0
	cfg.Endpoint = "localhost:9000"

	s, err := NewS3ArchiveStorage(cfg, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, s.presignExpiration)
	assert.Equal(t, "dashboards", s.Bucket())

	s, err = NewS3ArchiveStorage(validStorageConfig(), WithPresignExpiration(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, s.presignExpiration)
}

func TestS3ArchiveStorage_GenerateDownloadURL(t *testing.T) {
	s, err := NewS3ArchiveStorage(validStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("presigns offline", func(t *testing.T) {
		url, expiresAt, err := s.GenerateDownloadURL(ctx, "dashboards/1/a.pdf", 0)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, "http://localhost:9000/dashboards/dashboards/1/a.pdf?"))
		assert.Contains(t, url, "X-Amz-Signature=")
		assert.Contains(t, url, "X-Amz-Expires=900")
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)
	})

	t.Run("empty key", func(t *testing.T) {
		_, _, err := s.GenerateDownloadURL(ctx, "", time.Minute)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage key is required")
	})
}

func TestS3ArchiveStorage_Upload_ValidationOnly(t *testing.T) {
	s, err := NewS3ArchiveStorage(validStorageConfig())
	require.NoError(t, err)

	err = s.Upload(context.Background(), "", []byte("x"), ContentTypePDF)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage key is required")
}

// Requires an S3 compatible server, e.g. `docker run -p 9000:9000 minio/minio server /data`
func TestIntegration_UploadAndPresign(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "1" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=1 and run MinIO or RustFS to enable.")
	}

	cfg := validStorageConfig()
	cfg.AccessKey = os.Getenv("S3_ACCESS_KEY")
	cfg.SecretKey = os.Getenv("S3_SECRET_KEY")
	s, err := NewS3ArchiveStorage(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.EnsureBucket(ctx))

	key := ArchiveKey(1, 0, 3600)
	require.NoError(t, s.Upload(ctx, key, []byte("%PDF-1.4"), ContentTypePDF))

	url, _, err := s.GenerateDownloadURL(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, key)
}
