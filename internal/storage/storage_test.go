package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"fitcoach/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) FileStorage {
	t.Helper()
	fs, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		Bucket:          "fitcoach-media",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
	})
	require.NoError(t, err)
	return fs
}

func TestPresignUpload(t *testing.T) {
	fs := newTestStorage(t)

	raw, err := fs.PresignUpload(context.Background(), "media/7/abc.mp4", "video/mp4", 10*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/fitcoach-media/media/7/abc.mp4", u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestPresignDownload_DefaultExpiry(t *testing.T) {
	fs := newTestStorage(t)

	raw, err := fs.PresignDownload(context.Background(), "media/7/abc.mp4", 0)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
}
