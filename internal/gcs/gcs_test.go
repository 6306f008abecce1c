package gcs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("loads default configuration", func(t *testing.T) {
		t.Setenv("GCS_BUCKET_NAME", "")
		t.Setenv("GCS_SIZE_THRESHOLD", "")
		t.Setenv("GCS_URL_EXPIRY_HOURS", "")
		t.Setenv("GCS_SIGNER_SERVICE_ACCOUNT", "")

		cfg := LoadConfig()

		assert.Empty(t, cfg.BucketName)
		assert.Equal(t, DefaultSizeThreshold, cfg.SizeThreshold)
		assert.Equal(t, 24, cfg.URLExpiryHours)
		assert.Empty(t, cfg.SignerServiceAcct)
		assert.False(t, cfg.Enabled, "Should be disabled when no bucket name")
	})

	t.Run("loads custom configuration", func(t *testing.T) {
		t.Setenv("GCS_BUCKET_NAME", "hr-payloads")
		t.Setenv("GCS_SIZE_THRESHOLD", "2048")
		t.Setenv("GCS_URL_EXPIRY_HOURS", "48")
		t.Setenv("GCS_SIGNER_SERVICE_ACCOUNT", "signer@example.iam.gserviceaccount.com")

		cfg := LoadConfig()

		assert.Equal(t, "hr-payloads", cfg.BucketName)
		assert.Equal(t, 2048, cfg.SizeThreshold)
		assert.Equal(t, 48, cfg.URLExpiryHours)
		assert.Equal(t, "signer@example.iam.gserviceaccount.com", cfg.SignerServiceAcct)
		assert.True(t, cfg.Enabled, "Should be enabled when bucket name is set")
	})

	t.Run("handles invalid values gracefully", func(t *testing.T) {
		t.Setenv("GCS_SIZE_THRESHOLD", "big")
		t.Setenv("GCS_URL_EXPIRY_HOURS", "-3")

		cfg := LoadConfig()

		assert.Equal(t, DefaultSizeThreshold, cfg.SizeThreshold)
		assert.Equal(t, 24, cfg.URLExpiryHours)
	})
}

func newTempManager(t *testing.T, threshold int) *Manager {
	t.Helper()
	mgr, err := NewManager(context.Background(), &Config{SizeThreshold: threshold})
	require.NoError(t, err)
	mgr.tempDir = t.TempDir()
	return mgr
}

func TestNewManager_Disabled(t *testing.T) {
	mgr, err := NewManager(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, mgr.client, "Client should be nil when disabled")
	assert.NoError(t, mgr.Close())
}

func TestShouldOffload(t *testing.T) {
	mgr := newTempManager(t, 10)

	assert.False(t, mgr.ShouldOffload(0))
	assert.False(t, mgr.ShouldOffload(10))
	assert.True(t, mgr.ShouldOffload(11))

	never := newTempManager(t, 0)
	assert.False(t, never.ShouldOffload(1<<30))
}

func TestOffload(t *testing.T) {
	ctx := context.Background()

	t.Run("small payload stays inline", func(t *testing.T) {
		mgr := newTempManager(t, 100)

		result, err := mgr.Offload(ctx, []byte("tiny"), "image/jpeg", "get-employee-photo")
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("large payload goes to temp file when GCS is disabled", func(t *testing.T) {
		mgr := newTempManager(t, 8)
		payload := bytes.Repeat([]byte{0x25, 0x50, 0x44, 0x46}, 16)

		result, err := mgr.Offload(ctx, payload, "application/pdf", "get-company-file")
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.True(t, result.IsTemp)
		assert.Equal(t, int64(len(payload)), result.FileSize)
		assert.Equal(t, "application/pdf", result.ContentType)
		assert.Equal(t, ".pdf", filepath.Ext(result.URL))
		assert.True(t, strings.HasPrefix(filepath.Base(result.URL), "bamboohr-mcp-get-company-file-"))

		written, err := os.ReadFile(result.URL)
		require.NoError(t, err)
		assert.Equal(t, payload, written)
	})
}

func TestObjectName(t *testing.T) {
	name := objectName("get-employee-photo", "image/jpeg")
	assert.True(t, strings.HasPrefix(name, "get-employee-photo/"))
	assert.Equal(t, ".jpg", filepath.Ext(name))

	other := objectName("get-employee-photo", "image/jpeg")
	assert.NotEqual(t, name, other, "names must be unique")

	assert.Empty(t, filepath.Ext(objectName("get-company-file", "not a mime type")))
}

func TestMaybeOffload(t *testing.T) {
	t.Run("no manager returns inline", func(t *testing.T) {
		result, err := MaybeOffload(context.Background(), bytes.Repeat([]byte("x"), 1<<21), "text/plain", "get-company-file")
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("uses manager from context", func(t *testing.T) {
		mgr := newTempManager(t, 4)
		ctx := WithGCSManager(context.Background(), mgr)
		assert.Same(t, mgr, GetGCSManager(ctx))

		result, err := MaybeOffload(ctx, []byte("0123456789"), "text/plain", "get-company-file")
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.IsTemp)
	})
}

func TestUploadResultMerge(t *testing.T) {
	up := &UploadResult{URL: "https://storage.example/x", FileSize: 42, ContentType: "image/png"}

	merged := up.Merge(map[string]any{"employeeId": "7"})
	assert.Equal(t, "7", merged["employeeId"])
	assert.Equal(t, "https://storage.example/x", merged["resource_link"])
	assert.Equal(t, int64(42), merged["resource_size"])
	assert.Equal(t, "image/png", merged["content_type"])
	assert.Equal(t, false, merged["is_temp_file"])
	assert.NotEmpty(t, merged["reason"])
}
