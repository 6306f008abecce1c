package gcs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// DefaultSizeThreshold is the payload size above which binaries are offloaded
const DefaultSizeThreshold = 1 << 20

// Config holds GCS configuration
type Config struct {
	BucketName        string
	SizeThreshold     int // bytes; payloads larger than this are offloaded
	URLExpiryHours    int
	SignerServiceAcct string // empty = sign with the default credentials
	Enabled           bool
}

// LoadConfig loads GCS configuration from environment variables
func LoadConfig() *Config {
	bucketName := os.Getenv("GCS_BUCKET_NAME")

	sizeThreshold := DefaultSizeThreshold
	if val := os.Getenv("GCS_SIZE_THRESHOLD"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			sizeThreshold = parsed
		}
	}

	urlExpiryHours := 24
	if val := os.Getenv("GCS_URL_EXPIRY_HOURS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			urlExpiryHours = parsed
		}
	}

	return &Config{
		BucketName:        bucketName,
		SizeThreshold:     sizeThreshold,
		URLExpiryHours:    urlExpiryHours,
		SignerServiceAcct: os.Getenv("GCS_SIGNER_SERVICE_ACCOUNT"),
		Enabled:           bucketName != "",
	}
}

// Manager stores large binary payloads outside the tool response
type Manager struct {
	config  *Config
	client  *storage.Client
	tempDir string
}

// NewManager creates a new GCS manager
func NewManager(ctx context.Context, config *Config) (*Manager, error) {
	if !config.Enabled {
		return &Manager{config: config}, nil
	}

	client, err := storage.NewClient(ctx, option.WithScopes(storage.ScopeReadWrite))
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &Manager{
		config: config,
		client: client,
	}, nil
}

// Close closes the GCS client
func (m *Manager) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

// UploadResult describes where an offloaded payload can be fetched
type UploadResult struct {
	URL         string
	FileSize    int64
	ContentType string
	IsTemp      bool // true if saved to temp file instead of GCS
}

// ShouldOffload reports whether a payload of size bytes is too large to inline
func (m *Manager) ShouldOffload(size int) bool {
	return m.config.SizeThreshold > 0 && size > m.config.SizeThreshold
}

// objectName builds a unique name whose extension matches the content type
func objectName(toolName, contentType string) string {
	ext := ""
	if mt := mimetype.Lookup(contentType); mt != nil {
		ext = mt.Extension()
	}
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s/%s_%s%s", toolName, timestamp, uuid.NewString(), ext)
}

// uploadToTempFile saves data to a temporary file and returns the path
func (m *Manager) uploadToTempFile(data []byte, contentType, toolName string) (*UploadResult, error) {
	ext := ""
	if mt := mimetype.Lookup(contentType); mt != nil {
		ext = mt.Extension()
	}

	tempFile, err := os.CreateTemp(m.tempDir, fmt.Sprintf("bamboohr-mcp-%s-%s-*%s", toolName, uuid.NewString()[:8], ext))
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempFile.Name())
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		os.Remove(tempFile.Name())
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	slog.Info("Saved large payload to temp file",
		"path", tempFile.Name(),
		"size", len(data))

	return &UploadResult{
		URL:         tempFile.Name(),
		FileSize:    int64(len(data)),
		ContentType: contentType,
		IsTemp:      true,
	}, nil
}

// Upload stores data in GCS, or in a temp file when GCS is not configured,
// and returns a URL or path to it.
func (m *Manager) Upload(ctx context.Context, data []byte, contentType, toolName string) (*UploadResult, error) {
	if !m.config.Enabled || m.client == nil {
		return m.uploadToTempFile(data, contentType, toolName)
	}

	filename := objectName(toolName, contentType)
	bucket := m.client.Bucket(m.config.BucketName)

	writer := bucket.Object(filename).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close GCS writer: %w", err)
	}

	expiryTime := time.Now().Add(time.Duration(m.config.URLExpiryHours) * time.Hour)
	opts := &storage.SignedURLOptions{
		Method:  "GET",
		Expires: expiryTime,
		Scheme:  storage.SigningSchemeV4,
	}

	if m.config.SignerServiceAcct != "" {
		iamClient, err := credentials.NewIamCredentialsClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create IAM credentials client: %w", err)
		}
		defer iamClient.Close()

		serviceAccountResource := fmt.Sprintf("projects/-/serviceAccounts/%s", m.config.SignerServiceAcct)
		opts.GoogleAccessID = m.config.SignerServiceAcct
		opts.SignBytes = func(b []byte) ([]byte, error) {
			resp, err := iamClient.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    serviceAccountResource,
				Payload: b,
			})
			if err != nil {
				return nil, fmt.Errorf("signBlob failed: %w", err)
			}
			return resp.SignedBlob, nil
		}
	}

	signedURL, err := bucket.SignedURL(filename, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signed URL: %w", err)
	}

	slog.Info("Uploaded large payload to GCS",
		"filename", filename,
		"size", len(data),
		"content_type", contentType,
		"expires", expiryTime)

	return &UploadResult{
		URL:         signedURL,
		FileSize:    int64(len(data)),
		ContentType: contentType,
		IsTemp:      false,
	}, nil
}

// Offload uploads data when it exceeds the size threshold. It returns nil
// when the payload is small enough to return inline. A failed GCS upload
// falls back to a temp file rather than inlining the payload.
func (m *Manager) Offload(ctx context.Context, data []byte, contentType, toolName string) (*UploadResult, error) {
	if !m.ShouldOffload(len(data)) {
		return nil, nil
	}

	slog.Info("Binary payload exceeds threshold, offloading",
		"tool", toolName,
		"bytes", len(data),
		"threshold", m.config.SizeThreshold)

	result, err := m.Upload(ctx, data, contentType, toolName)
	if err == nil {
		return result, nil
	}
	if !m.config.Enabled {
		return nil, fmt.Errorf("failed to save large payload: %w", err)
	}

	slog.Warn("Failed to upload to GCS, falling back to temp file",
		"tool", toolName,
		"error", err)

	result, err = m.uploadToTempFile(data, contentType, toolName)
	if err != nil {
		slog.Error("Failed to save to temp file",
			"tool", toolName,
			"error", err)
		return nil, fmt.Errorf("failed to save large payload: %w", err)
	}
	return result, nil
}
