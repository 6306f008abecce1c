package gcs

import (
	"context"
)

// contextKey is a private type for context keys
type contextKey int

const (
	gcsManagerKey contextKey = iota
)

// WithGCSManager adds a GCS manager to the context
func WithGCSManager(ctx context.Context, mgr *Manager) context.Context {
	return context.WithValue(ctx, gcsManagerKey, mgr)
}

// GetGCSManager retrieves the GCS manager from the context
func GetGCSManager(ctx context.Context) *Manager {
	if mgr, ok := ctx.Value(gcsManagerKey).(*Manager); ok {
		return mgr
	}
	return nil
}

// MaybeOffload offloads data through the manager in ctx. Without a manager
// every payload is returned inline (nil result).
func MaybeOffload(ctx context.Context, data []byte, contentType, toolName string) (*UploadResult, error) {
	mgr := GetGCSManager(ctx)
	if mgr == nil {
		return nil, nil
	}
	return mgr.Offload(ctx, data, contentType, toolName)
}
