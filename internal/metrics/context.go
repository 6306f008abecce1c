package metrics

import "context"

type contextKey struct{}

// WithManager adds a metrics Manager to the context
func WithManager(ctx context.Context, mgr *Manager) context.Context {
	return context.WithValue(ctx, contextKey{}, mgr)
}

// GetManager retrieves the metrics Manager from the context.
// Returns nil if no manager is found; RecordToolCall is safe on nil.
func GetManager(ctx context.Context) *Manager {
	if mgr, ok := ctx.Value(contextKey{}).(*Manager); ok {
		return mgr
	}
	return nil
}
