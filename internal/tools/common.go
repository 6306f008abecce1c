package tools

import (
	"context"
	"errors"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const clientKey contextKey = "bamboo-client"

// ErrNoClient is returned when a tool runs without a client in its context
var ErrNoClient = errors.New("BambooHR client is not configured")

// WithClient adds the BambooHR client to the context
func WithClient(ctx context.Context, client BambooClient) context.Context {
	return context.WithValue(ctx, clientKey, client)
}

// GetClient retrieves the BambooHR client from context
func GetClient(ctx context.Context) (BambooClient, error) {
	if client, ok := ctx.Value(clientKey).(BambooClient); ok && client != nil {
		return client, nil
	}
	return nil, ErrNoClient
}
