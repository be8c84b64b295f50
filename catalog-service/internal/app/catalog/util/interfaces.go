package util

import (
	"context"
	"time"
)

// CategoryCache stores the distinct category list served by GET /categories.
type CategoryCache interface {
	SetCategories(ctx context.Context, categories []string, ttl time.Duration) error
	// GetCategories returns nil without error on a cache miss.
	GetCategories(ctx context.Context) ([]string, error)
	DeleteCategories(ctx context.Context) error
	Close() error
}

// MessagePublisher sends domain events to the message bus.
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
