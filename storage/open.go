package storage

import (
	"context"
	"fmt"
	"strings"
)

// Open picks a backend from the DATABASE_URL scheme
func Open(ctx context.Context, databaseURL string) (Backend, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return NewPostgresBackend(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return OpenSQLite(strings.TrimPrefix(databaseURL, "sqlite://"))
	case strings.HasPrefix(databaseURL, "memory://"):
		return NewMemoryBackend(), nil
	}
	return nil, fmt.Errorf("unsupported database url %q", databaseURL)
}
