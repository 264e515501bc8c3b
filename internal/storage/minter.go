// Package storage delegates upload authorization to an object store. The
// service never touches object bytes; it only mints time-limited upload
// tokens for authenticated callers.
package storage

import (
	"context"
	"time"
)

// MintRequest describes the single object an upload token grants access to.
type MintRequest struct {
	Bucket  string
	Key     string
	Expires time.Duration
	Policy  map[string]any
}

// Minter produces an opaque, store-signed upload token.
type Minter interface {
	Mint(ctx context.Context, req MintRequest) (string, error)
}
