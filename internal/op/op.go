// Package op provides a narrow client for an op-compatible password manager
// command-line tool. Only the two subcommands needed for a full export are
// covered: listing item references and fetching a single item's detail.
//
// See: https://1password.com/downloads/command-line/
package op

import (
	"context"
	"encoding/json"
)

// ItemRef is one element of the listing output. Beyond the identifier the
// listing record is kept opaque.
type ItemRef struct {
	// ID is the unique item identifier used to fetch the full detail.
	ID string

	// Raw is the listing record exactly as the tool emitted it.
	Raw json.RawMessage
}

// Client is the capability interface over the external tool.
//
// Implementations must be safe for concurrent GetItem calls. The export
// pipeline is written against this interface so it can run against a fake
// in tests instead of the real binary.
type Client interface {
	// ListItems enumerates all items in the vault. Any failure here is
	// fatal for an export run: a listing error returns *ListError.
	ListItems(ctx context.Context) ([]ItemRef, error)

	// GetItem retrieves the full detail for one item as an opaque JSON
	// value. No schema is enforced on the result.
	GetItem(ctx context.Context, id string) (json.RawMessage, error)
}
