package domain

import "context"

// ListingStore persists listings. Implementations validate input, generate
// identifiers and return *Error values on failure.
type ListingStore interface {
	// ListAll returns every listing in insertion order. An empty store yields
	// an empty slice and no error.
	ListAll(ctx context.Context) ([]*Listing, error)

	// GetByID returns KindNotFound for unknown or malformed identifiers.
	GetByID(ctx context.Context, id string) (*Listing, error)

	Create(ctx context.Context, in ListingInput) (*Listing, error)

	// Update replaces the supplied fields and returns the new state.
	Update(ctx context.Context, id string, p ListingPatch) (*Listing, error)

	// DeleteByID removes the listing and returns its prior state.
	DeleteByID(ctx context.Context, id string) (*Listing, error)

	// Ping reports whether the backing engine is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error

	// Backend names the engine ("mongo", "redis", "memory").
	Backend() string
}

// Operation names used in errors and logs.
const (
	OpListAll = "list_all"
	OpGet     = "get_by_id"
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete_by_id"
)
