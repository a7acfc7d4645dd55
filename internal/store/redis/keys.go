package redis

const (
	// KeyPrefixListing is the prefix for listing keys
	KeyPrefixListing = "wanderlust:listing:"
	// KeyAllListings is the sorted set of listing IDs scored by insertion sequence
	KeyAllListings = "wanderlust:listings:all"
	// KeyListingSeq is the counter that provides insertion sequence numbers
	KeyListingSeq = "wanderlust:listings:seq"
)

// ListingKey returns the Redis key for a listing by ID
func ListingKey(id string) string {
	return KeyPrefixListing + id
}

// AllListingsKey returns the key for the ordered set of all listing IDs
func AllListingsKey() string {
	return KeyAllListings
}

// ListingSeqKey returns the key of the insertion counter
func ListingSeqKey() string {
	return KeyListingSeq
}
