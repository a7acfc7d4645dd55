package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/wanderlust/internal/domain"
)

// maxTxRetries bounds optimistic transaction retries when a watched key changes.
const maxTxRetries = 10

// Store persists listings as JSON strings plus a sorted set that keeps
// insertion order.
type Store struct {
	client *redis.Client
	now    func() time.Time
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Backend() string { return "redis" }

// ListAll retrieves all listings in insertion order
func (s *Store) ListAll(ctx context.Context) ([]*domain.Listing, error) {
	ids, err := s.client.ZRange(ctx, AllListingsKey(), 0, -1).Result()
	if err != nil {
		return nil, domain.StoreFailure(domain.OpListAll, "", fmt.Errorf("failed to get listing IDs: %w", err))
	}

	if len(ids) == 0 {
		return []*domain.Listing{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, ListingKey(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, domain.StoreFailure(domain.OpListAll, "", fmt.Errorf("failed to get listings: %w", err))
	}

	listings := make([]*domain.Listing, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Deleted between ZRANGE and MGET
			continue
		}
		l, err := decode([]byte(raw))
		if err != nil {
			return nil, domain.StoreFailure(domain.OpListAll, ids[i], err)
		}
		listings = append(listings, l)
	}

	return listings, nil
}

// GetByID retrieves a listing from Redis by ID
func (s *Store) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, ok := domain.ParseID(id)
	if !ok {
		return nil, domain.NotFound(domain.OpGet, id)
	}
	id = oid.Hex()

	data, err := s.client.Get(ctx, ListingKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NotFound(domain.OpGet, id)
		}
		return nil, domain.StoreFailure(domain.OpGet, id, fmt.Errorf("failed to get listing: %w", err))
	}

	l, err := decode(data)
	if err != nil {
		return nil, domain.StoreFailure(domain.OpGet, id, err)
	}
	return l, nil
}

// Create stores a new listing and appends it to the ordered set
func (s *Store) Create(ctx context.Context, in domain.ListingInput) (*domain.Listing, error) {
	if err := domain.ValidateInput(domain.OpCreate, in); err != nil {
		return nil, err
	}

	l := domain.NewListing(in, s.now())
	l.ID = domain.NewID()

	data, err := json.Marshal(toListingDocument(l))
	if err != nil {
		return nil, domain.StoreFailure(domain.OpCreate, l.ID, fmt.Errorf("failed to marshal listing: %w", err))
	}

	seq, err := s.client.Incr(ctx, ListingSeqKey()).Result()
	if err != nil {
		return nil, domain.StoreFailure(domain.OpCreate, l.ID, fmt.Errorf("failed to allocate sequence: %w", err))
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, ListingKey(l.ID), data, 0)
		pipe.ZAdd(ctx, AllListingsKey(), redis.Z{Score: float64(seq), Member: l.ID})
		return nil
	})
	if err != nil {
		return nil, domain.StoreFailure(domain.OpCreate, l.ID, fmt.Errorf("failed to save listing: %w", err))
	}

	return l, nil
}

// Update applies a patch inside WATCH/MULTI so a concurrent writer forces a
// retry instead of a lost update.
func (s *Store) Update(ctx context.Context, id string, p domain.ListingPatch) (*domain.Listing, error) {
	oid, ok := domain.ParseID(id)
	if !ok {
		return nil, domain.NotFound(domain.OpUpdate, id)
	}
	id = oid.Hex()

	key := ListingKey(id)
	var updated *domain.Listing

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return domain.NotFound(domain.OpUpdate, id)
			}
			return err
		}
		if err := domain.ValidatePatch(domain.OpUpdate, id, p); err != nil {
			return err
		}

		l, err := decode(data)
		if err != nil {
			return err
		}
		p.Apply(l, s.now())

		out, err := json.Marshal(toListingDocument(l))
		if err != nil {
			return fmt.Errorf("failed to marshal listing: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err == nil {
			updated = l
		}
		return err
	}

	if err := s.watch(ctx, txf, key); err != nil {
		return nil, classify(domain.OpUpdate, id, err)
	}
	return updated, nil
}

// DeleteByID removes a listing and its entry in the ordered set
func (s *Store) DeleteByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, ok := domain.ParseID(id)
	if !ok {
		return nil, domain.NotFound(domain.OpDelete, id)
	}
	id = oid.Hex()

	key := ListingKey(id)
	var removed *domain.Listing

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return domain.NotFound(domain.OpDelete, id)
			}
			return err
		}

		l, err := decode(data)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, AllListingsKey(), id)
			return nil
		})
		if err == nil {
			removed = l
		}
		return err
	}

	if err := s.watch(ctx, txf, key); err != nil {
		return nil, classify(domain.OpDelete, id, err)
	}
	return removed, nil
}

// watch runs fn under WATCH, retrying when another client touched the key.
func (s *Store) watch(ctx context.Context, fn func(*redis.Tx) error, key string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, fn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("transaction on %s aborted after %d retries: %w", key, maxTxRetries, redis.TxFailedErr)
}

// Ping checks the server answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close(context.Context) error {
	return s.client.Close()
}

func decode(data []byte) (*domain.Listing, error) {
	var doc listingDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal listing: %w", err)
	}
	return toDomainListing(&doc), nil
}

// classify keeps domain errors and wraps everything else as a store failure.
func classify(op, id string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.StoreFailure(op, id, err)
}

var _ domain.ListingStore = (*Store)(nil)
