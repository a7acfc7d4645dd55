package memory

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/wanderlust/internal/domain"
)

// Store keeps listings in process memory. It backs WANDERLUST_STORE=memory and
// the handler tests.
type Store struct {
	mu       sync.RWMutex
	listings map[string]*domain.Listing // ID -> Listing
	order    []string                   // IDs in insertion order
	now      func() time.Time
}

// NewStore creates an empty memory store.
func NewStore() *Store {
	return &Store{
		listings: make(map[string]*domain.Listing),
		now:      time.Now,
	}
}

func (s *Store) Backend() string { return "memory" }

// ListAll returns copies of all listings in insertion order.
func (s *Store) ListAll(_ context.Context) ([]*domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Listing, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.listings[id].Clone())
	}
	return out, nil
}

// GetByID retrieves a listing by ID
func (s *Store) GetByID(_ context.Context, id string) (*domain.Listing, error) {
	oid, ok := domain.ParseID(id)
	if !ok {
		return nil, domain.NotFound(domain.OpGet, id)
	}
	id = oid.Hex()

	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.listings[id]
	if !ok {
		return nil, domain.NotFound(domain.OpGet, id)
	}
	return l.Clone(), nil
}

// Create validates and stores a new listing
func (s *Store) Create(_ context.Context, in domain.ListingInput) (*domain.Listing, error) {
	if err := domain.ValidateInput(domain.OpCreate, in); err != nil {
		return nil, err
	}

	l := domain.NewListing(in, s.now())
	l.ID = domain.NewID()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.listings[l.ID] = l
	s.order = append(s.order, l.ID)
	return l.Clone(), nil
}

// Update applies a patch under the write lock so readers never see a half
// applied change.
func (s *Store) Update(_ context.Context, id string, p domain.ListingPatch) (*domain.Listing, error) {
	oid, ok := domain.ParseID(id)
	if !ok {
		return nil, domain.NotFound(domain.OpUpdate, id)
	}
	id = oid.Hex()

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok {
		return nil, domain.NotFound(domain.OpUpdate, id)
	}
	if err := domain.ValidatePatch(domain.OpUpdate, id, p); err != nil {
		return nil, err
	}

	p.Apply(l, s.now())
	return l.Clone(), nil
}

// DeleteByID removes a listing and returns what was stored.
func (s *Store) DeleteByID(_ context.Context, id string) (*domain.Listing, error) {
	oid, ok := domain.ParseID(id)
	if !ok {
		return nil, domain.NotFound(domain.OpDelete, id)
	}
	id = oid.Hex()

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok {
		return nil, domain.NotFound(domain.OpDelete, id)
	}
	delete(s.listings, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return l, nil
}

// Count returns the number of listings held.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.listings)
}

func (s *Store) Ping(context.Context) error  { return nil }
func (s *Store) Close(context.Context) error { return nil }

var _ domain.ListingStore = (*Store)(nil)
