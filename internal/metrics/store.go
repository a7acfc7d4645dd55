package metrics

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/wanderlust/internal/domain"
)

// Store decorates a ListingStore with operation counters and latency.
type Store struct {
	domain.ListingStore
	m *Manager
}

// InstrumentStore wraps s so every listing operation is counted.
func InstrumentStore(s domain.ListingStore, m *Manager) *Store {
	return &Store{ListingStore: s, m: m}
}

func (s *Store) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = domain.KindOf(err).String()
	}
	s.m.StoreOpsTotal.WithLabelValues(op, result).Inc()
	s.m.StoreOpLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *Store) ListAll(ctx context.Context) ([]*domain.Listing, error) {
	start := time.Now()
	out, err := s.ListingStore.ListAll(ctx)
	s.observe(domain.OpListAll, start, err)
	return out, err
}

func (s *Store) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	start := time.Now()
	l, err := s.ListingStore.GetByID(ctx, id)
	s.observe(domain.OpGet, start, err)
	return l, err
}

func (s *Store) Create(ctx context.Context, in domain.ListingInput) (*domain.Listing, error) {
	start := time.Now()
	l, err := s.ListingStore.Create(ctx, in)
	s.observe(domain.OpCreate, start, err)
	if err == nil {
		s.m.ListingsCreatedTotal.Inc()
	}
	return l, err
}

func (s *Store) Update(ctx context.Context, id string, p domain.ListingPatch) (*domain.Listing, error) {
	start := time.Now()
	l, err := s.ListingStore.Update(ctx, id, p)
	s.observe(domain.OpUpdate, start, err)
	if err == nil {
		s.m.ListingUpdatesTotal.Inc()
	}
	return l, err
}

func (s *Store) DeleteByID(ctx context.Context, id string) (*domain.Listing, error) {
	start := time.Now()
	l, err := s.ListingStore.DeleteByID(ctx, id)
	s.observe(domain.OpDelete, start, err)
	if err == nil {
		s.m.ListingDeletesTotal.Inc()
	}
	return l, err
}

var _ domain.ListingStore = (*Store)(nil)
