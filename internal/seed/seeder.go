package seed

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/wanderlust/internal/domain"
	"github.com/MrSnakeDoc/wanderlust/internal/logger"
)

// Seeder fills an empty store with sample listings on startup
type Seeder struct {
	loader *Loader
	store  domain.ListingStore
	logger logger.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(loader *Loader, store domain.ListingStore, log logger.Logger) *Seeder {
	return &Seeder{
		loader: loader,
		store:  store,
		logger: log,
	}
}

// Seed creates every listing of the seed file, but only when the store holds
// none. Invalid entries are skipped and logged. It returns the number created.
func (s *Seeder) Seed(ctx context.Context) (int, error) {
	existing, err := s.store.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing listings: %w", err)
	}

	if len(existing) > 0 {
		s.logger.Info("store not empty, skipping seed",
			logger.Int("existing", len(existing)))
		return 0, nil
	}

	inputs, err := s.loader.Load()
	if err != nil {
		return 0, err
	}

	created := 0
	for i, in := range inputs {
		if _, err := s.store.Create(ctx, in); err != nil {
			if domain.IsValidation(err) {
				s.logger.Warn("skipping invalid seed entry",
					logger.Int("index", i),
					logger.Error(err))
				continue
			}
			return created, fmt.Errorf("failed to seed listing %d: %w", i, err)
		}
		created++
	}

	s.logger.Info("seeded listings",
		logger.Int("count", created),
		logger.String("backend", s.store.Backend()))

	return created, nil
}
