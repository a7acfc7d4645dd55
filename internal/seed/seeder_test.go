package seed

import (
	"context"
	"testing"

	"github.com/MrSnakeDoc/wanderlust/internal/domain"
	"github.com/MrSnakeDoc/wanderlust/internal/logger"
	"github.com/MrSnakeDoc/wanderlust/internal/store/memory"
)

const sampleYAML = `listings:
  - title: Cabin
    price: 100
  - title: ""
  - title: Loft
    price: -3
  - title: Villa
`

func TestSeederSeedsEmptyStore(t *testing.T) {
	store := memory.NewStore()
	s := NewSeeder(NewLoader(writeSeed(t, sampleYAML)), store, logger.NewNop())

	n, err := s.Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Seed() created %d, want 2", n)
	}

	all, _ := store.ListAll(context.Background())
	if len(all) != 2 || all[0].Title != "Cabin" || all[1].Title != "Villa" {
		t.Errorf("store contents = %+v", all)
	}
}

func TestSeederSkipsNonEmptyStore(t *testing.T) {
	store := memory.NewStore()
	if _, err := store.Create(context.Background(), domain.ListingInput{Title: "Existing"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// The loader is never reached, so a missing file is fine.
	s := NewSeeder(NewLoader("/nonexistent/listings.yaml"), store, logger.NewNop())

	n, err := s.Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Seed() created %d, want 0", n)
	}
	if store.Count() != 1 {
		t.Errorf("Count() = %d, want 1", store.Count())
	}
}

func TestSeederMissingFile(t *testing.T) {
	s := NewSeeder(NewLoader("/nonexistent/listings.yaml"), memory.NewStore(), logger.NewNop())

	if _, err := s.Seed(context.Background()); err == nil {
		t.Error("Seed() with missing file should return error")
	}
}
