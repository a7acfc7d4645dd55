// Package storetest checks that a domain.ListingStore honours the store
// contract. Backend test files call Run with a factory that returns an empty
// store.
package storetest

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/wanderlust/internal/domain"
)

// MissingID is well formed but never assigned.
const MissingID = "000000000000000000000000"

// Factory returns an empty store. Cleanup is the caller's business.
type Factory func(t *testing.T) domain.ListingStore

func ptr[T any](v T) *T { return &v }

// Run executes every contract check against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("empty list", func(t *testing.T) { testEmptyList(t, newStore(t)) })
	t.Run("round trip", func(t *testing.T) { testRoundTrip(t, newStore(t)) })
	t.Run("create rejects missing title", func(t *testing.T) { testCreateValidation(t, newStore(t)) })
	t.Run("get malformed id", func(t *testing.T) { testMalformedID(t, newStore(t)) })
	t.Run("uppercase id", func(t *testing.T) { testUppercaseID(t, newStore(t)) })
	t.Run("update partial", func(t *testing.T) { testUpdatePartial(t, newStore(t)) })
	t.Run("update negative price", func(t *testing.T) { testUpdateNegativePrice(t, newStore(t)) })
	t.Run("update empty title", func(t *testing.T) { testUpdateEmptyTitle(t, newStore(t)) })
	t.Run("update missing", func(t *testing.T) { testUpdateMissing(t, newStore(t)) })
	t.Run("update clears price", func(t *testing.T) { testUpdateClearPrice(t, newStore(t)) })
	t.Run("delete twice", func(t *testing.T) { testDeleteTwice(t, newStore(t)) })
	t.Run("list after deletes", func(t *testing.T) { testListAfterDeletes(t, newStore(t)) })
	t.Run("concurrent creates", func(t *testing.T) { testConcurrentCreates(t, newStore(t)) })
}

func cabin() domain.ListingInput {
	return domain.ListingInput{
		Title:       "Cabin",
		Description: "Log cabin by the lake",
		Image:       "https://example.com/cabin.jpg",
		Price:       ptr(100.0),
		Location:    "Lake Tahoe",
		Country:     "United States",
	}
}

func testEmptyList(t *testing.T, s domain.ListingStore) {
	all, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func testRoundTrip(t *testing.T, s domain.ListingStore) {
	ctx := context.Background()
	in := cabin()

	created, err := s.Create(ctx, in)
	require.NoError(t, err)
	_, ok := domain.ParseID(created.ID)
	require.True(t, ok, "id %q is not an ObjectID", created.ID)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, in.Title, got.Title)
	assert.Equal(t, in.Description, got.Description)
	assert.Equal(t, in.Image, got.Image)
	require.NotNil(t, got.Price)
	assert.InDelta(t, *in.Price, *got.Price, 1e-9)
	assert.Equal(t, in.Location, got.Location)
	assert.Equal(t, in.Country, got.Country)

	noPrice, err := s.Create(ctx, domain.ListingInput{Title: "Tent"})
	require.NoError(t, err)
	got, err = s.GetByID(ctx, noPrice.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Price)
	assert.NotEqual(t, created.ID, noPrice.ID)
}

func testCreateValidation(t *testing.T, s domain.ListingStore) {
	ctx := context.Background()

	_, err := s.Create(ctx, domain.ListingInput{Description: "no title"})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err), "got %v", err)

	_, err = s.Create(ctx, domain.ListingInput{Title: "Hut", Price: ptr(-1.0)})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err), "got %v", err)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testMalformedID(t *testing.T, s domain.ListingStore) {
	ctx := context.Background()
	for _, id := range []string{"", "nope", "12345", MissingID} {
		_, err := s.GetByID(ctx, id)
		assert.True(t, domain.IsNotFound(err), "GetByID(%q) = %v", id, err)
	}
}

func testUppercaseID(t *testing.T, s domain.ListingStore) {
	ctx := context.Background()
	created, err := s.Create(ctx, cabin())
	require.NoError(t, err)
	upper := strings.ToUpper(created.ID)

	got, err := s.GetByID(ctx, upper)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	updated, err := s.Update(ctx, upper, domain.ListingPatch{Title: ptr("Cozy Cabin")})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Cozy Cabin", updated.Title)

	removed, err := s.DeleteByID(ctx, upper)
	require.NoError(t, err)
	assert.Equal(t, created.ID, removed.ID)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testUpdatePartial(t *testing.T, s domain.ListingStore) {
	ctx := context.Background()
	created, err := s.Create(ctx, cabin())
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, domain.ListingPatch{
		Title: ptr("Cozy Cabin"),
		Price: ptr(150.0),
	})
	require.NoError(t, err)
	assert.Equal(t, "Cozy Cabin", updated.Title)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, created.Country, updated.Country)
	require.NotNil(t, updated.Price)
	assert.InDelta(t, 150.0, *updated.Price, 1e-9)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cozy Cabin", got.Title)
	assert.Equal(t, created.Location, got.Location)
}

func testUpdateNegativePrice(t *testing.T, s domain.ListingStore) {
	ctx := context.Background()
	created, err := s.Create(ctx, cabin())
	require.NoError(t, err)

	_, err = s.Update(ctx, created.ID, domain.ListingPatch{Price: ptr(-5.0)})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err), "got %v", err)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Price)
	assert.InDelta(t, 100.0, *got.Price, 1e-9)
}

func testUpdateEmptyTitle(t *testing.T, s domain.ListingStore) {
	ctx := context.Background()
	created, err := s.Create(ctx, cabin())
	require.NoError(t, err)

	_, err = s.Update(ctx, created.ID, domain.ListingPatch{Title: ptr("")})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err), "got %v", err)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cabin", got.Title)
}

func testUpdateMissing(t *testing.T, s domain.ListingStore) {
	ctx := context.Background()

	_, err := s.Update(ctx, MissingID, domain.ListingPatch{Title: ptr("x")})
	assert.True(t, domain.IsNotFound(err), "got %v", err)

	// Absence is reported before validation.
	_, err = s.Update(ctx, MissingID, domain.ListingPatch{Price: ptr(-5.0)})
	assert.True(t, domain.IsNotFound(err), "got %v", err)

	_, err = s.Update(ctx, "bad-id", domain.ListingPatch{Title: ptr("x")})
	assert.True(t, domain.IsNotFound(err), "got %v", err)
}

func testUpdateClearPrice(t *testing.T, s domain.ListingStore) {
	ctx := context.Background()
	created, err := s.Create(ctx, cabin())
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, domain.ListingPatch{ClearPrice: true})
	require.NoError(t, err)
	assert.Nil(t, updated.Price)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Price)
	assert.Equal(t, "Cabin", got.Title)
}

func testDeleteTwice(t *testing.T, s domain.ListingStore) {
	ctx := context.Background()
	created, err := s.Create(ctx, cabin())
	require.NoError(t, err)

	removed, err := s.DeleteByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, removed.ID)
	assert.Equal(t, "Cabin", removed.Title)

	_, err = s.DeleteByID(ctx, created.ID)
	assert.True(t, domain.IsNotFound(err), "got %v", err)

	_, err = s.GetByID(ctx, created.ID)
	assert.True(t, domain.IsNotFound(err), "got %v", err)
}

func testListAfterDeletes(t *testing.T, s domain.ListingStore) {
	ctx := context.Background()
	const n, m = 5, 2

	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		in := cabin()
		in.Title = string(rune('A' + i))
		l, err := s.Create(ctx, in)
		require.NoError(t, err)
		ids = append(ids, l.ID)
	}
	for _, id := range ids[:m] {
		_, err := s.DeleteByID(ctx, id)
		require.NoError(t, err)
	}

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, n-m)
	for i, l := range all {
		assert.Equal(t, ids[m+i], l.ID, "insertion order not preserved at %d", i)
	}
}

func testConcurrentCreates(t *testing.T, s domain.ListingStore) {
	ctx := context.Background()
	const workers = 16

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Create(ctx, domain.ListingInput{Title: "Loft"}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, workers)

	seen := make(map[string]bool, workers)
	for _, l := range all {
		assert.False(t, seen[l.ID], "duplicate id %s", l.ID)
		seen[l.ID] = true
	}
}
