package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MrSnakeDoc/wanderlust/internal/domain"
	"github.com/MrSnakeDoc/wanderlust/internal/store/storetest"
)

func ns(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func cabinDoc(oid primitive.ObjectID, title string) bson.D {
	return bson.D{
		{Key: "_id", Value: oid},
		{Key: "title", Value: title},
		{Key: "location", Value: "Lake Tahoe"},
		{Key: "price", Value: 100.0},
	}
}

func TestStoreMock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get by id found", func(mt *mtest.T) {
		s := NewStore(nil, mt.Coll)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, cabinDoc(oid, "Cabin")))

		got, err := s.GetByID(context.Background(), oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), got.ID)
		assert.Equal(mt, "Cabin", got.Title)
		require.NotNil(mt, got.Price)
		assert.InDelta(mt, 100.0, *got.Price, 1e-9)
	})

	mt.Run("get by id missing", func(mt *mtest.T) {
		s := NewStore(nil, mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		_, err := s.GetByID(context.Background(), storetest.MissingID)
		assert.True(mt, domain.IsNotFound(err), "got %v", err)
	})

	mt.Run("get by malformed id skips the server", func(mt *mtest.T) {
		s := NewStore(nil, mt.Coll)

		_, err := s.GetByID(context.Background(), "not-an-id")
		assert.True(mt, domain.IsNotFound(err), "got %v", err)
	})

	mt.Run("list all across batches", func(mt *mtest.T) {
		s := NewStore(nil, mt.Coll)
		first, second := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns(mt), mtest.FirstBatch, cabinDoc(first, "First")),
			mtest.CreateCursorResponse(0, ns(mt), mtest.NextBatch, cabinDoc(second, "Second")),
		)

		all, err := s.ListAll(context.Background())
		require.NoError(mt, err)
		require.Len(mt, all, 2)
		assert.Equal(mt, first.Hex(), all[0].ID)
		assert.Equal(mt, second.Hex(), all[1].ID)
	})

	mt.Run("list all empty", func(mt *mtest.T) {
		s := NewStore(nil, mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		all, err := s.ListAll(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, all)
		assert.Empty(mt, all)
	})

	mt.Run("create", func(mt *mtest.T) {
		s := NewStore(nil, mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		price := 100.0
		got, err := s.Create(context.Background(), domain.ListingInput{Title: "Cabin", Price: &price})
		require.NoError(mt, err)
		_, ok := domain.ParseID(got.ID)
		assert.True(mt, ok)
		assert.Equal(mt, "Cabin", got.Title)
	})

	mt.Run("create rejects empty title without a round trip", func(mt *mtest.T) {
		s := NewStore(nil, mt.Coll)

		_, err := s.Create(context.Background(), domain.ListingInput{})
		assert.True(mt, domain.IsValidation(err), "got %v", err)
	})

	mt.Run("create write error is a store failure", func(mt *mtest.T) {
		s := NewStore(nil, mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		_, err := s.Create(context.Background(), domain.ListingInput{Title: "Cabin"})
		require.Error(mt, err)
		assert.Equal(mt, domain.KindStore, domain.KindOf(err))
	})

	mt.Run("update returns new document", func(mt *mtest.T) {
		s := NewStore(nil, mt.Coll)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: cabinDoc(oid, "Cozy Cabin")}))

		title := "Cozy Cabin"
		got, err := s.Update(context.Background(), oid.Hex(), domain.ListingPatch{Title: &title})
		require.NoError(mt, err)
		assert.Equal(mt, "Cozy Cabin", got.Title)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		s := NewStore(nil, mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		title := "x"
		_, err := s.Update(context.Background(), storetest.MissingID, domain.ListingPatch{Title: &title})
		assert.True(mt, domain.IsNotFound(err), "got %v", err)
	})

	mt.Run("update invalid patch on existing listing", func(mt *mtest.T) {
		s := NewStore(nil, mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: 1}, {Key: "n", Value: int32(1)}}))

		price := -5.0
		_, err := s.Update(context.Background(), primitive.NewObjectID().Hex(), domain.ListingPatch{Price: &price})
		assert.True(mt, domain.IsValidation(err), "got %v", err)
	})

	mt.Run("update invalid patch on missing listing", func(mt *mtest.T) {
		s := NewStore(nil, mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		price := -5.0
		_, err := s.Update(context.Background(), storetest.MissingID, domain.ListingPatch{Price: &price})
		assert.True(mt, domain.IsNotFound(err), "got %v", err)
	})

	mt.Run("delete returns prior state", func(mt *mtest.T) {
		s := NewStore(nil, mt.Coll)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: cabinDoc(oid, "Cabin")}))

		got, err := s.DeleteByID(context.Background(), oid.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, oid.Hex(), got.ID)
		assert.Equal(mt, "Cabin", got.Title)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		s := NewStore(nil, mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := s.DeleteByID(context.Background(), storetest.MissingID)
		assert.True(mt, domain.IsNotFound(err), "got %v", err)
	})

	mt.Run("command error is a store failure", func(mt *mtest.T) {
		s := NewStore(nil, mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    91,
			Name:    "ShutdownInProgress",
			Message: "shutting down",
		}))

		_, err := s.ListAll(context.Background())
		require.Error(mt, err)
		assert.Equal(mt, domain.KindStore, domain.KindOf(err))
	})
}

func TestPatchUpdate(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	title, empty := "Cabin", ""
	price := 42.0

	tests := []struct {
		name      string
		patch     domain.ListingPatch
		wantSet   bson.M
		wantUnset bson.M
	}{
		{
			name:    "title only",
			patch:   domain.ListingPatch{Title: &title},
			wantSet: bson.M{"title": "Cabin", "updated_at": now},
		},
		{
			name:    "price",
			patch:   domain.ListingPatch{Price: &price},
			wantSet: bson.M{"price": 42.0, "updated_at": now},
		},
		{
			name:      "clear price and description",
			patch:     domain.ListingPatch{ClearPrice: true, Description: &empty},
			wantSet:   bson.M{"updated_at": now},
			wantUnset: bson.M{"price": "", "description": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update := patchUpdate(tt.patch, now)
			assert.Equal(t, tt.wantSet, update["$set"])
			if tt.wantUnset == nil {
				assert.NotContains(t, update, "$unset")
				return
			}
			assert.Equal(t, tt.wantUnset, update["$unset"])
		})
	}
}

// TestStoreContractLive runs the shared contract against a real server.
// Set WANDERLUST_TEST_MONGO_URI to enable it.
func TestStoreContractLive(t *testing.T) {
	uri := os.Getenv("WANDERLUST_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("WANDERLUST_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	coll := client.Database("wanderlust_test").Collection(DefaultCollection)
	storetest.Run(t, func(t *testing.T) domain.ListingStore {
		require.NoError(t, coll.Drop(context.Background()))
		return NewStore(nil, coll)
	})
}
