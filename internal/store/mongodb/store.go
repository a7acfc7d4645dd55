package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/MrSnakeDoc/wanderlust/internal/domain"
)

// DefaultCollection holds the listings when no name is configured.
const DefaultCollection = "listings"

// Store persists listings in one MongoDB collection. Each mutation is a single
// document command, so the server's per-document atomicity applies.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	now        func() time.Time
}

// NewStore wraps an existing collection. client may be nil, in which case
// Close is a no-op.
func NewStore(client *mongo.Client, coll *mongo.Collection) *Store {
	return &Store{
		client:     client,
		collection: coll,
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *Store) Backend() string { return "mongo" }

// ListAll returns every listing ordered by _id. ObjectIDs grow with insertion
// time, so this is insertion order.
func (s *Store) ListAll(ctx context.Context) ([]*domain.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, domain.StoreFailure(domain.OpListAll, "", err)
	}

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, domain.StoreFailure(domain.OpListAll, "", err)
	}
	return toDomainListings(docs), nil
}

// GetByID retrieves a listing by ID
func (s *Store) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, ok := domain.ParseID(id)
	if !ok {
		return nil, domain.NotFound(domain.OpGet, id)
	}

	var doc listingDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(domain.OpGet, id)
		}
		return nil, domain.StoreFailure(domain.OpGet, id, err)
	}
	return toDomainListing(&doc), nil
}

// Create validates the input and inserts a new document.
func (s *Store) Create(ctx context.Context, in domain.ListingInput) (*domain.Listing, error) {
	if err := domain.ValidateInput(domain.OpCreate, in); err != nil {
		return nil, err
	}

	oid := primitive.NewObjectID()
	l := domain.NewListing(in, s.now())
	l.ID = oid.Hex()

	if _, err := s.collection.InsertOne(ctx, toListingDocument(oid, l)); err != nil {
		return nil, domain.StoreFailure(domain.OpCreate, l.ID, err)
	}
	return l, nil
}

// Update applies the patch with findOneAndUpdate and returns the new document.
func (s *Store) Update(ctx context.Context, id string, p domain.ListingPatch) (*domain.Listing, error) {
	oid, ok := domain.ParseID(id)
	if !ok {
		return nil, domain.NotFound(domain.OpUpdate, id)
	}

	if err := domain.ValidatePatch(domain.OpUpdate, id, p); err != nil {
		// Report absence first, as for a valid patch.
		if exists, cerr := s.exists(ctx, oid); cerr == nil && !exists {
			return nil, domain.NotFound(domain.OpUpdate, id)
		}
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc listingDocument
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, patchUpdate(p, s.now()), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(domain.OpUpdate, id)
		}
		return nil, domain.StoreFailure(domain.OpUpdate, id, err)
	}
	return toDomainListing(&doc), nil
}

// DeleteByID removes a document and returns its last state.
func (s *Store) DeleteByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, ok := domain.ParseID(id)
	if !ok {
		return nil, domain.NotFound(domain.OpDelete, id)
	}

	var doc listingDocument
	err := s.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound(domain.OpDelete, id)
		}
		return nil, domain.StoreFailure(domain.OpDelete, id, err)
	}
	return toDomainListing(&doc), nil
}

func (s *Store) exists(ctx context.Context, oid primitive.ObjectID) (bool, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return s.collection.Database().Client().Ping(ctx, readpref.Primary())
	}
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

var _ domain.ListingStore = (*Store)(nil)
