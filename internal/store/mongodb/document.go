package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MrSnakeDoc/wanderlust/internal/domain"
)

// listingDocument is the stored form of a listing.
type listingDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Image       string             `bson:"image,omitempty"`
	Price       *float64           `bson:"price,omitempty"`
	Location    string             `bson:"location,omitempty"`
	Country     string             `bson:"country,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func toListingDocument(id primitive.ObjectID, l *domain.Listing) *listingDocument {
	return &listingDocument{
		ID:          id,
		Title:       l.Title,
		Description: l.Description,
		Image:       l.Image,
		Price:       l.Price,
		Location:    l.Location,
		Country:     l.Country,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func toDomainListing(d *listingDocument) *domain.Listing {
	return &domain.Listing{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Image:       d.Image,
		Price:       d.Price,
		Location:    d.Location,
		Country:     d.Country,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDomainListing(d))
	}
	return out
}

// patchUpdate turns a patch into a $set/$unset update document.
func patchUpdate(p domain.ListingPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	unset := bson.M{}

	setString := func(key string, v *string) {
		if v == nil {
			return
		}
		// Empty optional strings are not stored, matching omitempty on insert.
		if *v == "" && key != "title" {
			unset[key] = ""
			return
		}
		set[key] = *v
	}

	setString("title", p.Title)
	setString("description", p.Description)
	setString("image", p.Image)
	setString("location", p.Location)
	setString("country", p.Country)

	switch {
	case p.ClearPrice:
		unset["price"] = ""
	case p.Price != nil:
		set["price"] = *p.Price
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}
