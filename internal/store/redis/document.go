package redis

import (
	"time"

	"github.com/MrSnakeDoc/wanderlust/internal/domain"
)

// listingDocument is the JSON stored under ListingKey.
type listingDocument struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Location    string    `json:"location,omitempty"`
	Country     string    `json:"country,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toListingDocument(l *domain.Listing) *listingDocument {
	return &listingDocument{
		ID:          l.ID,
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
		ID:          d.ID,
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
