package domain

import "time"

// Listing is a place offered on the site.
//
// The store owns the persisted form. Handlers only ever see copies.
type Listing struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is a 24 character hex ObjectID assigned by the store on creation.
	ID string

	// ─────────────────────────────
	// Description
	// ─────────────────────────────

	Title       string
	Description string

	// Image is a URL. Views fall back to a placeholder when empty.
	Image string

	// Price is optional. nil means "no price" and is distinct from zero.
	Price *float64

	Location string
	Country  string

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListingInput is the validated field set for a new listing.
type ListingInput struct {
	Title       string   `validate:"required" field:"title"`
	Description string   `field:"description"`
	Image       string   `field:"image"`
	Price       *float64 `validate:"omitnil,gte=0" field:"price"`
	Location    string   `field:"location"`
	Country     string   `field:"country"`
}

// ListingPatch carries the fields supplied to an update. nil fields are left
// unchanged. ClearPrice removes the stored price.
type ListingPatch struct {
	Title       *string  `validate:"omitnil,min=1" field:"title"`
	Description *string  `field:"description"`
	Image       *string  `field:"image"`
	Price       *float64 `validate:"omitnil,gte=0" field:"price"`
	ClearPrice  bool     `field:"-"`
	Location    *string  `field:"location"`
	Country     *string  `field:"country"`
}

// NewListing builds a listing from validated input. The caller assigns the ID.
func NewListing(in ListingInput, now time.Time) *Listing {
	return &Listing{
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		Price:       copyFloat(in.Price),
		Location:    in.Location,
		Country:     in.Country,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply writes the supplied fields of p onto l.
func (p ListingPatch) Apply(l *Listing, now time.Time) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Image != nil {
		l.Image = *p.Image
	}
	switch {
	case p.ClearPrice:
		l.Price = nil
	case p.Price != nil:
		l.Price = copyFloat(p.Price)
	}
	if p.Location != nil {
		l.Location = *p.Location
	}
	if p.Country != nil {
		l.Country = *p.Country
	}
	l.UpdatedAt = now
}

// IsEmpty reports whether the patch changes nothing.
func (p ListingPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Image == nil &&
		p.Price == nil && !p.ClearPrice && p.Location == nil && p.Country == nil
}

// Clone returns a deep copy of l.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	c := *l
	c.Price = copyFloat(l.Price)
	return &c
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
