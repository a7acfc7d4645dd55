package handlers

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/schema"

	"github.com/MrSnakeDoc/wanderlust/internal/domain"
)

// maxFormBytes bounds a listing form body.
const maxFormBytes = 1 << 20

// Form keys, nested under "listing" the way the HTML forms post them.
const (
	keyTitle       = "listing[title]"
	keyDescription = "listing[description]"
	keyImage       = "listing[image]"
	keyPrice       = "listing[price]"
	keyLocation    = "listing[location]"
	keyCountry     = "listing[country]"
)

// listingForm is the raw create/update body. Price stays a string so an empty
// value can be told apart from an unparsable one.
type listingForm struct {
	Title       string `schema:"listing[title]"`
	Description string `schema:"listing[description]"`
	Image       string `schema:"listing[image]"`
	Price       string `schema:"listing[price]"`
	Location    string `schema:"listing[location]"`
	Country     string `schema:"listing[country]"`

	present url.Values `schema:"-"`
}

var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	// Keys outside listing[...] are ignored rather than rejected.
	d.IgnoreUnknownKeys(true)
	return d
}

// decodeListingForm parses an urlencoded body. Parse failures come back as
// validation errors for op.
func decodeListingForm(w http.ResponseWriter, r *http.Request, op, id string) (*listingForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return nil, domain.Invalid(op, id, domain.FieldError{Field: "listing", Reason: "could not be parsed"})
	}

	var f listingForm
	if err := formDecoder.Decode(&f, r.PostForm); err != nil {
		return nil, domain.Invalid(op, id, domain.FieldError{Field: "listing", Reason: fmt.Sprintf("could not be decoded: %v", err)})
	}
	f.present = r.PostForm
	return &f, nil
}

func (f *listingForm) has(key string) bool {
	_, ok := f.present[key]
	return ok
}

// parsePrice returns nil for an empty value.
func parsePrice(op, id, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, domain.Invalid(op, id, domain.FieldError{Field: "price", Reason: "must be a number"})
	}
	return &v, nil
}

// input converts the form into a new listing.
func (f *listingForm) input() (domain.ListingInput, error) {
	price, err := parsePrice(domain.OpCreate, "", f.Price)
	if err != nil {
		return domain.ListingInput{}, err
	}
	return domain.ListingInput{
		Title:       f.Title,
		Description: f.Description,
		Image:       f.Image,
		Price:       price,
		Location:    f.Location,
		Country:     f.Country,
	}, nil
}

// patch keeps only the keys present in the body. An empty price clears it.
func (f *listingForm) patch(id string) (domain.ListingPatch, error) {
	var p domain.ListingPatch

	if f.has(keyTitle) {
		p.Title = &f.Title
	}
	if f.has(keyDescription) {
		p.Description = &f.Description
	}
	if f.has(keyImage) {
		p.Image = &f.Image
	}
	if f.has(keyPrice) {
		price, err := parsePrice(domain.OpUpdate, id, f.Price)
		if err != nil {
			return domain.ListingPatch{}, err
		}
		p.Price = price
		p.ClearPrice = price == nil
	}
	if f.has(keyLocation) {
		p.Location = &f.Location
	}
	if f.has(keyCountry) {
		p.Country = &f.Country
	}

	return p, nil
}
