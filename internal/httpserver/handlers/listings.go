package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/wanderlust/internal/domain"
	"github.com/MrSnakeDoc/wanderlust/internal/httpserver/deps"
	"github.com/MrSnakeDoc/wanderlust/internal/logger"
	"github.com/MrSnakeDoc/wanderlust/internal/view"
)

const listingsPath = "/listings"

// Root answers the bare landing route.
func Root(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeText(w, d, http.StatusOK, "Hi, I am root")
	}
}

// ListListings renders every listing.
func ListListings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listings, err := d.Store.ListAll(r.Context())
		if err != nil {
			writeStoreError(w, r, d, err, readPolicy, "Error fetching listings")
			return
		}
		render(w, r, d, view.ListingsIndex, view.Page{Title: "All listings", Listings: listings})
	}
}

// NewListingForm renders the empty creation form.
func NewListingForm(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, d, view.ListingsNew, view.Page{Title: "New listing"})
	}
}

// ShowListing renders one listing.
func ShowListing(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := d.Store.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeStoreError(w, r, d, err, readPolicy, "Error fetching listing")
			return
		}
		render(w, r, d, view.ListingsShow, view.Page{Title: l.Title, Listing: l})
	}
}

// EditListingForm renders the edit form pre-filled with the stored values.
func EditListingForm(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := d.Store.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeStoreError(w, r, d, err, readPolicy, "Error fetching listing for edit")
			return
		}
		render(w, r, d, view.ListingsEdit, view.Page{Title: "Edit " + l.Title, Listing: l})
	}
}

// CreateListing stores a listing from the posted form and redirects to the index.
func CreateListing(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const failure = "Error creating listing"

		f, err := decodeListingForm(w, r, domain.OpCreate, "")
		if err != nil {
			writeStoreError(w, r, d, err, writePolicy, failure)
			return
		}
		in, err := f.input()
		if err != nil {
			writeStoreError(w, r, d, err, writePolicy, failure)
			return
		}

		l, err := d.Store.Create(r.Context(), in)
		if err != nil {
			writeStoreError(w, r, d, err, writePolicy, failure)
			return
		}

		d.Logger.Info("listing created",
			logger.String("id", l.ID),
			logger.String("title", l.Title))
		http.Redirect(w, r, listingsPath, http.StatusSeeOther)
	}
}

// UpdateListing applies the posted fields and redirects to the listing.
func UpdateListing(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const failure = "Error updating listing"
		id := chi.URLParam(r, "id")

		f, err := decodeListingForm(w, r, domain.OpUpdate, id)
		if err != nil {
			writeStoreError(w, r, d, err, writePolicy, failure)
			return
		}
		p, err := f.patch(id)
		if err != nil {
			writeStoreError(w, r, d, err, writePolicy, failure)
			return
		}

		l, err := d.Store.Update(r.Context(), id, p)
		if err != nil {
			writeStoreError(w, r, d, err, writePolicy, failure)
			return
		}

		d.Logger.Info("listing updated", logger.String("id", l.ID))
		http.Redirect(w, r, listingsPath+"/"+l.ID, http.StatusSeeOther)
	}
}

// DeleteListing removes a listing and redirects to the index.
func DeleteListing(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := d.Store.DeleteByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeStoreError(w, r, d, err, readPolicy, "Error deleting listing")
			return
		}

		d.Logger.Info("listing deleted",
			logger.String("id", l.ID),
			logger.String("title", l.Title))
		http.Redirect(w, r, listingsPath, http.StatusSeeOther)
	}
}

// render writes a page. Renderer buffers its output, so on failure nothing has
// been sent yet and the 500 can still be written.
func render(w http.ResponseWriter, r *http.Request, d deps.Deps, name string, page view.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := d.Renderer.Render(w, name, page); err != nil {
		d.Logger.Error("failed to render page",
			logger.String("template", name),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err))
		writeText(w, d, http.StatusInternalServerError, "Error rendering page")
	}
}
