package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/wanderlust/internal/httpserver/deps"
	"github.com/MrSnakeDoc/wanderlust/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/wanderlust/internal/httpserver/mw"
)

func init() { Register(registerListings) }

func registerListings(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))

		r.Get("/listings", handlers.ListListings(d))
		r.Get("/listings/new", handlers.NewListingForm(d))
		r.Get("/listings/{id}", handlers.ShowListing(d))
		r.Get("/listings/{id}/edit", handlers.EditListingForm(d))

		// Mutations share a per-IP budget
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit(mw.RateLimitConfig{
				Burst:             d.RateLimitBurst,
				RefillPerIPPerMin: d.RateLimitPerMin,
				MaxEntries:        10000,
				TrustProxy:        d.TrustProxy,
			}))

			r.Post("/listings", handlers.CreateListing(d))
			r.Put("/listings/{id}", handlers.UpdateListing(d))
			r.Delete("/listings/{id}", handlers.DeleteListing(d))
		})
	})
}
