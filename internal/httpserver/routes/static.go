package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/wanderlust/internal/httpserver/deps"
	"github.com/MrSnakeDoc/wanderlust/internal/view"
)

func init() { Register(registerStatic) }

func registerStatic(r chi.Router, _ deps.Deps) {
	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(view.StaticFS())))
	r.Handle("/static/*", fileServer)
}
