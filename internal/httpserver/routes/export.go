package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tabsaver/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabsaver/internal/httpserver/handlers"
)

func init() { Register(registerExport) }

func registerExport(r chi.Router, d deps.Deps) {
	r.Get("/api/export", handlers.Export(d))
}
