package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tabsaver/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabsaver/internal/httpserver/handlers"
)

func init() { Register(registerSaves) }

func registerSaves(r chi.Router, d deps.Deps) {
	r.Get("/api/saves", handlers.Saves(d))
}
