package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tabsaver/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabsaver/internal/httpserver/handlers"
)

func init() { Register(registerIdle) }

func registerIdle(r chi.Router, d deps.Deps) {
	r.Post("/api/idle/{state}", handlers.Idle(d))
}
