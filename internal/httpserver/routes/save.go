package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tabsaver/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabsaver/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/tabsaver/internal/httpserver/mw"
)

func init() { Register(registerSave) }

func registerSave(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.SaveRateBurst,
		RefillPerMin: d.SaveRatePerMin,
		MaxClients:   256,
		TrustProxy:   d.TrustProxy,
		Now:          d.TimeNow,
	}, d.Logger.Named("ratelimit"))
	r.With(limit).Post("/api/save", handlers.Save(d))
}
