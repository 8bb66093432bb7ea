package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tabsaver/internal/domain"
	"github.com/MrSnakeDoc/tabsaver/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabsaver/internal/logger"
)

// Idle forwards an idle state observed by a client (screen locker,
// browser shim) to the idle watcher.
func Idle(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := domain.ParseIdleState(chi.URLParam(r, "state"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := d.Idle.Push(r.Context(), st); err != nil {
			d.Logger.Warn("failed to push idle state",
				logger.String("state", string(st)),
				logger.Error(err))
			status := http.StatusServiceUnavailable
			if r.Context().Err() != nil {
				status = http.StatusRequestTimeout
			}
			writeError(w, status, "idle watcher unavailable")
			return
		}

		writeJSON(w, http.StatusAccepted, acceptedResponse{
			Status: "accepted",
			State:  string(st),
		})
	}
}
