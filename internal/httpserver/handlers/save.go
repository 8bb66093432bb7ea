package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/tabsaver/internal/domain"
	"github.com/MrSnakeDoc/tabsaver/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabsaver/internal/logger"
)

type acceptedResponse struct {
	Status string `json:"status"`
	Kind   string `json:"kind,omitempty"`
	State  string `json:"state,omitempty"`
}

// Save starts a force save of the focused window, like the toolbar button.
func Save(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Saver.OnActionClicked()
		d.Logger.Info("force save triggered via endpoint",
			logger.String("remote_ip", r.RemoteAddr))

		writeJSON(w, http.StatusAccepted, acceptedResponse{
			Status: "accepted",
			Kind:   string(domain.SaveForce),
		})
	}
}
