package handlers

import (
	"net/http"
	"strconv"

	"github.com/MrSnakeDoc/tabsaver/internal/domain"
	"github.com/MrSnakeDoc/tabsaver/internal/httpserver/deps"
)

type savesResponse struct {
	Count int                 `json:"count"`
	Saves []domain.SaveRecord `json:"saves"`
}

// Saves lists recent pipeline runs, newest first. ?limit=n truncates.
func Saves(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := d.Saver.History().Recent()

		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
				return
			}
			if n < len(records) {
				records = records[:n]
			}
		}

		writeJSON(w, http.StatusOK, savesResponse{Count: len(records), Saves: records})
	}
}
