package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/tabsaver/internal/bookmarks"
	"github.com/MrSnakeDoc/tabsaver/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabsaver/internal/logger"
)

// Export serves every saved session as a Netscape bookmark file.
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := bookmarks.ExportHTML(r.Context(), d.Store)
		if err != nil {
			d.Logger.Error("export failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="tabsaver-bookmarks.html"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(doc)); err != nil {
			d.Logger.Debug("failed to write response", logger.Error(err))
		}
	}
}
