package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/tabsaver/internal/httpserver/deps"
)

const readyzTimeout = 2 * time.Second

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type readyzResponse struct {
	Ready      bool                       `json:"ready"`
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Readyz reports 200 when the bookmark store answers. An unreachable
// registry only degrades the daemon.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
		defer cancel()

		components := map[string]componentStatus{
			"bookmarks": checkStore(ctx, d),
			"registry":  checkRegistry(ctx, d),
		}

		resp := readyzResponse{
			Ready:      components["bookmarks"].OK,
			Mode:       determineMode(components),
			Components: components,
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

func determineMode(components map[string]componentStatus) string {
	if !components["bookmarks"].OK {
		return "critical"
	}
	if !components["registry"].OK {
		return "degraded"
	}
	return "optimal"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{OK: false, Error: "store not initialized"}
	}
	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{OK: false, Impact: "saves-failing", Error: err.Error()}
	}
	return componentStatus{OK: true}
}

func checkRegistry(ctx context.Context, d deps.Deps) componentStatus {
	if d.Registry == nil {
		return componentStatus{OK: false, Impact: "title-lookup-only", Error: "registry not initialized"}
	}
	if err := d.Registry.Ping(ctx); err != nil {
		return componentStatus{OK: false, Mode: d.RegistryMode, Impact: "title-lookup-only", Error: err.Error()}
	}
	return componentStatus{OK: true, Mode: d.RegistryMode}
}
