package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// versionInfo is the subset of /json/version we need.
type versionInfo struct {
	Browser              string `json:"Browser"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// ResolveWebSocketURL turns a DevTools endpoint into a browser websocket URL.
// ws:// and wss:// URLs are returned as-is; http(s) endpoints are asked
// for their debugger URL via /json/version.
func ResolveWebSocketURL(ctx context.Context, endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid cdp url %q: %w", endpoint, err)
	}

	switch u.Scheme {
	case "ws", "wss":
		return endpoint, nil
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported cdp url scheme %q", u.Scheme)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/json/version"

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to query %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status from %s: %s", u, resp.Status)
	}

	var info versionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", u, err)
	}
	if info.WebSocketDebuggerURL == "" {
		return "", fmt.Errorf("%s did not report a webSocketDebuggerUrl", u)
	}

	return info.WebSocketDebuggerURL, nil
}
