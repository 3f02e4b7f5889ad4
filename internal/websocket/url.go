package websocket

import (
	"net/url"
	"strings"
)

// BuildWebSocketURL builds a WebSocket URL carrying the session token.
// Browsers cannot set headers on upgrade requests, so the token travels in the query.
func BuildWebSocketURL(baseURL, token string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}

	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return u.String()
}

// FromHTTPURL converts an http(s) API base URL into the ws(s) URL of path
func FromHTTPURL(apiURL, path string) string {
	u, err := url.Parse(apiURL)
	if err != nil {
		return apiURL
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + path

	return u.String()
}
