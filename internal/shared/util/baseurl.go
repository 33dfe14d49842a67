package util

import (
	"net/http"
	"strings"
)

// BaseURL returns the origin used when building share links: the configured
// public base URL if set, otherwise http://<request Host>.
func BaseURL(publicBaseURL string, r *http.Request) string {
	if base := strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"); base != "" {
		return base
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
