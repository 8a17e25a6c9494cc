package auth

import "strings"

// PublicEndpoints defines endpoints that don't require authentication.
//
// - /health, /ready, /live: orchestration health checks
// - /metrics: Prometheus scraping
// - /auth/register, /auth/login: a token cannot be required to obtain one
var PublicEndpoints = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
	"/auth/register",
	"/auth/login",
}

// IsPublicEndpoint checks if a given path is a public endpoint.
//
// Endpoints ending with '/' match by prefix. Others match exactly, with an
// optional trailing slash or query string, so /health does not match
// /health/detail or /healthcheck.
func IsPublicEndpoint(path string) bool {
	for _, endpoint := range PublicEndpoints {
		if strings.HasSuffix(endpoint, "/") {
			if strings.HasPrefix(path, endpoint) {
				return true
			}
			continue
		}
		if path == endpoint || path == endpoint+"/" || strings.HasPrefix(path, endpoint+"?") {
			return true
		}
	}
	return false
}
