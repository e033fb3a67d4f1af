package ratelimit

import (
	"net/http"
	"strings"
)

// UnknownClient pools every request that carries no usable forwarding header
// into one shared bucket. A misconfigured proxy path can therefore throttle
// unrelated traffic; kept as-is because the serverless platforms this runs on
// always set the forwarding headers.
const UnknownClient = "unknown"

// ClientKey derives the rate-limit identity for a request: the first entry of
// X-Forwarded-For, else X-Real-IP, else UnknownClient.
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	return UnknownClient
}
