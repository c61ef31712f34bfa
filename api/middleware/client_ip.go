package middleware

import (
	"net"
	"net/http"
)

// clientIP keys throttles on the socket peer. Forwarding headers are honored only
// when the router mounts chi's RealIP, which rewrites RemoteAddr before this runs.
func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
