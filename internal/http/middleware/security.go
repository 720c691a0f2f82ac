// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, a hardening middleware that attaches a
// conservative set of HTTP security headers suitable for JSON APIs behind a
// reverse proxy. HSTS is opt-in and only emitted for requests that actually
// arrived over HTTPS.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures the headers emitted by SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS emits Strict-Transport-Security for HTTPS requests. Only
	// enable when traffic is HTTPS end-to-end, proxy hop included.
	EnableHSTS bool
	// HSTSMaxAge is the HSTS lifetime; <= 0 defaults to 180 days.
	HSTSMaxAge time.Duration
	// NoStore adds Cache-Control: no-store for sensitive responses.
	NoStore bool
	// EnablePolicy includes Permissions-Policy and related browser-only
	// headers; harmless for non-browser clients.
	EnablePolicy bool
}

// SecurityHeaders returns a Gin middleware adding baseline hardening headers
// (nosniff, frame deny, no-referrer) plus the optional ones from opt. It
// also exposes X-Request-ID to browser clients via
// Access-Control-Expose-Headers so correlation IDs survive CORS.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security",
				"max-age="+strconv.Itoa(maxAge)+"; includeSubDomains; preload")
		}

		if rid := h.Get(requestIDHeader); rid != "" {
			const hdr = "Access-Control-Expose-Headers"
			switch cur := h.Get(hdr); {
			case cur == "":
				h.Set(hdr, requestIDHeader)
			case !strings.Contains(cur, requestIDHeader):
				h.Set(hdr, cur+", "+requestIDHeader)
			}
		}

		c.Next()
	}
}

// isHTTPS reports whether the request used HTTPS directly or via a reverse
// proxy that set X-Forwarded-Proto.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
