// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, a structured HTTP logger that
// scrubs obvious PII from request metadata before emitting logs. It never
// logs request or response bodies; it redacts emails, phone numbers, and
// UUID-like identifiers from query strings and header values; and it fully
// masks sensitive headers. The identity header (X-User-ID) is masked by
// default since it is the caller's account identifier.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures additional scrub behavior for RedactingLogger.
// MaskHeaders lists extra header names to fully replace with "[REDACTED]";
// matching is case-insensitive and merged with the built-in set
// (Authorization, Cookie, Set-Cookie, X-User-ID).
type RedactOptions struct {
	MaskHeaders []string
}

// RedactingLogger returns a Gin middleware that logs HTTP requests with
// sensitive values scrubbed. Level follows the outcome: info, warn for 4xx,
// error for 5xx.
//
// UUIDs are redacted before phone numbers so the loose phone pattern cannot
// match the digit segments of a UUID.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	uuidRE := regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE := regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE := regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)

	redact := func(s string) string {
		if s == "" {
			return s
		}
		out := uuidRE.ReplaceAllString(s, "[REDACTED:id]")
		out = emailRE.ReplaceAllString(out, "[REDACTED:email]")
		return phoneRE.ReplaceAllString(out, "[REDACTED:phone]")
	}

	maskHeaders := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
		"x-user-id":     {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		safeQuery := truncate(redact(c.Request.URL.RawQuery), maxQueryLogBytes)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			val := strings.Join(vv, ", ")
			if _, ok := maskHeaders[strings.ToLower(k)]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redact(val)
		}

		// Request-scoped logger for downstream code (see LoggerFrom).
		l := log.With().
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set("logger", &l)

		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}

		ev.
			Str("request_id", c.Writer.Header().Get(requestIDHeader)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", safeQuery).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
