// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all
// endpoints: the structured error envelope, consistent JSON serialization,
// and helpers for the common success shapes. Every error response carries a
// stable machine-readable `code` (see errors.go) plus the request ID for
// log correlation.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "user not found"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-microblog-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code"`
	// Human-readable message (safe to show to users)
	Message string `json:"message"`
}

// Fail aborts the request with a structured error. Server-side (5xx)
// failures are additionally logged with request context.
func Fail(c *gin.Context, status int, code, message string) {
	rid := middleware.RequestIDFrom(c)
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", message).
			Msg("request failed")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: rid,
		Code:      code,
		Message:   message,
	})
}

// ok writes a 200 JSON response.
func ok(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

// created writes a 201 JSON response.
func created(c *gin.Context, body any) {
	c.JSON(http.StatusCreated, body)
}
