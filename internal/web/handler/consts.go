// Package handler provides shared constants and response helpers for the API handlers.
package handler

const (
	// RootPath is the base path all API routes are mounted under.
	RootPath = "/api/v1"

	// DefaultPageSize for paginated listings.
	DefaultPageSize = 25
	// MaxPageSize callers may request.
	MaxPageSize = 100
)
