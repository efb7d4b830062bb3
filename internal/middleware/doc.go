// Package middleware provides HTTP middleware for the Cigno Platform API.
//
// # Available Middleware
//
//   - RequestID: assigns X-Request-ID and adds it to log records
//   - Logger: one structured log line per request
//   - Recovery: turns panics into a 500 envelope
//   - CORS: origin allow-list and preflight handling
//   - Compress: gzip responses when the client accepts it
//   - Auth / DevAuth: bearer token validation, or fixed development claims
//   - RequireAdmin: rejects non-admin callers with 403
//   - RateLimit: per user or client IP token buckets
//   - Idempotency: replays the first 2xx answer to a POST or PUT retried
//     with the same Idempotency-Key
//
// # Context Values
//
//   - GetUserID(ctx): authenticated user ID, used for audit fields
//   - GetClaims(ctx): full token claims
//   - GetRequestID(ctx): request identifier
package middleware
