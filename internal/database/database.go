// Package database provides the database abstraction layer for the Cigno Platform.
//
// This package defines the Database interface that abstracts SurrealDB operations,
// allowing for clean separation between business logic and data access.
//
// # Interface Design
//
// The Database interface provides three query methods:
//   - Query: Returns multiple results (for SELECT queries returning lists)
//   - QueryOne: Returns a single result (for SELECT by ID)
//   - Execute: No return value (for CREATE/UPDATE/DELETE mutations)
//
// # Connection Ownership
//
// The server never holds a package-level client. A *Provider is built once in
// main and passed to every repository. It opens the connection lazily on the
// first query and re-validates its configuration on every access.
//
// # Error Handling
//
// Standard errors are defined for common failure cases:
//   - ErrNotFound: Record does not exist
//   - ErrDuplicate: Unique constraint violation
//   - ErrConnection: Database connection issues
//   - ErrQuery: Query execution failures
//   - ErrNotConfigured: No connection string was provided
//
// Use errors.Is() to check error types:
//
//	if errors.Is(err, database.ErrNotFound) {
//	    // Handle missing record
//	}
package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Standard errors for database operations.
// Use errors.Is() to check these error types in calling code.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique constraint violation (e.g., duplicate email).
	ErrDuplicate = errors.New("duplicate record")

	// ErrConnection indicates a failure to connect to or communicate with the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a query execution failure (syntax error, invalid reference, etc.).
	ErrQuery = errors.New("query error")

	// ErrNotConfigured indicates the connection string is missing or unusable.
	ErrNotConfigured = errors.New("database not configured")
)

// Database defines the interface for database operations
type Database interface {
	Ping(ctx context.Context) error
	Close() error

	// Query executes a query and returns results
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)

	// QueryOne executes a query and returns a single result
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)

	// Execute runs a query without returning results (for mutations)
	Execute(ctx context.Context, query string, vars map[string]interface{}) error
}

// Config holds database configuration
type Config struct {
	URL       string
	Namespace string
	Database  string
	User      string
	Password  string
}

// Validate reports ErrNotConfigured when the connection string is unusable
func (c Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("%w: DATABASE_URL is empty", ErrNotConfigured)
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%w: DATABASE_URL %q is not a valid URL", ErrNotConfigured, c.URL)
	}
	if c.Namespace == "" || c.Database == "" {
		return fmt.Errorf("%w: namespace and database are required", ErrNotConfigured)
	}
	return nil
}
