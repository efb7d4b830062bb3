// Package testdb provides test database utilities for the Cigno Platform API.
//
// # Test Database Setup
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    defer tdb.Close()
//	}
//
// New applies the embedded migrations from internal/migrate. The server
// address comes from TEST_DATABASE_URL (default ws://localhost:8000) with
// TEST_DATABASE_USER and TEST_DATABASE_PASSWORD. Tests are skipped when the
// server is unreachable or with -short.
//
// # Shared Database
//
//	tdb := testdb.NewShared(t)
//	t.Run("create", func(t *testing.T) { db := tdb.SetupSubtest(t) ... })
package testdb
