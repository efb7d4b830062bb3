// Package repository implements the SurrealDB data access layer of the
// Cigno Platform API.
//
// Each repository owns one table and takes a database.Database, usually the
// lazy database.Provider. Records are addressed with type::thing($tb, $id)
// where $id is the 24-character hex identifier the API exposes, and every
// query is parameterised.
//
// Lookups of a missing record return (nil, nil); services decide whether that
// is a 404. Deletes that cascade collect the dependent ids first and then run
// a single database.AtomicBatch.
//
//	repo := NewProjectRepository(db)
//	project, err := repo.GetByID(ctx, "65a1f0c2e4b0a1b2c3d4e505")
//	if err != nil {
//	    return err
//	}
//	if project == nil {
//	    // not found
//	}
package repository
