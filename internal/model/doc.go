// Package model defines domain entities and data structures for the Cigno Platform API.
//
// The model package contains struct definitions for stored records, request and
// response types, and the error envelope. Models are used across all layers.
//
// # Domain Entities
//
//   - Organisation: tenant with billing details and members
//   - User: consultant account belonging to an organisation
//   - Client and Contact: companies served and the people there
//   - Project and Deliverable: engagements and what they produce
//   - Storyline: ordered section outline of a deliverable
//
// # Identifiers
//
// Every record is keyed by a 24-character hex object identifier. Identifiers
// received from clients go through ParseRawID or ValidateID before use, so a
// boolean or malformed id becomes a FieldError rather than a query.
//
// # Request Validation
//
// Create requests expose Validate() []FieldError. Update requests carry the
// id in the body and expose Validate() (id string, errs []FieldError).
package model
