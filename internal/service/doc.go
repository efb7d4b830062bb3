// Package service implements the business logic of the Cigno Platform API.
//
// Services sit between the HTTP handlers and the repositories. They validate
// requests, resolve references between records and orchestrate writes that
// span more than one table.
//
// # Service Pattern
//
//   - Constructors take either the repository directly or a XxxServiceConfig
//     struct when several collaborators are needed
//   - Each service declares the narrow repository interfaces it uses, so
//     tests can back it with in-memory fakes
//   - Mutating methods take the acting user id for audit fields
//
// # Error Handling
//
// Failures are sentinel errors or a *ValidationError carrying field errors.
// handler.MapServiceError turns them into status codes:
//
//	var (
//	    ErrProjectNotFound  = errors.New("project not found")
//	    ErrAgentUnavailable = errors.New("custom agent unavailable")
//	)
//
// # Example Usage
//
//	projects := NewProjectService(ProjectServiceConfig{
//	    Repo:         projectRepo,
//	    Clients:      clientRepo,
//	    Deliverables: deliverableRepo,
//	})
//	view, err := projects.Get(ctx, id)
package service
