// Package fixtures provides test data factories for the Cigno Platform API.
//
// # Factory Pattern
//
//	f := fixtures.New(tdb.DB)
//
// # Creating Test Data
//
//	org := f.CreateOrganisation(t)
//	admin := f.CreateAdmin(t)
//	client := f.CreateClient(t, org)
//	project := f.CreateProject(t, client, func(p *model.Project) { p.Status = model.ProjectStatusActive })
//	deliverable := f.CreateDeliverable(t, project)
//	f.CreateStoryline(t, deliverable, "Context", "Recommendation")
//
// Test data is removed with the namespace when the test database is closed.
package fixtures
