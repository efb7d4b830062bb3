// Package fixtures provides test data factories for integration tests.
//
// Factories write through the real repositories and return the stored
// models. Every create call uses a fresh object id.
//
// Usage:
//
//	f := fixtures.New(tdb.DB)
//	org := f.CreateOrganisation(t)
//	client := f.CreateClient(t, org)
//	project := f.CreateProject(t, client)
package fixtures

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cigno/platform/internal/database"
	"github.com/cigno/platform/internal/model"
	"github.com/cigno/platform/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password of every fixture user
const DefaultPassword = "testpass123"

// Factory creates test entities in the database
type Factory struct {
	organisations *repository.OrganisationRepository
	users         *repository.UserRepository
	clients       *repository.ClientRepository
	contacts      *repository.ContactRepository
	projects      *repository.ProjectRepository
	deliverables  *repository.DeliverableRepository
	storylines    *repository.StorylineRepository
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{
		organisations: repository.NewOrganisationRepository(db),
		users:         repository.NewUserRepository(db),
		clients:       repository.NewClientRepository(db),
		contacts:      repository.NewContactRepository(db),
		projects:      repository.NewProjectRepository(db),
		deliverables:  repository.NewDeliverableRepository(db),
		storylines:    repository.NewStorylineRepository(db),
	}
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

func suffix(id string) string {
	return id[len(id)-6:]
}

// ============================================================================
// Organisation and User Fixtures
// ============================================================================

// CreateOrganisation creates an active organisation
func (f *Factory) CreateOrganisation(t *testing.T, opts ...func(*model.Organisation)) *model.Organisation {
	t.Helper()

	id := model.NewID()
	org := &model.Organisation{
		ID:        id,
		Name:      "Org " + suffix(id),
		Industry:  "Consulting",
		MemberIDs: []string{},
		IsActive:  true,
	}
	for _, fn := range opts {
		fn(org)
	}

	if err := f.organisations.Create(ctx(t), org); err != nil {
		t.Fatalf("fixtures: failed to create organisation: %v", err)
	}
	return org
}

// UserOpts customizes user creation
type UserOpts struct {
	Name           string
	Email          string
	Password       string
	Role           model.UserRole
	OrganisationID string
}

// CreateUser creates a user with optional customizations. The password is
// DefaultPassword unless overridden.
func (f *Factory) CreateUser(t *testing.T, opts ...func(*UserOpts)) *model.User {
	t.Helper()

	id := model.NewID()
	o := &UserOpts{
		Name:     "User " + suffix(id),
		Email:    fmt.Sprintf("user_%s@test.local", suffix(id)),
		Password: DefaultPassword,
		Role:     model.UserRoleUser,
	}
	for _, fn := range opts {
		fn(o)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("fixtures: failed to hash password: %v", err)
	}
	hashed := string(hash)

	user := &model.User{
		ID:             id,
		Name:           o.Name,
		Email:          model.NormalizeEmail(o.Email),
		OrganisationID: o.OrganisationID,
		Role:           o.Role,
		Hash:           &hashed,
	}
	if err := f.users.Create(ctx(t), user); err != nil {
		t.Fatalf("fixtures: failed to create user: %v", err)
	}

	user.Hash = nil
	return user
}

// CreateAdmin creates an admin user
func (f *Factory) CreateAdmin(t *testing.T) *model.User {
	return f.CreateUser(t, func(o *UserOpts) {
		o.Role = model.UserRoleAdmin
	})
}

// ============================================================================
// Client Fixtures
// ============================================================================

// CreateClient creates a client of org
func (f *Factory) CreateClient(t *testing.T, org *model.Organisation, opts ...func(*model.Client)) *model.Client {
	t.Helper()

	id := model.NewID()
	client := &model.Client{
		ID:             id,
		Name:           "Client " + suffix(id),
		Industry:       "Banking",
		Location:       "Amsterdam",
		OrganisationID: org.ID,
	}
	for _, fn := range opts {
		fn(client)
	}

	if err := f.clients.Create(ctx(t), client); err != nil {
		t.Fatalf("fixtures: failed to create client: %v", err)
	}
	return client
}

// CreateContact creates a contact of client
func (f *Factory) CreateContact(t *testing.T, client *model.Client) *model.Contact {
	t.Helper()

	id := model.NewID()
	contact := &model.Contact{
		ID:       id,
		Name:     "Contact " + suffix(id),
		Email:    fmt.Sprintf("contact_%s@client.test", suffix(id)),
		Role:     "Sponsor",
		ClientID: client.ID,
	}
	if err := f.contacts.Create(ctx(t), contact); err != nil {
		t.Fatalf("fixtures: failed to create contact: %v", err)
	}
	return contact
}

// ============================================================================
// Project Fixtures
// ============================================================================

// CreateProject creates a planning project of client
func (f *Factory) CreateProject(t *testing.T, client *model.Client, opts ...func(*model.Project)) *model.Project {
	t.Helper()

	id := model.NewID()
	project := &model.Project{
		ID:             id,
		Name:           "Project " + suffix(id),
		StartDate:      "2026-01-05",
		EndDate:        "2026-06-30",
		ClientID:       client.ID,
		OrganisationID: client.OrganisationID,
		Status:         model.ProjectStatusPlanning,
	}
	for _, fn := range opts {
		fn(project)
	}

	if err := f.projects.Create(ctx(t), project); err != nil {
		t.Fatalf("fixtures: failed to create project: %v", err)
	}
	return project
}

// CreateDeliverable creates a draft deliverable of project
func (f *Factory) CreateDeliverable(t *testing.T, project *model.Project, opts ...func(*model.Deliverable)) *model.Deliverable {
	t.Helper()

	id := model.NewID()
	deliverable := &model.Deliverable{
		ID:        id,
		Name:      "Deliverable " + suffix(id),
		DueDate:   "2026-03-31",
		Brief:     "Steering committee deck",
		Status:    model.DeliverableStatusDraft,
		ProjectID: project.ID,
	}
	for _, fn := range opts {
		fn(deliverable)
	}

	if err := f.deliverables.Create(ctx(t), deliverable); err != nil {
		t.Fatalf("fixtures: failed to create deliverable: %v", err)
	}
	return deliverable
}

// CreateStoryline stores a storyline with the given section titles
func (f *Factory) CreateStoryline(t *testing.T, deliverable *model.Deliverable, titles ...string) *model.Storyline {
	t.Helper()

	sections := make([]model.Section, len(titles))
	for i, title := range titles {
		sections[i] = model.Section{
			ID:        fmt.Sprintf("section-%d", i+1),
			Title:     title,
			Status:    model.SectionStatusDraft,
			KeyPoints: []string{},
		}
	}

	storyline := &model.Storyline{
		ID:            model.NewID(),
		DeliverableID: deliverable.ID,
		Title:         deliverable.Name,
		Sections:      sections,
		Source:        model.StorylineSourceManual,
	}
	if err := f.storylines.Create(ctx(t), storyline); err != nil {
		t.Fatalf("fixtures: failed to create storyline: %v", err)
	}
	return storyline
}
