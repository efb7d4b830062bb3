package service

import (
	"context"

	"github.com/cigno/platform/internal/agent"
	"github.com/cigno/platform/internal/model"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockOrganisationRepo struct {
	createFunc     func(ctx context.Context, org *model.Organisation) error
	getByIDFunc    func(ctx context.Context, id string) (*model.Organisation, error)
	listFunc       func(ctx context.Context, includeInactive bool) ([]*model.Organisation, error)
	updateFunc     func(ctx context.Context, org *model.Organisation) error
	deactivateFunc func(ctx context.Context, id, updatedBy string) error
}

func (m *mockOrganisationRepo) Create(ctx context.Context, org *model.Organisation) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, org)
	}
	return nil
}

func (m *mockOrganisationRepo) GetByID(ctx context.Context, id string) (*model.Organisation, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockOrganisationRepo) List(ctx context.Context, includeInactive bool) ([]*model.Organisation, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, includeInactive)
	}
	return nil, nil
}

func (m *mockOrganisationRepo) Update(ctx context.Context, org *model.Organisation) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, org)
	}
	return nil
}

func (m *mockOrganisationRepo) Deactivate(ctx context.Context, id, updatedBy string) error {
	if m.deactivateFunc != nil {
		return m.deactivateFunc(ctx, id, updatedBy)
	}
	return nil
}

type mockUserRepo struct {
	createFunc         func(ctx context.Context, user *model.User) error
	getByIDFunc        func(ctx context.Context, id string) (*model.User, error)
	getByEmailFunc     func(ctx context.Context, email string) (*model.User, error)
	listFunc           func(ctx context.Context, organisationID string) ([]*model.User, error)
	updateFunc         func(ctx context.Context, user *model.User) error
	updatePasswordFunc func(ctx context.Context, userID, hash, updatedBy string) error
	deleteFunc         func(ctx context.Context, id string) error
	ownedIDsFunc       func(ctx context.Context, userID string) ([]string, []string, []string, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) List(ctx context.Context, organisationID string) ([]*model.User, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, organisationID)
	}
	return nil, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID, hash, updatedBy string) error {
	if m.updatePasswordFunc != nil {
		return m.updatePasswordFunc(ctx, userID, hash, updatedBy)
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) OwnedIDs(ctx context.Context, userID string) ([]string, []string, []string, error) {
	if m.ownedIDsFunc != nil {
		return m.ownedIDsFunc(ctx, userID)
	}
	return nil, nil, nil, nil
}

type mockClientRepo struct {
	createFunc  func(ctx context.Context, client *model.Client) error
	getByIDFunc func(ctx context.Context, id string) (*model.Client, error)
	listFunc    func(ctx context.Context, organisationID string) ([]*model.Client, error)
	updateFunc  func(ctx context.Context, client *model.Client) error
	deleteFunc  func(ctx context.Context, id string) error
}

func (m *mockClientRepo) Create(ctx context.Context, client *model.Client) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, client)
	}
	return nil
}

func (m *mockClientRepo) GetByID(ctx context.Context, id string) (*model.Client, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockClientRepo) List(ctx context.Context, organisationID string) ([]*model.Client, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, organisationID)
	}
	return nil, nil
}

func (m *mockClientRepo) Update(ctx context.Context, client *model.Client) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, client)
	}
	return nil
}

func (m *mockClientRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockContactRepo struct {
	createFunc  func(ctx context.Context, contact *model.Contact) error
	getByIDFunc func(ctx context.Context, id string) (*model.Contact, error)
	listFunc    func(ctx context.Context, clientID string) ([]*model.Contact, error)
	updateFunc  func(ctx context.Context, contact *model.Contact) error
	deleteFunc  func(ctx context.Context, id string) error
}

func (m *mockContactRepo) Create(ctx context.Context, contact *model.Contact) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, contact)
	}
	return nil
}

func (m *mockContactRepo) GetByID(ctx context.Context, id string) (*model.Contact, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockContactRepo) List(ctx context.Context, clientID string) ([]*model.Contact, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, clientID)
	}
	return nil, nil
}

func (m *mockContactRepo) Update(ctx context.Context, contact *model.Contact) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, contact)
	}
	return nil
}

func (m *mockContactRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockProjectRepo struct {
	createFunc  func(ctx context.Context, project *model.Project) error
	getByIDFunc func(ctx context.Context, id string) (*model.Project, error)
	listFunc    func(ctx context.Context, filter model.ProjectFilter) ([]*model.Project, error)
	updateFunc  func(ctx context.Context, project *model.Project) error
	deleteFunc  func(ctx context.Context, id string) error
}

func (m *mockProjectRepo) Create(ctx context.Context, project *model.Project) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, project)
	}
	return nil
}

func (m *mockProjectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockProjectRepo) List(ctx context.Context, filter model.ProjectFilter) ([]*model.Project, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockProjectRepo) Update(ctx context.Context, project *model.Project) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, project)
	}
	return nil
}

func (m *mockProjectRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockDeliverableRepo struct {
	createFunc  func(ctx context.Context, deliverable *model.Deliverable) error
	getByIDFunc func(ctx context.Context, id string) (*model.Deliverable, error)
	listFunc    func(ctx context.Context, projectID string) ([]*model.Deliverable, error)
	updateFunc  func(ctx context.Context, deliverable *model.Deliverable) error
	deleteFunc  func(ctx context.Context, id string) error
}

func (m *mockDeliverableRepo) Create(ctx context.Context, deliverable *model.Deliverable) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, deliverable)
	}
	return nil
}

func (m *mockDeliverableRepo) GetByID(ctx context.Context, id string) (*model.Deliverable, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockDeliverableRepo) List(ctx context.Context, projectID string) ([]*model.Deliverable, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, projectID)
	}
	return nil, nil
}

func (m *mockDeliverableRepo) Update(ctx context.Context, deliverable *model.Deliverable) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, deliverable)
	}
	return nil
}

func (m *mockDeliverableRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockStorylineRepo struct {
	getByDeliverableFunc func(ctx context.Context, deliverableID string) (*model.Storyline, error)
	saveFunc             func(ctx context.Context, storyline *model.Storyline) error
	createFunc           func(ctx context.Context, storyline *model.Storyline) error
}

func (m *mockStorylineRepo) GetByDeliverable(ctx context.Context, deliverableID string) (*model.Storyline, error) {
	if m.getByDeliverableFunc != nil {
		return m.getByDeliverableFunc(ctx, deliverableID)
	}
	return nil, nil
}

func (m *mockStorylineRepo) Save(ctx context.Context, storyline *model.Storyline) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, storyline)
	}
	return nil
}

func (m *mockStorylineRepo) Create(ctx context.Context, storyline *model.Storyline) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, storyline)
	}
	return nil
}

type mockSeedRepo struct {
	countFunc func(ctx context.Context) (map[string]int, error)
	cleanFunc func(ctx context.Context) (map[string]int, error)
}

func (m *mockSeedRepo) Count(ctx context.Context) (map[string]int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return map[string]int{}, nil
}

func (m *mockSeedRepo) Clean(ctx context.Context) (map[string]int, error) {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx)
	}
	return map[string]int{}, nil
}

// ============================================================================
// Mock Agent
// ============================================================================

type mockSender struct {
	configured bool
	sendFunc   func(ctx context.Context, prompt string, promptContext map[string]interface{}) (*agent.Reply, error)
	calls      int
}

func (m *mockSender) Configured() bool { return m.configured }

func (m *mockSender) Send(ctx context.Context, prompt string, promptContext map[string]interface{}) (*agent.Reply, error) {
	m.calls++
	if m.sendFunc != nil {
		return m.sendFunc(ctx, prompt, promptContext)
	}
	return &agent.Reply{}, nil
}

// replyWith returns a Send func answering raw, with Data recovered the way the real client does
func replyWith(raw string) func(context.Context, string, map[string]interface{}) (*agent.Reply, error) {
	return func(context.Context, string, map[string]interface{}) (*agent.Reply, error) {
		return &agent.Reply{Raw: raw, Data: agent.ExtractJSON(raw)}, nil
	}
}

// ============================================================================
// Fixtures
// ============================================================================

const (
	testActorID       = "65a1f0c2e4b0a1b2c3d4e500"
	testOrgID         = "65a1f0c2e4b0a1b2c3d4e501"
	testUserID        = "65a1f0c2e4b0a1b2c3d4e502"
	testClientID      = "65a1f0c2e4b0a1b2c3d4e503"
	testContactID     = "65a1f0c2e4b0a1b2c3d4e504"
	testProjectID     = "65a1f0c2e4b0a1b2c3d4e505"
	testDeliverableID = "65a1f0c2e4b0a1b2c3d4e506"
	testMissingID     = "65a1f0c2e4b0a1b2c3d4e5ff"
)

func strPtr(s string) *string { return &s }
