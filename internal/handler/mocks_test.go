package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cigno/platform/internal/middleware"
	"github.com/cigno/platform/internal/model"
	"github.com/cigno/platform/pkg/jwt"
	"github.com/stretchr/testify/require"
)

const (
	testUserID        = "65a1f0c2e4b0a1b2c3d4e501"
	testProjectID     = "65a1f0c2e4b0a1b2c3d4e505"
	testDeliverableID = "65a1f0c2e4b0a1b2c3d4e506"
	otherDeliverable  = "65a1f0c2e4b0a1b2c3d4e507"
	testMissingID     = "65a1f0c2e4b0a1b2c3d4e5ff"
)

// ============================================================================
// In-memory repositories backing real services
// ============================================================================

type memDeliverables struct {
	mu          sync.Mutex
	items       map[string]*model.Deliverable
	updateCalls int
}

func newMemDeliverables(items ...*model.Deliverable) *memDeliverables {
	m := &memDeliverables{items: make(map[string]*model.Deliverable)}
	for _, d := range items {
		m.items[d.ID] = d
	}
	return m
}

func (m *memDeliverables) Create(ctx context.Context, d *model.Deliverable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[d.ID] = d
	return nil
}

func (m *memDeliverables) GetByID(ctx context.Context, id string) (*model.Deliverable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *memDeliverables) List(ctx context.Context, projectID string) ([]*model.Deliverable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Deliverable
	for _, d := range m.items {
		if projectID == "" || d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDeliverables) Update(ctx context.Context, d *model.Deliverable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	m.items[d.ID] = d
	return nil
}

func (m *memDeliverables) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

type memStorylines struct {
	mu        sync.Mutex
	items     map[string]*model.Storyline
	requested []string
}

func newMemStorylines(items ...*model.Storyline) *memStorylines {
	m := &memStorylines{items: make(map[string]*model.Storyline)}
	for _, s := range items {
		m.items[s.DeliverableID] = s
	}
	return m
}

func (m *memStorylines) GetByDeliverable(ctx context.Context, deliverableID string) (*model.Storyline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requested = append(m.requested, deliverableID)
	return m.items[deliverableID], nil
}

func (m *memStorylines) Save(ctx context.Context, s *model.Storyline) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[s.DeliverableID] = s
	return nil
}

type memProjects struct{}

func (memProjects) GetByID(ctx context.Context, id string) (*model.Project, error) {
	if id == testProjectID {
		return &model.Project{ID: id, Name: "Core banking roadmap"}, nil
	}
	return nil, nil
}

// ============================================================================
// Func-field service mocks
// ============================================================================

type mockOrganisationService struct {
	listFunc func(ctx context.Context, includeInactive bool) ([]*model.Organisation, error)
}

func (m *mockOrganisationService) Create(ctx context.Context, actorID string, req *model.CreateOrganisationRequest) (*model.Organisation, error) {
	return &model.Organisation{ID: testUserID, Name: req.Name}, nil
}

func (m *mockOrganisationService) Get(ctx context.Context, id string) (*model.Organisation, error) {
	return nil, nil
}

func (m *mockOrganisationService) List(ctx context.Context, includeInactive bool) ([]*model.Organisation, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, includeInactive)
	}
	return []*model.Organisation{}, nil
}

func (m *mockOrganisationService) Update(ctx context.Context, actorID string, req *model.UpdateOrganisationRequest) (*model.Organisation, error) {
	return nil, nil
}

func (m *mockOrganisationService) Delete(ctx context.Context, actorID, id string) error {
	return nil
}

type mockProjectService struct {
	createFunc func(ctx context.Context, actorID string, req *model.CreateProjectRequest) (*model.Project, error)
	listFunc   func(ctx context.Context, filter model.ProjectFilter) ([]*model.Project, error)
}

func (m *mockProjectService) Create(ctx context.Context, actorID string, req *model.CreateProjectRequest) (*model.Project, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, actorID, req)
	}
	return nil, nil
}

func (m *mockProjectService) Get(ctx context.Context, id string) (*model.ProjectView, error) {
	return nil, nil
}

func (m *mockProjectService) List(ctx context.Context, filter model.ProjectFilter) ([]*model.Project, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return []*model.Project{}, nil
}

func (m *mockProjectService) Update(ctx context.Context, actorID string, req *model.UpdateProjectRequest) (*model.Project, error) {
	return nil, nil
}

func (m *mockProjectService) Delete(ctx context.Context, id string) error {
	return nil
}

type mockAnalyzer struct {
	analyzeFunc func(ctx context.Context, req *model.AnalyzeProjectRequest) (*model.AnalyzeProjectResponse, error)
}

func (m *mockAnalyzer) Analyze(ctx context.Context, req *model.AnalyzeProjectRequest) (*model.AnalyzeProjectResponse, error) {
	return m.analyzeFunc(ctx, req)
}

type mockInsights struct {
	generateFunc func(ctx context.Context, req *model.InsightRequest) (*model.InsightResponse, error)
}

func (m *mockInsights) Generate(ctx context.Context, req *model.InsightRequest) (*model.InsightResponse, error) {
	return m.generateFunc(ctx, req)
}

type mockSeeder struct {
	seedFunc  func(ctx context.Context, actorID string, req *model.SeedRequest) (*model.SeedResult, error)
	cleanFunc func(ctx context.Context) (*model.SeedCleanResult, error)
}

func (m *mockSeeder) Seed(ctx context.Context, actorID string, req *model.SeedRequest) (*model.SeedResult, error) {
	return m.seedFunc(ctx, actorID, req)
}

func (m *mockSeeder) Clean(ctx context.Context) (*model.SeedCleanResult, error) {
	return m.cleanFunc(ctx)
}

type mockHealth struct {
	status string
}

func (m *mockHealth) Check(ctx context.Context) *model.HealthStatus {
	return &model.HealthStatus{Status: m.status, Checks: map[string]model.HealthCheck{}}
}

type mockAuthService struct {
	loginFunc func(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error)
}

func (m *mockAuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	return m.loginFunc(ctx, req)
}

// ============================================================================
// Test Helpers
// ============================================================================

// envelope is the decoded response body of either shape
type envelope struct {
	Success bool               `json:"success"`
	Data    json.RawMessage    `json:"data"`
	Error   string             `json:"error"`
	Code    int                `json:"code"`
	Errors  []model.FieldError `json:"errors"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), "body: %s", rr.Body.String())
	return env
}

// serve routes a single pattern through a mux with an authenticated user
func serve(pattern string, h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.Handle(pattern, middleware.DevAuth(jwt.Claims{UserID: testUserID, Role: jwt.RoleAdmin})(h))

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

// serveAnonymous is serve without the development user
func serveAnonymous(pattern string, h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}
