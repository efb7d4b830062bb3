package service

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cigno/platform/internal/model"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed seeddata/demo.yaml
var demoDataset []byte

// Seed dataset, as laid out in seeddata/demo.yaml
type (
	seedDataset struct {
		Organisation seedOrganisation `yaml:"organisation"`
		Users        []seedUser       `yaml:"users"`
		Clients      []seedClient     `yaml:"clients"`
	}

	seedOrganisation struct {
		Name     string       `yaml:"name"`
		Industry string       `yaml:"industry"`
		Billing  *seedBilling `yaml:"billing"`
	}

	seedBilling struct {
		Plan      string `yaml:"plan"`
		Email     string `yaml:"email"`
		Address   string `yaml:"address"`
		VATNumber string `yaml:"vat_number"`
	}

	seedUser struct {
		Name     string         `yaml:"name"`
		Email    string         `yaml:"email"`
		Role     model.UserRole `yaml:"role"`
		Password string         `yaml:"password"`
	}

	seedClient struct {
		Name     string        `yaml:"name"`
		Industry string        `yaml:"industry"`
		Location string        `yaml:"location"`
		Owner    string        `yaml:"owner"`
		Contacts []seedContact `yaml:"contacts"`
		Projects []seedProject `yaml:"projects"`
	}

	seedContact struct {
		Name  string `yaml:"name"`
		Email string `yaml:"email"`
		Phone string `yaml:"phone"`
		Role  string `yaml:"role"`
	}

	seedProject struct {
		Name          string              `yaml:"name"`
		StartDate     string              `yaml:"start_date"`
		EndDate       string              `yaml:"end_date"`
		Status        model.ProjectStatus `yaml:"status"`
		ClientOwner   string              `yaml:"client_owner"`
		InternalOwner string              `yaml:"internal_owner"`
		Description   string              `yaml:"description"`
		Deliverables  []seedDeliverable   `yaml:"deliverables"`
	}

	seedDeliverable struct {
		Name      string                  `yaml:"name"`
		DueDate   string                  `yaml:"due_date"`
		Status    model.DeliverableStatus `yaml:"status"`
		Brief     string                  `yaml:"brief"`
		Storyline *seedStoryline          `yaml:"storyline"`
	}

	seedStoryline struct {
		Title    string        `yaml:"title"`
		Sections []seedSection `yaml:"sections"`
	}

	seedSection struct {
		Title       string              `yaml:"title"`
		Description string              `yaml:"description"`
		Status      model.SectionStatus `yaml:"status"`
		KeyPoints   []string            `yaml:"key_points"`
	}
)

// Keys of SeedResult.Created and SeedResult.IDs
const (
	seedKeyOrganisations = "organisations"
	seedKeyUsers         = "users"
	seedKeyClients       = "clients"
	seedKeyContacts      = "contacts"
	seedKeyProjects      = "projects"
	seedKeyDeliverables  = "deliverables"
	seedKeyStorylines    = "storylines"
)

// SeedRepository finds and removes seeded records
type SeedRepository interface {
	Count(ctx context.Context) (map[string]int, error)
	Clean(ctx context.Context) (map[string]int, error)
}

// The seeder writes through these narrow views of the entity repositories
type (
	organisationCreator interface {
		Create(ctx context.Context, org *model.Organisation) error
	}
	userCreator interface {
		Create(ctx context.Context, user *model.User) error
	}
	clientCreator interface {
		Create(ctx context.Context, client *model.Client) error
	}
	contactCreator interface {
		Create(ctx context.Context, contact *model.Contact) error
	}
	projectCreator interface {
		Create(ctx context.Context, project *model.Project) error
	}
	deliverableCreator interface {
		Create(ctx context.Context, deliverable *model.Deliverable) error
	}
	storylineCreator interface {
		Create(ctx context.Context, storyline *model.Storyline) error
	}
)

// SeederServiceConfig holds the dependencies of the seeder
type SeederServiceConfig struct {
	Seeds         SeedRepository
	Organisations organisationCreator
	Users         userCreator
	Clients       clientCreator
	Contacts      contactCreator
	Projects      projectCreator
	Deliverables  deliverableCreator
	Storylines    storylineCreator
	Logger        *slog.Logger

	// Dataset overrides the embedded demo dataset
	Dataset []byte
}

// SeederService loads the demo dataset and removes it again
type SeederService struct {
	cfg     SeederServiceConfig
	dataset []byte
	logger  *slog.Logger
}

// NewSeederService creates a new seeder service
func NewSeederService(cfg SeederServiceConfig) *SeederService {
	s := &SeederService{cfg: cfg, dataset: cfg.Dataset, logger: cfg.Logger}
	if s.dataset == nil {
		s.dataset = demoDataset
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Seed creates the demo dataset. Existing seeded data is a conflict unless
// req.Reset is set, in which case it is removed first. A failed run removes
// whatever it managed to create.
func (s *SeederService) Seed(ctx context.Context, actorID string, req *model.SeedRequest) (*model.SeedResult, error) {
	start := time.Now()
	if req == nil {
		req = &model.SeedRequest{}
	}

	var data seedDataset
	if err := yaml.Unmarshal(s.dataset, &data); err != nil {
		return nil, fmt.Errorf("parse seed dataset: %w", err)
	}

	existing, err := s.cfg.Seeds.Count(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		if !req.Reset {
			return nil, ErrAlreadySeeded
		}
		if _, err := s.cfg.Seeds.Clean(ctx); err != nil {
			return nil, fmt.Errorf("reset seed data: %w", err)
		}
	}

	run := &seedRun{
		SeederService: s,
		actorID:       actorID,
		batch:         uuid.NewString(),
		result: &model.SeedResult{
			Created: make(map[string]int),
			IDs:     make(map[string][]string),
		},
		users:    make(map[string]string),
		contacts: make(map[string]string),
	}
	run.result.Batch = run.batch

	if err := run.load(ctx, &data); err != nil {
		if _, cleanErr := s.cfg.Seeds.Clean(ctx); cleanErr != nil {
			s.logger.ErrorContext(ctx, "failed to remove partial seed data",
				slog.String("batch", run.batch),
				slog.String("error", cleanErr.Error()),
			)
		}
		return nil, err
	}

	run.result.DurationMS = time.Since(start).Milliseconds()
	s.logger.InfoContext(ctx, "seeded demo data",
		slog.String("batch", run.batch),
		slog.Any("created", run.result.Created),
		slog.Int64("duration_ms", run.result.DurationMS),
	)
	return run.result, nil
}

// Clean removes every seeded record
func (s *SeederService) Clean(ctx context.Context) (*model.SeedCleanResult, error) {
	removed, err := s.cfg.Seeds.Clean(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "removed seed data", slog.Any("removed", removed))
	return &model.SeedCleanResult{Removed: removed}, nil
}

// seedRun is the state of one Seed call
type seedRun struct {
	*SeederService
	actorID string
	batch   string
	result  *model.SeedResult

	// email -> id
	users    map[string]string
	contacts map[string]string
}

func (b *seedBilling) toModel() *model.Billing {
	if b == nil {
		return nil
	}
	return &model.Billing{Plan: b.Plan, Email: b.Email, Address: b.Address, VATNumber: b.VATNumber}
}

func (r *seedRun) audit() model.Audit {
	return model.Audit{CreatedBy: r.actorID, Seeded: true, SeedBatch: r.batch}
}

func (r *seedRun) record(key, id string) {
	r.result.Created[key]++
	r.result.IDs[key] = append(r.result.IDs[key], id)
}

func (r *seedRun) load(ctx context.Context, data *seedDataset) error {
	orgID := model.NewID()

	var adminID string
	memberIDs := make([]string, 0, len(data.Users))
	for _, u := range data.Users {
		user := &model.User{
			ID:             model.NewID(),
			Name:           u.Name,
			Email:          model.NormalizeEmail(u.Email),
			OrganisationID: orgID,
			Role:           u.Role,
			Audit:          r.audit(),
		}
		if user.Role == "" {
			user.Role = model.UserRoleUser
		}
		if u.Password != "" {
			hash, err := hashPassword(u.Password)
			if err != nil {
				return err
			}
			user.Hash = &hash
		}
		if err := r.cfg.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", user.Email, err)
		}
		r.users[user.Email] = user.ID
		memberIDs = append(memberIDs, user.ID)
		if adminID == "" && user.IsAdmin() {
			adminID = user.ID
		}
		r.record(seedKeyUsers, user.ID)
	}

	org := &model.Organisation{
		ID:        orgID,
		Name:      data.Organisation.Name,
		Industry:  data.Organisation.Industry,
		AdminID:   adminID,
		MemberIDs: memberIDs,
		Billing:   data.Organisation.Billing.toModel(),
		IsActive:  true,
		Audit:     r.audit(),
	}
	if err := r.cfg.Organisations.Create(ctx, org); err != nil {
		return fmt.Errorf("seed organisation: %w", err)
	}
	r.record(seedKeyOrganisations, org.ID)

	for i := range data.Clients {
		if err := r.loadClient(ctx, orgID, &data.Clients[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *seedRun) loadClient(ctx context.Context, orgID string, c *seedClient) error {
	client := &model.Client{
		ID:             model.NewID(),
		Name:           c.Name,
		Industry:       c.Industry,
		Location:       c.Location,
		OwnerID:        r.users[model.NormalizeEmail(c.Owner)],
		OrganisationID: orgID,
		Audit:          r.audit(),
	}
	if err := r.cfg.Clients.Create(ctx, client); err != nil {
		return fmt.Errorf("seed client %s: %w", client.Name, err)
	}
	r.record(seedKeyClients, client.ID)

	for _, ct := range c.Contacts {
		contact := &model.Contact{
			ID:       model.NewID(),
			Name:     ct.Name,
			Email:    model.NormalizeEmail(ct.Email),
			Phone:    ct.Phone,
			Role:     ct.Role,
			ClientID: client.ID,
			Audit:    r.audit(),
		}
		if err := r.cfg.Contacts.Create(ctx, contact); err != nil {
			return fmt.Errorf("seed contact %s: %w", contact.Name, err)
		}
		if contact.Email != "" {
			r.contacts[contact.Email] = contact.ID
		}
		r.record(seedKeyContacts, contact.ID)
	}

	for i := range c.Projects {
		if err := r.loadProject(ctx, client, &c.Projects[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *seedRun) loadProject(ctx context.Context, client *model.Client, p *seedProject) error {
	project := &model.Project{
		ID:              model.NewID(),
		Name:            p.Name,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		ClientID:        client.ID,
		ClientOwnerID:   r.contacts[model.NormalizeEmail(p.ClientOwner)],
		InternalOwnerID: r.users[model.NormalizeEmail(p.InternalOwner)],
		OrganisationID:  client.OrganisationID,
		Description:     strings.TrimSpace(p.Description),
		Status:          p.Status,
		Audit:           r.audit(),
	}
	if project.Status == "" {
		project.Status = model.ProjectStatusPlanning
	}
	if err := r.cfg.Projects.Create(ctx, project); err != nil {
		return fmt.Errorf("seed project %s: %w", project.Name, err)
	}
	r.record(seedKeyProjects, project.ID)

	for i := range p.Deliverables {
		if err := r.loadDeliverable(ctx, project, &p.Deliverables[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *seedRun) loadDeliverable(ctx context.Context, project *model.Project, d *seedDeliverable) error {
	deliverable := &model.Deliverable{
		ID:        model.NewID(),
		Name:      d.Name,
		DueDate:   d.DueDate,
		Brief:     strings.TrimSpace(d.Brief),
		Status:    d.Status,
		ProjectID: project.ID,
		Audit:     r.audit(),
	}
	if deliverable.Status == "" {
		deliverable.Status = model.DeliverableStatusDraft
	}
	if err := r.cfg.Deliverables.Create(ctx, deliverable); err != nil {
		return fmt.Errorf("seed deliverable %s: %w", deliverable.Name, err)
	}
	r.record(seedKeyDeliverables, deliverable.ID)

	// Every seeded deliverable gets a storyline; those without one in the
	// dataset get the outline built from their brief
	storyline := &model.Storyline{
		ID:            model.NewID(),
		DeliverableID: deliverable.ID,
		Title:         deliverable.Name,
		Source:        model.StorylineSourceSeed,
		Audit:         r.audit(),
	}
	if d.Storyline != nil && len(d.Storyline.Sections) > 0 {
		if d.Storyline.Title != "" {
			storyline.Title = d.Storyline.Title
		}
		for _, sec := range d.Storyline.Sections {
			storyline.Sections = append(storyline.Sections, model.Section{
				Title:       sec.Title,
				Description: sec.Description,
				Status:      sec.Status,
				KeyPoints:   sec.KeyPoints,
			})
		}
	} else {
		storyline.Sections = FallbackOutline(deliverable.Brief)
	}
	model.NormalizeSections(storyline.Sections)

	if err := r.cfg.Storylines.Create(ctx, storyline); err != nil {
		return fmt.Errorf("seed storyline for %s: %w", deliverable.Name, err)
	}
	r.record(seedKeyStorylines, storyline.ID)
	return nil
}
