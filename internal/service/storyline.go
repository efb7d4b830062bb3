package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/cigno/platform/internal/agent"
	"github.com/cigno/platform/internal/model"
	"github.com/tidwall/gjson"
)

// Storyline generation warnings
const (
	warnAgentNotConfigured = "custom agent not configured; used fallback outline"
	warnAgentNoSections    = "custom agent returned no usable sections; used fallback outline"
)

const maxSectionTitleRunes = 80

// defaultOutline is used when a deliverable has no brief to build from
var defaultOutline = []model.Section{
	{Title: "Executive summary", Description: "The answer first: the key message and what we recommend."},
	{Title: "Context and objectives", Description: "Why the client asked, what success looks like and the scope we agreed."},
	{Title: "Current state assessment", Description: "What we found: facts, data and the issues that matter."},
	{Title: "Recommendations", Description: "The options considered and the course of action we propose."},
	{Title: "Roadmap and next steps", Description: "Sequencing, owners, quick wins and the decisions needed now."},
}

// StorylineRepository defines the interface for storyline storage
type StorylineRepository interface {
	GetByDeliverable(ctx context.Context, deliverableID string) (*model.Storyline, error)
	Save(ctx context.Context, storyline *model.Storyline) error
}

// DeliverableGetter looks up deliverables by id
type DeliverableGetter interface {
	GetByID(ctx context.Context, id string) (*model.Deliverable, error)
}

// StorylineService handles storyline reads, edits and generation
type StorylineService struct {
	repo         StorylineRepository
	deliverables DeliverableGetter
	projects     ProjectGetter
	agent        agent.Sender
	logger       *slog.Logger
}

// StorylineServiceConfig holds the dependencies of the storyline service
type StorylineServiceConfig struct {
	Repo         StorylineRepository
	Deliverables DeliverableGetter
	Projects     ProjectGetter
	Agent        agent.Sender
	Logger       *slog.Logger
}

// NewStorylineService creates a new storyline service
func NewStorylineService(cfg StorylineServiceConfig) *StorylineService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &StorylineService{
		repo:         cfg.Repo,
		deliverables: cfg.Deliverables,
		projects:     cfg.Projects,
		agent:        cfg.Agent,
		logger:       logger,
	}
}

// GetByDeliverable returns the storyline of a deliverable. A deliverable
// without one yields an empty storyline with no id.
func (s *StorylineService) GetByDeliverable(ctx context.Context, deliverableID string) (*model.Storyline, error) {
	deliverable, err := s.deliverable(ctx, "deliverableId", deliverableID)
	if err != nil {
		return nil, err
	}

	storyline, err := s.repo.GetByDeliverable(ctx, deliverable.ID)
	if err != nil {
		return nil, err
	}
	if storyline == nil {
		return &model.Storyline{DeliverableID: deliverable.ID, Title: deliverable.Name, Sections: []model.Section{}}, nil
	}
	return storyline, nil
}

// Deliverable returns the deliverable a storyline belongs to
func (s *StorylineService) Deliverable(ctx context.Context, deliverableID string) (*model.Deliverable, error) {
	return s.deliverable(ctx, "id", deliverableID)
}

// Save replaces the sections of a deliverable's storyline
func (s *StorylineService) Save(ctx context.Context, actorID string, req *model.SaveStorylineRequest) (*model.Storyline, error) {
	deliverableID, fields := req.Validate()
	if err := newValidationError(fields); err != nil {
		return nil, err
	}
	deliverable, err := s.deliverable(ctx, "deliverable_id", deliverableID)
	if err != nil {
		return nil, err
	}

	sections := req.Sections
	if sections == nil {
		sections = []model.Section{}
	}
	model.NormalizeSections(sections)

	storyline := &model.Storyline{
		DeliverableID: deliverable.ID,
		Title:         strings.TrimSpace(req.Title),
		Sections:      sections,
		Source:        model.StorylineSourceManual,
	}
	if storyline.Title == "" {
		storyline.Title = deliverable.Name
	}
	storyline.CreatedBy = actorID
	storyline.UpdatedBy = actorID

	if err := s.repo.Save(ctx, storyline); err != nil {
		return nil, fmt.Errorf("save storyline: %w", err)
	}
	return storyline, nil
}

// Generate asks the custom agent for an outline and stores it. When the
// agent is unavailable or its reply holds no sections, an outline built from
// the deliverable brief is stored instead and the reason is returned as a warning.
func (s *StorylineService) Generate(ctx context.Context, actorID, deliverableID string, req *model.GenerateStorylineRequest) (*model.StorylineResult, error) {
	deliverable, err := s.deliverable(ctx, "id", deliverableID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		req = &model.GenerateStorylineRequest{}
	}

	warnings := []string{}
	var sections []model.Section
	source := model.StorylineSourceAgent

	if s.agent == nil || !s.agent.Configured() {
		warnings = append(warnings, warnAgentNotConfigured)
	} else {
		sections, err = s.remoteSections(ctx, deliverable, req.Instructions)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "storyline generation failed",
				slog.String("deliverable_id", deliverable.ID),
				slog.String("error", err.Error()),
			)
			warnings = append(warnings, fmt.Sprintf("storyline generation failed: %v; used fallback outline", err))
		case len(sections) == 0:
			warnings = append(warnings, warnAgentNoSections)
		}
	}

	if len(sections) == 0 {
		sections = FallbackOutline(deliverable.Brief)
		source = model.StorylineSourceFallback
	}
	if len(sections) > model.MaxSections {
		sections = sections[:model.MaxSections]
	}
	model.NormalizeSections(sections)

	storyline := &model.Storyline{
		DeliverableID: deliverable.ID,
		Title:         deliverable.Name,
		Sections:      sections,
		Source:        source,
	}
	storyline.CreatedBy = actorID
	storyline.UpdatedBy = actorID

	if err := s.repo.Save(ctx, storyline); err != nil {
		return nil, fmt.Errorf("save storyline: %w", err)
	}
	return &model.StorylineResult{Storyline: storyline, Warnings: warnings}, nil
}

func (s *StorylineService) deliverable(ctx context.Context, field, id string) (*model.Deliverable, error) {
	id, err := checkPathID(field, id)
	if err != nil {
		return nil, err
	}
	deliverable, err := s.deliverables.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if deliverable == nil {
		return nil, ErrDeliverableNotFound
	}
	return deliverable, nil
}

func (s *StorylineService) remoteSections(ctx context.Context, deliverable *model.Deliverable, instructions string) ([]model.Section, error) {
	promptContext := map[string]interface{}{
		"task":        "storyline",
		"deliverable": deliverable,
	}
	if s.projects != nil && deliverable.ProjectID != "" {
		if project, err := s.projects.GetByID(ctx, deliverable.ProjectID); err == nil && project != nil {
			promptContext["project"] = project
		}
	}

	var prompt strings.Builder
	prompt.WriteString("Draft a storyline for the consulting deliverable \"")
	prompt.WriteString(deliverable.Name)
	prompt.WriteString("\". Reply with JSON of the form {\"sections\":[{\"title\",\"description\",\"key_points\":[]}]}.")
	if deliverable.Brief != "" {
		prompt.WriteString("\n\nBrief:\n")
		prompt.WriteString(deliverable.Brief)
	}
	if instructions = strings.TrimSpace(instructions); instructions != "" {
		prompt.WriteString("\n\nAdditional instructions:\n")
		prompt.WriteString(instructions)
	}

	reply, err := s.agent.Send(ctx, prompt.String(), promptContext)
	if err != nil {
		return nil, err
	}
	return sectionsFromAgent(reply.Data), nil
}

// sectionsFromAgent reads {"sections":[...]} or {"storyline":{"sections":[...]}}
func sectionsFromAgent(data map[string]interface{}) []model.Section {
	if data == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	root := gjson.ParseBytes(raw)
	list := root.Get("sections")
	if !list.IsArray() {
		list = root.Get("storyline.sections")
	}
	if !list.IsArray() {
		return nil
	}

	var sections []model.Section
	for _, item := range list.Array() {
		var section model.Section
		if item.Type == gjson.String {
			section.Title = strings.TrimSpace(item.String())
		} else {
			section.Title = strings.TrimSpace(item.Get("title").String())
			section.Description = strings.TrimSpace(item.Get("description").String())
			points := item.Get("key_points")
			if !points.IsArray() {
				points = item.Get("keyPoints")
			}
			for _, p := range points.Array() {
				if text := strings.TrimSpace(p.String()); text != "" {
					section.KeyPoints = append(section.KeyPoints, text)
				}
			}
			switch status := model.SectionStatus(item.Get("status").String()); status {
			case model.SectionStatusDraft, model.SectionStatusInProgress, model.SectionStatusComplete:
				section.Status = status
			}
		}
		if section.Title == "" {
			continue
		}
		section.Title = truncateRunes(section.Title, model.MaxNameLength)
		sections = append(sections, section)
	}
	return sections
}

// FallbackOutline builds one section per brief paragraph or bullet, or the
// default consulting outline when the brief is empty
func FallbackOutline(brief string) []model.Section {
	var sections []model.Section
	for _, block := range briefBlocks(brief) {
		sections = append(sections, model.Section{
			Title:       sectionTitle(block),
			Description: block,
		})
	}
	if len(sections) == 0 {
		sections = make([]model.Section, len(defaultOutline))
		copy(sections, defaultOutline)
	}
	return sections
}

// briefBlocks splits a brief into bullet items and blank-line separated paragraphs
func briefBlocks(brief string) []string {
	var blocks []string
	var paragraph []string
	flush := func() {
		if len(paragraph) > 0 {
			blocks = append(blocks, strings.Join(paragraph, " "))
			paragraph = nil
		}
	}

	for _, line := range strings.Split(brief, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		if item, ok := bulletText(line); ok {
			flush()
			if item != "" {
				blocks = append(blocks, item)
			}
			continue
		}
		paragraph = append(paragraph, line)
	}
	flush()
	return blocks
}

func bulletText(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}
	// "1. item" or "2) item"
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i+1 < len(line) && (line[i] == '.' || line[i] == ')') && line[i+1] == ' ' {
		return strings.TrimSpace(line[i+2:]), true
	}
	return "", false
}

// sectionTitle is the first sentence of a block, capped in length
func sectionTitle(block string) string {
	title := block
	if idx := strings.IndexAny(title, ".!?:"); idx > 0 {
		title = title[:idx]
	}
	return truncateRunes(strings.TrimSpace(title), maxSectionTitleRunes)
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}
