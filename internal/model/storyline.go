package model

import (
	"encoding/json"
	"strings"
)

// SectionStatus is the writing stage of a storyline section
type SectionStatus string

const (
	SectionStatusDraft      SectionStatus = "draft"
	SectionStatusInProgress SectionStatus = "in_progress"
	SectionStatusComplete   SectionStatus = "complete"
)

// StorylineSource records how a storyline was produced
type StorylineSource string

const (
	StorylineSourceManual   StorylineSource = "manual"
	StorylineSourceAgent    StorylineSource = "agent"
	StorylineSourceFallback StorylineSource = "fallback"
	StorylineSourceSeed     StorylineSource = "seed"
)

// MaxSections caps the number of sections in one storyline
const MaxSections = 50

// Section is one step of a storyline outline
type Section struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      SectionStatus `json:"status"`
	KeyPoints   []string      `json:"key_points"`
}

// Storyline is the ordered outline of a deliverable
type Storyline struct {
	ID            string          `json:"id"`
	DeliverableID string          `json:"deliverable_id"`
	Title         string          `json:"title,omitempty"`
	Sections      []Section       `json:"sections"`
	Source        StorylineSource `json:"source"`
	Audit
}

// NormalizeSections fills missing section ids and statuses in place
func NormalizeSections(sections []Section) {
	for i := range sections {
		if sections[i].ID == "" {
			sections[i].ID = NewID()
		}
		if sections[i].Status == "" {
			sections[i].Status = SectionStatusDraft
		}
		if sections[i].KeyPoints == nil {
			sections[i].KeyPoints = []string{}
		}
		sections[i].Title = strings.TrimSpace(sections[i].Title)
	}
}

// SaveStorylineRequest replaces the sections of a deliverable's storyline
type SaveStorylineRequest struct {
	DeliverableID json.RawMessage `json:"deliverable_id"`
	Title         string          `json:"title,omitempty"`
	Sections      []Section       `json:"sections"`
}

// Validate checks the request and returns the parsed deliverable identifier
func (r *SaveStorylineRequest) Validate() (string, []FieldError) {
	var errors []FieldError
	id, fe := ParseRawID("deliverable_id", r.DeliverableID)
	if fe != nil {
		errors = append(errors, *fe)
	}
	errors = checkLength(errors, "title", r.Title, MaxNameLength)
	if len(r.Sections) > MaxSections {
		errors = append(errors, FieldError{Field: "sections", Message: "sections must contain 50 entries or less"})
	}
	for _, s := range r.Sections {
		if strings.TrimSpace(s.Title) == "" {
			errors = append(errors, FieldError{Field: "sections.title", Message: "every section needs a title"})
			break
		}
	}
	for _, s := range r.Sections {
		switch s.Status {
		case "", SectionStatusDraft, SectionStatusInProgress, SectionStatusComplete:
			continue
		}
		errors = append(errors, FieldError{Field: "sections.status", Message: "status must be one of draft, in_progress, complete"})
		break
	}
	return id, errors
}

// GenerateStorylineRequest optionally steers storyline generation
type GenerateStorylineRequest struct {
	Instructions string `json:"instructions,omitempty"`
}

// StorylineResult is a storyline together with generation warnings
type StorylineResult struct {
	Storyline *Storyline `json:"storyline"`
	Warnings  []string   `json:"warnings"`
}
