// Package analysis extracts structured project fields from a free-text
// project description. Everything here is deterministic and free of I/O, so
// it doubles as the fallback when the remote agent is unavailable.
package analysis

import (
	"sort"
	"strings"
)

// Budget is a normalised currency amount
type Budget struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// ProjectData is the structured view of a project description
type ProjectData struct {
	Name         string   `json:"name,omitempty"`
	Client       string   `json:"client,omitempty"`
	Industry     string   `json:"industry,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	Budget       *Budget  `json:"budget,omitempty"`
	Objectives   []string `json:"objectives,omitempty"`
	Deliverables []string `json:"deliverables,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
}

// IsEmpty reports whether no field is set
func (p ProjectData) IsEmpty() bool {
	return p.Name == "" && p.Client == "" && p.Industry == "" &&
		p.StartDate == "" && p.EndDate == "" && p.Budget == nil &&
		len(p.Objectives) == 0 && len(p.Deliverables) == 0 &&
		p.Summary == "" && len(p.Keywords) == 0
}

// Merge returns over with every empty field filled from under
func Merge(over, under ProjectData) ProjectData {
	out := over
	if strings.TrimSpace(out.Name) == "" {
		out.Name = under.Name
	}
	if strings.TrimSpace(out.Client) == "" {
		out.Client = under.Client
	}
	if strings.TrimSpace(out.Industry) == "" {
		out.Industry = under.Industry
	}
	if out.StartDate == "" {
		out.StartDate = under.StartDate
	}
	if out.EndDate == "" {
		out.EndDate = under.EndDate
	}
	if out.Budget == nil || out.Budget.Amount == 0 {
		out.Budget = under.Budget
	}
	if len(out.Objectives) == 0 {
		out.Objectives = under.Objectives
	}
	if len(out.Deliverables) == 0 {
		out.Deliverables = under.Deliverables
	}
	if strings.TrimSpace(out.Summary) == "" {
		out.Summary = under.Summary
	}
	if len(out.Keywords) == 0 {
		out.Keywords = under.Keywords
	}
	return out
}

// Parse derives project fields from text. Non-empty fields of partial always
// win over anything derived.
func Parse(text string, partial ProjectData) ProjectData {
	doc := newDocument(text)

	derived := ProjectData{
		Name:         doc.name(),
		Client:       doc.client(),
		Industry:     doc.industry(),
		Budget:       doc.budget(),
		Objectives:   doc.bullets(objectiveHeadings),
		Deliverables: doc.bullets(deliverableHeadings),
		Summary:      doc.summary(),
	}
	derived.StartDate, derived.EndDate = doc.dates()

	out := Merge(partial, derived)
	if len(partial.Keywords) == 0 {
		out.Keywords = keywords(text, out.Industry)
	}
	return out
}

func keywords(text, industry string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]struct{})
	if industry != "" {
		seen[strings.ToLower(industry)] = struct{}{}
	}
	for _, entry := range industryTable {
		for _, term := range entry.terms {
			if containsTerm(lower, term) {
				seen[entry.name] = struct{}{}
			}
		}
	}
	for _, term := range serviceTerms {
		if containsTerm(lower, term) {
			seen[term] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
