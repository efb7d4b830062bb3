package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cigno/platform/internal/agent"
	"github.com/cigno/platform/internal/analysis"
	"github.com/cigno/platform/internal/model"
	"github.com/tidwall/gjson"
)

// Analysis warnings
const (
	warnRemoteDisabled = "remote analysis disabled; used local analysis"
	warnRemoteNoJSON   = "remote analysis returned no structured data; used local analysis"
)

// AnalysisObserver is told the source of every analysis result
type AnalysisObserver func(source string)

// AnalysisService turns free-text project descriptions into structured data.
// The custom agent is tried first when enabled; any failure degrades to the
// local parser and is reported as a warning.
type AnalysisService struct {
	agent         agent.Sender
	remoteEnabled bool
	observer      AnalysisObserver
	logger        *slog.Logger
}

// AnalysisServiceConfig holds the dependencies of the analysis service
type AnalysisServiceConfig struct {
	Agent         agent.Sender
	RemoteEnabled bool
	Observer      AnalysisObserver
	Logger        *slog.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(cfg AnalysisServiceConfig) *AnalysisService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		agent:         cfg.Agent,
		remoteEnabled: cfg.RemoteEnabled,
		observer:      cfg.Observer,
		logger:        logger,
	}
}

// Analyze never fails once the request is valid: the response always holds
// a project and a (possibly empty) warning list.
func (s *AnalysisService) Analyze(ctx context.Context, req *model.AnalyzeProjectRequest) (*model.AnalyzeProjectResponse, error) {
	if err := newValidationError(req.Validate()); err != nil {
		return nil, err
	}

	warnings := []string{}
	source := model.AnalysisSourceLocal
	base := req.Project

	switch {
	case !s.remoteEnabled || s.agent == nil || !s.agent.Configured():
		warnings = append(warnings, warnRemoteDisabled)
	default:
		remote, err := s.remote(ctx, req)
		switch {
		case err != nil:
			s.logger.WarnContext(ctx, "remote project analysis failed", slog.String("error", err.Error()))
			warnings = append(warnings, fmt.Sprintf("remote analysis failed: %v; used local analysis", err))
		case remote == nil:
			warnings = append(warnings, warnRemoteNoJSON)
		default:
			base = analysis.Merge(req.Project, *remote)
			source = model.AnalysisSourceAgent
		}
	}

	result := analysis.Parse(req.Text, base)
	if s.observer != nil {
		s.observer(source)
	}
	return &model.AnalyzeProjectResponse{
		AnalyzedProject: &result,
		Warnings:        warnings,
		Source:          source,
	}, nil
}

func (s *AnalysisService) remote(ctx context.Context, req *model.AnalyzeProjectRequest) (*analysis.ProjectData, error) {
	prompt := "Extract the project name, client, industry, start and end dates (YYYY-MM-DD), " +
		"budget, objectives, deliverables, summary and keywords from the following project " +
		"description. Reply with a single JSON object.\n\n" + req.Text

	reply, err := s.agent.Send(ctx, prompt, map[string]interface{}{
		"task":    "project_analysis",
		"project": req.Project,
	})
	if err != nil {
		return nil, err
	}
	if reply.Data == nil {
		return nil, nil
	}
	data := projectFromAgent(reply.Data)
	if data.IsEmpty() {
		return nil, nil
	}
	return &data, nil
}

// projectFromAgent maps an agent reply onto ProjectData. Both camelCase and
// snake_case keys are accepted, and the object may be nested under
// "project" or "analyzedProject".
func projectFromAgent(data map[string]interface{}) analysis.ProjectData {
	raw, err := json.Marshal(data)
	if err != nil {
		return analysis.ProjectData{}
	}
	root := gjson.ParseBytes(raw)
	for _, key := range []string{"analyzedProject", "analyzed_project", "project"} {
		if nested := root.Get(key); nested.IsObject() {
			root = nested
			break
		}
	}

	out := analysis.ProjectData{
		Name:         firstString(root, "name", "projectName", "project_name", "title"),
		Client:       firstString(root, "client", "clientName", "client_name"),
		Industry:     strings.ToLower(firstString(root, "industry", "sector")),
		StartDate:    agentDate(firstString(root, "startDate", "start_date", "start")),
		EndDate:      agentDate(firstString(root, "endDate", "end_date", "end", "deadline")),
		Objectives:   stringList(root, "objectives", "goals"),
		Deliverables: stringList(root, "deliverables"),
		Summary:      firstString(root, "summary", "description"),
		Keywords:     stringList(root, "keywords", "tags"),
	}

	budget := root.Get("budget")
	switch {
	case budget.IsObject():
		amount := budget.Get("amount").Float()
		if amount > 0 {
			out.Budget = &analysis.Budget{
				Currency: strings.ToUpper(budget.Get("currency").String()),
				Amount:   amount,
			}
		}
	case budget.Type == gjson.Number && budget.Float() > 0:
		out.Budget = &analysis.Budget{Amount: budget.Float()}
	case budget.Type == gjson.String:
		out.Budget = analysis.ParseBudget(budget.String())
	}
	return out
}

func firstString(root gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := root.Get(key); v.Type == gjson.String {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

func stringList(root gjson.Result, keys ...string) []string {
	for _, key := range keys {
		v := root.Get(key)
		if !v.IsArray() {
			continue
		}
		var out []string
		for _, item := range v.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// agentDate keeps only dates that parse, normalised to YYYY-MM-DD
func agentDate(s string) string {
	if t, ok := model.ParseDate(s); ok {
		return t.Format(model.DateLayout)
	}
	return ""
}
