package model

import (
	"strings"
	"time"

	"github.com/cigno/platform/internal/analysis"
)

// MaxPromptLength caps prompts forwarded to the custom agent
const MaxPromptLength = 20000

// InsightRequest is forwarded to the custom agent
type InsightRequest struct {
	Prompt  string                 `json:"prompt"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Validate checks if the insight request is valid
func (r *InsightRequest) Validate() []FieldError {
	var errors []FieldError
	if strings.TrimSpace(r.Prompt) == "" {
		errors = append(errors, FieldError{Field: "prompt", Message: "prompt is required"})
	}
	return checkLength(errors, "prompt", r.Prompt, MaxPromptLength)
}

// InsightResponse carries the agent reply and the object recovered from it.
// Insight is null when the reply held no JSON object.
type InsightResponse struct {
	Insight map[string]interface{} `json:"insight"`
	Raw     string                 `json:"raw"`
}

// AnalyzeProjectRequest carries a free-text description and optional
// caller-supplied fields that take precedence over anything derived
type AnalyzeProjectRequest struct {
	Text    string               `json:"text"`
	Project analysis.ProjectData `json:"project"`
}

// Validate checks if the analyze request is valid
func (r *AnalyzeProjectRequest) Validate() []FieldError {
	var errors []FieldError
	if strings.TrimSpace(r.Text) == "" && r.Project.IsEmpty() {
		errors = append(errors, FieldError{Field: "text", Message: "text or project is required"})
	}
	return checkLength(errors, "text", r.Text, MaxPromptLength)
}

// Analysis sources
const (
	AnalysisSourceAgent = "agent"
	AnalysisSourceLocal = "local"
)

// AnalyzeProjectResponse is always populated, even when the agent failed
type AnalyzeProjectResponse struct {
	AnalyzedProject *analysis.ProjectData `json:"analyzedProject"`
	Warnings        []string              `json:"warnings"`
	Source          string                `json:"source"`
}

// SeedRequest controls demo data seeding
type SeedRequest struct {
	Reset bool `json:"reset"`
}

// SeedResult reports what the seeder created
type SeedResult struct {
	Created    map[string]int      `json:"created"`
	IDs        map[string][]string `json:"ids"`
	DurationMS int64               `json:"duration_ms"`
	Batch      string              `json:"batch"`
}

// SeedCleanResult reports what the seeder removed
type SeedCleanResult struct {
	Removed map[string]int `json:"removed"`
}

// HealthCheck is the outcome of a single dependency probe
type HealthCheck struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// HealthStatus is returned by the health endpoint
type HealthStatus struct {
	Status                string                 `json:"status"`
	Environment           string                 `json:"environment"`
	Version               string                 `json:"version"`
	Uptime                string                 `json:"uptime"`
	Timestamp             time.Time              `json:"timestamp"`
	AgentConfigured       bool                   `json:"agent_configured"`
	RemoteAnalysisEnabled bool                   `json:"remote_analysis_enabled"`
	Checks                map[string]HealthCheck `json:"checks"`
}
