package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cigno/platform/internal/agent"
	"github.com/cigno/platform/internal/model"
)

// InsightService proxies free-form prompts to the custom agent. Unlike the
// analysis and storyline paths, failures are returned to the caller.
type InsightService struct {
	agent agent.Sender
}

// NewInsightService creates a new insight service
func NewInsightService(sender agent.Sender) *InsightService {
	return &InsightService{agent: sender}
}

// Generate sends the prompt and returns the raw reply with any JSON object found in it
func (s *InsightService) Generate(ctx context.Context, req *model.InsightRequest) (*model.InsightResponse, error) {
	if err := newValidationError(req.Validate()); err != nil {
		return nil, err
	}
	if s.agent == nil || !s.agent.Configured() {
		return nil, ErrAgentUnavailable
	}

	reply, err := s.agent.Send(ctx, req.Prompt, req.Context)
	if err != nil {
		if errors.Is(err, agent.ErrNotConfigured) {
			return nil, ErrAgentUnavailable
		}
		return nil, fmt.Errorf("%w: %v", ErrAgentFailed, err)
	}
	return &model.InsightResponse{Insight: reply.Data, Raw: reply.Raw}, nil
}
