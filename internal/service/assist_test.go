package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/cigno/platform/internal/agent"
	"github.com/cigno/platform/internal/analysis"
	"github.com/cigno/platform/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectBrief = `Project: Retail lending transformation
Client: Northbridge Bank
Start: 2026-02-02
End: 2026-09-30
Budget: £1.2m

Objectives
- Cut time to offer
- Reduce rework`

// ============================================================================
// Analysis Service
// ============================================================================

func TestAnalyze_RemoteDisabledUsesLocalParse(t *testing.T) {
	t.Parallel()

	sender := &mockSender{configured: true}
	var observed []string
	svc := NewAnalysisService(AnalysisServiceConfig{
		Agent:    sender,
		Observer: func(source string) { observed = append(observed, source) },
	})

	resp, err := svc.Analyze(context.Background(), &model.AnalyzeProjectRequest{Text: projectBrief})

	require.NoError(t, err)
	require.NotNil(t, resp.AnalyzedProject)
	assert.Equal(t, "Retail lending transformation", resp.AnalyzedProject.Name)
	assert.Equal(t, "Northbridge Bank", resp.AnalyzedProject.Client)
	assert.Equal(t, []string{warnRemoteDisabled}, resp.Warnings)
	assert.Equal(t, model.AnalysisSourceLocal, resp.Source)
	assert.Equal(t, 0, sender.calls)
	assert.Equal(t, []string{model.AnalysisSourceLocal}, observed)
}

func TestAnalyze_RemoteFailureFallsBackWithWarning(t *testing.T) {
	t.Parallel()

	sender := &mockSender{
		configured: true,
		sendFunc: func(ctx context.Context, prompt string, _ map[string]interface{}) (*agent.Reply, error) {
			return nil, &agent.StatusError{StatusCode: http.StatusBadGateway, Body: "upstream down"}
		},
	}
	svc := NewAnalysisService(AnalysisServiceConfig{Agent: sender, RemoteEnabled: true})

	resp, err := svc.Analyze(context.Background(), &model.AnalyzeProjectRequest{Text: projectBrief})

	require.NoError(t, err)
	require.NotNil(t, resp.AnalyzedProject)
	assert.Equal(t, "Retail lending transformation", resp.AnalyzedProject.Name)
	require.Len(t, resp.Warnings, 1)
	assert.True(t, strings.HasPrefix(resp.Warnings[0], "remote analysis failed: "))
	assert.Contains(t, resp.Warnings[0], "502")
	assert.Contains(t, resp.Warnings[0], "upstream down")
	assert.Equal(t, model.AnalysisSourceLocal, resp.Source)
}

func TestAnalyze_RemoteWithoutJSON(t *testing.T) {
	t.Parallel()

	sender := &mockSender{configured: true, sendFunc: replyWith("I could not find a project in that text.")}
	svc := NewAnalysisService(AnalysisServiceConfig{Agent: sender, RemoteEnabled: true})

	resp, err := svc.Analyze(context.Background(), &model.AnalyzeProjectRequest{Text: "something vague"})

	require.NoError(t, err)
	assert.NotNil(t, resp.AnalyzedProject)
	assert.Equal(t, []string{warnRemoteNoJSON}, resp.Warnings)
}

func TestAnalyze_RemoteDataMergedUnderCaller(t *testing.T) {
	t.Parallel()

	sender := &mockSender{configured: true, sendFunc: replyWith(`Sure! {"analyzedProject":{
		"projectName": "Agent name",
		"client_name": "Agent Client",
		"industry": "Banking",
		"startDate": "2026-03-01",
		"budget": {"currency": "gbp", "amount": 1200000},
		"objectives": ["Cut time to offer"]
	}}`)}
	svc := NewAnalysisService(AnalysisServiceConfig{Agent: sender, RemoteEnabled: true})

	resp, err := svc.Analyze(context.Background(), &model.AnalyzeProjectRequest{
		Text:    "A lending engagement.",
		Project: analysis.ProjectData{Name: "Caller name"},
	})

	require.NoError(t, err)
	p := resp.AnalyzedProject
	assert.Equal(t, "Caller name", p.Name)
	assert.Equal(t, "Agent Client", p.Client)
	assert.Equal(t, "banking", p.Industry)
	assert.Equal(t, "2026-03-01", p.StartDate)
	require.NotNil(t, p.Budget)
	assert.Equal(t, "GBP", p.Budget.Currency)
	assert.InDelta(t, 1200000, p.Budget.Amount, 0.01)
	assert.Empty(t, resp.Warnings)
	assert.NotNil(t, resp.Warnings)
	assert.Equal(t, model.AnalysisSourceAgent, resp.Source)
}

func TestAnalyze_EmptyRequest(t *testing.T) {
	t.Parallel()

	svc := NewAnalysisService(AnalysisServiceConfig{})
	_, err := svc.Analyze(context.Background(), &model.AnalyzeProjectRequest{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProjectFromAgent_BudgetForms(t *testing.T) {
	t.Parallel()

	number := projectFromAgent(map[string]interface{}{"budget": 250000.0})
	require.NotNil(t, number.Budget)
	assert.InDelta(t, 250000, number.Budget.Amount, 0.01)

	text := projectFromAgent(map[string]interface{}{"budget": "EUR 250,000"})
	require.NotNil(t, text.Budget)
	assert.Equal(t, "EUR", text.Budget.Currency)

	bad := projectFromAgent(map[string]interface{}{"budget": true, "startDate": "soon"})
	assert.Nil(t, bad.Budget)
	assert.Empty(t, bad.StartDate)
}

// ============================================================================
// Insight Service
// ============================================================================

func TestInsight_Success(t *testing.T) {
	t.Parallel()

	var gotContext map[string]interface{}
	sender := &mockSender{
		configured: true,
		sendFunc: func(ctx context.Context, prompt string, promptContext map[string]interface{}) (*agent.Reply, error) {
			gotContext = promptContext
			raw := `{"insight":"rates rising"}`
			return &agent.Reply{Raw: raw, Data: agent.ExtractJSON(raw)}, nil
		},
	}
	svc := NewInsightService(sender)

	resp, err := svc.Generate(context.Background(), &model.InsightRequest{
		Prompt:  "What changed?",
		Context: map[string]interface{}{"client": "Northbridge"},
	})

	require.NoError(t, err)
	assert.Equal(t, "rates rising", resp.Insight["insight"])
	assert.Equal(t, `{"insight":"rates rising"}`, resp.Raw)
	assert.Equal(t, "Northbridge", gotContext["client"])
}

func TestInsight_FailureIsSurfaced(t *testing.T) {
	t.Parallel()

	sender := &mockSender{
		configured: true,
		sendFunc: func(context.Context, string, map[string]interface{}) (*agent.Reply, error) {
			return nil, &agent.StatusError{StatusCode: http.StatusTooManyRequests, Body: "slow down"}
		},
	}

	_, err := NewInsightService(sender).Generate(context.Background(), &model.InsightRequest{Prompt: "x"})
	assert.ErrorIs(t, err, ErrAgentFailed)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "slow down")
}

func TestInsight_NotConfigured(t *testing.T) {
	t.Parallel()

	_, err := NewInsightService(&mockSender{}).Generate(context.Background(), &model.InsightRequest{Prompt: "x"})
	assert.ErrorIs(t, err, ErrAgentUnavailable)

	_, err = NewInsightService(nil).Generate(context.Background(), &model.InsightRequest{Prompt: "x"})
	assert.ErrorIs(t, err, ErrAgentUnavailable)
}

// ============================================================================
// Storyline Service
// ============================================================================

func deliverableRepo(brief string) *mockDeliverableRepo {
	return &mockDeliverableRepo{
		getByIDFunc: func(ctx context.Context, id string) (*model.Deliverable, error) {
			if id != testDeliverableID {
				return nil, nil
			}
			return &model.Deliverable{ID: id, Name: "Current state assessment", Brief: brief, ProjectID: testProjectID}, nil
		},
	}
}

func TestStoryline_GetByDeliverableFiltersByID(t *testing.T) {
	t.Parallel()

	var asked string
	repo := &mockStorylineRepo{
		getByDeliverableFunc: func(ctx context.Context, deliverableID string) (*model.Storyline, error) {
			asked = deliverableID
			return &model.Storyline{ID: "s1", DeliverableID: deliverableID, Sections: []model.Section{{Title: "One"}}}, nil
		},
	}
	svc := NewStorylineService(StorylineServiceConfig{Repo: repo, Deliverables: deliverableRepo("")})

	storyline, err := svc.GetByDeliverable(context.Background(), testDeliverableID)
	require.NoError(t, err)
	assert.Equal(t, testDeliverableID, asked)
	assert.Equal(t, "One", storyline.Sections[0].Title)
}

func TestStoryline_GetWithoutStoredStoryline(t *testing.T) {
	t.Parallel()

	svc := NewStorylineService(StorylineServiceConfig{Repo: &mockStorylineRepo{}, Deliverables: deliverableRepo("")})

	storyline, err := svc.GetByDeliverable(context.Background(), testDeliverableID)
	require.NoError(t, err)
	assert.Empty(t, storyline.ID)
	assert.Equal(t, testDeliverableID, storyline.DeliverableID)
	assert.NotNil(t, storyline.Sections)
	assert.Empty(t, storyline.Sections)
}

func TestStoryline_GetUnknownDeliverable(t *testing.T) {
	t.Parallel()

	svc := NewStorylineService(StorylineServiceConfig{Repo: &mockStorylineRepo{}, Deliverables: deliverableRepo("")})

	_, err := svc.GetByDeliverable(context.Background(), testMissingID)
	assert.ErrorIs(t, err, ErrDeliverableNotFound)

	_, err = svc.GetByDeliverable(context.Background(), "true")
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.Equal(t, "deliverableId", FieldErrors(err)[0].Field)
}

func TestStoryline_SaveIsManualAndNormalised(t *testing.T) {
	t.Parallel()

	var saved *model.Storyline
	svc := NewStorylineService(StorylineServiceConfig{
		Repo: &mockStorylineRepo{saveFunc: func(ctx context.Context, s *model.Storyline) error {
			saved = s
			return nil
		}},
		Deliverables: deliverableRepo(""),
	})

	storyline, err := svc.Save(context.Background(), testActorID, &model.SaveStorylineRequest{
		DeliverableID: []byte(`"` + testDeliverableID + `"`),
		Sections:      []model.Section{{Title: "  Summary  "}},
	})

	require.NoError(t, err)
	assert.Same(t, saved, storyline)
	assert.Equal(t, model.StorylineSourceManual, storyline.Source)
	assert.Equal(t, "Current state assessment", storyline.Title)
	assert.Equal(t, "Summary", storyline.Sections[0].Title)
	assert.Equal(t, model.SectionStatusDraft, storyline.Sections[0].Status)
	assert.True(t, model.IsValidID(storyline.Sections[0].ID))
	assert.Equal(t, testActorID, storyline.UpdatedBy)
}

func TestStoryline_GenerateFromAgent(t *testing.T) {
	t.Parallel()

	var prompt string
	var promptContext map[string]interface{}
	sender := &mockSender{
		configured: true,
		sendFunc: func(ctx context.Context, p string, c map[string]interface{}) (*agent.Reply, error) {
			prompt, promptContext = p, c
			raw := "Here is the outline:\n```json\n" +
				`{"sections":[{"title":"Answer first","key_points":["Time to offer doubles peers"]},"Journey map",{"description":"untitled"}]}` +
				"\n```"
			return &agent.Reply{Raw: raw, Data: agent.ExtractJSON(raw)}, nil
		},
	}
	projects := &mockProjectRepo{getByIDFunc: func(ctx context.Context, id string) (*model.Project, error) {
		return &model.Project{ID: id, Name: "Lending"}, nil
	}}
	svc := NewStorylineService(StorylineServiceConfig{
		Repo:         &mockStorylineRepo{},
		Deliverables: deliverableRepo("Map the journey"),
		Projects:     projects,
		Agent:        sender,
	})

	result, err := svc.Generate(context.Background(), testActorID, testDeliverableID, &model.GenerateStorylineRequest{Instructions: "Keep it short"})

	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, model.StorylineSourceAgent, result.Storyline.Source)
	require.Len(t, result.Storyline.Sections, 2)
	assert.Equal(t, "Answer first", result.Storyline.Sections[0].Title)
	assert.Equal(t, []string{"Time to offer doubles peers"}, result.Storyline.Sections[0].KeyPoints)
	assert.Equal(t, "Journey map", result.Storyline.Sections[1].Title)
	assert.Contains(t, prompt, "Map the journey")
	assert.Contains(t, prompt, "Keep it short")
	assert.NotNil(t, promptContext["project"])
}

func TestStoryline_GenerateFallsBackOnFailure(t *testing.T) {
	t.Parallel()

	sender := &mockSender{
		configured: true,
		sendFunc: func(context.Context, string, map[string]interface{}) (*agent.Reply, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewStorylineService(StorylineServiceConfig{
		Repo:         &mockStorylineRepo{},
		Deliverables: deliverableRepo("- Map the journey\n- Benchmark peers"),
		Agent:        sender,
	})

	result, err := svc.Generate(context.Background(), testActorID, testDeliverableID, nil)

	require.NoError(t, err)
	assert.Equal(t, model.StorylineSourceFallback, result.Storyline.Source)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "connection refused")
	require.Len(t, result.Storyline.Sections, 2)
	assert.Equal(t, "Map the journey", result.Storyline.Sections[0].Title)
	assert.Equal(t, "Benchmark peers", result.Storyline.Sections[1].Title)
}

func TestStoryline_GenerateUnconfiguredUsesDefaultOutline(t *testing.T) {
	t.Parallel()

	svc := NewStorylineService(StorylineServiceConfig{
		Repo:         &mockStorylineRepo{},
		Deliverables: deliverableRepo(""),
		Agent:        &mockSender{},
	})

	result, err := svc.Generate(context.Background(), testActorID, testDeliverableID, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{warnAgentNotConfigured}, result.Warnings)
	require.Len(t, result.Storyline.Sections, len(defaultOutline))
	assert.Equal(t, "Executive summary", result.Storyline.Sections[0].Title)
}

func TestStoryline_GenerateNoSections(t *testing.T) {
	t.Parallel()

	svc := NewStorylineService(StorylineServiceConfig{
		Repo:         &mockStorylineRepo{},
		Deliverables: deliverableRepo("One paragraph brief."),
		Agent:        &mockSender{configured: true, sendFunc: replyWith(`{"answer":"no outline"}`)},
	})

	result, err := svc.Generate(context.Background(), testActorID, testDeliverableID, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{warnAgentNoSections}, result.Warnings)
	assert.Equal(t, model.StorylineSourceFallback, result.Storyline.Source)
	require.Len(t, result.Storyline.Sections, 1)
}

func TestFallbackOutline_Paragraphs(t *testing.T) {
	t.Parallel()

	sections := FallbackOutline("First paragraph about context.\n\nSecond paragraph about the roadmap.")
	require.Len(t, sections, 2)
	assert.Equal(t, "First paragraph about context.", sections[0].Description)
	assert.Equal(t, "Second paragraph about the roadmap.", sections[1].Description)
}

func TestFallbackOutline_DefaultIsACopy(t *testing.T) {
	t.Parallel()

	sections := FallbackOutline("   ")
	sections[0].Title = "changed"
	assert.Equal(t, "Executive summary", defaultOutline[0].Title)
}
