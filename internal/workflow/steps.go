package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/core"
	"github.com/mikey/llm-email-assistant/internal/utils"
)

// Node names of the email workflow
const (
	ReadEmail     NodeName = "read_email"
	ClassifyEmail NodeName = "classify_email"
	HandleSpam    NodeName = "handle_spam"
	DraftResponse NodeName = "draft_response"
	Notify        NodeName = "notify"
)

// Steps holds the collaborators the email workflow steps need
type Steps struct {
	client        core.GenerationClient
	notifier      core.Notifier
	textProcessor *utils.TextProcessor
	persona       Persona
	maxBodySize   int
	logger        *zap.Logger
}

// NewSteps creates the email workflow steps
func NewSteps(
	client core.GenerationClient,
	notifier core.Notifier,
	textProcessor *utils.TextProcessor,
	persona Persona,
	maxBodySize int,
	logger *zap.Logger,
) *Steps {
	if logger == nil {
		logger = zap.NewNop()
	}
	if textProcessor == nil {
		textProcessor = utils.NewTextProcessor(logger)
	}
	if persona.Name == "" {
		persona.Name = DefaultPersona.Name
	}
	if persona.Principal == "" {
		persona.Principal = DefaultPersona.Principal
	}
	return &Steps{
		client:        client,
		notifier:      notifier,
		textProcessor: textProcessor,
		persona:       persona,
		maxBodySize:   maxBodySize,
		logger:        logger,
	}
}

// ReadEmail announces the email being processed
func (s *Steps) ReadEmail(_ context.Context, state *core.WorkflowState) (core.StateUpdate, error) {
	if err := state.Email.Validate(); err != nil {
		return core.StateUpdate{}, err
	}
	s.notifier.Info(fmt.Sprintf("%s is processing an email from %s with subject: %s",
		s.persona.Name, state.Email.Sender, state.Email.Subject))
	return core.StateUpdate{}, nil
}

// ClassifyEmail asks the model whether the email is spam and, if not, what kind it is
func (s *Steps) ClassifyEmail(ctx context.Context, state *core.WorkflowState) (core.StateUpdate, error) {
	prompt := ClassifyPrompt(s.persona, state.Email, s.body(state))

	response, err := s.client.Generate(ctx, prompt)
	if err != nil {
		return core.StateUpdate{}, err
	}

	result := ParseClassification(response)
	update := core.StateUpdate{
		IsSpam:     core.Ptr(result.IsSpam),
		Transcript: state.AppendExchange(prompt, response),
	}
	if result.IsSpam {
		update.SpamReason = core.Ptr(result.SpamReason)
	} else {
		update.EmailCategory = core.Ptr(result.Category)
	}

	s.logger.Debug("Email classified",
		zap.String("run_id", state.RunID),
		zap.Bool("is_spam", result.IsSpam),
		zap.String("category", result.Category))

	return update, nil
}

// HandleSpam reports the spam decision
func (s *Steps) HandleSpam(_ context.Context, state *core.WorkflowState) (core.StateUpdate, error) {
	s.notifier.Warning(fmt.Sprintf("%s has marked the email as spam. Reason: %s", s.persona.Name, state.Reason()))
	s.notifier.Info("The email has been moved to the spam folder.")
	return core.StateUpdate{}, nil
}

// DraftResponse asks the model for a preliminary reply
func (s *Steps) DraftResponse(ctx context.Context, state *core.WorkflowState) (core.StateUpdate, error) {
	category := state.Category(DefaultDraftCategory)
	prompt := DraftPrompt(s.persona, state.Email, s.body(state), category)

	response, err := s.client.Generate(ctx, prompt)
	if err != nil {
		return core.StateUpdate{}, err
	}

	return core.StateUpdate{
		EmailDraft: core.Ptr(response),
		Transcript: state.AppendExchange(prompt, response),
	}, nil
}

// Notify presents the draft for review
func (s *Steps) Notify(_ context.Context, state *core.WorkflowState) (core.StateUpdate, error) {
	s.notifier.Field("Sender", state.Email.Sender)
	s.notifier.Field("Subject", state.Email.Subject)
	s.notifier.Field("Category", state.Category(""))
	s.notifier.Field("Draft Response", state.Draft())
	return core.StateUpdate{}, nil
}

func (s *Steps) body(state *core.WorkflowState) string {
	return s.textProcessor.Prepare(state.Email.Body, s.maxBodySize)
}

// NewEmailWorkflow wires the steps into the email graph:
//
//	START -> read_email -> classify_email -> handle_spam -> END
//	                                      \-> draft_response -> notify -> END
func NewEmailWorkflow(steps *Steps, logger *zap.Logger) (*Engine, error) {
	g := NewGraph()

	nodes := []struct {
		name NodeName
		fn   StepFunc
	}{
		{ReadEmail, steps.ReadEmail},
		{ClassifyEmail, steps.ClassifyEmail},
		{HandleSpam, steps.HandleSpam},
		{DraftResponse, steps.DraftResponse},
		{Notify, steps.Notify},
	}
	for _, n := range nodes {
		if err := g.AddNode(n.name, n.fn); err != nil {
			return nil, err
		}
	}

	edges := [][2]NodeName{
		{Start, ReadEmail},
		{ReadEmail, ClassifyEmail},
		{HandleSpam, End},
		{DraftResponse, Notify},
		{Notify, End},
	}
	for _, e := range edges {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			return nil, err
		}
	}

	if err := g.AddConditionalEdges(ClassifyEmail, RouteEmail, map[core.Route]NodeName{
		core.RouteSpam:       HandleSpam,
		core.RouteLegitimate: DraftResponse,
	}); err != nil {
		return nil, err
	}

	return g.Compile(logger)
}
