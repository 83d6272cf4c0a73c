// Package session exposes the interactive session interface used by hosts: start a
// session, process user turns and feedback, and read the transcript back.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BTreeMap/CampaignPilot/internal/flow"
	"github.com/BTreeMap/CampaignPilot/internal/models"
	"github.com/BTreeMap/CampaignPilot/internal/store"
)

// Fixed reply texts.
const (
	GoodbyeText         = "Thank you for using the service. Goodbye!"
	SummaryUnavailable  = "Unable to generate summary. Please try again."
	UnableToProcessText = "Unable to process request. Please try again."
	errorContentPrefix  = "An error occurred: "
)

// Session context keys maintained after every turn.
const (
	contextKeyLastIntent  = "last_user_input_type"
	contextKeyTurnCount   = "turn_count"
	contextKeyLastTurnErr = "last_turn_error"
)

// Runner executes one workflow turn. flow.Orchestrator implements it.
type Runner interface {
	Run(ctx context.Context, userInput, feedback string, tc flow.TurnContext) models.WorkflowResult
}

// Opts configures a Service.
type Opts struct {
	HistoryLimit int // messages passed to a turn; 0 means all
}

// Option is a functional option for NewService.
type Option func(*Opts)

// WithHistoryLimit bounds the history snapshot handed to each turn.
func WithHistoryLimit(n int) Option {
	return func(o *Opts) {
		if n > 0 {
			o.HistoryLimit = n
		}
	}
}

// Service records every turn in the conversation store around an orchestrator run.
// Turns for the same session must not run concurrently.
type Service struct {
	store        *store.ConversationStore
	runner       Runner
	historyLimit int
}

// NewService creates a Service.
func NewService(st *store.ConversationStore, runner Runner, opts ...Option) *Service {
	var o Opts
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{store: st, runner: runner, historyLimit: o.HistoryLimit}
}

// StartSession allocates a new session id.
func (s *Service) StartSession() (string, error) {
	id, err := s.store.CreateSession()
	if err != nil {
		slog.Error("Service.StartSession: failed to create session", "error", err)
		return "", err
	}
	slog.Info("Service.StartSession: session started", "sessionID", id)
	return id, nil
}

// ProcessTurn handles one user message and returns the host-facing reply.
func (s *Service) ProcessTurn(ctx context.Context, sessionID, text string) models.TurnResponse {
	return s.process(ctx, sessionID, text, "", models.MessageTypeUserInput, models.MessageTypeSystemResponse, models.TurnResponseTypeResponse)
}

// ProcessFeedback handles feedback on the previous reply as a refinement turn.
func (s *Service) ProcessFeedback(ctx context.Context, sessionID, feedback string) models.TurnResponse {
	return s.process(ctx, sessionID, feedback, feedback, models.MessageTypeUserFeedback, models.MessageTypeSystemRefinement, models.TurnResponseTypeRefinement)
}

func (s *Service) process(ctx context.Context, sessionID, text, feedback string, inType, outType models.MessageType, respType models.TurnResponseType) models.TurnResponse {
	if _, err := s.store.Append(sessionID, text, inType, nil); err != nil {
		slog.Error("Service.process: failed to record input", "sessionID", sessionID, "error", err)
		return errorResponse(sessionID, "", err.Error())
	}

	tc := flow.TurnContext{
		SessionID:           sessionID,
		ConversationHistory: s.store.History(sessionID, s.historyLimit),
	}
	result := s.runner.Run(ctx, text, feedback, tc)

	if result.IsError() {
		content := errorContentPrefix + result.Error
		s.record(sessionID, content, models.MessageTypeSystemResponse, map[string]any{
			models.MetadataKeyError:         true,
			models.MetadataKeyUserInputType: string(result.UserInputType),
			models.MetadataKeyContext:       contextMetadata(result.Context),
		})
		s.updateContext(sessionID, result, true)
		return errorResponse(sessionID, result.UserInputType, result.Error)
	}

	content := FormatContent(result)
	s.record(sessionID, content, outType, map[string]any{
		models.MetadataKeyUserInputType: string(result.UserInputType),
		models.MetadataKeyContext:       contextMetadata(result.Context),
	})
	s.updateContext(sessionID, result, false)

	return models.TurnResponse{
		Type:          respType,
		Content:       content,
		SessionID:     sessionID,
		UserInputType: result.UserInputType,
		IsDone:        result.UserInputType == models.IntentDone,
	}
}

func (s *Service) record(sessionID, content string, msgType models.MessageType, metadata map[string]any) {
	if _, err := s.store.Append(sessionID, content, msgType, metadata); err != nil {
		slog.Error("Service.record: failed to record reply", "sessionID", sessionID, "type", msgType, "error", err)
	}
}

func (s *Service) updateContext(sessionID string, result models.WorkflowResult, failed bool) {
	turns, _ := s.store.Context(sessionID)[contextKeyTurnCount].(int)
	err := s.store.UpdateContext(sessionID, map[string]any{
		contextKeyLastIntent:  string(result.UserInputType),
		contextKeyTurnCount:   turns + 1,
		contextKeyLastTurnErr: failed,
	})
	if err != nil {
		slog.Warn("Service.updateContext: failed", "sessionID", sessionID, "error", err)
	}
}

// GetHistory returns the full transcript of a session, empty for unknown ids.
func (s *Service) GetHistory(sessionID string) []models.HistoryEntry {
	msgs := s.store.History(sessionID, 0)
	out := make([]models.HistoryEntry, len(msgs))
	for i, m := range msgs {
		out[i] = m.ToHistoryEntry()
	}
	return out
}

// FormatContent renders a workflow result as reply text.
func FormatContent(result models.WorkflowResult) string {
	if result.UserInputType == models.IntentDone {
		return GoodbyeText
	}
	if result.UserInputType == models.IntentSummary {
		if content, ok := result.Summary["content"].(string); ok {
			return content
		}
		return SummaryUnavailable
	}
	if len(result.Recommendations) > 0 {
		return strings.Join(result.Recommendations, "\n\n")
	}
	return UnableToProcessText
}

func errorResponse(sessionID string, intent models.Intent, detail string) models.TurnResponse {
	return models.TurnResponse{
		Type:          models.TurnResponseTypeError,
		Content:       errorContentPrefix + detail,
		SessionID:     sessionID,
		UserInputType: intent,
		IsDone:        false,
	}
}

// contextMetadata keeps the turn context small in stored metadata: the history echo is
// replaced by its length.
func contextMetadata(rc *models.ResultContext) map[string]any {
	if rc == nil {
		return map[string]any{}
	}
	md := map[string]any{
		"had_previous_interaction": rc.HadPreviousInteraction,
		"conversation_length":      len(rc.ConversationHistory),
	}
	if rc.Timestamp != "" {
		md["timestamp"] = rc.Timestamp
	}
	if rc.ErrorType != "" {
		md["error_type"] = rc.ErrorType
		md["error_timestamp"] = rc.ErrorTimestamp
	}
	return md
}

// String renders a response for line-oriented hosts.
func String(r models.TurnResponse) string {
	if r.Type == models.TurnResponseTypeError {
		return fmt.Sprintf("[error] %s", r.Content)
	}
	return r.Content
}
