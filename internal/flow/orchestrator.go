package flow

import (
	"context"
	"log/slog"
	"time"

	"github.com/BTreeMap/CampaignPilot/internal/models"
)

// Turn outcomes reported to the metrics recorder.
const (
	OutcomeOK    = "ok"
	OutcomeEnded = "ended"
	OutcomeError = "error"
)

// Orchestrator runs a fresh engine pass per turn and formats the terminal state.
type Orchestrator struct {
	engine  *Engine
	metrics MetricsRecorder
	now     func() time.Time
}

// NewOrchestrator creates an orchestrator over the given capabilities.
func NewOrchestrator(caps Capabilities, opts ...Option) *Orchestrator {
	o := applyOpts(opts)
	return &Orchestrator{
		engine:  NewEngine(NewStages(caps, opts...)),
		metrics: o.Metrics,
		now:     o.Clock,
	}
}

// Run processes one turn. It never panics and never returns an error: faults are
// reported through the error payload of the returned result.
func (o *Orchestrator) Run(ctx context.Context, userInput, feedback string, tc TurnContext) (result models.WorkflowResult) {
	start := o.now()
	defer func() {
		if r := recover(); r != nil {
			err := &PanicError{Value: r}
			slog.Error("Orchestrator.Run: recovered panic", "sessionID", tc.SessionID, "panic", r)
			o.metrics.ObserveStageFailure("panic", true)
			result = FormatError(err, o.now())
		}
		o.metrics.ObserveTurn(string(result.UserInputType), outcomeOf(result), o.now().Sub(start).Seconds())
	}()

	res, err := o.engine.Run(ctx, NewState(userInput, feedback, tc))
	if err != nil {
		node := "unknown"
		if se, ok := err.(*StageError); ok {
			node = string(se.Node)
		}
		o.metrics.ObserveStageFailure(node, true)
		slog.Error("Orchestrator.Run: turn failed", "sessionID", tc.SessionID, "node", node, "error", err)
		return FormatError(err, o.now())
	}

	result = FormatSuccess(res.State, o.now())
	slog.Info("Orchestrator.Run: turn complete", "sessionID", tc.SessionID, "intent", result.UserInputType, "path", res.Path)
	return result
}

func outcomeOf(r models.WorkflowResult) string {
	switch {
	case r.IsError():
		return OutcomeError
	case r.IsEnded():
		return OutcomeEnded
	default:
		return OutcomeOK
	}
}
