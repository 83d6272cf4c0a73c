package flow

import (
	"context"
	"fmt"
	"log/slog"
)

// Result is the terminal state of a run and the nodes it visited, END included.
type Result struct {
	State State
	Path  []Node
}

// Engine drives a State from ANALYZE_INPUT to END. It runs synchronously, visits
// each node at most once and has no timeout of its own.
type Engine struct {
	stages *Stages
}

// NewEngine creates an engine over the given stage handlers.
func NewEngine(stages *Stages) *Engine {
	return &Engine{stages: stages}
}

// Run executes one turn. A fatal node failure is returned as a *StageError together
// with the state and path reached so far.
func (e *Engine) Run(ctx context.Context, initial State) (Result, error) {
	s := initial
	path := make([]Node, 0, 5)
	visited := make(map[Node]bool, 5)

	node := NodeAnalyzeInput
	for node != NodeEnd {
		if visited[node] {
			return Result{State: s, Path: path}, &StageError{Node: node, Err: ErrNodeReentered}
		}
		visited[node] = true
		path = append(path, node)

		slog.Debug("Engine.Run: entering node", "node", node, "sessionID", s.Context().SessionID)
		var err error
		s, err = e.step(ctx, node, s)
		if err != nil {
			slog.Error("Engine.Run: node failed", "node", node, "sessionID", s.Context().SessionID, "error", err)
			return Result{State: s, Path: path}, &StageError{Node: node, Err: err}
		}

		node, err = next(node, s)
		if err != nil {
			return Result{State: s, Path: path}, err
		}
		slog.Debug("Engine.Run: route chosen", "from", path[len(path)-1], "to", node, "intent", s.Intent())
	}
	path = append(path, NodeEnd)
	return Result{State: s, Path: path}, nil
}

func (e *Engine) step(ctx context.Context, node Node, s State) (State, error) {
	switch node {
	case NodeAnalyzeInput:
		return e.stages.AnalyzeInput(ctx, s)
	case NodeGatherData:
		return e.stages.GatherData(ctx, s)
	case NodeAnalyzeData:
		return e.stages.AnalyzeData(ctx, s)
	case NodeGenerateRecommendations:
		return e.stages.GenerateRecommendations(ctx, s), nil
	case NodeGenerateSummary:
		return e.stages.GenerateSummary(ctx, s), nil
	default:
		return s, fmt.Errorf("%w: %s", ErrUnknownNode, node)
	}
}
