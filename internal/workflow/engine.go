package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/core"
)

const tracerName = "github.com/mikey/llm-email-assistant/internal/workflow"

// Span attribute keys
const (
	RunIDKey = "assistant.run_id"
	NodeKey  = "assistant.node"
	RouteKey = "assistant.route"
)

// Engine executes a compiled graph. It keeps no state between runs.
type Engine struct {
	nodes       map[NodeName]StepFunc
	edges       map[NodeName]NodeName
	conditional map[NodeName]conditionalEdge
	logger      *zap.Logger
}

// Run executes the graph from START to END on a copy of initial and returns the final
// state. A failing step stops the run and its error is returned as is.
func (e *Engine) Run(ctx context.Context, initial *core.WorkflowState) (*core.WorkflowState, error) {
	if initial == nil {
		return nil, fmt.Errorf("workflow run requires an initial state")
	}

	state := initial.Clone()
	if state.RunID == "" {
		state.RunID = uuid.NewString()
	}
	logger := e.logger.With(zap.String("run_id", state.RunID))

	tracer := otel.Tracer(tracerName)
	ctx, runSpan := tracer.Start(ctx, "workflow.run", trace.WithAttributes(
		attribute.String(RunIDKey, state.RunID),
	))
	defer runSpan.End()

	visited := make(map[NodeName]bool, len(e.nodes))
	current := e.edges[Start]

	for current != End {
		if err := ctx.Err(); err != nil {
			recordError(runSpan, err)
			return nil, err
		}
		if visited[current] {
			err := fmt.Errorf("%w: %s", ErrNodeRevisited, current)
			recordError(runSpan, err)
			return nil, err
		}
		visited[current] = true

		step, ok := e.nodes[current]
		if !ok {
			err := fmt.Errorf("%w: %s", ErrUnknownNode, current)
			recordError(runSpan, err)
			return nil, err
		}

		logger.Debug("Running node", zap.String("node", string(current)))
		update, err := e.runNode(ctx, tracer, current, step, state)
		if err != nil {
			logger.Debug("Node failed", zap.String("node", string(current)), zap.Error(err))
			recordError(runSpan, err)
			return nil, err
		}
		state.Apply(update)

		next, route, err := e.next(current, state)
		if err != nil {
			recordError(runSpan, err)
			return nil, err
		}
		if route != 0 {
			runSpan.SetAttributes(attribute.String(RouteKey, route.String()))
		}
		logger.Debug("Transition",
			zap.String("from", string(current)),
			zap.String("to", string(next)))
		current = next
	}

	return state, nil
}

func (e *Engine) runNode(
	ctx context.Context,
	tracer trace.Tracer,
	name NodeName,
	step StepFunc,
	state *core.WorkflowState,
) (core.StateUpdate, error) {
	ctx, span := tracer.Start(ctx, "workflow.node."+string(name), trace.WithAttributes(
		attribute.String(RunIDKey, state.RunID),
		attribute.String(NodeKey, string(name)),
	))
	defer span.End()

	update, err := step(ctx, state)
	if err != nil {
		recordError(span, err)
		return core.StateUpdate{}, err
	}
	return update, nil
}

// next resolves the successor of a node: a static edge or the router's choice.
// The returned route is zero for static edges.
func (e *Engine) next(from NodeName, state *core.WorkflowState) (NodeName, core.Route, error) {
	if to, ok := e.edges[from]; ok {
		return to, 0, nil
	}
	c, ok := e.conditional[from]
	if !ok {
		return "", 0, fmt.Errorf("%w: %s", ErrDanglingNode, from)
	}
	route, err := c.router(state)
	if err != nil {
		return "", 0, err
	}
	to, ok := c.targets[route]
	if !ok {
		return "", 0, fmt.Errorf("%w: %s from %s", ErrUnmappedRoute, route, from)
	}
	return to, route, nil
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
