// Package workflow implements the email-processing state machine: the step functions,
// the post-classification router and the engine that threads a WorkflowState through
// them from START to END.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/llm-email-assistant/internal/core"
)

// NodeName identifies a node in the workflow graph
type NodeName string

// Synthetic markers
const (
	Start NodeName = "__start__"
	End   NodeName = "__end__"
)

var (
	// ErrDuplicateNode is returned when a node name is registered twice
	ErrDuplicateNode = errors.New("node already registered")
	// ErrUnknownNode is returned when an edge references an unregistered node
	ErrUnknownNode = errors.New("unknown node")
	// ErrDuplicateEdge is returned when a node is given more than one outgoing edge
	ErrDuplicateEdge = errors.New("node already has an outgoing edge")
	// ErrNoStartEdge is returned when the graph has no edge leaving START
	ErrNoStartEdge = errors.New("graph has no edge from start")
	// ErrDanglingNode is returned when a node has no outgoing edge
	ErrDanglingNode = errors.New("node has no outgoing edge")
	// ErrEndUnreachable is returned when no path leads to END
	ErrEndUnreachable = errors.New("end is unreachable")
	// ErrNodeRevisited is returned when execution would run a node a second time
	ErrNodeRevisited = errors.New("node visited twice")
	// ErrUnmappedRoute is returned when a router picks a route with no target
	ErrUnmappedRoute = errors.New("route has no target node")
)

// StepFunc consumes the current state and returns the fields it changes
type StepFunc func(ctx context.Context, state *core.WorkflowState) (core.StateUpdate, error)

// RouterFunc selects the branch to follow after a node
type RouterFunc func(state *core.WorkflowState) (core.Route, error)

type conditionalEdge struct {
	router  RouterFunc
	targets map[core.Route]NodeName
}

// Graph collects nodes and edges before compilation
type Graph struct {
	nodes       map[NodeName]StepFunc
	edges       map[NodeName]NodeName
	conditional map[NodeName]conditionalEdge
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		nodes:       make(map[NodeName]StepFunc),
		edges:       make(map[NodeName]NodeName),
		conditional: make(map[NodeName]conditionalEdge),
	}
}

// AddNode registers a step under the given name
func (g *Graph) AddNode(name NodeName, step StepFunc) error {
	if name == Start || name == End || name == "" {
		return fmt.Errorf("invalid node name %q", name)
	}
	if step == nil {
		return fmt.Errorf("node %q has no step function", name)
	}
	if _, ok := g.nodes[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, name)
	}
	g.nodes[name] = step
	return nil
}

// AddEdge adds an unconditional transition
func (g *Graph) AddEdge(from, to NodeName) error {
	if err := g.checkSource(from); err != nil {
		return err
	}
	if err := g.checkTarget(to); err != nil {
		return err
	}
	g.edges[from] = to
	return nil
}

// AddConditionalEdges adds a transition whose target is chosen by router
func (g *Graph) AddConditionalEdges(from NodeName, router RouterFunc, targets map[core.Route]NodeName) error {
	if err := g.checkSource(from); err != nil {
		return err
	}
	if router == nil {
		return fmt.Errorf("conditional edge from %q has no router", from)
	}
	if len(targets) == 0 {
		return fmt.Errorf("conditional edge from %q has no targets", from)
	}
	mapped := make(map[core.Route]NodeName, len(targets))
	for route, to := range targets {
		if err := g.checkTarget(to); err != nil {
			return err
		}
		mapped[route] = to
	}
	g.conditional[from] = conditionalEdge{router: router, targets: mapped}
	return nil
}

func (g *Graph) checkSource(from NodeName) error {
	if from == End {
		return fmt.Errorf("%w: end cannot have outgoing edges", ErrUnknownNode)
	}
	if from != Start {
		if _, ok := g.nodes[from]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownNode, from)
		}
	}
	_, static := g.edges[from]
	_, cond := g.conditional[from]
	if static || cond {
		return fmt.Errorf("%w: %s", ErrDuplicateEdge, from)
	}
	return nil
}

func (g *Graph) checkTarget(to NodeName) error {
	if to == Start {
		return fmt.Errorf("%w: start cannot be a target", ErrUnknownNode)
	}
	if to == End {
		return nil
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, to)
	}
	return nil
}

func (g *Graph) successors(from NodeName) []NodeName {
	if to, ok := g.edges[from]; ok {
		return []NodeName{to}
	}
	if c, ok := g.conditional[from]; ok {
		out := make([]NodeName, 0, len(c.targets))
		for _, to := range c.targets {
			out = append(out, to)
		}
		return out
	}
	return nil
}

// Compile validates the graph and returns an engine that executes it
func (g *Graph) Compile(logger *zap.Logger) (*Engine, error) {
	if _, ok := g.edges[Start]; !ok {
		return nil, ErrNoStartEdge
	}
	for name := range g.nodes {
		if len(g.successors(name)) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrDanglingNode, name)
		}
	}

	seen := map[NodeName]bool{Start: true}
	queue := []NodeName{Start}
	reachesEnd := false
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, next := range g.successors(n) {
			if next == End {
				reachesEnd = true
				continue
			}
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	if !reachesEnd {
		return nil, ErrEndUnreachable
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	nodes := make(map[NodeName]StepFunc, len(g.nodes))
	for k, v := range g.nodes {
		nodes[k] = v
	}
	edges := make(map[NodeName]NodeName, len(g.edges))
	for k, v := range g.edges {
		edges[k] = v
	}
	conditional := make(map[NodeName]conditionalEdge, len(g.conditional))
	for k, v := range g.conditional {
		conditional[k] = v
	}

	return &Engine{
		nodes:       nodes,
		edges:       edges,
		conditional: conditional,
		logger:      logger,
	}, nil
}
