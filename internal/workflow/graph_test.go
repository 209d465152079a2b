package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/llm-email-assistant/internal/core"
)

func noop(context.Context, *core.WorkflowState) (core.StateUpdate, error) {
	return core.StateUpdate{}, nil
}

func recordingStep(name string, order *[]string) StepFunc {
	return func(context.Context, *core.WorkflowState) (core.StateUpdate, error) {
		*order = append(*order, name)
		return core.StateUpdate{}, nil
	}
}

func TestGraph_AddNodeRejectsDuplicatesAndMarkers(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode("a", noop))
	assert.ErrorIs(t, g.AddNode("a", noop), ErrDuplicateNode)
	assert.Error(t, g.AddNode(Start, noop))
	assert.Error(t, g.AddNode(End, noop))
	assert.Error(t, g.AddNode("b", nil))
}

func TestGraph_AddEdgeValidation(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode("a", noop))

	assert.ErrorIs(t, g.AddEdge("a", "missing"), ErrUnknownNode)
	assert.ErrorIs(t, g.AddEdge("missing", "a"), ErrUnknownNode)
	assert.ErrorIs(t, g.AddEdge("a", Start), ErrUnknownNode)
	assert.ErrorIs(t, g.AddEdge(End, "a"), ErrUnknownNode)
	require.NoError(t, g.AddEdge("a", End))
	assert.ErrorIs(t, g.AddEdge("a", End), ErrDuplicateEdge)
	assert.ErrorIs(t, g.AddConditionalEdges("a", RouteEmail, map[core.Route]NodeName{core.RouteSpam: End}), ErrDuplicateEdge)
}

func TestGraph_CompileValidation(t *testing.T) {
	t.Run("no start edge", func(t *testing.T) {
		g := NewGraph()
		require.NoError(t, g.AddNode("a", noop))
		require.NoError(t, g.AddEdge("a", End))
		_, err := g.Compile(nil)
		assert.ErrorIs(t, err, ErrNoStartEdge)
	})

	t.Run("dangling node", func(t *testing.T) {
		g := NewGraph()
		require.NoError(t, g.AddNode("a", noop))
		require.NoError(t, g.AddEdge(Start, "a"))
		_, err := g.Compile(nil)
		assert.ErrorIs(t, err, ErrDanglingNode)
	})

	t.Run("end unreachable", func(t *testing.T) {
		g := NewGraph()
		require.NoError(t, g.AddNode("a", noop))
		require.NoError(t, g.AddNode("b", noop))
		require.NoError(t, g.AddEdge(Start, "a"))
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "a"))
		_, err := g.Compile(nil)
		assert.ErrorIs(t, err, ErrEndUnreachable)
	})
}

func TestEngine_RejectsRevisits(t *testing.T) {
	var order []string
	g := NewGraph()
	require.NoError(t, g.AddNode("a", recordingStep("a", &order)))
	require.NoError(t, g.AddNode("b", recordingStep("b", &order)))
	require.NoError(t, g.AddEdge(Start, "a"))
	require.NoError(t, g.AddConditionalEdges("a", func(*core.WorkflowState) (core.Route, error) {
		return core.RouteSpam, nil
	}, map[core.Route]NodeName{core.RouteSpam: "b", core.RouteLegitimate: End}))
	require.NoError(t, g.AddEdge("b", "a"))

	engine, err := g.Compile(nil)
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), core.NewWorkflowState(core.Email{}))
	assert.ErrorIs(t, err, ErrNodeRevisited)
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestEngine_UnmappedRoute(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode("a", noop))
	require.NoError(t, g.AddEdge(Start, "a"))
	require.NoError(t, g.AddConditionalEdges("a", func(*core.WorkflowState) (core.Route, error) {
		return core.RouteLegitimate, nil
	}, map[core.Route]NodeName{core.RouteSpam: End}))

	engine, err := g.Compile(nil)
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), core.NewWorkflowState(core.Email{}))
	assert.ErrorIs(t, err, ErrUnmappedRoute)
}

func TestEngine_RouterErrorStopsRun(t *testing.T) {
	var order []string
	g := NewGraph()
	require.NoError(t, g.AddNode("a", recordingStep("a", &order)))
	require.NoError(t, g.AddNode("b", recordingStep("b", &order)))
	require.NoError(t, g.AddEdge(Start, "a"))
	require.NoError(t, g.AddConditionalEdges("a", RouteEmail, map[core.Route]NodeName{
		core.RouteSpam: "b", core.RouteLegitimate: End,
	}))
	require.NoError(t, g.AddEdge("b", End))

	engine, err := g.Compile(nil)
	require.NoError(t, err)

	// nothing sets IsSpam, so the router refuses to pick a branch
	_, err = engine.Run(context.Background(), core.NewWorkflowState(core.Email{}))
	assert.ErrorIs(t, err, core.ErrNotClassified)
	assert.Equal(t, []string{"a"}, order)
}

func TestEngine_MergesUpdatesInOrder(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode("set", func(context.Context, *core.WorkflowState) (core.StateUpdate, error) {
		return core.StateUpdate{EmailCategory: core.Ptr("inquiry")}, nil
	}))
	require.NoError(t, g.AddNode("read", func(_ context.Context, s *core.WorkflowState) (core.StateUpdate, error) {
		return core.StateUpdate{EmailDraft: core.Ptr("re: " + s.Category(""))}, nil
	}))
	require.NoError(t, g.AddEdge(Start, "set"))
	require.NoError(t, g.AddEdge("set", "read"))
	require.NoError(t, g.AddEdge("read", End))

	engine, err := g.Compile(nil)
	require.NoError(t, err)

	final, err := engine.Run(context.Background(), core.NewWorkflowState(core.Email{}))
	require.NoError(t, err)
	assert.Equal(t, "inquiry", final.Category(""))
	assert.Equal(t, "re: inquiry", final.Draft())
}

func TestEngine_NilInitialState(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddNode("a", noop))
	require.NoError(t, g.AddEdge(Start, "a"))
	require.NoError(t, g.AddEdge("a", End))
	engine, err := g.Compile(nil)
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), nil)
	assert.Error(t, err)
}
