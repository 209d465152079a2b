package workflow

import "github.com/mikey/llm-email-assistant/internal/core"

// RouteEmail picks the branch after classification. It depends on IsSpam only.
func RouteEmail(state *core.WorkflowState) (core.Route, error) {
	isSpam, ok := state.Spam()
	if !ok {
		return 0, core.ErrNotClassified
	}
	if isSpam {
		return core.RouteSpam, nil
	}
	return core.RouteLegitimate, nil
}
