package flow

import (
	"fmt"

	"github.com/BTreeMap/CampaignPilot/internal/models"
)

// Node identifies a step of the workflow graph.
type Node string

const (
	NodeAnalyzeInput            Node = "ANALYZE_INPUT"
	NodeGatherData              Node = "GATHER_DATA"
	NodeAnalyzeData             Node = "ANALYZE_DATA"
	NodeGenerateRecommendations Node = "GENERATE_RECOMMENDATIONS"
	NodeGenerateSummary         Node = "GENERATE_SUMMARY"
	NodeEnd                     Node = "END"
)

// Route is the outcome of a conditional edge.
type Route int

const (
	RouteGatherData Route = iota + 1
	RouteSummary
	RouteRecommendation
	RouteEnd
)

func (r Route) String() string {
	switch r {
	case RouteGatherData:
		return "gather_data"
	case RouteSummary:
		return "summary"
	case RouteRecommendation:
		return "recommendation"
	case RouteEnd:
		return "end"
	default:
		return fmt.Sprintf("Route(%d)", int(r))
	}
}

// Node returns the node a route leads to.
func (r Route) Node() Node {
	switch r {
	case RouteGatherData:
		return NodeGatherData
	case RouteSummary:
		return NodeGenerateSummary
	case RouteRecommendation:
		return NodeGenerateRecommendations
	default:
		return NodeEnd
	}
}

// routeAfterInput is the first branch: DONE ends the turn, anything else gathers data.
func routeAfterInput(intent models.Intent) Route {
	switch intent {
	case models.IntentDone:
		return RouteEnd
	default:
		return RouteGatherData
	}
}

// routeAfterAnalysis is the second branch. DONE never reaches it in practice because
// routeAfterInput ends the turn first.
func routeAfterAnalysis(intent models.Intent) Route {
	switch intent {
	case models.IntentSummary:
		return RouteSummary
	case models.IntentDone:
		return RouteEnd
	default:
		// RECOMMENDATION, OTHER and an unset intent
		return RouteRecommendation
	}
}

// next returns the successor of node for the given state.
func next(node Node, s State) (Node, error) {
	switch node {
	case NodeAnalyzeInput:
		return routeAfterInput(s.Intent()).Node(), nil
	case NodeGatherData:
		return NodeAnalyzeData, nil
	case NodeAnalyzeData:
		return routeAfterAnalysis(s.Intent()).Node(), nil
	case NodeGenerateRecommendations, NodeGenerateSummary:
		return NodeEnd, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownNode, node)
	}
}
