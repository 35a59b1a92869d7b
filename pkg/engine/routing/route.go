package routing

import (
	da "github.com/lintang-b-s/livenav/pkg/datastructure"
)

type Route struct {
	totalCost       float64
	edgeIds         []da.Index
	numSettledNodes int
}

func newRoute(totalCost float64, edgeIds []da.Index, numSettledNodes int) Route {
	return Route{
		totalCost:       totalCost,
		edgeIds:         edgeIds,
		numSettledNodes: numSettledNodes,
	}
}

// GetTotalCost. sum of edge travel times along the route, as read during the search.
func (r Route) GetTotalCost() float64 {
	return r.totalCost
}

// GetEdgeIds. edge ids from source to target.
func (r Route) GetEdgeIds() []da.Index {
	return r.edgeIds
}

func (r Route) GetNumSettledNodes() int {
	return r.numSettledNodes
}
