package usecases

import (
	"github.com/lintang-b-s/livenav/pkg/datastructure"
	"github.com/lintang-b-s/livenav/pkg/engine/routing"
)

type RoutingEngine interface {
	GetGraph() *datastructure.Graph
	ShortestPath(s, t datastructure.Index) (routing.Route, bool, error)
}

type SpeedUpdater interface {
	ApplySpeed(edgeId datastructure.Index, speed float64) (datastructure.EdgeState, error)
}

type SpatialIndex interface {
	NearestVertex(x, y float64) (datastructure.Index, float64, error)
}
