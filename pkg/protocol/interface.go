package protocol

import (
	da "github.com/lintang-b-s/livenav/pkg/datastructure"
	"github.com/lintang-b-s/livenav/pkg/engine/routing"
)

type RouteFinder interface {
	ShortestPath(s, t da.Index) (routing.Route, bool, error)
}

type SpeedApplier interface {
	ApplySpeed(edgeId da.Index, speed float64) (da.EdgeState, error)
}

type GraphBounds interface {
	IsValidVertex(id int64) bool
	IsValidEdge(id int64) bool
}
