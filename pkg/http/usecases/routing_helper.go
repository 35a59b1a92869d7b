package usecases

import (
	"github.com/lintang-b-s/livenav/pkg/datastructure"
	"github.com/lintang-b-s/livenav/pkg/geo"
	"github.com/lintang-b-s/livenav/pkg/util"
)

func (rs *RoutingService) snapOrigDestToNearestVertices(origX, origY, dstX, dstY float64) (datastructure.Index,
	datastructure.Index, error) {
	s, err := rs.snap(origX, origY, "origin")
	if err != nil {
		return 0, 0, err
	}
	t, err := rs.snap(dstX, dstY, "destination")
	if err != nil {
		return 0, 0, err
	}
	return s, t, nil
}

func (rs *RoutingService) snap(x, y float64, what string) (datastructure.Index, error) {
	v, dist, err := rs.spatialIndex.NearestVertex(x, y)
	if err != nil {
		return 0, util.WrapErrorf(err, util.ErrNotFound, "no %s candidates found", what)
	}
	if rs.snapRadius > 0 && dist > rs.snapRadius {
		return 0, util.WrapErrorf(ErrNoNearbyNode, util.ErrNotFound,
			"no %s candidates found within %v of (%v, %v)", what, rs.snapRadius, x, y)
	}
	return v, nil
}

// pathCoordinates. coordinates of the source followed by the head of every edge.
func (rs *RoutingService) pathCoordinates(s datastructure.Index, edgeIds []datastructure.Index) []geo.Coordinate {
	graph := rs.engine.GetGraph()
	coords := make([]geo.Coordinate, 0, len(edgeIds)+1)
	coords = append(coords, geo.NewCoordinate(graph.GetVertexCoordinates(s)))
	for _, id := range edgeIds {
		edge, _, err := graph.GetEdge(id)
		if err != nil {
			break
		}
		coords = append(coords, geo.NewCoordinate(graph.GetVertexCoordinates(edge.GetHead())))
	}
	return coords
}
