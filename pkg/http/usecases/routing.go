package usecases

import (
	"errors"

	"github.com/lintang-b-s/livenav/pkg/datastructure"
	"github.com/lintang-b-s/livenav/pkg/engine/routing"
	"github.com/lintang-b-s/livenav/pkg/geo"
	"github.com/lintang-b-s/livenav/pkg/traffic"
	"github.com/lintang-b-s/livenav/pkg/util"
	"go.uber.org/zap"
)

var (
	ErrPathNotFound  = errors.New("no path found")
	ErrNoNearbyNode  = errors.New("no node near the given coordinate")
	ErrEdgeNotFound  = errors.New("edge not found")
	ErrVertexInvalid = errors.New("node id out of range")
)

type RouteResult struct {
	Source          datastructure.Index
	Target          datastructure.Index
	TravelTime      float64
	EdgeIds         []datastructure.Index
	Polyline        string
	NumSettledNodes int
}

type EdgeInfo struct {
	Edge  datastructure.Edge
	State datastructure.EdgeState
}

type RoutingService struct {
	log          *zap.Logger
	engine       RoutingEngine
	speedUpdater SpeedUpdater
	spatialIndex SpatialIndex
	snapRadius   float64
}

// NewRoutingService. snapRadius bounds the distance from a query coordinate to its snapped node, 0 means unbounded.
func NewRoutingService(log *zap.Logger, engine RoutingEngine, speedUpdater SpeedUpdater, spatialIndex SpatialIndex,
	snapRadius float64) *RoutingService {
	return &RoutingService{
		log:          log,
		engine:       engine,
		speedUpdater: speedUpdater,
		spatialIndex: spatialIndex,
		snapRadius:   snapRadius,
	}
}

func (rs *RoutingService) ShortestPath(src, dst int64) (RouteResult, error) {
	graph := rs.engine.GetGraph()
	if !graph.IsValidVertex(src) || !graph.IsValidVertex(dst) {
		return RouteResult{}, util.WrapErrorf(ErrVertexInvalid, util.ErrBadParamInput,
			"src and dst must be in [0, %d)", graph.NumberOfVertices())
	}
	return rs.route(datastructure.Index(src), datastructure.Index(dst))
}

func (rs *RoutingService) ShortestPathByCoords(origX, origY, dstX, dstY float64) (RouteResult, error) {
	s, t, err := rs.snapOrigDestToNearestVertices(origX, origY, dstX, dstY)
	if err != nil {
		return RouteResult{}, err
	}
	return rs.route(s, t)
}

func (rs *RoutingService) route(s, t datastructure.Index) (RouteResult, error) {
	route, found, err := rs.engine.ShortestPath(s, t)
	switch {
	case errors.Is(err, routing.ErrInvalidVertex):
		return RouteResult{}, util.WrapErrorf(err, util.ErrBadParamInput, "invalid node id")
	case err != nil:
		rs.log.Error("route query failed", zap.Uint32("src", uint32(s)), zap.Uint32("dst", uint32(t)), zap.Error(err))
		return RouteResult{}, util.WrapErrorf(err, util.ErrInternalServerError, util.MessageInternalServerError)
	case !found:
		return RouteResult{}, util.WrapErrorf(ErrPathNotFound, util.ErrNotFound, "no path found from %d to %d", s, t)
	}

	return RouteResult{
		Source:          s,
		Target:          t,
		TravelTime:      route.GetTotalCost(),
		EdgeIds:         route.GetEdgeIds(),
		Polyline:        geo.PolylineFromCoords(rs.pathCoordinates(s, route.GetEdgeIds())),
		NumSettledNodes: route.GetNumSettledNodes(),
	}, nil
}

func (rs *RoutingService) UpdateSpeed(edgeId int64, speed float64) (datastructure.EdgeState, error) {
	graph := rs.engine.GetGraph()
	if !graph.IsValidEdge(edgeId) {
		return datastructure.EdgeState{}, util.WrapErrorf(ErrEdgeNotFound, util.ErrNotFound, "edge %d not found", edgeId)
	}

	state, err := rs.speedUpdater.ApplySpeed(datastructure.Index(edgeId), speed)
	switch {
	case errors.Is(err, traffic.ErrInvalidSpeed), errors.Is(err, datastructure.ErrInvalidWeight):
		return state, util.WrapErrorf(err, util.ErrBadParamInput, "speed %v does not give a positive finite travel time", speed)
	case err != nil:
		return state, util.WrapErrorf(err, util.ErrInternalServerError, util.MessageInternalServerError)
	}
	return state, nil
}

func (rs *RoutingService) GetEdge(edgeId int64) (EdgeInfo, error) {
	graph := rs.engine.GetGraph()
	if !graph.IsValidEdge(edgeId) {
		return EdgeInfo{}, util.WrapErrorf(ErrEdgeNotFound, util.ErrNotFound, "edge %d not found", edgeId)
	}
	edge, state, err := graph.GetEdge(datastructure.Index(edgeId))
	if err != nil {
		return EdgeInfo{}, util.WrapErrorf(err, util.ErrNotFound, "edge %d not found", edgeId)
	}
	return EdgeInfo{Edge: edge, State: state}, nil
}
