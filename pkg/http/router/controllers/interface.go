package controllers

import (
	"github.com/lintang-b-s/livenav/pkg/datastructure"
	"github.com/lintang-b-s/livenav/pkg/http/usecases"
)

type RoutingService interface {
	ShortestPath(src, dst int64) (usecases.RouteResult, error)
	ShortestPathByCoords(origX, origY, dstX, dstY float64) (usecases.RouteResult, error)
	UpdateSpeed(edgeId int64, speed float64) (datastructure.EdgeState, error)
	GetEdge(edgeId int64) (usecases.EdgeInfo, error)
}
