package controllers

import (
	"github.com/lintang-b-s/livenav/pkg/datastructure"
	"github.com/lintang-b-s/livenav/pkg/http/usecases"
)

type shortestPathRequest struct {
	Src int64 `json:"src" validate:"gte=0"`
	Dst int64 `json:"dst" validate:"gte=0"`
}

type shortestPathByCoordsRequest struct {
	OriginX      float64 `json:"origin_x" validate:"finite"`
	OriginY      float64 `json:"origin_y" validate:"finite"`
	DestinationX float64 `json:"destination_x" validate:"finite"`
	DestinationY float64 `json:"destination_y" validate:"finite"`
}

type speedUpdateRequest struct {
	EdgeId *int64   `json:"edge_id" validate:"required,gte=0"`
	Speed  *float64 `json:"speed" validate:"required,gt=0,finite"`
}

type shortestPathResponse struct {
	Source       uint32   `json:"source"`
	Target       uint32   `json:"target"`
	Eta          float64  `json:"eta"`
	Edges        []uint32 `json:"edges"`
	Path         string   `json:"path"`
	SettledNodes int      `json:"settled_nodes"`
}

func NewShortestPathResponse(res usecases.RouteResult) shortestPathResponse {
	edges := make([]uint32, len(res.EdgeIds))
	for i, id := range res.EdgeIds {
		edges[i] = uint32(id)
	}
	return shortestPathResponse{
		Source:       uint32(res.Source),
		Target:       uint32(res.Target),
		Eta:          res.TravelTime,
		Edges:        edges,
		Path:         res.Polyline,
		SettledNodes: res.NumSettledNodes,
	}
}

type edgeResponse struct {
	EdgeId     uint32                  `json:"edge_id"`
	From       uint32                  `json:"from"`
	To         uint32                  `json:"to"`
	BaseLength float64                 `json:"base_length"`
	State      datastructure.EdgeState `json:"state"`
}

func NewEdgeResponse(edge datastructure.Edge, state datastructure.EdgeState) edgeResponse {
	return edgeResponse{
		EdgeId:     uint32(edge.GetEdgeId()),
		From:       uint32(edge.GetTail()),
		To:         uint32(edge.GetHead()),
		BaseLength: edge.GetBaseLength(),
		State:      state,
	}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
