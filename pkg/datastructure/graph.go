package datastructure

import (
	"errors"
	"math"
	"sync/atomic"
)

type Index uint32

const (
	INVALID_VERTEX_ID Index = math.MaxUint32
	INVALID_EDGE_ID   Index = math.MaxUint32
)

// MaxTravelTime bounds the travel time of one edge so that the cost of any simple path,
// at most 2^32 edges, stays finite.
const MaxTravelTime = math.MaxFloat64 / (1 << 32)

var (
	ErrOutOfRange    = errors.New("id out of range")
	ErrInvalidWeight = errors.New("travel time must be positive and at most MaxTravelTime")
)

func isValidTravelTime(travelTime float64) bool {
	return travelTime > 0 && travelTime <= MaxTravelTime
}

type Vertex struct {
	x, y float64
	id   Index
}

func NewVertex(x, y float64, id Index) Vertex {
	return Vertex{
		x:  x,
		y:  y,
		id: id,
	}
}

func (v *Vertex) GetID() Index {
	return v.id
}

func (v *Vertex) GetX() float64 {
	return v.x
}

func (v *Vertex) GetY() float64 {
	return v.y
}

// Edge is the immutable part of a directed road segment tail -> head.
type Edge struct {
	baseLength float64
	edgeId     Index
	tail       Index
	head       Index
}

func NewEdge(edgeId, tail, head Index, baseLength float64) Edge {
	return Edge{
		edgeId:     edgeId,
		tail:       tail,
		head:       head,
		baseLength: baseLength,
	}
}

func (e *Edge) GetEdgeId() Index {
	return e.edgeId
}

func (e *Edge) GetTail() Index {
	return e.tail
}

func (e *Edge) GetHead() Index {
	return e.head
}

func (e *Edge) GetBaseLength() float64 {
	return e.baseLength
}

// EdgeState is the mutable weight of an edge. TravelTime is what routing reads,
// EmaTravelTime and ObservationCount belong to the speed filter.
type EdgeState struct {
	TravelTime       float64 `json:"travel_time"`
	EmaTravelTime    float64 `json:"ema_travel_time"`
	ObservationCount uint64  `json:"observation_count"`
}

func NewEdgeState(travelTime float64) EdgeState {
	return EdgeState{
		TravelTime:    travelTime,
		EmaTravelTime: travelTime,
	}
}

// EdgeUpdateFunc computes the next state of an edge from its current one. it may run more than
// once for a single update when writers race on the same edge, so it must not have side effects.
type EdgeUpdateFunc func(edge Edge, cur EdgeState) (EdgeState, error)

// Graph. directed road graph with a fixed topology and per-edge mutable travel times.
// outgoing edges of vertex v are outEdgeIds[firstOut[v]:firstOut[v+1]], in insertion order.
// every edge state lives behind its own atomic pointer: readers load a whole snapshot,
// writers publish a new one with compare-and-swap, so updates to different edges never contend
// and a reader never sees a half written state.
type Graph struct {
	vertices   []Vertex
	firstOut   []Index
	outEdgeIds []Index
	edges      []Edge
	states     []atomic.Pointer[EdgeState]
}

func (g *Graph) NumberOfVertices() int {
	return len(g.vertices)
}

func (g *Graph) NumberOfEdges() int {
	return len(g.edges)
}

// IsValidVertex reports whether id is in [0, NumberOfVertices()).
func (g *Graph) IsValidVertex(id int64) bool {
	return id >= 0 && id < int64(len(g.vertices))
}

// IsValidEdge reports whether id is in [0, NumberOfEdges()).
func (g *Graph) IsValidEdge(id int64) bool {
	return id >= 0 && id < int64(len(g.edges))
}

func (g *Graph) GetVertex(v Index) (Vertex, error) {
	if int(v) >= len(g.vertices) {
		return Vertex{}, ErrOutOfRange
	}
	return g.vertices[v], nil
}

// GetVertexCoordinates. v must be a valid vertex id.
func (g *Graph) GetVertexCoordinates(v Index) (float64, float64) {
	return g.vertices[v].x, g.vertices[v].y
}

func (g *Graph) GetOutDegree(v Index) Index {
	return g.firstOut[v+1] - g.firstOut[v]
}

// GetOutEdgeIds returns the outgoing edge ids of v in insertion order. the returned slice is shared, do not modify it.
func (g *Graph) GetOutEdgeIds(v Index) ([]Index, error) {
	if int(v) >= len(g.vertices) {
		return nil, ErrOutOfRange
	}
	return g.outEdgeIds[g.firstOut[v]:g.firstOut[v+1]], nil
}

// ForOutEdgesOf calls handle for every outgoing edge of v. v must be a valid vertex id.
func (g *Graph) ForOutEdgesOf(v Index, handle func(e *Edge)) {
	for i := g.firstOut[v]; i < g.firstOut[v+1]; i++ {
		handle(&g.edges[g.outEdgeIds[i]])
	}
}

// GetEdge returns the topology and a consistent snapshot of the mutable state of edge e.
func (g *Graph) GetEdge(e Index) (Edge, EdgeState, error) {
	if int(e) >= len(g.edges) {
		return Edge{}, EdgeState{}, ErrOutOfRange
	}
	return g.edges[e], *g.states[e].Load(), nil
}

// GetEdgeTravelTime. e must be a valid edge id.
func (g *Graph) GetEdgeTravelTime(e Index) float64 {
	return g.states[e].Load().TravelTime
}

// UpdateEdgeWeight atomically replaces the state of edge e with update(edge, current).
// when update fails or produces a travel time outside (0, MaxTravelTime], the stored state is left as it was.
func (g *Graph) UpdateEdgeWeight(e Index, update EdgeUpdateFunc) (EdgeState, error) {
	if int(e) >= len(g.edges) {
		return EdgeState{}, ErrOutOfRange
	}

	cell := &g.states[e]
	for {
		cur := cell.Load()
		next, err := update(g.edges[e], *cur)
		if err != nil {
			return *cur, err
		}
		if !isValidTravelTime(next.TravelTime) {
			return *cur, ErrInvalidWeight
		}

		if cell.CompareAndSwap(cur, &next) {
			return next, nil
		}
	}
}
