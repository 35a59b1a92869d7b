package datastructure

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/lintang-b-s/livenav/pkg/util"
)

// GraphBuilder collects vertices and edges before the graph is frozen. edge ids are assigned in AddEdge order.
type GraphBuilder struct {
	vertices    []Vertex
	edges       []Edge
	travelTimes []float64
}

func NewGraphBuilder(numVertices int) *GraphBuilder {
	vertices := make([]Vertex, numVertices)
	for i := range vertices {
		vertices[i] = NewVertex(0, 0, Index(i))
	}
	return &GraphBuilder{
		vertices:    vertices,
		edges:       make([]Edge, 0),
		travelTimes: make([]float64, 0),
	}
}

func (gb *GraphBuilder) PreallocateEdges(numEdges int) {
	gb.edges = make([]Edge, 0, numEdges)
	gb.travelTimes = make([]float64, 0, numEdges)
}

func (gb *GraphBuilder) SetVertexCoordinates(v Index, x, y float64) error {
	if int(v) >= len(gb.vertices) {
		return fmt.Errorf("vertex %d: %w", v, ErrOutOfRange)
	}
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return fmt.Errorf("vertex %d: coordinates must be finite", v)
	}
	gb.vertices[v].x = x
	gb.vertices[v].y = y
	return nil
}

// AddEdge adds the directed edge tail -> head. its initial travel time is length / speed.
func (gb *GraphBuilder) AddEdge(tail, head Index, length, speed float64) (Index, error) {
	if int(tail) >= len(gb.vertices) || int(head) >= len(gb.vertices) {
		return INVALID_EDGE_ID, fmt.Errorf("edge %d -> %d: %w", tail, head, ErrOutOfRange)
	}
	if !util.IsPositiveFinite(length) {
		return INVALID_EDGE_ID, fmt.Errorf("edge %d -> %d: length %v must be positive", tail, head, length)
	}
	if !util.IsPositiveFinite(speed) {
		return INVALID_EDGE_ID, fmt.Errorf("edge %d -> %d: speed %v must be positive", tail, head, speed)
	}

	travelTime := length / speed
	if !isValidTravelTime(travelTime) {
		return INVALID_EDGE_ID, fmt.Errorf("edge %d -> %d: %w", tail, head, ErrInvalidWeight)
	}

	id := Index(len(gb.edges))
	gb.edges = append(gb.edges, NewEdge(id, tail, head, length))
	gb.travelTimes = append(gb.travelTimes, travelTime)
	return id, nil
}

// Build freezes the topology. the builder must not be used afterwards.
func (gb *GraphBuilder) Build() *Graph {
	n := len(gb.vertices)
	firstOut := make([]Index, n+1)
	for _, e := range gb.edges {
		firstOut[e.tail+1]++
	}
	for v := 0; v < n; v++ {
		firstOut[v+1] += firstOut[v]
	}

	// stable counting sort keeps edges of a vertex in insertion order
	next := make([]Index, n)
	copy(next, firstOut[:n])
	outEdgeIds := make([]Index, len(gb.edges))
	for _, e := range gb.edges {
		outEdgeIds[next[e.tail]] = e.edgeId
		next[e.tail]++
	}

	g := &Graph{
		vertices:   gb.vertices,
		firstOut:   firstOut,
		outEdgeIds: outEdgeIds,
		edges:      gb.edges,
		states:     make([]atomic.Pointer[EdgeState], len(gb.edges)),
	}
	for i, tt := range gb.travelTimes {
		state := NewEdgeState(tt)
		g.states[i].Store(&state)
	}

	gb.vertices, gb.edges, gb.travelTimes = nil, nil, nil
	return g
}
