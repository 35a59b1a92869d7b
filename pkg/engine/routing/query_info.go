package routing

import (
	"math"

	da "github.com/lintang-b-s/livenav/pkg/datastructure"
)

// searchState. per query labels indexed by vertex id. only touched vertices are reset between queries.
type searchState struct {
	travelTime []float64  // best known cost from source, +Inf if not reached
	parentEdge []da.Index // edge used to reach the vertex with travelTime
	closed     []uint64   // bitset of settled vertices
	touched    []da.Index

	pq *da.MinHeap[da.Index]
}

func newSearchState(numVertices int) *searchState {
	s := &searchState{
		travelTime: make([]float64, numVertices),
		parentEdge: make([]da.Index, numVertices),
		closed:     make([]uint64, (numVertices+63)/64),
		touched:    make([]da.Index, 0, 64),
		pq:         da.NewFourAryHeap[da.Index](),
	}
	for i := range s.travelTime {
		s.travelTime[i] = math.Inf(1)
		s.parentEdge[i] = da.INVALID_EDGE_ID
	}
	return s
}

func (s *searchState) label(v da.Index, travelTime float64, parentEdge da.Index) {
	if math.IsInf(s.travelTime[v], 1) {
		s.touched = append(s.touched, v)
	}
	s.travelTime[v] = travelTime
	s.parentEdge[v] = parentEdge
}

func (s *searchState) isClosed(v da.Index) bool {
	return s.closed[v>>6]&(1<<(v&63)) != 0
}

func (s *searchState) close(v da.Index) {
	s.closed[v>>6] |= 1 << (v & 63)
}

func (s *searchState) reset() {
	for _, v := range s.touched {
		s.travelTime[v] = math.Inf(1)
		s.parentEdge[v] = da.INVALID_EDGE_ID
		s.closed[v>>6] = 0
	}
	s.touched = s.touched[:0]
	s.pq.Clear()
}
