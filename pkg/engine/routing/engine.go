package routing

import (
	"errors"
	"sync"

	da "github.com/lintang-b-s/livenav/pkg/datastructure"
	"go.uber.org/zap"
)

var (
	ErrInvalidVertex        = errors.New("vertex id out of range")
	ErrRouteFail            = errors.New("route reconstruction failed")
	ErrNoMemory             = errors.New("route exceeds result capacity")
	ErrSearchBudgetExceeded = errors.New("search settled more vertices than allowed")
)

type Config struct {
	// HeuristicScale multiplies the straight-line distance to the target. 1.0 keeps distance units as is.
	HeuristicScale float64
	// MaxSettledNodes aborts a search after that many vertices are settled. 0 means no limit.
	MaxSettledNodes int
	// MaxPathEdges is the capacity of the result buffer. 0 means the number of vertices.
	MaxPathEdges int
}

func DefaultConfig() Config {
	return Config{
		HeuristicScale: 1.0,
	}
}

type RoutingEngine struct {
	graph   *da.Graph
	logger  *zap.Logger
	config  Config
	bufPool sync.Pool
}

func NewRoutingEngine(graph *da.Graph, logger *zap.Logger, config Config) *RoutingEngine {
	re := &RoutingEngine{
		graph:  graph,
		logger: logger,
		config: config,
	}
	re.BuildBufferPool()
	return re
}

func (re *RoutingEngine) GetGraph() *da.Graph {
	return re.graph
}

// BuildBufferPool. search buffers are sized to the graph once and recycled between queries.
func (re *RoutingEngine) BuildBufferPool() {
	n := re.graph.NumberOfVertices()
	re.bufPool = sync.Pool{
		New: func() any {
			return newSearchState(n)
		},
	}
}

func (re *RoutingEngine) resultCapacity() int {
	if re.config.MaxPathEdges > 0 {
		return re.config.MaxPathEdges
	}
	return re.graph.NumberOfVertices()
}

/*
ShortestPath. shortest travel time route from s to t.

returns found == false when t is not reachable from s. errors:
ErrInvalidVertex for ids outside the graph, ErrSearchBudgetExceeded when MaxSettledNodes is reached,
ErrNoMemory when the path does not fit the result capacity, ErrRouteFail when the predecessor chain is broken.
*/
func (re *RoutingEngine) ShortestPath(s, t da.Index) (Route, bool, error) {
	n := re.graph.NumberOfVertices()
	if int(s) >= n || int(t) >= n {
		return Route{}, false, ErrInvalidVertex
	}

	if s == t {
		return newRoute(0, []da.Index{}, 0), true, nil
	}

	state := re.bufPool.Get().(*searchState)
	defer func() {
		state.reset()
		re.bufPool.Put(state)
	}()

	query := newAstar(re, state, t)
	found, err := query.search(s)
	if err != nil {
		re.logger.Debug("astar search aborted", zap.Uint32("source", uint32(s)), zap.Uint32("target", uint32(t)),
			zap.Int("settled", query.numSettledNodes), zap.Error(err))
		return Route{}, false, err
	}
	if !found {
		return newRoute(0, nil, query.numSettledNodes), false, nil
	}

	edgePath, err := query.reconstructPath(s, t, re.resultCapacity())
	if err != nil {
		re.logger.Error("failed to reconstruct path", zap.Uint32("source", uint32(s)),
			zap.Uint32("target", uint32(t)), zap.Error(err))
		return Route{}, false, err
	}

	return newRoute(state.travelTime[t], edgePath, query.numSettledNodes), true, nil
}
