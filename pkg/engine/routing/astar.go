package routing

import (
	da "github.com/lintang-b-s/livenav/pkg/datastructure"
	"github.com/lintang-b-s/livenav/pkg/geo"
	"github.com/lintang-b-s/livenav/pkg/util"
)

/*
Astar. unidirectional A* from one source to one target.

priority of a vertex v is f(v) = g(v) + h(v), with g the best known travel time from the source and
h the straight-line distance from v to the target (times HeuristicScale). h is only a lower bound on the
remaining travel time when no edge is faster than 1 distance unit per time unit (scaled); with faster
edges the returned route may not be optimal.

a vertex can be in the priority queue more than once. the first pop settles it, later pops are stale and skipped.
ties on f go to the smaller h, then to the earlier insertion.
*/
type Astar struct {
	engine *RoutingEngine
	state  *searchState

	target           da.Index
	targetX, targetY float64
	heuristicScale   float64
	maxSettledNodes  int
	numSettledNodes  int
}

func newAstar(engine *RoutingEngine, state *searchState, target da.Index) *Astar {
	tx, ty := engine.graph.GetVertexCoordinates(target)
	return &Astar{
		engine:          engine,
		state:           state,
		target:          target,
		targetX:         tx,
		targetY:         ty,
		heuristicScale:  engine.config.HeuristicScale,
		maxSettledNodes: engine.config.MaxSettledNodes,
	}
}

func (as *Astar) heuristic(v da.Index) float64 {
	x, y := as.engine.graph.GetVertexCoordinates(v)
	return as.heuristicScale * geo.CalculateEuclideanDistance(x, y, as.targetX, as.targetY)
}

// search returns true once the target is popped from the queue.
func (as *Astar) search(source da.Index) (bool, error) {
	graph := as.engine.graph
	state := as.state
	pq := state.pq

	state.label(source, 0, da.INVALID_EDGE_ID)
	hs := as.heuristic(source)
	pq.Insert(da.NewPriorityQueueNodeWithTieBreak(hs, hs, source))

	for !pq.IsEmpty() {
		queryKey, _ := pq.ExtractMin()
		uId := queryKey.GetItem()

		if uId == as.target {
			return true, nil
		}

		if state.isClosed(uId) {
			// stale entry, uId was settled with a smaller f
			continue
		}
		state.close(uId)
		as.numSettledNodes++
		if as.maxSettledNodes > 0 && as.numSettledNodes > as.maxSettledNodes {
			return false, ErrSearchBudgetExceeded
		}

		uTravelTime := state.travelTime[uId]

		graph.ForOutEdgesOf(uId, func(e *da.Edge) {
			vId := e.GetHead()

			// one atomic snapshot of the edge weight, a concurrent update lands before or after it
			newTravelTime := uTravelTime + graph.GetEdgeTravelTime(e.GetEdgeId())

			if newTravelTime >= state.travelTime[vId] {
				// newTravelTime is not better, do nothing
				return
			}

			state.label(vId, newTravelTime, e.GetEdgeId())

			hv := as.heuristic(vId)
			pq.Insert(da.NewPriorityQueueNodeWithTieBreak(newTravelTime+hv, hv, vId))
		})
	}

	return false, nil
}

// reconstructPath follows parent edges from target back to source. g strictly decreases along
// parent edges, so the chain has no cycle; the capacity check still bounds the walk.
func (as *Astar) reconstructPath(source, target da.Index, capacity int) ([]da.Index, error) {
	graph := as.engine.graph
	edgePath := make([]da.Index, 0, 16)

	for v := target; v != source; {
		parentEdge := as.state.parentEdge[v]
		if parentEdge == da.INVALID_EDGE_ID {
			return nil, ErrRouteFail
		}
		if len(edgePath) >= graph.NumberOfEdges() {
			return nil, ErrRouteFail
		}
		if len(edgePath) >= capacity {
			return nil, ErrNoMemory
		}

		edgePath = append(edgePath, parentEdge)
		e, _, err := graph.GetEdge(parentEdge)
		if err != nil {
			return nil, ErrRouteFail
		}
		v = e.GetTail()
	}

	util.ReverseG(edgePath)
	return edgePath, nil
}
