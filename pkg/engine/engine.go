package engine

import (
	"github.com/lintang-b-s/livenav/pkg/datastructure"
	"github.com/lintang-b-s/livenav/pkg/engine/routing"
	"github.com/lintang-b-s/livenav/pkg/traffic"
	"go.uber.org/zap"
)

// Engine owns the shared graph together with its single reader (routing) and single writer (speed updates).
type Engine struct {
	graph         *datastructure.Graph
	routingEngine *routing.RoutingEngine
	speedUpdater  *traffic.SpeedUpdater
}

func (e *Engine) GetGraph() *datastructure.Graph {
	return e.graph
}

func (e *Engine) GetRoutingEngine() *routing.RoutingEngine {
	return e.routingEngine
}

func (e *Engine) GetSpeedUpdater() *traffic.SpeedUpdater {
	return e.speedUpdater
}

type GraphFiles struct {
	MetaPath     string
	NodesPath    string
	EdgesPath    string
	NominalSpeed float64
}

func NewEngine(files GraphFiles, config routing.Config, logger *zap.Logger) (*Engine, error) {
	logger.Info("Starting live routing engine...")

	logger.Info("Reading graph from ", zap.String("meta", files.MetaPath), zap.String("nodes", files.NodesPath),
		zap.String("edges", files.EdgesPath))
	graph, err := datastructure.ReadGraph(files.MetaPath, files.NodesPath, files.EdgesPath, files.NominalSpeed)
	if err != nil {
		return nil, err
	}
	logger.Info("Graph loaded", zap.Int("vertices", graph.NumberOfVertices()), zap.Int("edges", graph.NumberOfEdges()))

	// pairs in different components of a one way network answer NO_ROUTE in at least one direction
	sccs := graph.RunKosaraju()
	logger.Info("Strongly connected components", zap.Int("components", sccs.NumComponents),
		zap.Int("largest", sccs.LargestSize))

	return NewEngineFromGraph(graph, config, logger), nil
}

func NewEngineFromGraph(graph *datastructure.Graph, config routing.Config, logger *zap.Logger) *Engine {
	return &Engine{
		graph:         graph,
		routingEngine: routing.NewRoutingEngine(graph, logger, config),
		speedUpdater:  traffic.NewSpeedUpdater(graph, logger),
	}
}
