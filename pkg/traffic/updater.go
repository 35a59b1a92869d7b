package traffic

import (
	da "github.com/lintang-b-s/livenav/pkg/datastructure"
	"go.uber.org/zap"
)

// SpeedUpdater feeds speed observations into the graph through the filter.
type SpeedUpdater struct {
	graph  *da.Graph
	logger *zap.Logger
}

func NewSpeedUpdater(graph *da.Graph, logger *zap.Logger) *SpeedUpdater {
	return &SpeedUpdater{
		graph:  graph,
		logger: logger,
	}
}

// ApplySpeed applies one observation to edgeId atomically. on error the edge keeps its previous state.
func (su *SpeedUpdater) ApplySpeed(edgeId da.Index, speed float64) (da.EdgeState, error) {
	state, err := su.graph.UpdateEdgeWeight(edgeId, func(edge da.Edge, cur da.EdgeState) (da.EdgeState, error) {
		return Observe(edge, cur, speed)
	})
	if err != nil {
		return state, err
	}

	if su.logger.Core().Enabled(zap.DebugLevel) {
		su.logger.Debug("edge travel time updated", zap.Uint32("edge_id", uint32(edgeId)),
			zap.Float64("speed", speed), zap.Float64("travel_time", state.TravelTime),
			zap.Uint64("observations", state.ObservationCount))
	}
	return state, nil
}
