package traffic

import (
	"errors"

	"github.com/lintang-b-s/livenav/pkg"
	da "github.com/lintang-b-s/livenav/pkg/datastructure"
	"github.com/lintang-b-s/livenav/pkg/util"
)

var ErrInvalidSpeed = errors.New("speed must be positive and finite")

/*
Observe. first order IIR filter over travel time measurements of one edge:

	measured = baseLength / speed
	ema'     = alpha * measured + (1 - alpha) * ema

alpha is 1.0 for the first observation, so the first sample replaces the default travel time,
and 0.2 afterwards (about five samples time constant). the new travel time of the edge is ema'.
*/
func Observe(edge da.Edge, cur da.EdgeState, speed float64) (da.EdgeState, error) {
	if !util.IsPositiveFinite(speed) {
		return cur, ErrInvalidSpeed
	}

	measured := edge.GetBaseLength() / speed
	if !util.IsPositiveFinite(measured) {
		return cur, ErrInvalidSpeed
	}

	alpha := pkg.EMA_ALPHA
	if cur.ObservationCount == 0 {
		alpha = pkg.EMA_ALPHA_FIRST_OBSERVATION
	}

	ema := alpha*measured + (1.0-alpha)*cur.EmaTravelTime
	return da.EdgeState{
		TravelTime:       ema,
		EmaTravelTime:    ema,
		ObservationCount: cur.ObservationCount + 1,
	}, nil
}
