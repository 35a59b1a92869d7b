package traffic

import (
	"math"
	"testing"

	da "github.com/lintang-b-s/livenav/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	edge := da.NewEdge(0, 0, 1, 100)

	testCases := []struct {
		name      string
		cur       da.EdgeState
		speed     float64
		wantTT    float64
		wantCount uint64
	}{
		{
			name:      "first observation replaces the default",
			cur:       da.NewEdgeState(7.3),
			speed:     20,
			wantTT:    5,
			wantCount: 1,
		},
		{
			name:      "second observation blends at 0.2",
			cur:       da.EdgeState{TravelTime: 5, EmaTravelTime: 5, ObservationCount: 1},
			speed:     10, // measured 10
			wantTT:    0.2*10 + 0.8*5,
			wantCount: 2,
		},
		{
			name:      "same value is a fixed point",
			cur:       da.EdgeState{TravelTime: 4, EmaTravelTime: 4, ObservationCount: 9},
			speed:     25,
			wantTT:    4,
			wantCount: 10,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Observe(edge, tt.cur, tt.speed)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantTT, got.TravelTime, 1e-12)
			assert.Equal(t, got.TravelTime, got.EmaTravelTime)
			assert.Equal(t, tt.wantCount, got.ObservationCount)
		})
	}
}

func TestObserveBootstrapIsExact(t *testing.T) {
	edge := da.NewEdge(0, 0, 1, 123.456)
	got, err := Observe(edge, da.NewEdgeState(1), 7.89)
	require.NoError(t, err)
	assert.Equal(t, 123.456/7.89, got.TravelTime)
}

func TestObserveInvalidSpeed(t *testing.T) {
	edge := da.NewEdge(0, 0, 1, 100)
	cur := da.EdgeState{TravelTime: 3, EmaTravelTime: 3, ObservationCount: 4}

	testCases := []struct {
		name  string
		speed float64
	}{
		{name: "zero", speed: 0},
		{name: "negative", speed: -5},
		{name: "nan", speed: math.NaN()},
		{name: "positive infinity", speed: math.Inf(1)},
		{name: "negative infinity", speed: math.Inf(-1)},
		{name: "measured time overflows", speed: math.SmallestNonzeroFloat64},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Observe(edge, cur, tt.speed)
			assert.ErrorIs(t, err, ErrInvalidSpeed)
			assert.Equal(t, cur, got)
		})
	}
}

func TestObserveConverges(t *testing.T) {
	edge := da.NewEdge(0, 0, 1, 100)
	state := da.NewEdgeState(1)

	var err error
	state, err = Observe(edge, state, 50) // 2
	require.NoError(t, err)

	prevDiff := math.Inf(1)
	for i := 0; i < 100; i++ {
		state, err = Observe(edge, state, 10) // 10
		require.NoError(t, err)

		diff := math.Abs(state.TravelTime - 10)
		assert.LessOrEqual(t, diff, prevDiff, "must approach the target monotonically")
		assert.GreaterOrEqual(t, state.TravelTime, 2.0)
		assert.LessOrEqual(t, state.TravelTime, 10.0)
		prevDiff = diff
	}
	assert.InDelta(t, 10, state.TravelTime, 1e-6)
	assert.Equal(t, uint64(101), state.ObservationCount)
}
