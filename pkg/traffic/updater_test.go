package traffic

import (
	"sync"
	"testing"

	da "github.com/lintang-b-s/livenav/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func buildLineGraph(t *testing.T, numEdges int) *da.Graph {
	t.Helper()
	gb := da.NewGraphBuilder(numEdges + 1)
	for i := 0; i < numEdges; i++ {
		_, err := gb.AddEdge(da.Index(i), da.Index(i+1), 100, 10)
		require.NoError(t, err)
	}
	return gb.Build()
}

func TestApplySpeed(t *testing.T) {
	g := buildLineGraph(t, 2)
	su := NewSpeedUpdater(g, zap.NewNop())

	state, err := su.ApplySpeed(1, 25)
	require.NoError(t, err)
	assert.Equal(t, 4.0, state.TravelTime)

	_, stored, err := g.GetEdge(1)
	require.NoError(t, err)
	assert.Equal(t, state, stored)

	_, untouched, err := g.GetEdge(0)
	require.NoError(t, err)
	assert.Equal(t, 10.0, untouched.TravelTime)
}

func TestApplySpeedFailureKeepsEdge(t *testing.T) {
	g := buildLineGraph(t, 1)
	su := NewSpeedUpdater(g, zap.NewNop())

	_, err := su.ApplySpeed(0, 20)
	require.NoError(t, err)
	_, before, _ := g.GetEdge(0)

	_, err = su.ApplySpeed(0, -3)
	assert.ErrorIs(t, err, ErrInvalidSpeed)

	_, err = su.ApplySpeed(1, 10)
	assert.ErrorIs(t, err, da.ErrOutOfRange)

	_, after, _ := g.GetEdge(0)
	assert.Equal(t, before, after)
}

func TestApplySpeedConcurrent(t *testing.T) {
	const numEdges = 8
	const perEdgeWriters = 4
	const perWriter = 250

	g := buildLineGraph(t, numEdges)
	su := NewSpeedUpdater(g, zap.NewNop())

	var wg sync.WaitGroup
	for e := 0; e < numEdges; e++ {
		for w := 0; w < perEdgeWriters; w++ {
			wg.Add(1)
			go func(e int) {
				defer wg.Done()
				for i := 0; i < perWriter; i++ {
					if _, err := su.ApplySpeed(da.Index(e), 20); err != nil {
						t.Error(err)
						return
					}
				}
			}(e)
		}
	}
	wg.Wait()

	for e := 0; e < numEdges; e++ {
		_, s, err := g.GetEdge(da.Index(e))
		require.NoError(t, err)
		assert.Equal(t, uint64(perEdgeWriters*perWriter), s.ObservationCount, "no lost updates")
		assert.InDelta(t, 5.0, s.TravelTime, 1e-9)
	}
}
