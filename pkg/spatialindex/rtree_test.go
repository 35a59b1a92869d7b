package spatialindex

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lintang-b-s/livenav/pkg/datastructure"
	"github.com/lintang-b-s/livenav/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func buildRtree(t *testing.T, coords [][2]float64) (*Rtree, *datastructure.Graph) {
	t.Helper()
	gb := datastructure.NewGraphBuilder(len(coords))
	for i, c := range coords {
		require.NoError(t, gb.SetVertexCoordinates(datastructure.Index(i), c[0], c[1]))
	}
	g := gb.Build()
	rt := NewRtree()
	rt.Build(g, zap.NewNop())
	return rt, g
}

func TestNearestVertex(t *testing.T) {
	rt, _ := buildRtree(t, [][2]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {5, 5}})

	testCases := []struct {
		name     string
		x, y     float64
		want     datastructure.Index
		wantDist float64
	}{
		{name: "exact vertex", x: 10, y: 10, want: 2, wantDist: 0},
		{name: "near center", x: 4, y: 5, want: 4, wantDist: 1},
		{name: "far outside the bounding box", x: -300, y: 0, want: 0, wantDist: 300},
		{name: "equidistant goes to smaller id", x: 5, y: 0, want: 0, wantDist: 5},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			v, d, err := rt.NearestVertex(tt.x, tt.y)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
			assert.InDelta(t, tt.wantDist, d, 1e-9)
		})
	}
}

func TestNearestVertexMatchesLinearScan(t *testing.T) {
	rd := rand.New(rand.NewSource(3))
	coords := make([][2]float64, 500)
	for i := range coords {
		coords[i] = [2]float64{rd.Float64() * 1000, rd.Float64() * 200}
	}
	rt, g := buildRtree(t, coords)

	for q := 0; q < 200; q++ {
		qx, qy := rd.Float64()*1400-200, rd.Float64()*600-200
		wantDist := math.Inf(1)
		for v := 0; v < g.NumberOfVertices(); v++ {
			x, y := g.GetVertexCoordinates(datastructure.Index(v))
			wantDist = math.Min(wantDist, geo.CalculateEuclideanDistance(qx, qy, x, y))
		}

		_, d, err := rt.NearestVertex(qx, qy)
		require.NoError(t, err)
		assert.InDelta(t, wantDist, d, 1e-9)
	}
}

func TestNearestVertexSinglePointAndEmpty(t *testing.T) {
	rt, _ := buildRtree(t, [][2]float64{{3, 4}})
	v, d, err := rt.NearestVertex(0, 0)
	require.NoError(t, err)
	assert.Equal(t, datastructure.Index(0), v)
	assert.Equal(t, 5.0, d)

	empty, _ := buildRtree(t, nil)
	_, _, err = empty.NearestVertex(0, 0)
	assert.ErrorIs(t, err, ErrEmptyIndex)
}

func TestSearchWithinRadius(t *testing.T) {
	rt, _ := buildRtree(t, [][2]float64{{0, 0}, {1, 1}, {5, 5}})
	assert.ElementsMatch(t, []datastructure.Index{0, 1}, rt.SearchWithinRadius(0, 0, 1.5))
	assert.Empty(t, rt.SearchWithinRadius(100, 100, 1))
}
