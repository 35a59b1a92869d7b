package spatialindex

import (
	"errors"
	"math"

	"github.com/lintang-b-s/livenav/pkg/datastructure"
	"github.com/lintang-b-s/livenav/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

var ErrEmptyIndex = errors.New("spatial index is empty")

type Rtree struct {
	tr *rtree.RTreeG[datastructure.Index]

	minX, minY, maxX, maxY float64
	initialRadius          float64
	size                   int
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[datastructure.Index]
	return &Rtree{
		tr:   &tr,
		minX: math.Inf(1), minY: math.Inf(1),
		maxX: math.Inf(-1), maxY: math.Inf(-1),
	}
}

// Build. index every vertex of graph as a point.
func (rt *Rtree) Build(graph *datastructure.Graph, log *zap.Logger) {
	log.Info("Building R-tree spatial index...")
	for v := 0; v < graph.NumberOfVertices(); v++ {
		x, y := graph.GetVertexCoordinates(datastructure.Index(v))
		rt.Insert(datastructure.Index(v), x, y)
	}

	// about one vertex per search box on a uniformly spread graph
	if rt.size > 0 {
		area := (rt.maxX - rt.minX) * (rt.maxY - rt.minY)
		rt.initialRadius = math.Sqrt(area / float64(rt.size))
	}
	log.Info("R-tree spatial index built.", zap.Int("vertices", rt.size))
}

func (rt *Rtree) Insert(v datastructure.Index, x, y float64) {
	rt.tr.Insert([2]float64{x, y}, [2]float64{x, y}, v)
	rt.minX, rt.minY = math.Min(rt.minX, x), math.Min(rt.minY, y)
	rt.maxX, rt.maxY = math.Max(rt.maxX, x), math.Max(rt.maxY, y)
	rt.size++
}

func (rt *Rtree) Len() int {
	return rt.size
}

// SearchWithinRadius returns the vertices inside the square of half side radius around (qx, qy).
func (rt *Rtree) SearchWithinRadius(qx, qy, radius float64) []datastructure.Index {
	results := make([]datastructure.Index, 0, 10)
	rt.tr.Search([2]float64{qx - radius, qy - radius}, [2]float64{qx + radius, qy + radius},
		func(min, max [2]float64, data datastructure.Index) bool {
			results = append(results, data)
			return true
		})
	return results
}

/*
NearestVertex. closest vertex to (qx, qy) by euclidean distance, ties go to the smaller id.

the search square grows by doubling until it holds a vertex whose distance is within the square's
half side: no vertex outside the square can be closer than that one.
*/
func (rt *Rtree) NearestVertex(qx, qy float64) (datastructure.Index, float64, error) {
	if rt.size == 0 {
		return datastructure.INVALID_VERTEX_ID, 0, ErrEmptyIndex
	}

	radius := rt.initialRadius
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		radius = 1
	}
	// the whole index fits in this radius
	outer := geo.CalculateEuclideanDistance(qx, qy, rt.minX, rt.minY) +
		geo.CalculateEuclideanDistance(rt.minX, rt.minY, rt.maxX, rt.maxY)

	for {
		best := datastructure.INVALID_VERTEX_ID
		bestDist := math.Inf(1)
		rt.tr.Search([2]float64{qx - radius, qy - radius}, [2]float64{qx + radius, qy + radius},
			func(min, max [2]float64, v datastructure.Index) bool {
				d := geo.CalculateEuclideanDistance(qx, qy, min[0], min[1])
				if d < bestDist || (d == bestDist && v < best) {
					best, bestDist = v, d
				}
				return true
			})

		if best != datastructure.INVALID_VERTEX_ID && (bestDist <= radius || radius >= outer) {
			return best, bestDist, nil
		}
		if radius >= outer {
			return datastructure.INVALID_VERTEX_ID, 0, ErrEmptyIndex
		}
		radius *= 2
	}
}
