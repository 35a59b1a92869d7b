package geo

import (
	"math"

	"github.com/twpayne/go-polyline"
)

// Coordinate is a planar position on the road network plane.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (c Coordinate) GetX() float64 {
	return c.X
}

func (c Coordinate) GetY() float64 {
	return c.Y
}

func NewCoordinate(x, y float64) Coordinate {
	return Coordinate{
		X: x,
		Y: y,
	}
}

// CalculateEuclideanDistance. straight-line distance between (x1,y1) and (x2,y2), in graph distance units.
func CalculateEuclideanDistance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// PolylineFromCoords encodes coords with the google polyline algorithm (y first, like lat/lon).
func PolylineFromCoords(coords []Coordinate) string {
	s := make([][]float64, 0, len(coords))
	for _, c := range coords {
		s = append(s, []float64{c.Y, c.X})
	}
	return string(polyline.EncodeCoords(s))
}
