package main

import (
	"flag"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/lintang-b-s/livenav/pkg/datastructure"
	"github.com/lintang-b-s/livenav/pkg/logger"
	"go.uber.org/zap"
)

var (
	width    = flag.Int("width", 100, "number of grid columns")
	height   = flag.Int("height", 100, "number of grid rows")
	spacing  = flag.Float64("spacing", 100, "distance between neighbouring intersections")
	minSpeed = flag.Float64("min_speed", 8.33, "lowest street speed")
	maxSpeed = flag.Float64("max_speed", 16.67, "highest street speed")
	seed     = flag.Int64("seed", 1, "random seed")
	outDir   = flag.String("out", "./data", "output directory for graph.meta, nodes.csv and edges.csv")
)

/*
generator writes a synthetic grid road network. every street between two neighbouring intersections
is two directed edges; lengths are the spacing stretched by up to 30% and speeds are uniform in
[min_speed, max_speed], so travel times never drop below the straight-line distance over max_speed.
*/
func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	if *width <= 0 || *height <= 0 || *spacing <= 0 || *minSpeed <= 0 || *maxSpeed < *minSpeed {
		logger.Fatal("invalid grid parameters")
	}

	graph, err := buildGrid(*width, *height, *spacing, *minSpeed, *maxSpeed, rand.New(rand.NewSource(*seed)))
	if err != nil {
		logger.Fatal("failed to build grid graph", zap.Error(err))
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Fatal("failed to create output directory", zap.Error(err))
	}
	err = graph.WriteGraph(filepath.Join(*outDir, "graph.meta"), filepath.Join(*outDir, "nodes.csv"),
		filepath.Join(*outDir, "edges.csv"))
	if err != nil {
		logger.Fatal("failed to write graph", zap.Error(err))
	}

	logger.Info("grid graph written", zap.String("dir", *outDir),
		zap.Int("vertices", graph.NumberOfVertices()), zap.Int("edges", graph.NumberOfEdges()))
}

func buildGrid(w, h int, spacing, minSpeed, maxSpeed float64, rd *rand.Rand) (*datastructure.Graph, error) {
	gb := datastructure.NewGraphBuilder(w * h)
	gb.PreallocateEdges(2 * (2*w*h - w - h))

	id := func(x, y int) datastructure.Index {
		return datastructure.Index(y*w + x)
	}
	street := func(u, v datastructure.Index) error {
		length := spacing * (1 + 0.3*rd.Float64())
		for _, e := range [][2]datastructure.Index{{u, v}, {v, u}} {
			speed := minSpeed + (maxSpeed-minSpeed)*rd.Float64()
			if _, err := gb.AddEdge(e[0], e[1], length, speed); err != nil {
				return err
			}
		}
		return nil
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if err := gb.SetVertexCoordinates(id(x, y), float64(x)*spacing, float64(y)*spacing); err != nil {
				return nil, err
			}
			if x+1 < w {
				if err := street(id(x, y), id(x+1, y)); err != nil {
					return nil, err
				}
			}
			if y+1 < h {
				if err := street(id(x, y), id(x, y+1)); err != nil {
					return nil, err
				}
			}
		}
	}
	return gb.Build(), nil
}
