package datastructure

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var ErrGraphLoad = errors.New("failed to load graph")

const (
	metaNumNodes = "NUM_NODES"
	metaNumEdges = "NUM_EDGES"
)

/*
ReadGraph. load a graph from three files:

	graph.meta  KEY=VALUE lines: NUM_NODES, NUM_EDGES
	nodes.csv   id,x,y
	edges.csv   id,from,to,length[,speed]

ids must cover [0, NUM_NODES) and [0, NUM_EDGES) exactly once, in any order. an edge without speed
uses nominalSpeed. a header row is allowed in both csv files. a graph with zero nodes is valid.
*/
func ReadGraph(metaPath, nodesPath, edgesPath string, nominalSpeed float64) (*Graph, error) {
	numNodes, numEdges, err := readMeta(metaPath)
	if err != nil {
		return nil, err
	}

	gb := NewGraphBuilder(numNodes)
	gb.PreallocateEdges(numEdges)

	err = readNodes(nodesPath, numNodes, gb)
	if err != nil {
		return nil, err
	}

	err = readEdges(edgesPath, numNodes, numEdges, nominalSpeed, gb)
	if err != nil {
		return nil, err
	}

	return gb.Build(), nil
}

func readMeta(metaPath string) (int, int, error) {
	meta, err := godotenv.Read(metaPath)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: read meta %s: %v", ErrGraphLoad, metaPath, err)
	}

	numNodes, err := parseCount(meta, metaNumNodes)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: meta %s: %v", ErrGraphLoad, metaPath, err)
	}
	numEdges, err := parseCount(meta, metaNumEdges)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: meta %s: %v", ErrGraphLoad, metaPath, err)
	}
	if numNodes >= int(INVALID_VERTEX_ID) || numEdges >= int(INVALID_EDGE_ID) {
		return 0, 0, fmt.Errorf("%w: meta %s: graph too large", ErrGraphLoad, metaPath)
	}
	return numNodes, numEdges, nil
}

func parseCount(meta map[string]string, key string) (int, error) {
	raw, ok := meta[key]
	if !ok {
		return 0, fmt.Errorf("missing %s", key)
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non negative integer, got %q", key, raw)
	}
	return n, nil
}

// readRecords calls handle for every data row of a csv file. line is 1-based.
func readRecords(path string, handle func(line int, record []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGraphLoad, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comment = '#'
	r.ReuseRecord = true

	first := true
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrGraphLoad, path, err)
		}
		line, _ := r.FieldPos(0)

		if first {
			first = false
			if _, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64); err != nil {
				// header
				continue
			}
		}

		if err := handle(line, record); err != nil {
			return fmt.Errorf("%w: %s line %d: %v", ErrGraphLoad, path, line, err)
		}
	}
}

func parseId(s string, n int) (Index, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	if id < 0 || id >= int64(n) {
		return 0, fmt.Errorf("id %d out of range [0, %d)", id, n)
	}
	return Index(id), nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

func readNodes(nodesPath string, numNodes int, gb *GraphBuilder) error {
	seen := make([]bool, numNodes)
	count := 0

	err := readRecords(nodesPath, func(line int, record []string) error {
		if len(record) != 3 {
			return fmt.Errorf("expected 3 fields (id,x,y), got %d", len(record))
		}
		id, err := parseId(record[0], numNodes)
		if err != nil {
			return err
		}
		if seen[id] {
			return fmt.Errorf("duplicate node id %d", id)
		}
		x, err := parseFloat(record[1])
		if err != nil {
			return err
		}
		y, err := parseFloat(record[2])
		if err != nil {
			return err
		}
		if err := gb.SetVertexCoordinates(id, x, y); err != nil {
			return err
		}
		seen[id] = true
		count++
		return nil
	})
	if err != nil {
		return err
	}

	if count != numNodes {
		return fmt.Errorf("%w: %s: expected %d nodes, got %d", ErrGraphLoad, nodesPath, numNodes, count)
	}
	return nil
}

type edgeRecord struct {
	tail, head    Index
	length, speed float64
	ok            bool
}

func readEdges(edgesPath string, numNodes, numEdges int, nominalSpeed float64, gb *GraphBuilder) error {
	records := make([]edgeRecord, numEdges)
	count := 0

	err := readRecords(edgesPath, func(line int, record []string) error {
		if len(record) != 4 && len(record) != 5 {
			return fmt.Errorf("expected 4 or 5 fields (id,from,to,length[,speed]), got %d", len(record))
		}
		id, err := parseId(record[0], numEdges)
		if err != nil {
			return err
		}
		if records[id].ok {
			return fmt.Errorf("duplicate edge id %d", id)
		}
		tail, err := parseId(record[1], numNodes)
		if err != nil {
			return fmt.Errorf("from: %v", err)
		}
		head, err := parseId(record[2], numNodes)
		if err != nil {
			return fmt.Errorf("to: %v", err)
		}
		length, err := parseFloat(record[3])
		if err != nil {
			return err
		}
		speed := nominalSpeed
		if len(record) == 5 && strings.TrimSpace(record[4]) != "" {
			speed, err = parseFloat(record[4])
			if err != nil {
				return err
			}
		}

		records[id] = edgeRecord{tail: tail, head: head, length: length, speed: speed, ok: true}
		count++
		return nil
	})
	if err != nil {
		return err
	}

	if count != numEdges {
		return fmt.Errorf("%w: %s: expected %d edges, got %d", ErrGraphLoad, edgesPath, numEdges, count)
	}

	// add in id order so builder ids match file ids
	for id, rec := range records {
		if _, err := gb.AddEdge(rec.tail, rec.head, rec.length, rec.speed); err != nil {
			return fmt.Errorf("%w: %s edge %d: %v", ErrGraphLoad, edgesPath, id, err)
		}
	}
	return nil
}

// WriteGraph writes g in the format read by ReadGraph. the speed column is chosen so that
// length / speed reproduces the current travel time of every edge.
func (g *Graph) WriteGraph(metaPath, nodesPath, edgesPath string) error {
	err := godotenv.Write(map[string]string{
		metaNumNodes: strconv.Itoa(g.NumberOfVertices()),
		metaNumEdges: strconv.Itoa(g.NumberOfEdges()),
	}, metaPath)
	if err != nil {
		return err
	}

	err = writeRecords(nodesPath, []string{"id", "x", "y"}, g.NumberOfVertices(), func(i int) []string {
		v := g.vertices[i]
		return []string{strconv.Itoa(i), formatFloat(v.x), formatFloat(v.y)}
	})
	if err != nil {
		return err
	}

	return writeRecords(edgesPath, []string{"id", "from", "to", "length", "speed"}, g.NumberOfEdges(), func(i int) []string {
		e := g.edges[i]
		speed := e.baseLength / g.GetEdgeTravelTime(Index(i))
		return []string{strconv.Itoa(i), strconv.Itoa(int(e.tail)), strconv.Itoa(int(e.head)),
			formatFloat(e.baseLength), formatFloat(speed)}
	})
}

func writeRecords(path string, header []string, n int, record func(i int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := w.Write(record(i)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
