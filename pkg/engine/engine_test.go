package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/livenav/pkg/datastructure"
	"github.com/lintang-b-s/livenav/pkg/engine/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeGraphFiles(t *testing.T, meta, nodes, edges string) GraphFiles {
	t.Helper()
	dir := t.TempDir()
	files := GraphFiles{
		MetaPath:     filepath.Join(dir, "graph.meta"),
		NodesPath:    filepath.Join(dir, "nodes.csv"),
		EdgesPath:    filepath.Join(dir, "edges.csv"),
		NominalSpeed: 10,
	}
	require.NoError(t, os.WriteFile(files.MetaPath, []byte(meta), 0o644))
	require.NoError(t, os.WriteFile(files.NodesPath, []byte(nodes), 0o644))
	require.NoError(t, os.WriteFile(files.EdgesPath, []byte(edges), 0o644))
	return files
}

func TestNewEngine(t *testing.T) {
	files := writeGraphFiles(t,
		"NUM_NODES=3\nNUM_EDGES=3\n",
		"id,x,y\n0,0,0\n1,1,0\n2,2,0\n",
		"id,from,to,length,speed\n0,0,2,100\n1,0,1,10\n2,1,2,10\n")

	e, err := NewEngine(files, routing.DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 3, e.GetGraph().NumberOfVertices())

	route, found, err := e.GetRoutingEngine().ShortestPath(0, 2)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []datastructure.Index{1, 2}, route.GetEdgeIds())

	_, err = e.GetSpeedUpdater().ApplySpeed(2, 0.5)
	require.NoError(t, err)
	route, _, err = e.GetRoutingEngine().ShortestPath(0, 2)
	require.NoError(t, err)
	assert.Equal(t, []datastructure.Index{0}, route.GetEdgeIds())
}

func TestNewEngineLoadFailure(t *testing.T) {
	files := writeGraphFiles(t, "NUM_NODES=2\nNUM_EDGES=1\n", "0,0,0\n1,1,0\n", "0,0,5,10\n")

	_, err := NewEngine(files, routing.DefaultConfig(), zap.NewNop())
	assert.ErrorIs(t, err, datastructure.ErrGraphLoad)

	files.MetaPath = filepath.Join(t.TempDir(), "missing.meta")
	_, err = NewEngine(files, routing.DefaultConfig(), zap.NewNop())
	assert.ErrorIs(t, err, datastructure.ErrGraphLoad)
}
