package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lintang-b-s/livenav/pkg/engine"
	"github.com/lintang-b-s/livenav/pkg/engine/routing"
	"github.com/lintang-b-s/livenav/pkg/http"
	"github.com/lintang-b-s/livenav/pkg/http/usecases"
	"github.com/lintang-b-s/livenav/pkg/logger"
	"github.com/lintang-b-s/livenav/pkg/metrics"
	"github.com/lintang-b-s/livenav/pkg/protocol"
	"github.com/lintang-b-s/livenav/pkg/server"
	"github.com/lintang-b-s/livenav/pkg/spatialindex"
	"github.com/lintang-b-s/livenav/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	metaFile  = flag.String("meta", "", "graph meta file (overrides GRAPH_META)")
	nodesFile = flag.String("nodes", "", "nodes csv file (overrides GRAPH_NODES)")
	edgesFile = flag.String("edges", "", "edges csv file (overrides GRAPH_EDGES)")
	tcpPort   = flag.Int("port", 0, "line protocol port (overrides TCP_PORT)")
)

func main() {
	flag.Parse()

	// a missing .env is fine, the environment and data/config.yaml still apply
	_ = godotenv.Load()
	if err := util.ReadConfig(); err != nil {
		panic(err)
	}
	overrideFromFlags()

	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	liveEngine, err := engine.NewEngine(engine.GraphFiles{
		MetaPath:     viper.GetString("GRAPH_META"),
		NodesPath:    viper.GetString("GRAPH_NODES"),
		EdgesPath:    viper.GetString("GRAPH_EDGES"),
		NominalSpeed: viper.GetFloat64("NOMINAL_SPEED"),
	}, routing.Config{
		HeuristicScale:  viper.GetFloat64("HEURISTIC_SCALE"),
		MaxSettledNodes: viper.GetInt("MAX_SETTLED_NODES"),
		MaxPathEdges:    viper.GetInt("MAX_PATH_EDGES"),
	}, logger)
	if err != nil {
		logger.Fatal("failed to load graph", zap.Error(err))
	}

	metric := metrics.NewMetric()
	graph := liveEngine.GetGraph()

	handler, err := protocol.NewHandler(graph, liveEngine.GetRoutingEngine(), liveEngine.GetSpeedUpdater(),
		viper.GetInt("MAX_RESPONSE_BYTES"), metric, logger)
	if err != nil {
		logger.Fatal("failed to build protocol handler", zap.Error(err))
	}

	lineServer := server.New(handler, server.Config{
		Port:            viper.GetInt("TCP_PORT"),
		MaxLineBytes:    viper.GetInt("MAX_LINE_BYTES"),
		IdleTimeout:     viper.GetDuration("IDLE_TIMEOUT"),
		UpdateRateLimit: viper.GetFloat64("UPDATE_RATE_LIMIT"),
	}, metric, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return lineServer.ListenAndServe(gctx)
	})

	if viper.GetBool("API_ENABLED") {
		rtree := spatialindex.NewRtree()
		rtree.Build(graph, logger)
		routingService := usecases.NewRoutingService(logger, liveEngine.GetRoutingEngine(),
			liveEngine.GetSpeedUpdater(), rtree, viper.GetFloat64("SNAP_RADIUS"))

		api := http.NewServer(logger)
		g.Go(func() error {
			return api.Use(gctx, routingService, metric.Handler())
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Fatal("livenav server stopped with error", zap.Error(err))
	}
	logger.Info("livenav server stopped")
}

func overrideFromFlags() {
	if *metaFile != "" {
		viper.Set("GRAPH_META", *metaFile)
	}
	if *nodesFile != "" {
		viper.Set("GRAPH_NODES", *nodesFile)
	}
	if *edgesFile != "" {
		viper.Set("GRAPH_EDGES", *edgesFile)
	}
	if *tcpPort != 0 {
		viper.Set("TCP_PORT", *tcpPort)
	}
}
