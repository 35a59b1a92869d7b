package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lintang-b-s/livenav/pkg/concurrent"
	log "github.com/lintang-b-s/livenav/pkg/logger"
	"go.uber.org/zap"
)

var (
	addr        = flag.String("addr", "localhost:5555", "line protocol server address")
	metaFile    = flag.String("meta", "./data/graph.meta", "graph meta file, used for node and edge counts")
	numWorkers  = flag.Int("workers", 32, "number of concurrent connections")
	numRequests = flag.Int("requests", 100000, "total number of requests")
	updateRatio = flag.Float64("update_ratio", 0.5, "fraction of requests that are UPD")
	maxSpeed    = flag.Float64("max_speed", 30, "upper bound of random UPD speeds")
	seed        = flag.Int64("seed", 1, "random seed")
)

type stressResult struct {
	outcome string
	took    time.Duration
}

func main() {
	flag.Parse()
	logger, err := log.New()
	if err != nil {
		panic(err)
	}

	meta, err := godotenv.Read(*metaFile)
	if err != nil {
		logger.Fatal("failed to read graph meta", zap.Error(err))
	}
	numNodes, _ := strconv.Atoi(meta["NUM_NODES"])
	numEdges, _ := strconv.Atoi(meta["NUM_EDGES"])
	if numNodes <= 0 || numEdges <= 0 {
		logger.Fatal("graph meta must have positive NUM_NODES and NUM_EDGES")
	}

	rd := rand.New(rand.NewSource(*seed))
	workers := concurrent.NewWorkerPool[string, stressResult](*numWorkers, *numRequests)
	for i := 0; i < *numRequests; i++ {
		if rd.Float64() < *updateRatio {
			workers.AddJob(fmt.Sprintf("UPD %d %.3f\n", rd.Intn(numEdges), 0.1+rd.Float64()*(*maxSpeed)))
		} else {
			workers.AddJob(fmt.Sprintf("REQ %d %d\n", rd.Intn(numNodes), rd.Intn(numNodes)))
		}
	}
	workers.Close()

	start := time.Now()
	workers.StartWithFactory(func(workerId int) concurrent.JobFunc[string, stressResult] {
		conn, err := net.Dial("tcp", *addr)
		if err != nil {
			logger.Error("dial failed", zap.Int("worker", workerId), zap.Error(err))
			return func(string) stressResult { return stressResult{outcome: "DIAL_ERROR"} }
		}
		br := bufio.NewReader(conn)

		return func(req string) stressResult {
			before := time.Now()
			if _, err := conn.Write([]byte(req)); err != nil {
				return stressResult{outcome: "IO_ERROR"}
			}
			resp, err := br.ReadString('\n')
			if err != nil {
				return stressResult{outcome: "IO_ERROR"}
			}
			return stressResult{outcome: outcomeOf(resp), took: time.Since(before)}
		}
	})
	workers.Wait()
	elapsed := time.Since(start)

	counts := make(map[string]int)
	latencies := make([]time.Duration, 0, *numRequests)
	for res := range workers.CollectResults() {
		counts[res.outcome]++
		if res.took > 0 {
			latencies = append(latencies, res.took)
		}
	}
	slices.Sort(latencies)

	for outcome, c := range counts {
		logger.Info("outcome", zap.String("response", outcome), zap.Int("count", c))
	}
	logger.Info("stress test done",
		zap.Int("requests", *numRequests),
		zap.Duration("elapsed", elapsed),
		zap.Float64("requests_per_second", float64(*numRequests)/elapsed.Seconds()),
		zap.Duration("p50", percentile(latencies, 0.50)),
		zap.Duration("p99", percentile(latencies, 0.99)),
	)
}

// outcomeOf keeps the response kind: "ROUTE", "ACK" or "ERR <code>".
func outcomeOf(resp string) string {
	fields := strings.Fields(resp)
	switch {
	case len(fields) == 0:
		return "EMPTY_RESPONSE"
	case fields[0] == "ERR" && len(fields) > 1:
		return "ERR " + fields[1]
	default:
		return fields[0]
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(p*float64(len(sorted)-1))]
}
