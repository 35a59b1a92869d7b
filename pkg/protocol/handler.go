package protocol

import (
	"errors"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	da "github.com/lintang-b-s/livenav/pkg/datastructure"
	"github.com/lintang-b-s/livenav/pkg/engine/routing"
	"github.com/lintang-b-s/livenav/pkg/metrics"
	"github.com/lintang-b-s/livenav/pkg/traffic"
	"github.com/lintang-b-s/livenav/pkg/util"
	"go.uber.org/zap"
)

// Handler turns one request line into one response line. it holds no per connection state
// and is safe for concurrent use.
type Handler struct {
	router           RouteFinder
	updater          SpeedApplier
	validator        *util.Validator
	maxResponseBytes int
	metric           *metrics.Metric
	log              *zap.Logger
}

func NewHandler(graph GraphBounds, router RouteFinder, updater SpeedApplier, maxResponseBytes int,
	metric *metrics.Metric, log *zap.Logger) (*Handler, error) {
	v := util.NewValidator()

	err := v.RegisterValidation("vertexid", func(fl validator.FieldLevel) bool {
		return graph.IsValidVertex(fl.Field().Int())
	}, "{0} must be a node id of the graph")
	if err != nil {
		return nil, err
	}
	err = v.RegisterValidation("edgeid", func(fl validator.FieldLevel) bool {
		return graph.IsValidEdge(fl.Field().Int())
	}, "{0} must be an edge id of the graph")
	if err != nil {
		return nil, err
	}
	err = v.RegisterValidation("speed", func(fl validator.FieldLevel) bool {
		return util.IsPositiveFinite(fl.Field().Float())
	}, "{0} must be a positive finite number")
	if err != nil {
		return nil, err
	}

	return &Handler{
		router:           router,
		updater:          updater,
		validator:        v,
		maxResponseBytes: maxResponseBytes,
		metric:           metric,
		log:              log,
	}, nil
}

// Handle returns the response for line without the trailing newline.
func (h *Handler) Handle(line string) string {
	cmd, err := parseCommand(line)
	if err != nil {
		return err.Error()
	}

	switch cmd.kind {
	case commandRoute:
		resp, err := h.route(cmd.route)
		if err != nil {
			return err.Error()
		}
		return resp
	case commandUpdate:
		if err := h.updateSpeed(cmd.update); err != nil {
			return err.Error()
		}
		return ResponseAck
	}
	return ErrUnknownCmd.Error()
}

func (h *Handler) route(req routeRequest) (string, error) {
	if err := h.validator.Struct(req); err != nil {
		h.debugValidation("invalid route request", err)
		h.metric.ObserveRoute(metrics.ResultInvalid, 0, 0)
		return "", ErrBadNodes
	}

	start := time.Now()
	route, found, err := h.router.ShortestPath(da.Index(req.Src), da.Index(req.Dst))
	took := time.Since(start)

	switch {
	case errors.Is(err, routing.ErrInvalidVertex):
		h.metric.ObserveRoute(metrics.ResultInvalid, took, 0)
		return "", ErrBadNodes
	case errors.Is(err, routing.ErrNoMemory):
		h.metric.ObserveRoute(metrics.ResultFail, took, 0)
		return "", ErrNoMem
	case err != nil:
		h.log.Debug("route query failed", zap.Int64("src", req.Src), zap.Int64("dst", req.Dst), zap.Error(err))
		h.metric.ObserveRoute(metrics.ResultFail, took, 0)
		return "", ErrRouteFail
	case !found:
		h.metric.ObserveRoute(metrics.ResultNoRoute, took, route.GetNumSettledNodes())
		return "", ErrNoRoute
	}

	buf := appendRoute(make([]byte, 0, 32+8*len(route.GetEdgeIds())), route.GetTotalCost(), route.GetEdgeIds())
	if h.maxResponseBytes > 0 && len(buf)+1 > h.maxResponseBytes {
		h.log.Debug("route response too large", zap.Int("bytes", len(buf)+1),
			zap.Int("max_response_bytes", h.maxResponseBytes))
		h.metric.ObserveRoute(metrics.ResultFail, took, route.GetNumSettledNodes())
		return "", ErrRouteFail
	}

	h.metric.ObserveRoute(metrics.ResultFound, took, route.GetNumSettledNodes())
	return string(buf), nil
}

func (h *Handler) updateSpeed(req speedUpdateRequest) error {
	if err := h.validator.Struct(req); err != nil {
		h.debugValidation("invalid speed update", err)
		h.metric.ObserveSpeedUpdate(metrics.ResultRejected)
		if slices.Contains(util.FailedTags(err), "edgeid") {
			return ErrBadEdge
		}
		return ErrBadSpeed
	}

	_, err := h.updater.ApplySpeed(da.Index(req.EdgeId), req.Speed)
	switch {
	case err == nil:
		h.metric.ObserveSpeedUpdate(metrics.ResultApplied)
		return nil
	case errors.Is(err, da.ErrOutOfRange):
		h.metric.ObserveSpeedUpdate(metrics.ResultRejected)
		return ErrBadEdge
	case errors.Is(err, traffic.ErrInvalidSpeed), errors.Is(err, da.ErrInvalidWeight):
		h.metric.ObserveSpeedUpdate(metrics.ResultRejected)
		return ErrBadSpeed
	default:
		h.log.Error("speed update failed", zap.Int64("edge_id", req.EdgeId), zap.Error(err))
		h.metric.ObserveSpeedUpdate(metrics.ResultRejected)
		return ErrBadSpeed
	}
}

func (h *Handler) debugValidation(msg string, err error) {
	if h.log.Core().Enabled(zap.DebugLevel) {
		h.log.Debug(msg, zap.String("reason", h.validator.ValidationMessage(err)))
	}
}
