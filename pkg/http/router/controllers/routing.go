package controllers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/livenav/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/livenav/pkg/util"
	"go.uber.org/zap"
)

type routingAPI struct {
	routingService RoutingService
	validator      *util.Validator
	log            *zap.Logger
}

func New(routingService RoutingService, log *zap.Logger) (*routingAPI, error) {
	v := util.NewValidator()
	err := v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}, "{0} must be a finite number")
	if err != nil {
		return nil, err
	}

	return &routingAPI{
		routingService: routingService,
		validator:      v,
		log:            log,
	}, nil
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.GET("/computeRoutes", api.shortestPath)
	group.GET("/computeRoutesByCoords", api.shortestPathByCoords)
	group.POST("/speeds", api.updateSpeed)
	group.GET("/edges/:id", api.getEdge)
}

func (api *routingAPI) shortestPath(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request shortestPathRequest
		err     error
	)

	query := r.URL.Query()

	request.Src, err = strconv.ParseInt(query.Get("src"), 10, 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("src is required and must be a valid int"))
		return
	}
	request.Dst, err = strconv.ParseInt(query.Get("dst"), 10, 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("dst is required and must be a valid int"))
		return
	}
	if err := api.validator.Struct(request); err != nil {
		api.BadRequestResponse(w, r, errors.New(api.validator.ValidationMessage(err)))
		return
	}

	res, err := api.routingService.ShortestPath(request.Src, request.Dst)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewShortestPathResponse(res)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) shortestPathByCoords(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request shortestPathByCoordsRequest
		err     error
	)

	query := r.URL.Query()

	request.OriginX, err = strconv.ParseFloat(query.Get("origin_x"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("origin_x is required and must be a valid float"))
		return
	}
	request.OriginY, err = strconv.ParseFloat(query.Get("origin_y"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("origin_y is required and must be a valid float"))
		return
	}
	request.DestinationX, err = strconv.ParseFloat(query.Get("destination_x"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("destination_x is required and must be a valid float"))
		return
	}
	request.DestinationY, err = strconv.ParseFloat(query.Get("destination_y"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("destination_y is required and must be a valid float"))
		return
	}
	if err := api.validator.Struct(request); err != nil {
		api.BadRequestResponse(w, r, errors.New(api.validator.ValidationMessage(err)))
		return
	}

	res, err := api.routingService.ShortestPathByCoords(request.OriginX, request.OriginY,
		request.DestinationX, request.DestinationY)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewShortestPathResponse(res)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) updateSpeed(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request speedUpdateRequest

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	if err := api.validator.Struct(request); err != nil {
		api.BadRequestResponse(w, r, errors.New(api.validator.ValidationMessage(err)))
		return
	}

	state, err := api.routingService.UpdateSpeed(*request.EdgeId, *request.Speed)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": state}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) getEdge(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	edgeId, err := strconv.ParseInt(p.ByName("id"), 10, 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("edge id must be a valid int"))
		return
	}

	info, err := api.routingService.GetEdge(edgeId)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewEdgeResponse(info.Edge, info.State)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
