package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/lintang-b-s/livenav/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/livenav/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/livenav/pkg/http/server"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type API struct {
	log *zap.Logger
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

// Handler builds the admin API: routes under /api, /healthz, /metrics, wrapped in the middleware chain.
// rateLimit is requests per second over all clients, 0 disables the limiter.
func (api *API) Handler(routingService controllers.RoutingService, metricsHandler http.Handler,
	rateLimit float64) (http.Handler, error) {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, //nolint:mnd // ignore
	})

	router.Handler(http.MethodGet, "/metrics", metricsHandler)

	group := router_helper.NewRouteGroup(router, "/api")

	navigatorRoutes, err := controllers.New(routingService, api.log)
	if err != nil {
		return nil, err
	}
	navigatorRoutes.Routes(group)

	mwChain := []alice.Constructor{corsHandler.Handler, api.recoverPanic, Heartbeat("/healthz"), Logger(api.log),
		EnforceJSONHandler}
	if rateLimit > 0 {
		mwChain = append(mwChain, Limit(rateLimit))
	}
	return alice.New(mwChain...).Then(router), nil
}

func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	rateLimit float64,
	routingService controllers.RoutingService,
	metricsHandler http.Handler,
) error {
	api.log.Info("Run httprouter API")

	handler, err := api.Handler(routingService, metricsHandler, rateLimit)
	if err != nil {
		return err
	}

	srv := http_server.New(ctx, handler, config)
	api.log.Info(fmt.Sprintf("API run on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		api.log.Info("HTTP server stopped", zap.Error(err))
		return err
	case <-ctx.Done():
		api.log.Info("Context canceled, shutting down server")
		if err := srv.Shutdown(context.Background()); err != nil {
			return err
		}
		if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
