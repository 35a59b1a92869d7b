package http

import (
	"context"
	"net/http"

	http_router "github.com/lintang-b-s/livenav/pkg/http/router"
	"github.com/lintang-b-s/livenav/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/livenav/pkg/http/server"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Server struct {
	Log *zap.Logger
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use runs the admin API with the API_* settings until ctx is done.
func (s *Server) Use(
	ctx context.Context,
	routingService controllers.RoutingService,
	metricsHandler http.Handler,
) error {
	config := http_server.Config{
		Port:    viper.GetInt("API_PORT"),
		Timeout: viper.GetDuration("API_TIMEOUT"),
	}

	server := http_router.NewAPI(s.Log)
	return server.Run(ctx, config, viper.GetFloat64("API_RATE_LIMIT"), routingService, metricsHandler)
}
