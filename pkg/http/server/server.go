package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

type Config struct {
	Port int
	// Timeout bounds every request. 0 disables it.
	Timeout time.Duration
}

// New builds the admin http.Server. request contexts derive from ctx.
func New(ctx context.Context, handler http.Handler, config Config) *http.Server {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
		ReadHeaderTimeout: 5 * time.Second,
	}
	if config.Timeout > 0 {
		srv.Handler = http.TimeoutHandler(handler, config.Timeout, "request timeout")
		srv.ReadTimeout = config.Timeout
		srv.WriteTimeout = config.Timeout + time.Second
		srv.IdleTimeout = 4 * config.Timeout
	}
	return srv
}
