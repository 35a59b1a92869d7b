package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/lintang-b-s/livenav/pkg"
	"github.com/lintang-b-s/livenav/pkg/metrics"
	"github.com/lintang-b-s/livenav/pkg/protocol"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxAcceptDelay = time.Second

// LineHandler answers one request line with one response line, both without the newline.
type LineHandler interface {
	Handle(line string) string
}

type Config struct {
	Port         int
	MaxLineBytes int
	// IdleTimeout closes a connection that sends nothing for that long. 0 disables it.
	IdleTimeout time.Duration
	// UpdateRateLimit caps UPD commands per second on each connection. 0 disables it.
	UpdateRateLimit float64
}

// Server accepts line protocol connections and serves each one on its own goroutine.
type Server struct {
	handler LineHandler
	config  Config
	metric  *metrics.Metric
	log     *zap.Logger
	hub     *Hub

	tooLongResponse string
}

func New(handler LineHandler, config Config, metric *metrics.Metric, log *zap.Logger) *Server {
	if config.MaxLineBytes <= 0 {
		config.MaxLineBytes = pkg.DEFAULT_MAX_LINE_BYTES
	}
	return &Server{
		handler:         handler,
		config:          config,
		metric:          metric,
		log:             log,
		hub:             NewHub(),
		tooLongResponse: protocol.ErrUnknownCmd.Error(),
	}
}

func (s *Server) GetHub() *Hub {
	return s.hub
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then closes ln and every open connection
// and waits for their goroutines. it returns nil on a ctx shutdown and an error wrapping
// net.ErrClosed when ln is closed by someone else. other accept errors are retried with backoff.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Info(fmt.Sprintf("line protocol server run on %s", ln.Addr().String()))

	var wg sync.WaitGroup
	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
		}
		ln.Close()
		s.hub.CloseAll()
	}()
	defer func() {
		close(stopped)
		wg.Wait()
		s.log.Info("line protocol server stopped")
	}()

	var tempDelay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			// accept failures like EMFILE are transient, open connections keep being served
			if tempDelay == 0 {
				tempDelay = 5 * time.Millisecond
			} else {
				tempDelay *= 2
			}
			if tempDelay > maxAcceptDelay {
				tempDelay = maxAcceptDelay
			}
			s.log.Sugar().Infof("accept error: %v; retrying in %s", err, tempDelay)
			select {
			case <-time.After(tempDelay):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		tempDelay = 0

		client := s.hub.Register(conn)
		if s.config.UpdateRateLimit > 0 {
			burst := int(s.config.UpdateRateLimit)
			if burst < 1 {
				burst = 1
			}
			client.limiter = rate.NewLimiter(rate.Limit(s.config.UpdateRateLimit), burst)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handle(ctx, client)
		}()
	}
}

func (s *Server) handle(ctx context.Context, client *Client) {
	s.metric.ConnectionOpened()
	s.log.Info("client connected", zap.Uint("client", client.id), zap.String("connection name", nameConn(client.conn)))

	// the hub may already be closed when shutdown raced with this accept
	if ctx.Err() != nil {
		client.conn.Close()
	}

	err := client.serve(ctx, s)

	client.conn.Close()
	s.hub.Remove(client)
	s.metric.ConnectionClosed()

	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed), ctx.Err() != nil:
		s.log.Info("client disconnected", zap.Uint("client", client.id))
	case errors.Is(err, os.ErrDeadlineExceeded):
		s.log.Info("client idle, closing connection", zap.Uint("client", client.id))
	default:
		s.log.Info("client connection error", zap.Uint("client", client.id), zap.Error(err))
	}
}
