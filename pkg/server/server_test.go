package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	da "github.com/lintang-b-s/livenav/pkg/datastructure"
	"github.com/lintang-b-s/livenav/pkg/engine/routing"
	"github.com/lintang-b-s/livenav/pkg/metrics"
	"github.com/lintang-b-s/livenav/pkg/protocol"
	"github.com/lintang-b-s/livenav/pkg/traffic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLineHandler(t *testing.T) *protocol.Handler {
	t.Helper()
	gb := da.NewGraphBuilder(3)
	for i := 0; i < 3; i++ {
		require.NoError(t, gb.SetVertexCoordinates(da.Index(i), float64(i), 0))
	}
	_, err := gb.AddEdge(0, 2, 100, 10)
	require.NoError(t, err)
	_, err = gb.AddEdge(0, 1, 10, 10)
	require.NoError(t, err)
	_, err = gb.AddEdge(1, 2, 10, 10)
	require.NoError(t, err)
	g := gb.Build()

	re := routing.NewRoutingEngine(g, zap.NewNop(), routing.DefaultConfig())
	su := traffic.NewSpeedUpdater(g, zap.NewNop())
	h, err := protocol.NewHandler(g, re, su, 1024, nil, zap.NewNop())
	require.NoError(t, err)
	return h
}

// startServer serves on a random local port and returns its address. the server stops with the test.
func startServer(t *testing.T, handler LineHandler, config Config) (*Server, string, func() error) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(handler, config, metrics.NewMetric(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ctx, ln)
	}()

	var once sync.Once
	var serveErr error
	stop := func() error {
		once.Do(func() {
			cancel()
			serveErr = <-errc
		})
		return serveErr
	}
	t.Cleanup(func() { _ = stop() })
	return srv, ln.Addr().String(), stop
}

type testClient struct {
	conn net.Conn
	br   *bufio.Reader
}

func dial(t *testing.T, addr string) *testClient {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetDeadline(time.Now().Add(10*time.Second)))
	return &testClient{conn: conn, br: bufio.NewReader(conn)}
}

func (c *testClient) send(t *testing.T, raw string) {
	t.Helper()
	_, err := io.WriteString(c.conn, raw)
	require.NoError(t, err)
}

func (c *testClient) recv(t *testing.T) string {
	t.Helper()
	line, err := c.br.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(line, "\n"))
	return strings.TrimSuffix(line, "\n")
}

func TestServerRequestResponse(t *testing.T) {
	testCases := []struct {
		name string
		send string
		want []string
	}{
		{name: "route", send: "REQ 0 2\n", want: []string{"ROUTE 2.000 2 1 2"}},
		{name: "crlf terminator", send: "REQ 0 2\r\n", want: []string{"ROUTE 2.000 2 1 2"}},
		{name: "empty line", send: "\n", want: []string{"ERR EMPTY"}},
		{name: "empty crlf line", send: "\r\n", want: []string{"ERR EMPTY"}},
		{name: "unknown command", send: "FOO 1 2\n", want: []string{"ERR UNKNOWN_CMD"}},
		{
			name: "pipelined requests keep their order",
			send: "REQ 0 2\nUPD 0 -5\nREQ -1 0\n\nUPD 2 0.5\nREQ 0 2\n",
			want: []string{"ROUTE 2.000 2 1 2", "ERR BAD_SPEED", "ERR BAD_NODES", "ERR EMPTY", "ACK", "ROUTE 10.000 1 0"},
		},
		{
			name: "over-long line is discarded and the connection stays open",
			send: strings.Repeat("X", 200) + "\nREQ 1 2\n",
			want: []string{"ERR UNKNOWN_CMD", "ROUTE 1.000 1 2"},
		},
		{
			name: "line at the length limit is handled",
			send: "REQ 1 2" + strings.Repeat(" ", 64-len("REQ 1 2")) + "\r\n",
			want: []string{"ROUTE 1.000 1 2"},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, addr, _ := startServer(t, newTestLineHandler(t), Config{MaxLineBytes: 64})
			c := dial(t, addr)
			c.send(t, tt.send)
			for _, want := range tt.want {
				assert.Equal(t, want, c.recv(t))
			}
		})
	}
}

func TestServerUnterminatedLastLine(t *testing.T) {
	_, addr, _ := startServer(t, newTestLineHandler(t), Config{MaxLineBytes: 64})

	c := dial(t, addr)
	c.send(t, "REQ 1 2")
	require.NoError(t, c.conn.(*net.TCPConn).CloseWrite())

	assert.Equal(t, "ROUTE 1.000 1 2", c.recv(t))
	_, err := c.br.ReadString('\n')
	assert.ErrorIs(t, err, io.EOF)
}

func TestServerConcurrentClients(t *testing.T) {
	_, addr, _ := startServer(t, newTestLineHandler(t), Config{MaxLineBytes: 64})

	const numClients = 16
	var wg sync.WaitGroup
	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn, err := net.Dial("tcp", addr)
			if err != nil {
				t.Error(err)
				return
			}
			defer conn.Close()
			_ = conn.SetDeadline(time.Now().Add(10 * time.Second))
			br := bufio.NewReader(conn)

			for j := 0; j < 100; j++ {
				var req, want string
				if j%2 == 0 {
					req, want = fmt.Sprintf("UPD %d %d\n", i%3, 1+j), "ACK"
				} else {
					req, want = "REQ 1 1\n", "ROUTE 0.000 0"
				}
				if _, err := io.WriteString(conn, req); err != nil {
					t.Error(err)
					return
				}
				got, err := br.ReadString('\n')
				if err != nil {
					t.Error(err)
					return
				}
				if strings.TrimSuffix(got, "\n") != want {
					t.Errorf("client %d: %q -> %q, want %q", i, req, got, want)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestServerIdleTimeout(t *testing.T) {
	_, addr, _ := startServer(t, newTestLineHandler(t), Config{MaxLineBytes: 64, IdleTimeout: 50 * time.Millisecond})

	c := dial(t, addr)
	c.send(t, "REQ 0 2\n")
	assert.Equal(t, "ROUTE 2.000 2 1 2", c.recv(t))

	_, err := c.br.ReadString('\n')
	assert.ErrorIs(t, err, io.EOF)
}

func TestServerUpdateRateLimit(t *testing.T) {
	_, addr, _ := startServer(t, newTestLineHandler(t), Config{MaxLineBytes: 64, UpdateRateLimit: 20})

	c := dial(t, addr)
	start := time.Now()
	// burst of 20, the next 10 wait about 50ms each
	for i := 0; i < 30; i++ {
		c.send(t, "UPD 0 10\n")
		assert.Equal(t, "ACK", c.recv(t))
	}
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)

	// route queries are not throttled
	start = time.Now()
	for i := 0; i < 30; i++ {
		c.send(t, "REQ 0 2\n")
		c.recv(t)
	}
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestServerShutdown(t *testing.T) {
	srv, addr, stop := startServer(t, newTestLineHandler(t), Config{MaxLineBytes: 64})

	c := dial(t, addr)
	c.send(t, "REQ 0 2\n")
	require.Equal(t, "ROUTE 2.000 2 1 2", c.recv(t))
	require.Eventually(t, func() bool { return srv.GetHub().Len() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, stop())
	assert.Equal(t, 0, srv.GetHub().Len())

	_, err := c.br.ReadString('\n')
	assert.Error(t, err)

	_, err = net.DialTimeout("tcp", addr, 200*time.Millisecond)
	assert.Error(t, err)
}

func TestReadLine(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		max     int
		want    []string
		wantErr []error
	}{
		{
			name:    "lf and crlf",
			input:   "a\nb\r\n",
			max:     8,
			want:    []string{"a", "b", ""},
			wantErr: []error{nil, nil, io.EOF},
		},
		{
			name:    "too long then normal",
			input:   "0123456789\nok\n",
			max:     4,
			want:    []string{"", "ok", ""},
			wantErr: []error{errLineTooLong, nil, io.EOF},
		},
		{
			name:    "terminator does not count against the limit",
			input:   "abcd\r\n",
			max:     4,
			want:    []string{"abcd", ""},
			wantErr: []error{nil, io.EOF},
		},
		{
			name:    "unterminated tail",
			input:   "tail",
			max:     8,
			want:    []string{"tail", ""},
			wantErr: []error{nil, io.EOF},
		},
		{
			name:    "unterminated too long tail",
			input:   "0123456789",
			max:     4,
			want:    []string{"", ""},
			wantErr: []error{errLineTooLong, io.EOF},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			br := bufio.NewReaderSize(strings.NewReader(tt.input), tt.max+2)
			for i := range tt.want {
				line, err := readLine(br, tt.max)
				if tt.wantErr[i] != nil {
					assert.ErrorIs(t, err, tt.wantErr[i])
					continue
				}
				require.NoError(t, err)
				assert.Equal(t, tt.want[i], line)
			}
		})
	}
}

func TestServerAnswersBeforeReadingPartialLine(t *testing.T) {
	_, addr, _ := startServer(t, newTestLineHandler(t), Config{MaxLineBytes: 64})

	c := dial(t, addr)
	// the second request is only finished after the first response arrived
	c.send(t, "REQ 0 2\nREQ 0")
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	assert.Equal(t, "ROUTE 2.000 2 1 2", c.recv(t))

	c.send(t, " 2\n")
	assert.Equal(t, "ROUTE 2.000 2 1 2", c.recv(t))
}

// failingListener fails the first failures calls to Accept.
type failingListener struct {
	net.Listener
	failures atomic.Int32
}

func (l *failingListener) Accept() (net.Conn, error) {
	if l.failures.Add(-1) >= 0 {
		return nil, errors.New("accept4: too many open files")
	}
	return l.Listener.Accept()
}

func TestServerKeepsAcceptingAfterAcceptError(t *testing.T) {
	inner, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ln := &failingListener{Listener: inner}
	ln.failures.Store(3)

	srv := New(newTestLineHandler(t), Config{MaxLineBytes: 64}, nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ctx, ln)
	}()

	c := dial(t, inner.Addr().String())
	c.send(t, "REQ 0 2\n")
	assert.Equal(t, "ROUTE 2.000 2 1 2", c.recv(t))

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServerStopsWhenListenerIsClosed(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(newTestLineHandler(t), Config{MaxLineBytes: 64}, nil, zap.NewNop())
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(context.Background(), ln)
	}()

	require.NoError(t, ln.Close())
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, net.ErrClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestIsUpdate(t *testing.T) {
	testCases := []struct {
		name string
		line string
		want bool
	}{
		{name: "update", line: "UPD 1 2.5", want: true},
		{name: "tab separated", line: "UPD\t1\t2.5", want: true},
		{name: "leading space", line: " UPD 1 2.5", want: true},
		{name: "longer verb", line: "UPDATE 1 2.5", want: false},
		{name: "wrong arity", line: "UPD 1", want: false},
		{name: "route", line: "REQ 0 1", want: false},
		{name: "lower case", line: "upd 1 2", want: false},
		{name: "empty", line: "", want: false},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUpdate(tt.line))
		})
	}
}

func TestHasBufferedLine(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		reads int
		want  bool
	}{
		{name: "nothing buffered", input: "", reads: 0, want: false},
		{name: "complete line buffered", input: "REQ 0 2\nREQ 0", reads: 0, want: true},
		{name: "only a partial line left", input: "REQ 0 2\nREQ 0", reads: 1, want: false},
		{name: "two complete lines", input: "a\nb\n", reads: 1, want: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			br := bufio.NewReaderSize(strings.NewReader(tt.input), 64)
			_, _ = br.Peek(len(tt.input))
			for i := 0; i < tt.reads; i++ {
				_, err := readLine(br, 62)
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, hasBufferedLine(br))
		})
	}
}
