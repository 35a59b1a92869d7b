package server

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var errLineTooLong = errors.New("line too long")

// Client is one line protocol connection. requests are handled strictly in order,
// one response line per request line.
type Client struct {
	id      uint
	conn    net.Conn
	hub     *Hub
	limiter *rate.Limiter
}

func (c *Client) serve(ctx context.Context, s *Server) error {
	br := bufio.NewReaderSize(c.conn, s.config.MaxLineBytes+2)
	bw := bufio.NewWriter(c.conn)

	for {
		if s.config.IdleTimeout > 0 {
			if err := c.conn.SetReadDeadline(time.Now().Add(s.config.IdleTimeout)); err != nil {
				return err
			}
		}

		line, err := readLine(br, s.config.MaxLineBytes)
		var resp string
		switch {
		case errors.Is(err, errLineTooLong):
			s.log.Debug("discarded over-long line", zap.Uint("client", c.id), zap.Int("max_line_bytes", s.config.MaxLineBytes))
			resp = s.tooLongResponse
		case err != nil:
			return err
		default:
			if c.limiter != nil && isUpdate(line) {
				if err := c.limiter.Wait(ctx); err != nil {
					return err
				}
			}
			resp = s.handler.Handle(line)
		}

		if _, err := bw.WriteString(resp); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		// responses of pipelined requests are batched, but never held across a read that may block
		if !hasBufferedLine(br) {
			if err := bw.Flush(); err != nil {
				return err
			}
		}
	}
}

/*
readLine reads one '\n' terminated line and strips "\r\n". a line whose content is longer than
maxLineBytes is consumed up to its newline and reported as errLineTooLong. an unterminated last
line before EOF is returned as a line, EOF is reported on the next call.
*/
func readLine(br *bufio.Reader, maxLineBytes int) (string, error) {
	var line []byte
	tooLong := false

	for {
		frag, err := br.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(frag) > maxLineBytes+2 {
				tooLong = true
				line = nil
			} else {
				line = append(line, frag...)
			}
		}

		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if errors.Is(err, io.EOF) && (len(line) > 0 || tooLong) {
			break
		}
		return "", err
	}

	if tooLong {
		return "", errLineTooLong
	}
	line = bytes.TrimRight(line, "\r\n")
	if len(line) > maxLineBytes {
		return "", errLineTooLong
	}
	return string(line), nil
}

// hasBufferedLine reports whether the next readLine can complete without reading from the connection.
func hasBufferedLine(br *bufio.Reader) bool {
	buf, _ := br.Peek(br.Buffered())
	return bytes.IndexByte(buf, '\n') >= 0
}

// isUpdate reports whether line has the shape of an UPD command, split the way the protocol parser splits it.
func isUpdate(line string) bool {
	fields := strings.Fields(line)
	return len(fields) == 3 && fields[0] == "UPD"
}

func nameConn(conn net.Conn) string {
	return conn.LocalAddr().String() + " > " + conn.RemoteAddr().String()
}
