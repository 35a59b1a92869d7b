package server

import (
	"net"
	"sync"
)

// Hub tracks open connections so they can be closed on shutdown.
type Hub struct {
	mu    sync.Mutex
	seq   uint
	conns map[uint]*Client
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[uint]*Client),
	}
}

func (h *Hub) Register(conn net.Conn) *Client {
	client := &Client{
		hub:  h,
		conn: conn,
	}

	h.mu.Lock()
	client.id = h.seq
	h.conns[client.id] = client
	h.seq++
	h.mu.Unlock()

	return client
}

func (h *Hub) Remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, client.id)
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// CloseAll closes every registered connection. blocked reads return with an error and the
// connection goroutines remove themselves.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.conns {
		client.conn.Close()
	}
}
