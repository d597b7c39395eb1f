package stream

import (
	"context"
	"sync/atomic"
)

// Hub owns the connected clients and fans messages out to all of them.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	direct     chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	count atomic.Int64
}

// envelope is a message for a single client.
type envelope struct {
	to  *Client
	msg []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		direct:     make(chan envelope, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Clients reports the number of registered clients.
func (h *Hub) Clients() int { return int(h.count.Load()) }

// Broadcast queues msg for every client. It reports false when the hub is
// backed up and the message was dropped.
func (h *Hub) Broadcast(msg []byte) bool {
	select {
	case h.broadcast <- msg:
		return true
	default:
		return false
	}
}

func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		_ = c.conn.Close()
		h.count.Add(-1)
	}
}

// send hands a hub request over unless the hub has stopped.
func send[T any](h *Hub, ch chan T, v T) {
	select {
	case ch <- v:
	case <-h.done:
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.count.Add(1)

		case c := <-h.unregister:
			h.drop(c)

		case env := <-h.direct:
			if h.clients[env.to] {
				select {
				case env.to.send <- env.msg:
				default:
					h.drop(env.to)
				}
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.drop(c)
				}
			}
		}
	}
}
