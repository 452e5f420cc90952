// Package websocket pushes the activity event feed to connected admin
// clients.
package websocket

import "github.com/rs/zerolog/log"

// Hub maintains the set of active clients and broadcasts events to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Outbound events for global broadcast.
	Broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan []byte, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Feed client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				log.Info().Int("total_clients", len(h.clients)).Msg("Feed client disconnected")
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// Slow consumer; drop it rather than stall the feed.
					close(client.Send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Publish queues a message for broadcast without blocking the caller when
// the feed is saturated.
func (h *Hub) Publish(message []byte) {
	select {
	case h.Broadcast <- message:
	default:
	}
}
