package websocket

import (
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "notification_ws_connections",
	Help: "Currently connected notification subscribers.",
})

type unicast struct {
	recipient uuid.UUID
	message   []byte
}

// Hub maintains the set of active subscriber connections, indexed by
// recipient, and pushes notification frames to them. It buffers nothing for
// disconnected recipients: the event store is the source of truth and
// clients reconcile by re-fetching on reconnect.
type Hub struct {
	// clients indexes active connections by recipient identity. A recipient
	// may hold several connections (tabs, devices).
	clients map[uuid.UUID]map[*Client]bool

	unicast    chan unicast
	register   chan *Client
	unregister chan *Client

	stop     chan struct{}
	stopOnce sync.Once
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		unicast:    make(chan unicast),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
	}
}

// Run owns all hub state; every mutation goes through its channels.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			conns := h.clients[client.recipient]
			if conns == nil {
				conns = make(map[*Client]bool)
				h.clients[client.recipient] = conns
			}
			conns[client] = true
			wsConnections.Inc()
			log.Printf("[notify hub] subscriber connected (recipient: %s, connections: %d)", client.recipient, len(conns))

		case client := <-h.unregister:
			if conns, ok := h.clients[client.recipient]; ok && conns[client] {
				delete(conns, client)
				if len(conns) == 0 {
					delete(h.clients, client.recipient)
				}
				close(client.send)
				wsConnections.Dec()
				log.Printf("[notify hub] subscriber disconnected (recipient: %s)", client.recipient)
			}

		case msg := <-h.unicast:
			for client := range h.clients[msg.recipient] {
				select {
				case client.send <- msg.message:
				default:
					// Slow consumer; drop the connection, the store keeps
					// the notification.
					delete(h.clients[msg.recipient], client)
					if len(h.clients[msg.recipient]) == 0 {
						delete(h.clients, msg.recipient)
					}
					close(client.send)
					wsConnections.Dec()
				}
			}

		case <-h.stop:
			for recipient, conns := range h.clients {
				for client := range conns {
					close(client.send)
					wsConnections.Dec()
				}
				delete(h.clients, recipient)
			}
			log.Println("[notify hub] stopped")
			return
		}
	}
}

// SendToRecipient delivers message to every live connection of the
// recipient. It returns immediately when the hub is stopped.
func (h *Hub) SendToRecipient(recipient uuid.UUID, message []byte) {
	select {
	case h.unicast <- unicast{recipient: recipient, message: message}:
	case <-h.stop:
	}
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}
