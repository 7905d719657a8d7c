package siteconfig

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Hub tracks websocket subscribers that want to know when the stored
// configuration changes. There is no replay and no payload; notified
// clients refetch the document themselves.
type Hub struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser origins are already filtered by the CORS layer.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Subscribe upgrades the request and keeps the connection until the peer
// goes away. Incoming messages are discarded.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

// Broadcast sends the event to every subscriber. Writes are serialized
// under the hub lock; connections that cannot be written to in time are
// dropped.
func (h *Hub) Broadcast(event string) {
	payload := map[string]string{"event": event}

	h.mu.Lock()
	var dead []*websocket.Conn
	for conn := range h.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(payload); err != nil {
			log.Printf("siteconfig: drop slow websocket subscriber: %v", err)
			dead = append(dead, conn)
		}
	}
	for _, conn := range dead {
		delete(h.conns, conn)
		_ = conn.Close()
	}
	h.mu.Unlock()
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}
