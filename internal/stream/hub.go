// Package stream publishes per-frame simulation data to websocket clients.
package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/san-kum/flipsim/internal/dynamo"
)

// FrameMessage is the JSON document sent to every client after a frame.
type FrameMessage struct {
	Frame     int               `json:"frame"`
	Time      float64           `json:"time"`
	Radius    float32           `json:"radius"`
	Positions [][3]float32      `json:"positions,omitempty"`
	Colors    [][3]float32      `json:"colors,omitempty"`
	Stats     dynamo.FrameStats `json:"stats"`
}

// Hub fans frames out to connected websocket clients. It implements
// dynamo.Observer so a runner can drive it directly; writes to each
// connection are serialised by that connection's mutex.
type Hub struct {
	upgrader      websocket.Upgrader
	withParticles bool

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewHub returns a hub. withParticles adds particle positions and colours
// to every message; otherwise only statistics are sent.
func NewHub(withParticles bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		withParticles: withParticles,
		clients:       make(map[*websocket.Conn]*sync.Mutex),
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the client goes away. Incoming messages are discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()
	slog.Info("client connected", "remote", r.RemoteAddr)

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		slog.Info("client disconnected", "remote", r.RemoteAddr)
	}()

	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) OnStep(sys dynamo.Fluid, stats dynamo.FrameStats) {
	if h.Clients() == 0 {
		return
	}
	if err := h.Broadcast(h.message(sys, stats)); err != nil {
		slog.Error("encoding frame", "frame", stats.Frame, "err", err)
	}
}

func (h *Hub) message(sys dynamo.Fluid, stats dynamo.FrameStats) FrameMessage {
	msg := FrameMessage{
		Frame:  stats.Frame,
		Time:   stats.Time,
		Radius: sys.ParticleRadius(),
		Stats:  stats,
	}
	if h.withParticles {
		pos := sys.Positions()
		col := sys.Colors()
		msg.Positions = make([][3]float32, len(pos))
		msg.Colors = make([][3]float32, len(col))
		for i, p := range pos {
			msg.Positions[i] = p
		}
		for i, c := range col {
			msg.Colors[i] = c
		}
	}
	return msg
}

// Broadcast encodes msg once and writes it to every client. Clients whose
// write fails are dropped.
func (h *Hub) Broadcast(msg FrameMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	prepared, err := websocket.NewPreparedMessage(websocket.TextMessage, data)
	if err != nil {
		return err
	}

	var failed []*websocket.Conn
	h.mu.RLock()
	for conn, mu := range h.clients {
		mu.Lock()
		if err := conn.WritePreparedMessage(prepared); err != nil {
			failed = append(failed, conn)
		}
		mu.Unlock()
	}
	h.mu.RUnlock()

	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			delete(h.clients, conn)
			conn.Close()
		}
		h.mu.Unlock()
		slog.Debug("dropped clients", "count", len(failed))
	}
	return nil
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

var _ dynamo.Observer = (*Hub)(nil)
