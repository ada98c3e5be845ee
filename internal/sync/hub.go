// Package sync fans out ranking change events to TCP and websocket clients.
package sync

import (
	"encoding/json"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cheeseechops/CamdramAPI/internal/logging"
)

const writeTimeout = 2 * time.Second

// Hub tracks subscribers and delivers every published event to all of them.
type Hub struct {
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	tcp       map[net.Conn]struct{}
	ws        map[*websocket.Conn]struct{}
	published int
	lastType  string
	lastAt    time.Time
}

type Stats struct {
	TCPClients int       `json:"tcp_clients"`
	WSClients  int       `json:"ws_clients"`
	Published  int       `json:"published"`
	LastEvent  string    `json:"last_event,omitempty"`
	LastAt     time.Time `json:"last_at,omitzero"`
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Hub{
		logger: logging.NewComponentLogger(logger, "sync"),
		now:    time.Now,
		tcp:    make(map[net.Conn]struct{}),
		ws:     make(map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Add(conn net.Conn) {
	h.mu.Lock()
	h.tcp[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Remove(conn net.Conn) {
	h.mu.Lock()
	delete(h.tcp, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) AddWS(ws *websocket.Conn) {
	h.mu.Lock()
	h.ws[ws] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) RemoveWS(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.ws, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// Publish stamps ev when it has no time and delivers it as one
// newline-terminated JSON line. Subscribers that fail a write are dropped.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = h.now().UTC()
	}
	line, err := encodeLine(ev)
	if err != nil {
		h.logger.Warn("encode event failed", logging.String("event", ev.Type), logging.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.published++
	h.lastType, h.lastAt = ev.Type, ev.At

	dropped := 0
	for c := range h.tcp {
		if err := writeTCP(c, line); err != nil {
			_ = c.Close()
			delete(h.tcp, c)
			dropped++
		}
	}
	for ws := range h.ws {
		if err := writeWS(ws, line); err != nil {
			_ = ws.Close()
			delete(h.ws, ws)
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Debug("dropped unresponsive subscribers",
			logging.String("event", ev.Type),
			logging.Int("dropped", dropped))
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		TCPClients: len(h.tcp),
		WSClients:  len(h.ws),
		Published:  h.published,
		LastEvent:  h.lastType,
		LastAt:     h.lastAt,
	}
}

// welcome is the first line a new subscriber receives.
func (h *Hub) welcome(transport string) []byte {
	st := h.Stats()
	line, _ := encodeLine(Event{
		Type:      EventWelcome,
		Transport: transport,
		Clients:   st.TCPClients + st.WSClients,
		At:        h.now().UTC(),
	})
	return line
}

func (h *Hub) welcomeTCP(conn net.Conn) {
	_ = writeTCP(conn, h.welcome(TransportTCP))
}

func encodeLine(ev Event) ([]byte, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func writeTCP(c net.Conn, line []byte) error {
	_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err := c.Write(line)
	return err
}

func writeWS(ws *websocket.Conn, line []byte) error {
	_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return ws.WriteMessage(websocket.TextMessage, line)
}
