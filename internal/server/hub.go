package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/Alias1177/StockDashboard/internal/chart"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	sendBuffer   = 8
	writeTimeout = 10 * time.Second
)

// resizeMessage is what browsers send when their chart container changes width
type resizeMessage struct {
	Width int `json:"width"`
}

type subscriber struct {
	send chan chart.Payload
}

// Hub fans chart payloads out to every connected browser and replays the
// latest one to new connections.
type Hub struct {
	resize   *chart.ResizeBroadcaster
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	mu   sync.Mutex
	subs map[*subscriber]struct{}
	last *chart.Payload
}

// NewHub creates a hub. Resize messages from browsers are forwarded to resize.
func NewHub(resize *chart.ResizeBroadcaster) *Hub {
	return &Hub{
		resize: resize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: log.With().Str("component", "chart_hub").Logger(),
		subs:   make(map[*subscriber]struct{}),
	}
}

// Publish implements chart.Publisher. Slow subscribers miss payloads instead of blocking.
func (h *Hub) Publish(p chart.Payload) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = &p
	for s := range h.subs {
		select {
		case s.send <- p:
		default:
			h.logger.Warn().Msg("Subscriber too slow, dropping chart payload")
		}
	}
}

// Subscribers returns the number of connected browsers
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) subscribe() (*subscriber, func()) {
	s := &subscriber{send: make(chan chart.Payload, sendBuffer)}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	if h.last != nil {
		s.send <- *h.last
	}
	h.mu.Unlock()

	var once sync.Once
	return s, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, s)
			close(s.send)
			h.mu.Unlock()
		})
	}
}

// ServeHTTP upgrades the connection and streams payloads until the browser goes away
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	sub, unsubscribe := h.subscribe()
	defer unsubscribe()

	h.logger.Debug().Str("remote", r.RemoteAddr).Msg("Chart subscriber connected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range sub.send {
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(p); err != nil {
				h.logger.Debug().Err(err).Msg("Chart subscriber write failed")
				return
			}
		}
	}()

	for {
		var msg resizeMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if msg.Width > 0 && h.resize != nil {
			h.resize.Broadcast(msg.Width)
		}
	}

	unsubscribe()
	<-done
	h.logger.Debug().Str("remote", r.RemoteAddr).Msg("Chart subscriber disconnected")
}
